// Package nodelink renders instruction graphs as classic node-link
// diagrams.
//
// [ToDOT] produces Graphviz DOT text with data edges drawn solid and
// control edges dashed; an optional highlight predicate fills the nodes
// of interest, which the reachmap CLI uses to paint the reachable set of
// a chosen instruction. [RenderSVG] rasterizes DOT text with Graphviz.
package nodelink
