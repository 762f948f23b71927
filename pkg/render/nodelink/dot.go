package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/reachmap/pkg/ir"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed includes the opcode in node labels.
	// When false, only the instruction name is shown.
	Detailed bool

	// Highlight selects instructions to fill with an accent color,
	// typically the reachable set of one instruction. Nil highlights
	// nothing.
	Highlight func(*ir.Instruction) bool
}

// ToDOT converts an instruction graph to Graphviz DOT format.
// Data edges are solid, drawn from each operand producer to its consumer;
// control edges are dashed. The resulting DOT string can be rendered with
// [RenderSVG].
func ToDOT(g *ir.Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=24, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, in := range g.Instructions() {
		label := fmtLabel(in, opts.Detailed)
		attrs := fmtAttrs(in, label, opts)
		fmt.Fprintf(&buf, "  %q [%s];\n", in.Name(), strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, in := range g.Instructions() {
		for _, op := range in.Operands() {
			fmt.Fprintf(&buf, "  %q -> %q;\n", op.Name(), in.Name())
		}
		for _, cp := range in.ControlPredecessors() {
			fmt.Fprintf(&buf, "  %q -> %q [style=dashed];\n", cp.Name(), in.Name())
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(in *ir.Instruction, detailed bool) string {
	if !detailed {
		return in.Name()
	}
	return fmt.Sprintf("%s\nop: %s", in.Name(), in.Op())
}

func fmtAttrs(in *ir.Instruction, label string, opts Options) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if opts.Highlight != nil && opts.Highlight(in) {
		attrs = append(attrs, "fillcolor=lightblue")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
