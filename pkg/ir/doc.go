// Package ir provides a small instruction-graph representation for
// driving the reachability index in [github.com/matzehuels/reachmap/pkg/reach].
//
// # Overview
//
// A [Graph] owns a set of [Instruction] values connected by two edge
// kinds: data edges (operand producer → consumer) and control edges
// (explicit ordering constraints between otherwise independent
// instructions). Operands are resolved when an instruction is created, so
// data edges can never dangle; control edges are added afterwards with
// [Graph.AddControlDependency].
//
// # Reachability
//
// The package adapts graphs to the reach package's caller-driven API:
// [BuildReachability] computes the full transitive closure over data and
// control edges, [BuildArithmeticReachability] computes the restricted
// closure over plain arithmetic chains, and [UpdateReachability] repairs
// a matrix after an instruction's predecessor set changed. [VerifyClosure]
// cross-checks a matrix against a brute-force traversal and is meant for
// tests and debug builds - the matrix itself never validates its input.
//
// # Manifests
//
// Graphs can be described in TOML manifests and loaded with
// [LoadManifest], which is how the reachmap CLI gets its input:
//
//	name = "example"
//
//	[[instruction]]
//	name = "a"
//	op   = "parameter"
//
//	[[instruction]]
//	name     = "sum"
//	op       = "add"
//	operands = ["a", "a"]
//
// # Concurrency
//
// Graphs are not safe for concurrent mutation. Read-only use from
// multiple goroutines is fine once construction is finished.
package ir
