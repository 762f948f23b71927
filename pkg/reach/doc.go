// Package reach provides a reachability index over directed acyclic
// instruction graphs.
//
// # Overview
//
// A [Matrix] answers "can node A reach node B along producer→consumer and
// control edges?" in O(1) time. It stores one bit set per node: the row for
// node X holds the set of all nodes that reach X, including X itself. Rows
// are packed into 64-bit words, so combining two rows is a word-parallel OR
// rather than per-element set insertion. That bulk OR is the dominant cost
// of closure construction and the reason a dense matrix was chosen over a
// hash-set-of-successors representation.
//
// # Building
//
// [Build] computes the full transitive closure in a single linear sweep:
// nodes are processed in a caller-supplied topological order, and each row
// is the OR of its predecessors' already-final rows plus the node's own bit.
// [BuildRestricted] runs the same sweep over a caller-narrowed predecessor
// relation, producing a strictly smaller relation ("is B derivable from A
// through a chain confined to the allowed shape").
//
// The matrix never discovers edges and never checks that the edge set it is
// given is transitively consistent. If the supplied order is not a true
// topological order of the combined data+control graph, the computed rows
// silently understate reachability. Collaborators that own the graph can
// cross-check with a brute-force closure when debugging.
//
// # Incremental updates
//
// After a node's direct predecessor set changes, [Matrix.Update] restores
// the closure invariant without a full rebuild: it recomputes the node's
// row and propagates over successors, stopping as soon as a recomputed row
// is unchanged. Rows only ever grow along this path, so the propagation
// terminates after visiting only the nodes actually affected.
//
// # Identity
//
// Nodes are identified by an opaque composite [Key]. Repeated operations on
// the same node can resolve the key once with [Matrix.GetIndex] and use the
// [Index]-taking method variants, skipping the hash lookup.
//
// # Concurrency
//
// A Matrix is not safe for concurrent use. Concurrent readers are fine;
// any writer requires external exclusion from all other readers and
// writers.
package reach
