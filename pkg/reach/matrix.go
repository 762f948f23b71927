package reach

// Matrix is a reachability index over a fixed set of graph nodes.
// The row for node X is the bit set of every node that reaches X,
// including X itself. It is up to the caller to supply edges that form a
// transitively closed relation; the matrix only stores what it is told,
// and queries are meaningful exactly when that invariant holds.
//
// The node set and index assignment are fixed at construction. A node's
// identity can later be swapped with [Matrix.Replace], but brand-new
// nodes cannot be inserted.
//
// Matrix is not safe for concurrent use without external synchronization.
type Matrix struct {
	assigner *assigner
	rows     []*BitSet

	// scratch is reused by SetReachabilityToUnion for change detection,
	// avoiding a per-call allocation in hot incremental-update loops.
	scratch *BitSet
}

// New creates a matrix with no edges over the given node set. Indices are
// assigned in slice order. Returns ErrDuplicateKey if a key repeats.
func New(keys []Key) (*Matrix, error) {
	a, err := newAssigner(keys)
	if err != nil {
		return nil, err
	}
	n := len(keys)
	m := &Matrix{
		assigner: a,
		rows:     make([]*BitSet, n),
		scratch:  newBitSet(n),
	}
	for i := range m.rows {
		m.rows[i] = newBitSet(n)
	}
	return m, nil
}

// Build computes the full transitive closure in one linear sweep.
//
// order must list every node exactly once, in a topological order of the
// combined data+control graph: every producer before all of its
// consumers. preds returns a node's direct predecessor set (operand
// producers plus control predecessors). Because predecessors come first,
// each predecessor's row is already final when it is OR'd into a
// successor's row, so a single pass establishes the closure without
// fixpoint iteration.
//
// Build cannot detect a non-topological order; it just computes rows that
// understate reachability. Callers own that precondition.
func Build(order []Key, preds func(Key) []Key) (*Matrix, error) {
	m, err := New(order)
	if err != nil {
		return nil, err
	}
	inputs := make([]Index, 0, 8)
	for _, k := range order {
		inputs = inputs[:0]
		for _, p := range preds(k) {
			inputs = append(inputs, m.GetIndex(p))
		}
		m.FastSetReachabilityToUnionIndices(inputs, m.GetIndex(k))
	}
	return m, nil
}

// BuildRestricted runs the same sweep as [Build] over a caller-narrowed
// predecessor relation. preds should return only the predecessors that
// satisfy the restriction (for example, arithmetic producers with at most
// one non-constant operand). The resulting matrix answers a strictly
// narrower question than general reachability: "is B derivable from A
// through a chain confined to the allowed shape". Everything else about
// the sweep, including the topological-order precondition, is identical.
func BuildRestricted(order []Key, preds func(Key) []Key) (*Matrix, error) {
	return Build(order, preds)
}

// Size returns the number of nodes the matrix was built for.
func (m *Matrix) Size() int { return len(m.rows) }

// GetIndex resolves a node key to its dense index. It panics if the key
// is not part of the matrix's node set - see [Matrix.Lookup] for the
// non-panicking form.
func (m *Matrix) GetIndex(k Key) Index {
	return Index{v: m.assigner.mustLookup(k)}
}

// Lookup resolves a node key to its index, reporting whether the key is
// present.
func (m *Matrix) Lookup(k Key) (Index, bool) {
	i, ok := m.assigner.lookup(k)
	return Index{v: i}, ok
}

// IsPresent reports whether the key currently resolves to a node in the
// matrix.
func (m *Matrix) IsPresent(k Key) bool {
	_, ok := m.assigner.lookup(k)
	return ok
}

// SetReachable records that b is reachable from a, and nothing more.
//
// This does not compute reachability: it flips a single bit and does not
// transitively update any other row. It is a primitive for callers that
// assemble or repair the closure themselves; calling it directly breaks
// the closure invariant until the caller restores it.
func (m *Matrix) SetReachable(a, b Key) {
	m.SetReachableIndex(m.GetIndex(a), m.GetIndex(b))
}

// SetReachableIndex is [Matrix.SetReachable] for already-resolved indices.
func (m *Matrix) SetReachableIndex(a, b Index) {
	m.rows[b.v].Set(a.v)
}

// SetReachabilityToUnion overwrites node's row with the union of the
// inputs' rows plus node's own bit, and reports whether the row changed.
//
// This does not compute reachability either: it makes node's row
// consistent with the current rows of inputs and touches nothing else.
// When used to react to a real edge change the caller must invoke it in a
// correctness-preserving order, and propagate onward if descendants can
// be affected - that is what [Matrix.Update] does.
func (m *Matrix) SetReachabilityToUnion(inputs []Key, node Key) bool {
	return m.setUnionIndices(m.resolve(inputs), m.GetIndex(node), true)
}

// FastSetReachabilityToUnion is [Matrix.SetReachabilityToUnion] without
// the changed-row comparison.
func (m *Matrix) FastSetReachabilityToUnion(inputs []Key, node Key) {
	m.setUnionIndices(m.resolve(inputs), m.GetIndex(node), false)
}

// FastSetReachabilityToUnionIndices is the fast variant for
// already-resolved indices; no hash lookups occur at all.
func (m *Matrix) FastSetReachabilityToUnionIndices(inputs []Index, node Index) {
	m.setUnionIndices(inputs, node, false)
}

// setUnionIndices recomputes row(node) from inputs. With compare set, the
// new row is assembled in the matrix-owned scratch row, diffed against
// the old row, and swapped in only when different; the return value
// reports that difference. Without compare the row is rebuilt in place.
func (m *Matrix) setUnionIndices(inputs []Index, node Index, compare bool) bool {
	row := m.rows[node.v]
	if !compare {
		row.Clear()
		for _, in := range inputs {
			row.OrWith(m.rows[in.v])
		}
		row.Set(node.v)
		return true
	}

	m.scratch.Clear()
	for _, in := range inputs {
		m.scratch.OrWith(m.rows[in.v])
	}
	m.scratch.Set(node.v)
	if m.scratch.Equal(row) {
		return false
	}
	m.rows[node.v], m.scratch = m.scratch, row
	return true
}

// Update restores the closure invariant after node's direct predecessor
// set changed at the graph level (an edge was added or removed).
//
// preds enumerates a node's current direct predecessors and succs its
// immediate successors; both come from the collaborator that owns the
// graph topology. Update recomputes node's row from its predecessors; if
// the row is unchanged it stops - no descendant can be affected, since
// every descendant's row is a monotone superset built by OR-ing this row
// in. Otherwise it repeats the recompute-and-stop step across successors
// worklist-style. Rows only grow along this path and the node count is
// finite, so the walk terminates after visiting only the nodes actually
// affected, rather than the whole graph.
func (m *Matrix) Update(node Key, preds, succs func(Key) []Key) {
	if !m.SetReachabilityToUnion(preds(node), node) {
		return
	}
	worklist := append([]Key(nil), succs(node)...)
	for len(worklist) > 0 {
		n := worklist[0]
		worklist = worklist[1:]
		if m.SetReachabilityToUnion(preds(n), n) {
			worklist = append(worklist, succs(n)...)
		}
	}
}

// Replace rebinds the index currently looked up under original so that it
// is looked up under replacement instead. Row contents, and every other
// row's bit for that index, are untouched: all previously computed and
// future reachability facts about the old node carry over to the new one.
// Afterwards original is no longer present.
//
// Returns ErrUnknownKey if original is absent, or ErrKeyPresent if
// replacement is already bound to a different node.
func (m *Matrix) Replace(original, replacement Key) error {
	return m.assigner.rebind(original, replacement)
}

// IsReachable reports whether b is reachable from a. Every node is
// reachable from itself. The answer is only meaningful if the edge set
// supplied to the matrix is transitive.
func (m *Matrix) IsReachable(a, b Key) bool {
	return m.IsReachableIndex(m.GetIndex(a), m.GetIndex(b))
}

// IsReachableIndex is [Matrix.IsReachable] for already-resolved indices.
func (m *Matrix) IsReachableIndex(a, b Index) bool {
	return m.rows[b.v].Get(a.v)
}

// IsConnected reports whether either node reaches the other.
func (m *Matrix) IsConnected(a, b Key) bool {
	return m.IsConnectedIndex(m.GetIndex(a), m.GetIndex(b))
}

// IsConnectedIndex is [Matrix.IsConnected] for already-resolved indices.
func (m *Matrix) IsConnectedIndex(a, b Index) bool {
	return m.IsReachableIndex(a, b) || m.IsReachableIndex(b, a)
}

// Row returns a copy of the bit set for the node at idx: bit i is set iff
// the node with index i reaches it. Useful for snapshot-and-diff
// debugging; mutations of the copy do not affect the matrix.
func (m *Matrix) Row(idx Index) *BitSet {
	row := m.rows[idx.v]
	cp := newBitSet(row.size)
	copy(cp.words, row.words)
	return cp
}

func (m *Matrix) resolve(keys []Key) []Index {
	out := make([]Index, len(keys))
	for i, k := range keys {
		out[i] = m.GetIndex(k)
	}
	return out
}
