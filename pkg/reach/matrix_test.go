package reach

import (
	"errors"
	"testing"
)

// key makes a test key in graph 1.
func key(n int) Key { return Key{Graph: 1, Node: uint32(n)} }

// testDAG is a mutable DAG over nodes 0..n-1 whose edges always point
// from a lower to a higher node, so ascending node order is topological.
type testDAG struct {
	n     int
	preds map[int][]int
}

func newTestDAG(n int, edges [][2]int) *testDAG {
	d := &testDAG{n: n, preds: make(map[int][]int)}
	for _, e := range edges {
		d.addEdge(e[0], e[1])
	}
	return d
}

func (d *testDAG) addEdge(from, to int) {
	d.preds[to] = append(d.preds[to], from)
}

func (d *testDAG) removeEdge(from, to int) {
	var kept []int
	for _, p := range d.preds[to] {
		if p != from {
			kept = append(kept, p)
		}
	}
	d.preds[to] = kept
}

func (d *testDAG) order() []Key {
	keys := make([]Key, d.n)
	for i := range keys {
		keys[i] = key(i)
	}
	return keys
}

func (d *testDAG) predsOf(k Key) []Key {
	var out []Key
	for _, p := range d.preds[int(k.Node)] {
		out = append(out, key(p))
	}
	return out
}

func (d *testDAG) succsOf(k Key) []Key {
	var out []Key
	for to, ps := range d.preds {
		for _, p := range ps {
			if p == int(k.Node) {
				out = append(out, key(to))
				break
			}
		}
	}
	return out
}

// closure computes the reference transitive closure by brute force.
func (d *testDAG) closure() [][]bool {
	reach := make([][]bool, d.n)
	for i := range reach {
		reach[i] = make([]bool, d.n)
		reach[i][i] = true
	}
	for changed := true; changed; {
		changed = false
		for to, ps := range d.preds {
			for _, p := range ps {
				for i := 0; i < d.n; i++ {
					if reach[i][p] && !reach[i][to] {
						reach[i][to] = true
						changed = true
					}
				}
			}
		}
	}
	return reach
}

func (d *testDAG) build(t *testing.T) *Matrix {
	t.Helper()
	m, err := Build(d.order(), d.predsOf)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return m
}

// exampleDAG is the 4-node graph a→b, b→c, a→d with a=0, b=1, c=2, d=3.
func exampleDAG() *testDAG {
	return newTestDAG(4, [][2]int{{0, 1}, {1, 2}, {0, 3}})
}

func TestNew_DuplicateKey(t *testing.T) {
	_, err := New([]Key{key(0), key(1), key(0)})
	if !errors.Is(err, ErrDuplicateKey) {
		t.Errorf("New with duplicate keys returned %v, want ErrDuplicateKey", err)
	}
}

func TestBuild_ExampleScenario(t *testing.T) {
	m := exampleDAG().build(t)
	a, b, c, d := key(0), key(1), key(2), key(3)

	tests := []struct {
		name string
		got  bool
		want bool
	}{
		{"IsReachable(a,c)", m.IsReachable(a, c), true},
		{"IsReachable(d,c)", m.IsReachable(d, c), false},
		{"IsConnected(b,d)", m.IsConnected(b, d), false},
		{"IsConnected(a,d)", m.IsConnected(a, d), true},
		{"IsReachable(c,a)", m.IsReachable(c, a), false},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestBuild_SelfReachability(t *testing.T) {
	m := exampleDAG().build(t)
	for i := 0; i < 4; i++ {
		if !m.IsReachable(key(i), key(i)) {
			t.Errorf("node %d is not reachable from itself", i)
		}
	}
}

func TestBuild_MatchesBruteForce(t *testing.T) {
	// Deterministic pseudo-random DAG: all edges go low→high, so
	// ascending order is topological.
	const n = 24
	d := newTestDAG(n, nil)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if (i*7+j*13)%5 == 0 {
				d.addEdge(i, j)
			}
		}
	}

	m := d.build(t)
	want := d.closure()
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if got := m.IsReachable(key(i), key(j)); got != want[i][j] {
				t.Errorf("IsReachable(%d,%d) = %v, want %v", i, j, got, want[i][j])
			}
		}
	}
}

func TestIndexVariants(t *testing.T) {
	m := exampleDAG().build(t)
	a := m.GetIndex(key(0))
	c := m.GetIndex(key(2))
	d := m.GetIndex(key(3))

	if !m.IsReachableIndex(a, c) {
		t.Error("IsReachableIndex(a,c) = false, want true")
	}
	if m.IsConnectedIndex(c, d) {
		t.Error("IsConnectedIndex(c,d) = true, want false")
	}
}

func TestGetIndex_UnknownPanics(t *testing.T) {
	m := exampleDAG().build(t)
	defer func() {
		if recover() == nil {
			t.Error("GetIndex with an unknown key did not panic")
		}
	}()
	m.GetIndex(key(42))
}

func TestLookupAndIsPresent(t *testing.T) {
	m := exampleDAG().build(t)

	if _, ok := m.Lookup(key(1)); !ok {
		t.Error("Lookup(known) reported not present")
	}
	if _, ok := m.Lookup(key(42)); ok {
		t.Error("Lookup(unknown) reported present")
	}
	if !m.IsPresent(key(0)) {
		t.Error("IsPresent(known) = false")
	}
	if m.IsPresent(Key{Graph: 2, Node: 0}) {
		t.Error("IsPresent with a foreign graph id = true")
	}
}

func TestSetReachable_DoesNotPropagate(t *testing.T) {
	m, err := New([]Key{key(0), key(1), key(2)})
	if err != nil {
		t.Fatal(err)
	}

	m.SetReachable(key(0), key(1))
	m.SetReachable(key(1), key(2))

	if !m.IsReachable(key(0), key(1)) {
		t.Error("SetReachable(0,1) did not set the bit")
	}
	// Raw bit setting must not close transitively.
	if m.IsReachable(key(0), key(2)) {
		t.Error("SetReachable propagated 0→2 transitively")
	}
}

func TestSetReachabilityToUnion_ReportsChange(t *testing.T) {
	m := exampleDAG().build(t)

	// Row of d currently holds {a, d}. Unioning in b's row adds b.
	if !m.SetReachabilityToUnion([]Key{key(0), key(1)}, key(3)) {
		t.Error("first union reported no change")
	}
	// The same union again is a fixpoint.
	if m.SetReachabilityToUnion([]Key{key(0), key(1)}, key(3)) {
		t.Error("repeated union reported a change")
	}
}

func TestSetReachabilityToUnion_Monotonic(t *testing.T) {
	d := exampleDAG()
	m := d.build(t)

	before := make(map[int]bool)
	for i := 0; i < 4; i++ {
		before[i] = m.IsReachable(key(i), key(1))
	}

	m.SetReachabilityToUnion([]Key{key(1)}, key(3))

	// Everything that reached input b must now reach node d.
	for i := 0; i < 4; i++ {
		if before[i] && !m.IsReachable(key(i), key(3)) {
			t.Errorf("node %d reached input b but not the union target d", i)
		}
	}
	if !m.IsReachable(key(3), key(3)) {
		t.Error("union target lost its self bit")
	}
}

func TestFastSetReachabilityToUnion_Overwrites(t *testing.T) {
	m := exampleDAG().build(t)

	// Recompute c's row from a alone: b must no longer reach c.
	m.FastSetReachabilityToUnion([]Key{key(0)}, key(2))

	if m.IsReachable(key(1), key(2)) {
		t.Error("overwritten row still contains the old input")
	}
	if !m.IsReachable(key(0), key(2)) || !m.IsReachable(key(2), key(2)) {
		t.Error("overwritten row is missing the new input or the self bit")
	}
}

// rowsSnapshot captures every row for bit-for-bit comparison.
func rowsSnapshot(m *Matrix, n int) []*BitSet {
	rows := make([]*BitSet, n)
	for i := 0; i < n; i++ {
		rows[i] = m.Row(m.GetIndex(key(i)))
	}
	return rows
}

func sameRows(a, b []*BitSet) bool {
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

func TestUpdate_AddedEdgeMatchesRebuild(t *testing.T) {
	d := exampleDAG()
	m := d.build(t)

	// New edge d→c at the graph level, then incremental repair of c.
	d.addEdge(3, 2)
	m.Update(key(2), d.predsOf, d.succsOf)

	want := d.build(t)
	if !sameRows(rowsSnapshot(m, 4), rowsSnapshot(want, 4)) {
		t.Error("incrementally updated matrix differs from a full rebuild")
	}
	if !m.IsReachable(key(3), key(2)) {
		t.Error("IsReachable(d,c) = false after adding edge d→c")
	}
}

func TestUpdate_RemovedEdgeMatchesRebuild(t *testing.T) {
	d := newTestDAG(5, [][2]int{{0, 1}, {1, 2}, {2, 3}, {3, 4}, {0, 2}})
	m := d.build(t)

	d.removeEdge(1, 2)
	m.Update(key(2), d.predsOf, d.succsOf)

	want := d.build(t)
	if !sameRows(rowsSnapshot(m, 5), rowsSnapshot(want, 5)) {
		t.Error("incrementally updated matrix differs from a full rebuild")
	}
	if m.IsReachable(key(1), key(4)) {
		t.Error("stale reachability 1→4 survived the edge removal")
	}
}

func TestUpdate_PropagatesThroughDescendants(t *testing.T) {
	// Chain 0→1→2→3 plus isolated 4. Adding 4→1 must become visible at 3.
	d := newTestDAG(5, [][2]int{{0, 1}, {1, 2}, {2, 3}})
	m := d.build(t)

	d.addEdge(4, 1)
	m.Update(key(1), d.predsOf, d.succsOf)

	if !m.IsReachable(key(4), key(3)) {
		t.Error("update did not propagate the new edge to descendants")
	}
}

func TestUpdate_EarlyTermination(t *testing.T) {
	d := exampleDAG()
	m := d.build(t)

	// a already reaches c through b, so the direct edge a→c changes
	// nothing and the propagation must stop at c.
	d.addEdge(0, 2)
	before := rowsSnapshot(m, 4)

	succsCalled := 0
	m.Update(key(2), d.predsOf, func(k Key) []Key {
		succsCalled++
		return d.succsOf(k)
	})

	if !sameRows(before, rowsSnapshot(m, 4)) {
		t.Error("a no-op update modified rows")
	}
	if succsCalled != 0 {
		t.Errorf("successors were enumerated %d times for an unchanged row, want 0", succsCalled)
	}
}

func TestReplace_PreservesFacts(t *testing.T) {
	// A→B→C with A=0, B=1, C=2.
	d := newTestDAG(3, [][2]int{{0, 1}, {1, 2}})
	m := d.build(t)

	a, b, c := key(0), key(1), key(2)
	bPrime := Key{Graph: 1, Node: 99}
	wantAB := m.IsReachable(a, b)
	wantBC := m.IsReachable(b, c)

	if err := m.Replace(b, bPrime); err != nil {
		t.Fatalf("Replace failed: %v", err)
	}

	if got := m.IsReachable(a, bPrime); got != wantAB {
		t.Errorf("IsReachable(a,b') = %v, want %v", got, wantAB)
	}
	if got := m.IsReachable(bPrime, c); got != wantBC {
		t.Errorf("IsReachable(b',c) = %v, want %v", got, wantBC)
	}
	if m.IsPresent(b) {
		t.Error("original key still present after Replace")
	}
}

func TestReplace_Errors(t *testing.T) {
	m := exampleDAG().build(t)

	if err := m.Replace(key(42), key(43)); !errors.Is(err, ErrUnknownKey) {
		t.Errorf("Replace of unknown key returned %v, want ErrUnknownKey", err)
	}
	if err := m.Replace(key(0), key(1)); !errors.Is(err, ErrKeyPresent) {
		t.Errorf("Replace onto a bound key returned %v, want ErrKeyPresent", err)
	}
	if err := m.Replace(key(0), key(0)); err != nil {
		t.Errorf("Replace of a key with itself returned %v, want nil", err)
	}
	if !m.IsPresent(key(0)) {
		t.Error("self-replace removed the key")
	}
}
