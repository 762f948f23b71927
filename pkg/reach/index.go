package reach

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateKey is returned by [New] when the same key appears twice
	// in the node set. Keys must be unique across the universe the matrix
	// is built for.
	ErrDuplicateKey = errors.New("duplicate node key")

	// ErrUnknownKey is returned by [Matrix.Replace] when the original key
	// does not resolve to a node in the matrix.
	ErrUnknownKey = errors.New("unknown node key")

	// ErrKeyPresent is returned by [Matrix.Replace] when the replacement
	// key is already bound to a different node.
	ErrKeyPresent = errors.New("replacement key already present")
)

// Key is the opaque identity of a graph node. It pairs the id of the
// owning graph with the node's per-graph id, so keys stay unique even when
// instructions from several graphs share one matrix. The matrix never
// inspects node content - only keys.
type Key struct {
	Graph uint32 // id of the owning graph
	Node  uint32 // per-graph unique node id
}

// String returns the key in "graph:node" form, for error messages.
func (k Key) String() string { return fmt.Sprintf("%d:%d", k.Graph, k.Node) }

// Index is an opaque handle for a node whose key has already been
// resolved. Clients doing repeated operations on the same node call
// [Matrix.GetIndex] once and use the Index-taking method variants, which
// skip the key hash lookup. Two indices are equal iff they refer to the
// same node of the same matrix; an Index from one matrix must not be used
// with another.
type Index struct {
	v int
}

// assigner maps node keys to dense indices in [0, n). The assignment is
// fixed at construction - no growth - but a key can be rebound to an
// existing index by Replace.
type assigner struct {
	indices map[Key]int
}

// newAssigner assigns indices 0..len(keys)-1 in slice order. The order
// carries no meaning of its own; closure construction requires a
// topological traversal order, which is a property of how the matrix is
// driven, not of the index assignment.
func newAssigner(keys []Key) (*assigner, error) {
	a := &assigner{indices: make(map[Key]int, len(keys))}
	for i, k := range keys {
		if _, exists := a.indices[k]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateKey, k)
		}
		a.indices[k] = i
	}
	return a, nil
}

// lookup returns the index assigned to k, if any.
func (a *assigner) lookup(k Key) (int, bool) {
	i, ok := a.indices[k]
	return i, ok
}

// mustLookup returns the index assigned to k and panics if there is none.
// An unknown key means the caller desynchronized the matrix from its
// graph, which is a logic bug in the calling pass, not a runtime
// condition to recover from.
func (a *assigner) mustLookup(k Key) int {
	i, ok := a.indices[k]
	if !ok {
		panic(fmt.Sprintf("reach: unknown node key %s", k))
	}
	return i
}

// rebind moves the index bound to oldKey so that it is looked up under
// newKey instead. oldKey must be present; newKey must be absent
// (rebinding a key to itself is a no-op).
func (a *assigner) rebind(oldKey, newKey Key) error {
	i, ok := a.indices[oldKey]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownKey, oldKey)
	}
	if oldKey == newKey {
		return nil
	}
	if _, exists := a.indices[newKey]; exists {
		return fmt.Errorf("%w: %s", ErrKeyPresent, newKey)
	}
	delete(a.indices, oldKey)
	a.indices[newKey] = i
	return nil
}
