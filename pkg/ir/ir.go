package ir

import (
	"errors"
	"fmt"
	"slices"
	"sync/atomic"

	"github.com/matzehuels/reachmap/pkg/reach"
)

var (
	// ErrInvalidName is returned by [Graph.AddInstruction] when the
	// instruction name is empty. All instructions must have non-empty,
	// unique names.
	ErrInvalidName = errors.New("instruction name must not be empty")

	// ErrDuplicateName is returned by [Graph.AddInstruction] when an
	// instruction with the same name already exists in the graph.
	ErrDuplicateName = errors.New("duplicate instruction name")

	// ErrForeignInstruction is returned when an operand or control edge
	// endpoint belongs to a different graph.
	ErrForeignInstruction = errors.New("instruction belongs to a different graph")

	// ErrSelfDependency is returned by [Graph.AddControlDependency] when
	// both endpoints are the same instruction.
	ErrSelfDependency = errors.New("control dependency on itself")

	// ErrGraphHasCycle is returned by [Graph.Validate] and
	// [Graph.TopologicalOrder] when the combined data+control graph
	// contains a directed cycle.
	ErrGraphHasCycle = errors.New("graph contains a cycle")
)

// Opcode identifies the operation an instruction performs.
type Opcode int

const (
	// OpParameter is a graph input; it has no operands.
	OpParameter Opcode = iota
	// OpConstant is a literal value; it has no operands.
	OpConstant
	// OpAdd through OpDiv are the plain binary arithmetic operations.
	OpAdd
	OpSub
	OpMul
	OpDiv
	// OpNegate is unary arithmetic.
	OpNegate
	// OpCall invokes an opaque computation over its operands.
	OpCall
	// OpTuple bundles its operands into one value.
	OpTuple
)

var opcodeNames = map[Opcode]string{
	OpParameter: "parameter",
	OpConstant:  "constant",
	OpAdd:       "add",
	OpSub:       "sub",
	OpMul:       "mul",
	OpDiv:       "div",
	OpNegate:    "negate",
	OpCall:      "call",
	OpTuple:     "tuple",
}

// String returns the lowercase mnemonic used in manifests and DOT labels.
func (o Opcode) String() string {
	if s, ok := opcodeNames[o]; ok {
		return s
	}
	return fmt.Sprintf("opcode(%d)", int(o))
}

// ParseOpcode converts a manifest mnemonic back to an [Opcode].
func ParseOpcode(s string) (Opcode, error) {
	for op, name := range opcodeNames {
		if name == s {
			return op, nil
		}
	}
	return 0, fmt.Errorf("unknown opcode %q", s)
}

// IsArithmetic reports whether the opcode is one of the plain binary
// arithmetic operations (add, sub, mul, div).
func (o Opcode) IsArithmetic() bool {
	return o == OpAdd || o == OpSub || o == OpMul || o == OpDiv
}

// Instruction is a vertex of the instruction graph. Instructions are
// created through [Graph.AddInstruction] and are owned by their graph for
// their whole lifetime; the zero value is not usable.
type Instruction struct {
	id       uint32
	name     string
	op       Opcode
	operands []*Instruction
	users    []*Instruction

	controlPreds []*Instruction
	controlSuccs []*Instruction

	graph *Graph
}

// Name returns the instruction's unique name within its graph.
func (in *Instruction) Name() string { return in.name }

// Op returns the instruction's opcode.
func (in *Instruction) Op() Opcode { return in.op }

// Key returns the instruction's stable identity for reachability lookups:
// the owning graph's id paired with the instruction's per-graph id.
func (in *Instruction) Key() reach.Key {
	return reach.Key{Graph: in.graph.id, Node: in.id}
}

// Operands returns the instruction's data predecessors in operand order.
// The returned slice is a read-only view; do not modify it.
func (in *Instruction) Operands() []*Instruction { return in.operands }

// Users returns the instructions that consume this one as an operand.
// The returned slice is a read-only view; do not modify it.
func (in *Instruction) Users() []*Instruction { return in.users }

// ControlPredecessors returns instructions that must execute before this
// one due to explicit control dependencies.
func (in *Instruction) ControlPredecessors() []*Instruction { return in.controlPreds }

// ControlSuccessors returns instructions ordered after this one by
// explicit control dependencies.
func (in *Instruction) ControlSuccessors() []*Instruction { return in.controlSuccs }

// Predecessors returns the instruction's combined direct predecessor set:
// operand producers plus control predecessors, deduplicated.
func (in *Instruction) Predecessors() []*Instruction {
	return dedup(in.operands, in.controlPreds)
}

// Successors returns the combined immediate successor set: users plus
// control successors, deduplicated.
func (in *Instruction) Successors() []*Instruction {
	return dedup(in.users, in.controlSuccs)
}

func (in *Instruction) String() string {
	return fmt.Sprintf("%s = %s/%d", in.name, in.op, len(in.operands))
}

// dedup merges two adjacency lists, dropping repeats while keeping first-
// occurrence order. An instruction can appear twice as an operand (x+x)
// or as both operand producer and control predecessor.
func dedup(a, b []*Instruction) []*Instruction {
	out := make([]*Instruction, 0, len(a)+len(b))
	seen := make(map[*Instruction]struct{}, len(a)+len(b))
	for _, list := range [2][]*Instruction{a, b} {
		for _, in := range list {
			if _, dup := seen[in]; dup {
				continue
			}
			seen[in] = struct{}{}
			out = append(out, in)
		}
	}
	return out
}

// nextGraphID hands out process-unique graph ids so that keys from
// different graphs never collide in a shared matrix.
var nextGraphID atomic.Uint32

// Graph is a directed acyclic graph of instructions.
//
// Data edges are fixed at instruction creation; control edges are added
// later and are the only way a cycle can be introduced, so call
// [Graph.Validate] after wiring control dependencies. The zero value is
// not usable - use [NewGraph].
type Graph struct {
	id     uint32
	name   string
	instrs []*Instruction
	byName map[string]*Instruction
	byID   map[uint32]*Instruction
	nextID uint32
}

// NewGraph creates an empty instruction graph.
func NewGraph(name string) *Graph {
	return &Graph{
		id:     nextGraphID.Add(1),
		name:   name,
		byName: make(map[string]*Instruction),
		byID:   make(map[uint32]*Instruction),
	}
}

// Name returns the graph's name.
func (g *Graph) Name() string { return g.name }

// AddInstruction appends an instruction whose operands are the given,
// already-added instructions. Returns ErrInvalidName for an empty name,
// ErrDuplicateName if the name is taken, or ErrForeignInstruction if an
// operand belongs to another graph.
//
// Because operands must exist before their consumer, insertion order is
// always a topological order of the data edges on their own.
func (g *Graph) AddInstruction(name string, op Opcode, operands ...*Instruction) (*Instruction, error) {
	if name == "" {
		return nil, ErrInvalidName
	}
	if _, exists := g.byName[name]; exists {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateName, name)
	}
	for _, o := range operands {
		if o.graph != g {
			return nil, fmt.Errorf("%w: operand %s", ErrForeignInstruction, o.name)
		}
	}

	in := &Instruction{
		id:       g.nextID,
		name:     name,
		op:       op,
		operands: slices.Clone(operands),
		graph:    g,
	}
	g.nextID++
	for _, o := range operands {
		// An instruction using the same operand twice (x+x) is still a
		// single user.
		if !slices.Contains(o.users, in) {
			o.users = append(o.users, in)
		}
	}
	g.instrs = append(g.instrs, in)
	g.byName[name] = in
	g.byID[in.id] = in
	return in, nil
}

// AddControlDependency orders to after from without a data edge.
// Duplicate control edges are dropped silently. Returns
// ErrForeignInstruction if the endpoints live in different graphs, or
// ErrSelfDependency if from == to.
func (g *Graph) AddControlDependency(from, to *Instruction) error {
	if from.graph != g || to.graph != g {
		return ErrForeignInstruction
	}
	if from == to {
		return ErrSelfDependency
	}
	if slices.Contains(from.controlSuccs, to) {
		return nil
	}
	from.controlSuccs = append(from.controlSuccs, to)
	to.controlPreds = append(to.controlPreds, from)
	return nil
}

// Instruction returns the instruction with the given name and true, or
// nil and false if the graph has no such instruction.
func (g *Graph) Instruction(name string) (*Instruction, bool) {
	in, ok := g.byName[name]
	return in, ok
}

// Instructions returns all instructions in insertion order. The returned
// slice is a copy; the pointed-to instructions are the graph's own.
func (g *Graph) Instructions() []*Instruction { return slices.Clone(g.instrs) }

// NumInstructions returns the number of instructions in the graph.
func (g *Graph) NumInstructions() int { return len(g.instrs) }

// Keys returns the identity keys of all instructions in insertion order.
func (g *Graph) Keys() []reach.Key {
	keys := make([]reach.Key, len(g.instrs))
	for i, in := range g.instrs {
		keys[i] = in.Key()
	}
	return keys
}

// ReplaceUses rewires every consumer of oldIn - operand lists and control
// edges - to consume newIn instead, leaving oldIn with no users. Combined
// with [reach.Matrix.Replace] this substitutes an equivalent instruction
// while carrying all reachability facts over.
//
// Returns ErrForeignInstruction if newIn belongs to another graph.
// Replacing an instruction with itself is a no-op.
func (g *Graph) ReplaceUses(oldIn, newIn *Instruction) error {
	if oldIn.graph != g || newIn.graph != g {
		return ErrForeignInstruction
	}
	if oldIn == newIn {
		return nil
	}

	for _, u := range oldIn.users {
		for i, op := range u.operands {
			if op == oldIn {
				u.operands[i] = newIn
			}
		}
		if !slices.Contains(newIn.users, u) {
			newIn.users = append(newIn.users, u)
		}
	}
	oldIn.users = nil

	for _, s := range oldIn.controlSuccs {
		for i, p := range s.controlPreds {
			if p == oldIn {
				s.controlPreds[i] = newIn
			}
		}
		if !slices.Contains(newIn.controlSuccs, s) {
			newIn.controlSuccs = append(newIn.controlSuccs, s)
		}
	}
	oldIn.controlSuccs = nil

	return nil
}

// TopologicalOrder returns the instructions in an order where every
// producer (data and control) precedes all of its consumers, computed
// with Kahn's algorithm. Returns ErrGraphHasCycle if control edges have
// introduced a cycle.
func (g *Graph) TopologicalOrder() ([]*Instruction, error) {
	indegree := make(map[*Instruction]int, len(g.instrs))
	queue := make([]*Instruction, 0, len(g.instrs))
	for _, in := range g.instrs {
		d := len(in.Predecessors())
		indegree[in] = d
		if d == 0 {
			queue = append(queue, in)
		}
	}

	order := make([]*Instruction, 0, len(g.instrs))
	for len(queue) > 0 {
		in := queue[0]
		queue = queue[1:]
		order = append(order, in)
		for _, s := range in.Successors() {
			indegree[s]--
			if indegree[s] == 0 {
				queue = append(queue, s)
			}
		}
	}

	if len(order) != len(g.instrs) {
		return nil, ErrGraphHasCycle
	}
	return order, nil
}

// Validate checks that the combined data+control graph is acyclic.
// Data edges cannot form cycles by construction, so this only ever
// triggers after control dependencies were added. Cycle detection runs in
// O(N+E) using depth-first search with white/gray/black coloring.
func (g *Graph) Validate() error {
	const (
		white = iota
		gray
		black
	)

	color := make(map[*Instruction]int, len(g.instrs))
	var hasCycle bool

	var dfs func(in *Instruction)
	dfs = func(in *Instruction) {
		color[in] = gray
		for _, s := range in.Successors() {
			switch color[s] {
			case white:
				dfs(s)
			case gray:
				hasCycle = true
				return
			}
		}
		color[in] = black
	}

	for _, in := range g.instrs {
		if color[in] == white {
			dfs(in)
			if hasCycle {
				return ErrGraphHasCycle
			}
		}
	}
	return nil
}

// instructionByKey resolves a reachability key back to the instruction it
// identifies, or nil if the key is not from this graph.
func (g *Graph) instructionByKey(k reach.Key) *Instruction {
	if k.Graph != g.id {
		return nil
	}
	return g.byID[k.Node]
}
