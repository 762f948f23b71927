package ir

import (
	"fmt"

	"github.com/matzehuels/reachmap/pkg/reach"
)

// BuildReachability computes the full transitive closure of the graph's
// producer→consumer and control relations. After it returns,
// IsReachable(a, b) is true iff there is a directed path from a to b over
// data and control edges; every instruction is reachable from itself.
//
// Returns ErrGraphHasCycle if control edges have made the graph cyclic.
func BuildReachability(g *Graph) (*reach.Matrix, error) {
	return buildWith(g, reach.Build, func(in *Instruction) []*Instruction {
		return in.Predecessors()
	})
}

// BuildArithmeticReachability computes the restricted closure that only
// follows plain arithmetic chains: an instruction contributes its
// operands as predecessors only when its opcode is add, sub, mul or div
// and at most one of its operands is non-constant. The resulting matrix
// answers "is b derivable from a through a chain of the form
// f(f(f(a, const), const), ...)", a strictly narrower relation than
// [BuildReachability] computes.
func BuildArithmeticReachability(g *Graph) (*reach.Matrix, error) {
	return buildWith(g, reach.BuildRestricted, arithmeticPredecessors)
}

// sweepFunc is the signature shared by reach.Build and
// reach.BuildRestricted.
type sweepFunc func([]reach.Key, func(reach.Key) []reach.Key) (*reach.Matrix, error)

// buildWith runs one of the reach package's sweep constructors over the
// graph's topological order, translating between instructions and keys.
func buildWith(g *Graph, sweep sweepFunc, preds func(*Instruction) []*Instruction) (*reach.Matrix, error) {
	order, err := g.TopologicalOrder()
	if err != nil {
		return nil, err
	}
	keys := make([]reach.Key, len(order))
	for i, in := range order {
		keys[i] = in.Key()
	}
	return sweep(keys, func(k reach.Key) []reach.Key {
		return keysOf(preds(g.instructionByKey(k)))
	})
}

// arithmeticPredecessors is the restricted predecessor relation for
// [BuildArithmeticReachability]. Control edges never participate.
func arithmeticPredecessors(in *Instruction) []*Instruction {
	if !in.op.IsArithmetic() {
		return nil
	}
	nonConstant := 0
	for _, o := range in.operands {
		if o.op != OpConstant {
			nonConstant++
		}
	}
	if nonConstant > 1 {
		return nil
	}
	return in.operands
}

// UpdateReachability repairs the matrix after the direct predecessor set
// of in changed - an operand or control edge was added or removed at the
// graph level. Only the rows of instructions actually affected by the
// change are touched; if in's own row comes out unchanged, nothing else
// is visited.
func UpdateReachability(m *reach.Matrix, in *Instruction) {
	g := in.graph
	m.Update(in.Key(),
		func(k reach.Key) []reach.Key {
			return keysOf(g.instructionByKey(k).Predecessors())
		},
		func(k reach.Key) []reach.Key {
			return keysOf(g.instructionByKey(k).Successors())
		})
}

// VerifyClosure cross-checks the matrix against a brute-force depth-first
// closure of the graph and returns an error naming the first disagreeing
// instruction pair. Intended for tests and debug builds: the matrix never
// validates its own input, and a non-topological build order or a missed
// update produces silently wrong rows that only a check like this can
// surface.
func VerifyClosure(m *reach.Matrix, g *Graph) error {
	for _, src := range g.instrs {
		reachable := make(map[*Instruction]bool, len(g.instrs))
		stack := []*Instruction{src}
		for len(stack) > 0 {
			in := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if reachable[in] {
				continue
			}
			reachable[in] = true
			stack = append(stack, in.Successors()...)
		}

		for _, dst := range g.instrs {
			got := m.IsReachable(src.Key(), dst.Key())
			if want := reachable[dst]; got != want {
				return fmt.Errorf("closure mismatch: IsReachable(%s, %s) = %v, want %v",
					src.name, dst.name, got, want)
			}
		}
	}
	return nil
}

func keysOf(ins []*Instruction) []reach.Key {
	keys := make([]reach.Key, len(ins))
	for i, in := range ins {
		keys[i] = in.Key()
	}
	return keys
}
