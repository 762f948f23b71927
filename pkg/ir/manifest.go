package ir

import (
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"
)

// manifest mirrors the TOML document structure for a graph description.
type manifest struct {
	Name         string                `toml:"name"`
	Instructions []manifestInstruction `toml:"instruction"`
}

type manifestInstruction struct {
	Name     string   `toml:"name"`
	Op       string   `toml:"op"`
	Operands []string `toml:"operands"`
	Control  []string `toml:"control"`
}

// ParseManifest decodes a TOML graph description from r into a validated
// [Graph].
//
// Instructions are declared in `[[instruction]]` tables, each with a
// unique name and an opcode mnemonic. Operands must refer to instructions
// declared earlier in the document, which keeps every data edge resolvable
// in one pass and forces the document into data-topological order.
// Control edges (`control = [...]`) may refer to any instruction and are
// wired in a second pass.
//
// The resulting graph is validated before it is returned, so a manifest
// whose control edges introduce a cycle fails with ErrGraphHasCycle.
func ParseManifest(r io.Reader) (*Graph, error) {
	var doc manifest
	if _, err := toml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	name := doc.Name
	if name == "" {
		name = "graph"
	}
	g := NewGraph(name)

	for _, mi := range doc.Instructions {
		op, err := ParseOpcode(mi.Op)
		if err != nil {
			return nil, fmt.Errorf("instruction %s: %w", mi.Name, err)
		}
		operands := make([]*Instruction, len(mi.Operands))
		for i, ref := range mi.Operands {
			in, ok := g.Instruction(ref)
			if !ok {
				return nil, fmt.Errorf("instruction %s: operand %q not declared before use", mi.Name, ref)
			}
			operands[i] = in
		}
		if _, err := g.AddInstruction(mi.Name, op, operands...); err != nil {
			return nil, fmt.Errorf("instruction %s: %w", mi.Name, err)
		}
	}

	for _, mi := range doc.Instructions {
		if len(mi.Control) == 0 {
			continue
		}
		to, _ := g.Instruction(mi.Name)
		for _, ref := range mi.Control {
			from, ok := g.Instruction(ref)
			if !ok {
				return nil, fmt.Errorf("instruction %s: control predecessor %q not found", mi.Name, ref)
			}
			if err := g.AddControlDependency(from, to); err != nil {
				return nil, fmt.Errorf("instruction %s: %w", mi.Name, err)
			}
		}
	}

	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// LoadManifest reads the TOML graph description at path and returns the
// decoded graph. It returns the same validation errors as
// [ParseManifest], wrapped with the file path for context.
func LoadManifest(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	g, err := ParseManifest(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return g, nil
}
