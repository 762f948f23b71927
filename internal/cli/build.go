package cli

import (
	"context"
	"fmt"

	"github.com/matzehuels/reachmap/pkg/ir"
	"github.com/matzehuels/reachmap/pkg/reach"
)

// loadAndBuild loads the graph manifest at path and computes its
// reachability closure. With restricted set, the closure only follows
// plain arithmetic chains instead of the full data+control relation.
func loadAndBuild(ctx context.Context, path string, restricted bool) (*ir.Graph, *reach.Matrix, error) {
	logger := loggerFromContext(ctx)

	g, err := ir.LoadManifest(path)
	if err != nil {
		return nil, nil, err
	}
	logger.Debugf("Loaded %s: %d instructions", g.Name(), g.NumInstructions())

	p := newProgress(logger)
	var m *reach.Matrix
	if restricted {
		m, err = ir.BuildArithmeticReachability(g)
	} else {
		m, err = ir.BuildReachability(g)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("build closure: %w", err)
	}
	p.done(fmt.Sprintf("Built closure for %d instructions", m.Size()))

	return g, m, nil
}

// lookup resolves an instruction name from the command line, with an
// error that names the graph when it is missing.
func lookup(g *ir.Graph, name string) (*ir.Instruction, error) {
	in, ok := g.Instruction(name)
	if !ok {
		return nil, fmt.Errorf("no instruction %q in graph %s", name, g.Name())
	}
	return in, nil
}
