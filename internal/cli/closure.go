package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/reachmap/pkg/ir"
)

// closureOpts holds the command-line flags for the closure command.
type closureOpts struct {
	restricted bool // follow only arithmetic chains
	verify     bool // cross-check against a brute-force closure
}

// newClosureCmd creates the closure command, which prints the full
// reachability table of a graph.
func newClosureCmd() *cobra.Command {
	var opts closureOpts

	cmd := &cobra.Command{
		Use:   "closure <graph.toml>",
		Short: "Print the full reachability table for a graph",
		Long: `Closure builds the transitive closure of a graph manifest and prints it
as a table: the cell in row A, column B is set when B is reachable from A.

Examples:
  reachmap closure graph.toml
  reachmap closure graph.toml --restricted   # arithmetic chains only
  reachmap closure graph.toml --verify       # cross-check with brute force`,
		Args: cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return runClosure(c, args[0], opts)
		},
	}

	cmd.Flags().BoolVar(&opts.restricted, "restricted", false, "follow only arithmetic chains with at most one non-constant operand")
	cmd.Flags().BoolVar(&opts.verify, "verify", false, "compare the closure against a brute-force traversal")

	return cmd
}

func runClosure(c *cobra.Command, path string, opts closureOpts) error {
	g, m, err := loadAndBuild(c.Context(), path, opts.restricted)
	if err != nil {
		return err
	}

	if opts.verify {
		if opts.restricted {
			loggerFromContext(c.Context()).Warn("--verify checks full reachability; skipping for a restricted closure")
		} else if err := ir.VerifyClosure(m, g); err != nil {
			return err
		} else {
			loggerFromContext(c.Context()).Info("Closure matches brute-force traversal")
		}
	}

	instrs := g.Instructions()
	width := 0
	for _, in := range instrs {
		if len(in.Name()) > width {
			width = len(in.Name())
		}
	}

	out := c.OutOrStdout()
	fmt.Fprintln(out, styleTitle.Render(g.Name()))

	// Header: one column per destination instruction, rotated names kept
	// short by using the first letter when the table gets wide.
	fmt.Fprintf(out, "%*s ", width, "")
	for _, dst := range instrs {
		fmt.Fprintf(out, " %s", styleName.Render(columnLabel(dst, instrs)))
	}
	fmt.Fprintln(out)

	for _, src := range instrs {
		fmt.Fprintf(out, "%s ", styleName.Render(fmt.Sprintf("%*s", width, src.Name())))
		for _, dst := range instrs {
			cell := styleDim.Render("·")
			if m.IsReachable(src.Key(), dst.Key()) {
				cell = styleReachable.Render("■")
			}
			fmt.Fprintf(out, " %s", cell)
		}
		fmt.Fprintln(out)
	}

	return nil
}

// columnLabel abbreviates a destination name to its first rune unless
// that would collide with another column, in which case the full name is
// used.
func columnLabel(in *ir.Instruction, all []*ir.Instruction) string {
	first := in.Name()[:1]
	for _, other := range all {
		if other != in && strings.HasPrefix(other.Name(), first) {
			return in.Name()
		}
	}
	return first
}
