package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// queryOpts holds the command-line flags for the query command.
type queryOpts struct {
	restricted bool // follow only arithmetic chains
}

// newQueryCmd creates the query command, which answers a single
// reachability question for a pair of instructions.
func newQueryCmd() *cobra.Command {
	var opts queryOpts

	cmd := &cobra.Command{
		Use:   "query <graph.toml> <from> <to>",
		Short: "Answer whether one instruction can reach another",
		Long: `Query builds the transitive closure of a graph manifest and reports
whether <to> is reachable from <from>, and whether the two are connected
in either direction.

Examples:
  reachmap query graph.toml a c
  reachmap query graph.toml a c --restricted   # arithmetic chains only`,
		Args: cobra.ExactArgs(3),
		RunE: func(c *cobra.Command, args []string) error {
			return runQuery(c, args[0], args[1], args[2], opts)
		},
	}

	cmd.Flags().BoolVar(&opts.restricted, "restricted", false, "follow only arithmetic chains with at most one non-constant operand")

	return cmd
}

func runQuery(c *cobra.Command, path, fromName, toName string, opts queryOpts) error {
	g, m, err := loadAndBuild(c.Context(), path, opts.restricted)
	if err != nil {
		return err
	}

	from, err := lookup(g, fromName)
	if err != nil {
		return err
	}
	to, err := lookup(g, toName)
	if err != nil {
		return err
	}

	out := c.OutOrStdout()
	fmt.Fprintf(out, "%s %s → %s: %s\n",
		styleTitle.Render(g.Name()),
		styleName.Render(fromName),
		styleName.Render(toName),
		verdict(m.IsReachable(from.Key(), to.Key())))
	connected := styleUnreachable.Render("no")
	if m.IsConnected(from.Key(), to.Key()) {
		connected = styleReachable.Render("yes")
	}
	fmt.Fprintf(out, "connected: %s\n", connected)

	return nil
}

// verdict renders a boolean reachability answer in color.
func verdict(ok bool) string {
	if ok {
		return styleReachable.Render("reachable")
	}
	return styleUnreachable.Render("unreachable")
}
