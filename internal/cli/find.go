package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// findCommand creates the find command.
func (c *CLI) findCommand() *cobra.Command {
	var (
		flags  resolveFlags
		unique bool
	)
	cmd := &cobra.Command{
		Use:   "find <coordinate|pom.xml> <pattern>",
		Short: "Look up graph nodes by coordinate pattern",
		Long: `Resolve the root and print the ids of the nodes matching pattern, sorted.
Patterns without a scope segment match every scope. With --unique the
lookup fails unless exactly one node matches.`,
		Example: `  artgraph find org.nuxeo:nuxeo-core:2023.1 'org.apache.commons:commons-lang3'
  artgraph find ./pom.xml '*:*-api' --unique`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := c.buildGraph(cmd, &flags, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if unique {
				n, err := g.FindUnique(args[1])
				if err != nil {
					return err
				}
				fmt.Fprintln(out, n.ID)
				return nil
			}
			nodes, err := g.Find(args[1])
			if err != nil {
				return err
			}
			for _, n := range nodes {
				fmt.Fprintln(out, n.ID)
			}
			if len(nodes) == 0 {
				printInfo(cmd.ErrOrStderr(), "No node matches %s", args[1])
			}
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVar(&unique, "unique", false, "require exactly one match")
	return cmd
}
