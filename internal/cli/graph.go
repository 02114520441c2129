package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/nuxeo/ant-assembly-maven-plugin-sub000/pkg/errors"
	"github.com/nuxeo/ant-assembly-maven-plugin-sub000/pkg/graph"
	"github.com/nuxeo/ant-assembly-maven-plugin-sub000/pkg/render/dot"
)

// graphCommand creates the graph export command.
func (c *CLI) graphCommand() *cobra.Command {
	var (
		flags    resolveFlags
		svg      bool
		asJSON   bool
		detailed bool
		lr       bool
		output   string
	)
	cmd := &cobra.Command{
		Use:   "graph <coordinate|pom.xml>",
		Short: "Export the dependency graph as DOT, SVG or JSON",
		Long: `Export the resolved graph. DOT is written by default; --svg renders it with
the embedded Graphviz and --json writes nodes, edges and statistics.`,
		Example: `  artgraph graph org.nuxeo:nuxeo-core:2023.1 --depth 2 > core.dot
  artgraph graph ./pom.xml --svg -o deps.svg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if svg && asJSON {
				return errors.New(errors.ErrCodeInvalidInput, "--svg and --json are exclusive")
			}
			g, err := c.buildGraph(cmd, &flags, args[0])
			if err != nil {
				return err
			}
			printStats(cmd.ErrOrStderr(), g.Stats())

			return writeOutput(cmd, output, func(w io.Writer) error {
				return exportGraph(cmd, w, g, svg, asJSON, dot.Options{Detailed: detailed, LeftToRight: lr})
			})
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVar(&svg, "svg", false, "render SVG")
	cmd.Flags().BoolVar(&asJSON, "json", false, "write JSON")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "add mediation notes to node labels")
	cmd.Flags().BoolVar(&lr, "lr", false, "lay out left to right")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")
	return cmd
}

func exportGraph(cmd *cobra.Command, w io.Writer, g *graph.Graph, svg, asJSON bool, opts dot.Options) error {
	switch {
	case asJSON:
		return graph.WriteJSON(g, w)
	case svg:
		data, err := dot.RenderSVG(cmd.Context(), dot.ToDOT(g, opts))
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	}
	_, err := io.WriteString(w, dot.ToDOT(g, opts))
	return err
}
