package cli

import (
	"bufio"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/nuxeo/ant-assembly-maven-plugin-sub000/pkg/errors"
	"github.com/nuxeo/ant-assembly-maven-plugin-sub000/pkg/graph"
	"github.com/nuxeo/ant-assembly-maven-plugin-sub000/pkg/report"
)

type reportFlags struct {
	resolveFlags
	format string
	scopes []string
	output string
}

func (f *reportFlags) register(cmd *cobra.Command) {
	f.resolveFlags.register(cmd)
	fl := cmd.Flags()
	fl.StringVar(&f.format, "format", "gav", "line format: gav or kv_f_gav")
	fl.StringSliceVar(&f.scopes, "scopes", nil, "only walk these scopes (comma-separated)")
	fl.StringVarP(&f.output, "output", "o", "", "write to file instead of stdout")
	cmd.RegisterFlagCompletionFunc("format", completeFormats)
	cmd.RegisterFlagCompletionFunc("scopes", completeScopes)
}

func (f *reportFlags) options() (report.Options, error) {
	format, err := report.ParseFormat(f.format)
	if err != nil {
		return report.Options{}, err
	}
	return report.Options{Format: format, Scopes: f.scopes}, nil
}

type printer func(io.Writer, *graph.Graph, []*graph.Node, report.Options) error

// treeCommand creates the tree command.
func (c *CLI) treeCommand() *cobra.Command {
	var flags reportFlags
	cmd := &cobra.Command{
		Use:   "tree <coordinate|pom.xml>",
		Short: "Print the dependency tree",
		Long: `Print every dependency encounter indented by depth, annotated with
optional flags, managed versions and scopes, and version conflicts.`,
		Example: `  artgraph tree org.nuxeo.ecm.core:nuxeo-core:2023.1
  artgraph tree ./pom.xml -i 'org.nuxeo*' --depth 2`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runReport(cmd, &flags, args[0], report.WriteTree)
		},
	}
	flags.register(cmd)
	return cmd
}

// listCommand creates the list command.
func (c *CLI) listCommand() *cobra.Command {
	var flags reportFlags
	cmd := &cobra.Command{
		Use:   "list <coordinate|pom.xml>",
		Short: "Print the sorted set of dependencies",
		Long: `Print each distinct dependency once, sorted. The root, pom artifacts and
versions that lost conflict mediation are left out.`,
		Example: `  artgraph list org.nuxeo.ecm.core:nuxeo-core:2023.1 --format kv_f_gav
  artgraph list ./pom.xml -x 'org.slf4j' -o deps.txt`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runReport(cmd, &flags, args[0], report.WriteFlat)
		},
	}
	flags.register(cmd)
	return cmd
}

func (c *CLI) runReport(cmd *cobra.Command, flags *reportFlags, root string, print printer) error {
	opts, err := flags.options()
	if err != nil {
		return err
	}
	g, err := c.buildGraph(cmd, &flags.resolveFlags, root)
	if err != nil {
		return err
	}
	return writeOutput(cmd, flags.output, func(w io.Writer) error {
		return print(w, g, nil, opts)
	})
}

// writeOutput runs write against the output file, or stdout when path is
// empty.
func writeOutput(cmd *cobra.Command, path string, write func(io.Writer) error) error {
	if path == "" {
		return write(cmd.OutOrStdout())
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "create %s", path)
	}
	bw := bufio.NewWriter(f)
	if err := write(bw); err != nil {
		f.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	printSuccess(cmd.ErrOrStderr(), "Wrote report")
	printFile(cmd.ErrOrStderr(), path)
	return nil
}
