package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/nuxeo/ant-assembly-maven-plugin-sub000/pkg/version"
)

// versionCommand groups the version ordering tools.
func (c *CLI) versionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Parse, compare and sort version strings",
	}
	cmd.AddCommand(c.versionCompareCommand())
	cmd.AddCommand(c.versionSortCommand())
	cmd.AddCommand(c.versionParseCommand())
	return cmd
}

func (c *CLI) versionCompareCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "compare <a> <b>",
		Short:   "Print how two versions order",
		Example: "  artgraph version compare 5.6-RC1 5.6   # 5.6-RC1 < 5.6",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := version.CompareStrings(args[0], args[1])
			if err != nil {
				return err
			}
			op := "="
			switch {
			case r < 0:
				op = "<"
			case r > 0:
				op = ">"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", args[0], op, args[1])
			return nil
		},
	}
}

func (c *CLI) versionSortCommand() *cobra.Command {
	var reverse bool
	cmd := &cobra.Command{
		Use:   "sort <version>...",
		Short: "Print versions in ascending order",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			vs := make([]version.Version, len(args))
			for i, s := range args {
				v, err := version.Parse(s)
				if err != nil {
					return err
				}
				vs[i] = v
			}
			version.Sort(vs)
			out := cmd.OutOrStdout()
			for i := range vs {
				v := vs[i]
				if reverse {
					v = vs[len(vs)-1-i]
				}
				fmt.Fprintln(out, v.Original())
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&reverse, "reverse", "r", false, "descending order")
	return cmd
}

func (c *CLI) versionParseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "parse <version>",
		Short: "Print the parsed fields of a version",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := version.Parse(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			printKeyValue(out, "major", strconv.Itoa(v.Major))
			printKeyValue(out, "minor", strconv.Itoa(v.Minor))
			printKeyValue(out, "patch", strconv.Itoa(v.Patch))
			printKeyValue(out, "classifier", v.Classifier)
			printKeyValue(out, "snapshot", strconv.FormatBool(v.Snapshot))
			printKeyValue(out, "special", strconv.FormatBool(v.Special()))
			return nil
		},
	}
}
