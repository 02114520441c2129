package cli

import (
	"github.com/spf13/cobra"

	"github.com/nuxeo/ant-assembly-maven-plugin-sub000/pkg/report"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for artgraph.

Bash:
  $ source <(artgraph completion bash)

Zsh:
  $ artgraph completion zsh > "${fpath[1]}/_artgraph"

Fish:
  $ artgraph completion fish > ~/.config/fish/completions/artgraph.fish

PowerShell:
  PS> artgraph completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
}

// completeFormats completes --format values.
func completeFormats(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return report.Formats(), cobra.ShellCompDirectiveNoFileComp
}

// completeScopes completes --scopes values.
func completeScopes(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return []string{"compile", "runtime", "provided", "test", "system"}, cobra.ShellCompDirectiveNoFileComp
}
