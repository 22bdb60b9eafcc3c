package app

import (
	"os"

	"github.com/spf13/cobra"
)

// newCompletionsCmd implements `sg completions SHELL` (spec.md §6),
// delegating to cobra's built-in shell-completion generator.
func newCompletionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:       "completions [bash|zsh|fish|powershell]",
		Short:     "Generate a shell completion script",
		Args:      cobra.ExactValidArgs(1),
		ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
		RunE: func(cmd *cobra.Command, args []string) error {
			root := cmd.Root()
			switch args[0] {
			case "bash":
				return root.GenBashCompletion(os.Stdout)
			case "zsh":
				return root.GenZshCompletion(os.Stdout)
			case "fish":
				return root.GenFishCompletion(os.Stdout, true)
			case "powershell":
				return root.GenPowerShellCompletion(os.Stdout)
			default:
				return withExit(ExitInsufficientArgs)
			}
		},
	}
	return cmd
}
