package cli

import (
	"os"

	"github.com/spf13/cobra"
)

// newCompletionCmd creates the completion command.
func (cli *CLI) newCompletionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for outlinectl.

To load completions:

Bash:
  $ source <(outlinectl completion bash)
  # To load completions for each session, execute once:
  # Linux:
  $ outlinectl completion bash > /etc/bash_completion.d/outlinectl
  # macOS:
  $ outlinectl completion bash > $(brew --prefix)/etc/bash_completion.d/outlinectl

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ outlinectl completion zsh > "${fpath[1]}/_outlinectl"
  # You may need to start a new shell for this to take effect.

Fish:
  $ outlinectl completion fish | source
  # To load completions for each session, execute once:
  $ outlinectl completion fish > ~/.config/fish/completions/outlinectl.fish

PowerShell:
  PS> outlinectl completion powershell | Out-String | Invoke-Expression
  # To load completions for every new session, run:
  PS> outlinectl completion powershell > outlinectl.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			}
			return nil
		},
	}
	return cmd
}
