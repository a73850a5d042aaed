package main

import (
	"github.com/spf13/cobra"
)

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion scripts",
	Long: `Generate shell completion scripts for gluemc.

Bash:
  $ source <(gluemc completion bash)
  # Permanently (Linux):
  $ gluemc completion bash > /etc/bash_completion.d/gluemc

Zsh:
  $ gluemc completion zsh > "${fpath[1]}/_gluemc"
  # Start a new shell for this to take effect.

Fish:
  $ gluemc completion fish > ~/.config/fish/completions/gluemc.fish

PowerShell:
  PS> gluemc completion powershell | Out-String | Invoke-Expression
`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	// Completion needs neither the config file nor a logger.
	PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		root := cmd.Root()
		out := cmd.OutOrStdout()

		switch args[0] {
		case "bash":
			return root.GenBashCompletionV2(out, true)
		case "zsh":
			return root.GenZshCompletion(out)
		case "fish":
			return root.GenFishCompletion(out, true)
		case "powershell":
			return root.GenPowerShellCompletionWithDesc(out)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(completionCmd)
}

// registerCompletions completes the flag values of cmd that have a fixed
// set of choices. Call it after the flags are defined.
func registerCompletions(cmd *cobra.Command) {
	typeNames := func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return ValidEventTypeNames(), cobra.ShellCompDirectiveNoFileComp
	}
	formats := func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{"jsonl", "pretty"}, cobra.ShellCompDirectiveNoFileComp
	}

	for name, fn := range map[string]cobra.CompletionFunc{
		"types":         typeNames,
		"exclude-types": typeNames,
		"format":        formats,
	} {
		if cmd.Flags().Lookup(name) != nil {
			_ = cmd.RegisterFlagCompletionFunc(name, fn)
		}
	}
	if cmd.Flags().Lookup("patterns") != nil {
		_ = cmd.MarkFlagFilename("patterns", "yaml", "yml")
	}
}
