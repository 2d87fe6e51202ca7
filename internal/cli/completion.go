package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/billmal071/cosmere/internal/config"
	"github.com/billmal071/cosmere/internal/cosmere"
	"github.com/billmal071/cosmere/internal/tui"
)

// completionLimit caps how many entities an id completion fetches.
const completionLimit = 50

type completeFunc func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective)

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion scripts",
	Long: `Generate shell completion scripts for cosmere.

Entity ids complete from the API, so completion needs the server to be
reachable.

To load completions:

Bash:
  $ source <(cosmere completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ cosmere completion bash > /etc/bash_completion.d/cosmere
  # macOS:
  $ cosmere completion bash > /usr/local/etc/bash_completion.d/cosmere

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it.  You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ cosmere completion zsh > "${fpath[1]}/_cosmere"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ cosmere completion fish | source

  # To load completions for each session, execute once:
  $ cosmere completion fish > ~/.config/fish/completions/cosmere.fish

PowerShell:
  PS> cosmere completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> cosmere completion powershell > cosmere.ps1
  # and source this file from your PowerShell profile.`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletion(stdout)
		case "zsh":
			return rootCmd.GenZshCompletion(stdout)
		case "fish":
			return rootCmd.GenFishCompletion(stdout, true)
		case "powershell":
			return rootCmd.GenPowerShellCompletionWithDesc(stdout)
		default:
			return fmt.Errorf("unsupported shell: %s", args[0])
		}
	},
}

// completeBrowseArgs completes "browse [resource] [id]".
func completeBrowseArgs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	switch len(args) {
	case 0:
		var out []string
		for _, r := range cosmere.Resources {
			out = append(out, fmt.Sprintf("%s\t%s", r, r.Title()))
		}
		return out, cobra.ShellCompDirectiveNoFileComp
	case 1:
		r, err := cosmere.ParseResource(args[0])
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		return entityIDs(cmd.Context(), r, toComplete)
	}
	return nil, cobra.ShellCompDirectiveNoFileComp
}

// completeIDs completes the single id argument of a resource subcommand.
func completeIDs(r cosmere.Resource) completeFunc {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) > 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		return entityIDs(cmd.Context(), r, toComplete)
	}
}

// completeFilters completes --filter keys of r as "key=".
func completeFilters(r cosmere.Resource) completeFunc {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if strings.Contains(toComplete, "=") {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		var out []string
		for _, k := range r.FilterKeys() {
			if strings.HasPrefix(k, toComplete) {
				out = append(out, k+"=")
			}
		}
		return out, cobra.ShellCompDirectiveNoFileComp | cobra.ShellCompDirectiveNoSpace
	}
}

func completeConfigKeys(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return config.Keys(), cobra.ShellCompDirectiveNoFileComp
}

func entityIDs(ctx context.Context, r cosmere.Resource, prefix string) ([]string, cobra.ShellCompDirective) {
	if ctx == nil {
		ctx = context.Background()
	}
	client := newClient()
	switch r {
	case cosmere.Characters:
		return idCompletions(ctx, client, tui.CharacterKind, prefix)
	case cosmere.Books:
		return idCompletions(ctx, client, tui.BookKind, prefix)
	case cosmere.Worlds:
		return idCompletions(ctx, client, tui.WorldKind, prefix)
	case cosmere.MagicSystems:
		return idCompletions(ctx, client, tui.MagicSystemKind, prefix)
	case cosmere.SeriesList:
		return idCompletions(ctx, client, tui.SeriesKind, prefix)
	case cosmere.Shards:
		return idCompletions(ctx, client, tui.ShardKind, prefix)
	}
	return nil, cobra.ShellCompDirectiveError
}

// idCompletions provides dynamic completion for entity ids
func idCompletions[T cosmere.Entity](ctx context.Context, client cosmere.Client, kind tui.Kind[T], prefix string) ([]string, cobra.ShellCompDirective) {
	page, err := kind.List(client, ctx, cosmere.ListOptions{Limit: completionLimit})
	if err != nil || page == nil {
		return nil, cobra.ShellCompDirectiveError
	}

	var completions []string
	for _, e := range page.Items {
		if !strings.HasPrefix(e.EntityID(), prefix) {
			continue
		}
		// Format: "id\tName"
		completions = append(completions, fmt.Sprintf("%s\t%s", e.EntityID(), cosmere.Truncate(e.DisplayName(), 40)))
	}
	return completions, cobra.ShellCompDirectiveNoFileComp
}
