package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/billmal071/cosmere/internal/cosmere"
	"github.com/billmal071/cosmere/internal/tui"
)

// searchPageStep is how many more results each "load more" asks for.
const searchPageStep = 20

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search across all resources",
	Long: `Search characters, books, worlds, magic systems, series and shards at once.

By default, shows an interactive selector to choose from the results.
Use -o/--open to open the chosen entity in the browser.

Examples:
  cosmere search kholin
  cosmere search -n 5 "shattered plains"
  cosmere search --no-interactive allomancy
  cosmere search -o hoid`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntP("size", "n", cosmere.DefaultSearchSize, "number of results to request")
	searchCmd.Flags().Bool("no-interactive", false, "disable interactive mode, just print results")
	searchCmd.Flags().BoolP("open", "o", false, "open the selected entity in the browser")
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := strings.TrimSpace(strings.Join(args, " "))
	if query == "" {
		return fmt.Errorf("search query is empty")
	}
	size, _ := cmd.Flags().GetInt("size")
	noInteractive := getBool(cmd, "no-interactive")
	open := getBool(cmd, "open")

	Printf("Searching for: %s\n", query)

	client := newClient()
	results, err := client.GlobalSearch(cmd.Context(), query, size)
	if err != nil {
		return fmt.Errorf("search failed: %s", cosmere.UserMessage(err, "search"))
	}

	if len(results) == 0 {
		fmt.Fprintf(stdout, "No results for %q.\n", query)
		return nil
	}

	Printf("Found %d result(s)\n\n", len(results))

	if noInteractive {
		printResults(results)
		return nil
	}

	// The API has no offset, so each page asks for a larger result set and
	// the selector keeps the entries it has not seen.
	loadMore := func() ([]cosmere.SearchResult, error) {
		size += searchPageStep
		return client.GlobalSearch(cmd.Context(), query, size)
	}

	selected, err := tui.RunSelectorWithLoadMore(results, loadMore)
	if err != nil {
		return fmt.Errorf("selection failed: %w", err)
	}
	if selected == nil {
		return nil // User cancelled
	}

	r, err := cosmere.ParseResource(selected.Type)
	if err != nil {
		return fmt.Errorf("cannot open %s results: %w", selected.Type, err)
	}

	if open {
		opts := browseOptions(client)
		opts.StartResource = r
		opts.StartID = selected.ID
		logger.Info("opening search result", zap.String("resource", string(r)), zap.String("id", selected.ID))
		return tui.Run(opts)
	}

	fmt.Fprintln(stdout)
	fmt.Fprintf(stdout, "Selected: %s (%s)\n", selected.Name, r.Singular())
	fmt.Fprintf(stdout, "ID: %s\n", selected.ID)
	fmt.Fprintf(stdout, "\nTo view, run:\n")
	fmt.Fprintf(stdout, "  cosmere %s get %s\n", r, selected.ID)
	return nil
}

// printResults prints results in a simple format
func printResults(results []cosmere.SearchResult) {
	for i, r := range results {
		fmt.Fprintf(stdout, "%d. %s\n", i+1, r.Name)
		fmt.Fprintf(stdout, "   Type: %s", r.Type)
		if r.Score > 0 {
			fmt.Fprintf(stdout, " | Score: %.2f", r.Score)
		}
		fmt.Fprintln(stdout)
		if r.Description != "" {
			fmt.Fprintf(stdout, "   %s\n", cosmere.Truncate(r.Description, 100))
		}
		fmt.Fprintf(stdout, "   ID: %s\n", r.ID)
		fmt.Fprintln(stdout)
	}
}
