package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/billmal071/cosmere/internal/config"
	"github.com/billmal071/cosmere/internal/cosmere"
	"github.com/billmal071/cosmere/internal/tui"
)

var browseCmd = &cobra.Command{
	Use:   "browse [resource] [id]",
	Short: "Open the interactive browser",
	Long: `Open the interactive browser.

With a resource the browser starts on that list; with an id it opens the
entity directly. Press / to search, tab to switch lists, q to quit.

Examples:
  cosmere browse
  cosmere browse worlds
  cosmere browse characters kaladin
  cosmere browse --search kholin`,
	Args:              cobra.MaximumNArgs(2),
	ValidArgsFunction: completeBrowseArgs,
	RunE:              runBrowse,
}

func init() {
	addBrowseFlags(browseCmd)
}

func addBrowseFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("search", "s", "", "open the results page for a query")
}

// browseOptions builds the browser options from the loaded configuration.
func browseOptions(client cosmere.Client) tui.Options {
	cfg := config.Get()
	return tui.Options{
		Env: tui.Env{
			Client:   client,
			Logger:   logger,
			PageSize: cfg.API.PageSize,
			Markdown: cfg.UI.Markdown,
			Timeout:  cfg.API.Timeout,
		},
		Search: tui.SearchOptions{
			Debounce:    cfg.Search.Debounce,
			MinChars:    cfg.Search.MinChars,
			Suggestions: cfg.Search.Suggestions,
			Size:        cosmere.DefaultSearchSize,
		},
		Mouse: cfg.UI.Mouse,
	}
}

func runBrowse(cmd *cobra.Command, args []string) error {
	opts := browseOptions(newClient())
	if len(args) > 0 {
		r, err := cosmere.ParseResource(args[0])
		if err != nil {
			return err
		}
		opts.StartResource = r
	}
	if len(args) > 1 {
		opts.StartID = args[1]
	}
	opts.StartQuery = getString(cmd, "search")

	logger.Info("starting browser",
		zap.String("api", config.Get().API.BaseURL),
		zap.String("resource", string(opts.StartResource)),
		zap.String("id", opts.StartID))
	return tui.Run(opts)
}

// getString safely gets a string flag value
func getString(cmd *cobra.Command, name string) string {
	val, _ := cmd.Flags().GetString(name)
	return val
}
