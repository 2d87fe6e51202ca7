package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/billmal071/cosmere/internal/cosmere"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the API is reachable",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newClient()
		start := time.Now()
		h, err := client.Health(cmd.Context())
		if err != nil {
			return fmt.Errorf("%s (%s)", cosmere.UserMessage(err, "reach the API"), client.BaseURL())
		}
		if getBool(cmd, "json") {
			return printJSON(h)
		}

		fmt.Fprintf(stdout, "API:     %s\n", client.BaseURL())
		fmt.Fprintf(stdout, "Status:  %s\n", h.Status)
		if h.Service != "" {
			fmt.Fprintf(stdout, "Service: %s\n", h.Service)
		}
		if h.Version != "" {
			fmt.Fprintf(stdout, "Version: %s\n", h.Version)
		}
		fmt.Fprintf(stdout, "Latency: %s\n", time.Since(start).Round(time.Millisecond))
		return nil
	},
}

func init() {
	healthCmd.Flags().Bool("json", false, "print the raw response as JSON")
}
