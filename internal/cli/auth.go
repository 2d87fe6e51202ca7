package cli

import (
	"bufio"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/billmal071/cosmere/internal/auth"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store a bearer token for API requests",
	Long: `Store a bearer token that is sent with every API request.

Reads are public, so a token is only needed for servers that protect writes.
When the server rejects the token it is cleared and you are asked to log in
again.

Examples:
  cosmere login --token eyJhbGciOi...
  echo "$TOKEN" | cosmere login --token -`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the stored bearer token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := tokenStore().ClearToken(); err != nil {
			return fmt.Errorf("failed to clear token: %w", err)
		}
		Successf("Logged out")
		return nil
	},
}

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Inspect authentication state",
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether a token is stored and when it expires",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		token, err := tokenStore().Token()
		if err != nil {
			return fmt.Errorf("failed to read token: %w", err)
		}
		if token == "" {
			fmt.Fprintln(stdout, "Not logged in.")
			return nil
		}
		printTokenInfo(token, time.Now())
		return nil
	},
}

func init() {
	loginCmd.Flags().String("token", "", "bearer token (- to read from stdin)")
	_ = loginCmd.MarkFlagRequired("token")
	authCmd.AddCommand(authStatusCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	token := getString(cmd, "token")
	if token == "-" {
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("failed to read token: %w", err)
		}
		token = line
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("token is empty")
	}

	now := time.Now()
	if info := auth.Inspect(token); info.Expired(now) {
		return fmt.Errorf("token expired at %s", info.ExpiresAt.Local().Format(time.RFC1123))
	}

	if err := tokenStore().SetToken(token); err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}
	Successf("Logged in")
	printTokenInfo(token, now)
	return nil
}

func printTokenInfo(token string, now time.Time) {
	info := auth.Inspect(token)
	if !info.JWT {
		fmt.Fprintln(stdout, "Token: opaque (expiry unknown)")
		return
	}
	fmt.Fprintln(stdout, "Token: JWT")
	if info.Subject != "" {
		fmt.Fprintf(stdout, "Subject: %s\n", info.Subject)
	}
	switch {
	case info.ExpiresAt.IsZero():
		fmt.Fprintln(stdout, "Expires: never")
	case info.Expired(now):
		fmt.Fprintf(stdout, "Expired: %s\n", info.ExpiresAt.Local().Format(time.RFC1123))
	default:
		left := info.ExpiresAt.Sub(now).Round(time.Minute)
		fmt.Fprintf(stdout, "Expires: %s (in %s)\n", info.ExpiresAt.Local().Format(time.RFC1123), left)
		if left < time.Hour {
			fmt.Fprintln(stdout, "Warning: token expires within the hour")
		}
	}
}
