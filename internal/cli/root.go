package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/billmal071/cosmere/internal/auth"
	"github.com/billmal071/cosmere/internal/config"
	"github.com/billmal071/cosmere/internal/cosmere"
	"github.com/billmal071/cosmere/internal/db"
	"github.com/billmal071/cosmere/internal/logging"
)

var (
	cfgFile string
	verbose bool

	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
	logger           = logging.Nop()
)

var rootCmd = &cobra.Command{
	Use:   "cosmere",
	Short: "Browse the Cosmere reference API from the terminal",
	Long: `cosmere is a terminal browser for the Cosmere reference API.

Run without arguments to open the interactive browser. Subcommands expose
the same API for scripting.

Examples:
  cosmere                                  Open the browser
  cosmere browse books                     Open the browser on the books list
  cosmere search kholin                    Search everything, pick a result
  cosmere characters list --filter status=alive
  cosmere books get way-of-kings
  cosmere characters create -f vin.json
  cosmere login --token eyJhbGciOi...`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
	RunE: runBrowse,
}

// persistentPreRunE loads config, the database and logging before any command.
// It is attached in init because it refers back to rootCmd via interactive.
func persistentPreRunE(cmd *cobra.Command, args []string) error {
	stdout = cmd.OutOrStdout()
	stderr = cmd.ErrOrStderr()

	// Initialize config
	if err := config.Init(cfgFile); err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}

	// Initialize database
	if err := db.Init(); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	// The browser owns the terminal, so it logs to the file.
	opts := logging.Options{Level: config.Get().Log.Level, Verbose: verbose}
	if interactive(cmd) {
		opts.File = config.Get().Log.File
	}
	l, err := logging.New(opts)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	logger = l
	return nil
}

// Execute runs the root command
func Execute() error {
	defer db.Close()
	err := rootCmd.Execute()
	if err != nil {
		Errorf("%v", err)
	}
	return err
}

func init() {
	rootCmd.PersistentPreRunE = persistentPreRunE
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default $HOME/.config/cosmere/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	addBrowseFlags(rootCmd)

	// Add subcommands
	rootCmd.AddCommand(browseCmd)
	rootCmd.AddCommand(searchCmd)
	for _, c := range resourceCmds() {
		rootCmd.AddCommand(c)
	}
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(authCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(completionCmd)
	rootCmd.AddCommand(versionCmd)
}

// interactive reports whether cmd takes over the terminal.
func interactive(cmd *cobra.Command) bool {
	if cmd == rootCmd || cmd == browseCmd {
		return true
	}
	if f := cmd.Flags().Lookup("pick"); f != nil && f.Value.String() == "true" {
		return true
	}
	if cmd == searchCmd {
		noInteractive, _ := cmd.Flags().GetBool("no-interactive")
		return !noInteractive
	}
	return false
}

// tokenStore is the persisted bearer token.
func tokenStore() auth.Store {
	return auth.NewLocalStore()
}

// newClient builds the API client from the loaded configuration.
func newClient() *cosmere.HTTPClient {
	return cosmere.NewClient(config.Get(), tokenStore(), logger)
}

// Verbose returns whether verbose mode is enabled
func Verbose() bool {
	return verbose
}

// Printf prints if verbose mode is enabled
func Printf(format string, args ...interface{}) {
	if verbose {
		fmt.Fprintf(stdout, format, args...)
	}
}

// Errorf prints an error message to stderr
func Errorf(format string, args ...interface{}) {
	fmt.Fprintf(stderr, "Error: "+format+"\n", args...)
}

// Successf prints a success message
func Successf(format string, args ...interface{}) {
	fmt.Fprintf(stdout, "✓ "+format+"\n", args...)
}
