package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yug-shah0106/accordo-engine/internal/infrastructure/config"
)

var (
	// Global flags
	configPath string
	verbose    bool
)

// NewRootCommand creates the root command for the CLI
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "accordo",
		Short: "Accordo - automated procurement negotiation engine",
		Long: `Accordo negotiates B2B procurement deals on the buyer's behalf.

Examples:
  accordo deal create --title "Server racks Q3" --vendor <id> --buyer <id> --products products.json
  accordo message send --deal <id> --text "We can do $1,100 on Net 60"
  accordo deal show --deal <id>
  accordo deal transcript --deal <id>
  accordo deal resume --deal <id>`,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Path to config file (default: config.yaml in ., ./configs, /etc/accordo)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable verbose output")

	rootCmd.AddCommand(NewDealCommand())
	rootCmd.AddCommand(NewMessageCommand())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// loadApp builds the application container for a command invocation
func loadApp() (*App, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	return NewApp(cfg)
}
