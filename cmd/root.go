package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/macrostudio/macrod/internal/config"
	"github.com/macrostudio/macrod/internal/logging"
)

var (
	jsonOutput bool
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "macrod",
	Short: "Headless desktop macro runner",
	Long:  "macrod — validate, describe, and run JSON mouse/keyboard macros with image-based waits.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := logging.ParseLevel(config.Load(config.Path()).LogLevel)
		if verbose {
			level = logging.LevelDebug
		}
		logging.SetLevel(level)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output raw JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
