// Command automate diagnoses vehicle damage from photos.
package main

import (
	"os"

	"github.com/kamilpajak/automate/internal/logging"
	"github.com/spf13/cobra"
)

var logLevel string

var rootCmd = &cobra.Command{
	Use:   "automate",
	Short: "Vehicle damage diagnosis from photos",
	Long: `AutoMate labels vehicle photos with a vision provider and turns the labels
into a damage report with a severity and an estimated repair cost range.

Without a configured provider it still produces a basic report from the
damage description.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return logging.Setup(logLevel, "text", os.Stderr)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if rootCmd.Execute() != nil {
		os.Exit(1)
	}
}
