package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ayhangulbjk/ebs-insight/cmd/router/commands"
	"github.com/ayhangulbjk/ebs-insight/pkg/observability/logging"
)

var (
	// Version information (set by build flags)
	version   = "dev"
	gitCommit = "unknown"
)

func main() {
	if _, err := logging.InitLoggerFromEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
	}
	defer logging.Sync()

	rootCmd := &cobra.Command{
		Use:   "ebs-router",
		Short: "EBS Insight query-to-action routing engine",
		Long: `ebs-router classifies free-text EBS diagnostic requests (Turkish or
English) and routes actionable ones to a pre-registered control with a fully
reproducible scoring justification.

Common workflows:
  ebs-router validate                          # Validate the control catalog
  ebs-router classify "merhaba"                # Classify a prompt
  ebs-router route "concurrent manager durumu" # Full routing decision
  ebs-router repl                              # Interactive session with hot reload`,
		Version: fmt.Sprintf("%s (commit: %s)", version, gitCommit),
	}

	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to configuration file")
	rootCmd.PersistentFlags().String("catalog", "", "Path to the control catalog directory (overrides config)")

	rootCmd.AddCommand(commands.NewValidateCmd())
	rootCmd.AddCommand(commands.NewClassifyCmd())
	rootCmd.AddCommand(commands.NewRouteCmd())
	rootCmd.AddCommand(commands.NewReplCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
