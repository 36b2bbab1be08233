package commands

import (
	"github.com/spf13/cobra"
)

var warnErrFlags triageFlags

var warnErrCmd = &cobra.Command{
	Use:   "warn-err",
	Short: "Rank warning/error message families over a time window",
	Long: `Mines warning/error call sites from the configured source branch,
queries the backend (or reads a local file) for the window, and prints a
ranked table of message families with per-family dedup buckets.`,
	Run: func(cmd *cobra.Command, args []string) {
		err := setupLog(logLevelFlags)
		HandleError(err, "Failed to setup logging")

		cfg, err := warnErrFlags.buildConfig(cmd)
		HandleError(err, "Invalid configuration")

		mode := triageMode{
			name:           "warn-err",
			levels:         []string{"WARN", "ERROR"},
			prefilterTerms: []string{"WARN", "ERROR"},
		}
		HandleError(runTriage(cfg, mode), "warn-err failed")
	},
}

func init() {
	warnErrFlags.register(warnErrCmd)
}
