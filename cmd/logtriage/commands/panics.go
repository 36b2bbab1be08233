package commands

import (
	"github.com/spf13/cobra"
)

var panicsFlags triageFlags

var panicsCmd = &cobra.Command{
	Use:   "panics",
	Short: "Scan a time window for panic lines",
	Long: `Queries the backend (or reads a local file) for lines containing
"panic" and classifies them against the mined pattern set. Backend queries
are retried on failure; panic hunts usually run over wide windows where a
transient query error should not abort the whole sweep.`,
	Run: func(cmd *cobra.Command, args []string) {
		err := setupLog(logLevelFlags)
		HandleError(err, "Failed to setup logging")

		cfg, err := panicsFlags.buildConfig(cmd)
		HandleError(err, "Invalid configuration")

		mode := triageMode{
			name:           "panics",
			appendedQuery:  "|= `panic`",
			prefilterTerms: []string{"panic"},
			retry:          true,
		}
		HandleError(runTriage(cfg, mode), "panics failed")
	},
}

func init() {
	panicsFlags.register(panicsCmd)
}
