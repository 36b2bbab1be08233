package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/parity-tools/logtriage/internal/warptime"
)

var warpTimeFile string

var warpTimeCmd = &cobra.Command{
	Use:   "warp-time",
	Short: "Measure warp-sync phase durations from a node log file",
	Run: func(cmd *cobra.Command, args []string) {
		err := setupLog(logLevelFlags)
		HandleError(err, "Failed to setup logging")

		report, err := warptime.FromFile(warpTimeFile)
		HandleError(err, "warp-time failed")

		HandleError(report.Print(os.Stdout), "warp-time failed")
	},
}

func init() {
	warpTimeCmd.Flags().StringVar(&warpTimeFile, "file", "", "Node log file to analyze")
	if err := warpTimeCmd.MarkFlagRequired("file"); err != nil {
		panic(err)
	}
}
