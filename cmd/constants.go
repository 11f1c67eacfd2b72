// ABOUTME: Constants command for spark-sizing CLI
// ABOUTME: Prints the effective sizing constants and where they came from

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/markalston/spark-sizing-advisor/internal/tui/report"
	"github.com/spf13/cobra"
)

var constantsCmd = &cobra.Command{
	Use:   "constants",
	Short: "Show the effective sizing constants",
	Run: func(cmd *cobra.Command, args []string) {
		runAndExit(func(ctx context.Context, a advisor) int {
			return runConstants(ctx, a, os.Stdout)
		})
	},
}

func init() {
	rootCmd.AddCommand(constantsCmd)
}

// runConstants prints the constants and returns the exit code
func runConstants(ctx context.Context, a advisor, w io.Writer) int {
	health, err := a.Health(ctx)
	if err != nil {
		return reportError(w, err)
	}
	constants, err := a.Constants(ctx)
	if err != nil {
		return reportError(w, err)
	}

	if IsJSONOutput() {
		return writeJSON(w, map[string]any{
			"source":       health.ConstantsSource,
			"spark_config": constants,
		})
	}
	fmt.Fprint(w, report.Constants(constants, health.ConstantsSource))
	return exitOK
}
