// ABOUTME: Health command for spark-sizing CLI
// ABOUTME: Checks backend connectivity or local configuration

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/markalston/spark-sizing-advisor/models"
	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check backend connectivity",
	Long:  `Check connectivity to the sizing backend (or, without --api-url, that local configuration loads).`,
	Run: func(cmd *cobra.Command, args []string) {
		runAndExit(func(ctx context.Context, a advisor) int {
			return runHealth(ctx, a, os.Stdout)
		})
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}

// runHealth executes the health check and returns exit code
func runHealth(ctx context.Context, a advisor, w io.Writer) int {
	resp, err := a.Health(ctx)
	if err != nil {
		return reportError(w, err)
	}

	if IsJSONOutput() {
		return writeJSON(w, map[string]any{
			"backend":            backendLabel(),
			"status":             resp.Status,
			"constants_source":   resp.ConstantsSource,
			"vsphere_configured": resp.VSphereConfigured,
		})
	}
	fmt.Fprintln(w, formatHealthHuman(backendLabel(), resp))
	return exitOK
}

func backendLabel() string {
	if url := GetAPIURL(); url != "" {
		return url
	}
	return "local"
}

// formatHealthHuman formats health response for human readability
func formatHealthHuman(backend string, resp *models.HealthResponse) string {
	return fmt.Sprintf(`Backend:    %s
Status:     %s
Constants:  %s
vSphere:    %t`, backend, resp.Status, resp.ConstantsSource, resp.VSphereConfigured)
}
