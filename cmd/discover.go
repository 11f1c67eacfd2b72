// ABOUTME: Discover command for spark-sizing CLI
// ABOUTME: Lists on-prem vSphere hosts as worker shapes with a recommendation each

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/markalston/spark-sizing-advisor/internal/tui/report"
	"github.com/spf13/cobra"
)

var discoverRefresh bool

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Discover worker nodes from infrastructure",
}

var discoverVSphereCmd = &cobra.Command{
	Use:   "vsphere",
	Short: "Discover ESXi hosts through vCenter",
	Long: `Discover powered-on ESXi hosts that are not in maintenance mode and size
executors for each one.

Locally this reads VSPHERE_HOST, VSPHERE_USERNAME, VSPHERE_PASSWORD,
VSPHERE_DATACENTER, VSPHERE_INSECURE and VSPHERE_ALL_PROXY. With --api-url the
backend's vSphere configuration and cache are used.`,
	Run: func(cmd *cobra.Command, args []string) {
		runAndExit(func(ctx context.Context, a advisor) int {
			return runDiscover(ctx, a, os.Stdout, discoverRefresh)
		})
	},
}

func init() {
	rootCmd.AddCommand(discoverCmd)
	discoverCmd.AddCommand(discoverVSphereCmd)
	discoverVSphereCmd.Flags().BoolVar(&discoverRefresh, "refresh", false, "Bypass the backend cache")
}

// runDiscover discovers hosts and returns the exit code
func runDiscover(ctx context.Context, a advisor, w io.Writer, refresh bool) int {
	infra, err := a.VSphereInfrastructure(ctx, refresh)
	if err != nil {
		return reportError(w, err)
	}

	if IsJSONOutput() {
		return writeJSON(w, infra)
	}
	fmt.Fprint(w, report.Infrastructure(infra))
	return exitOK
}
