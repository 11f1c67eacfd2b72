// ABOUTME: Bootstrap command for spark-sizing CLI
// ABOUTME: Renders EMR, Dataproc, or spark-defaults text with the recommended settings

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/markalston/spark-sizing-advisor/bootstrap"
	"github.com/markalston/spark-sizing-advisor/models"
	"github.com/spf13/cobra"
)

var (
	bootstrapNode    nodeFlags
	bootstrapCluster models.ClusterSpec
)

var bootstrapCmd = &cobra.Command{
	Use:       "bootstrap <provider>",
	Short:     "Render cluster bootstrap text with recommended settings",
	ValidArgs: bootstrap.Providers(),
	Args:      cobra.ExactArgs(1),
	Long: `Render the text needed to create or configure a cluster with the recommended
executor settings. The command is printed, never executed.

Providers:
  emr                 aws emr create-cluster script with a configurations file
  emr-configurations  EMR configurations JSON only
  dataproc            gcloud dataproc clusters create command
  spark-defaults      spark-defaults.conf lines

Example:
  spark-sizing bootstrap dataproc --cluster-name etl --region us-central1 \
    --zone us-central1-a --machine-type n1-standard-16 --gpu T4 --worker-count 4`,
	Run: func(cmd *cobra.Command, args []string) {
		node, err := bootstrapNode.shape()
		if err != nil {
			os.Exit(reportError(os.Stdout, err))
		}

		runAndExit(func(ctx context.Context, a advisor) int {
			return runBootstrap(ctx, a, os.Stdout, args[0], bootstrapRequest(node, bootstrapCluster, bootstrapNode.machineType))
		})
	},
}

func init() {
	rootCmd.AddCommand(bootstrapCmd)
	bootstrapNode.register(bootstrapCmd)

	f := bootstrapCmd.Flags()
	f.StringVar(&bootstrapCluster.ClusterName, "cluster-name", "", "Cluster name")
	f.StringVar(&bootstrapCluster.Region, "region", "", "Cloud region")
	f.StringVar(&bootstrapCluster.Zone, "zone", "", "Compute Engine zone (dataproc)")
	f.StringVar(&bootstrapCluster.MasterMachineType, "master-machine-type", "", "Master machine or instance type")
	f.StringVar(&bootstrapCluster.WorkerMachineType, "worker-machine-type", "", "Worker machine or instance type (default: --machine-type)")
	f.IntVar(&bootstrapCluster.WorkerCount, "worker-count", 2, "Number of workers")
	f.StringVar(&bootstrapCluster.ImageVersion, "image-version", "", "Dataproc image version (default "+bootstrap.DefaultImageVersion+")")
	f.StringVar(&bootstrapCluster.ReleaseLabel, "release-label", "", "EMR release label (default "+bootstrap.DefaultReleaseLabel+")")
}

// bootstrapRequest completes the cluster spec from the node: the worker
// machine type defaults to the node's and GPUs follow the node.
func bootstrapRequest(node models.NodeShape, cluster models.ClusterSpec, machineType string) models.BootstrapRequest {
	if cluster.WorkerMachineType == "" {
		cluster.WorkerMachineType = machineType
	}
	if cluster.MasterMachineType == "" {
		cluster.MasterMachineType = cluster.WorkerMachineType
	}
	if node.GPUEnabled() {
		cluster.GPUType = node.GPUName
		cluster.GPUCount = node.GPUCount
	}
	return models.BootstrapRequest{Cluster: cluster, Node: node}
}

// runBootstrap renders bootstrap text for provider and returns the exit code
func runBootstrap(ctx context.Context, a advisor, w io.Writer, provider string, req models.BootstrapRequest) int {
	if !slices.Contains(bootstrap.Providers(), provider) {
		return reportError(w, fmt.Errorf("%w: %s (expected one of %s)",
			bootstrap.ErrUnknownProvider, provider, strings.Join(bootstrap.Providers(), ", ")))
	}

	resp, err := a.Bootstrap(ctx, provider, req)
	if err != nil {
		return reportError(w, err)
	}

	if IsJSONOutput() {
		return writeJSON(w, resp)
	}
	fmt.Fprint(w, resp.Content)
	if !strings.HasSuffix(resp.Content, "\n") {
		fmt.Fprintln(w)
	}
	return exitOK
}
