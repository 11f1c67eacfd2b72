// ABOUTME: Inspect commands for spark-sizing CLI
// ABOUTME: Reads Dataproc or EMR describe output and reports GPU readiness and sizing

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/markalston/spark-sizing-advisor/internal/tui/report"
	"github.com/markalston/spark-sizing-advisor/models"
	"github.com/spf13/cobra"
)

var (
	inspectMachineTypeFile string
	inspectNvidiaSMIFile   string
	inspectGPUDeviceFile   string
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Inspect an existing cluster",
	Long: `Inspect describe output from an existing cluster: summarize the workers,
flag settings that block GPU acceleration, and recommend executor settings.

Pass "-" as the file to read from stdin.`,
}

var inspectDataprocCmd = &cobra.Command{
	Use:   "dataproc <file>",
	Short: "Inspect gcloud dataproc clusters describe output",
	Args:  cobra.ExactArgs(1),
	Long: `Inspect the YAML or JSON output of:
  gcloud dataproc clusters describe CLUSTER --region REGION

Optional refinements:
  --machine-type-file  output of gcloud compute machine-types describe
  --nvidia-smi         output of nvidia-smi --query-gpu=memory.total --format=csv,noheader
  --gpu-device         output of nvidia-smi --query-gpu=gpu_name --format=csv,noheader`,
	Run: func(cmd *cobra.Command, args []string) {
		runInspectCommand(cmd, "dataproc", args[0])
	},
}

var inspectEMRCmd = &cobra.Command{
	Use:   "emr <file>",
	Short: "Inspect aws emr describe-cluster output",
	Args:  cobra.ExactArgs(1),
	Long: `Inspect the JSON output of:
  aws emr describe-cluster --cluster-id ID`,
	Run: func(cmd *cobra.Command, args []string) {
		runInspectCommand(cmd, "emr", args[0])
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.AddCommand(inspectDataprocCmd, inspectEMRCmd)

	inspectDataprocCmd.Flags().StringVar(&inspectMachineTypeFile, "machine-type-file", "", "Machine type describe output")
	for _, c := range []*cobra.Command{inspectDataprocCmd, inspectEMRCmd} {
		c.Flags().StringVar(&inspectNvidiaSMIFile, "nvidia-smi", "", "nvidia-smi memory.total output")
		c.Flags().StringVar(&inspectGPUDeviceFile, "gpu-device", "", "nvidia-smi gpu_name output")
	}
}

func runInspectCommand(cmd *cobra.Command, provider, file string) {
	req, err := buildInspectRequest(cmd.InOrStdin(), file, inspectMachineTypeFile, inspectNvidiaSMIFile, inspectGPUDeviceFile)
	if err != nil {
		os.Exit(reportError(os.Stdout, err))
	}
	runAndExit(func(ctx context.Context, a advisor) int {
		return runInspect(ctx, a, os.Stdout, provider, req)
	})
}

// buildInspectRequest reads the describe output and optional refinements
func buildInspectRequest(stdin io.Reader, file, machineTypeFile, nvidiaSMIFile, gpuDeviceFile string) (models.InspectRequest, error) {
	var req models.InspectRequest
	var err error
	if req.Content, err = readInput(stdin, file); err != nil {
		return req, err
	}
	if req.MachineTypeDescription, err = readInput(stdin, machineTypeFile); err != nil {
		return req, err
	}
	if req.NvidiaSMIMemory, err = readInput(stdin, nvidiaSMIFile); err != nil {
		return req, err
	}
	if req.NvidiaSMIDevice, err = readInput(stdin, gpuDeviceFile); err != nil {
		return req, err
	}
	return req, nil
}

// readInput returns the contents of path; "-" reads stdin and "" reads nothing
func readInput(stdin io.Reader, path string) (string, error) {
	switch path {
	case "":
		return "", nil
	case "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	default:
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", path, err)
		}
		return string(data), nil
	}
}

// runInspect inspects the cluster and returns the exit code
func runInspect(ctx context.Context, a advisor, w io.Writer, provider string, req models.InspectRequest) int {
	if req.Content == "" {
		return reportError(w, &models.InvalidInputError{Field: "content", Reason: "describe output is empty"})
	}

	inspection, err := a.Inspect(ctx, provider, req)
	if err != nil {
		return reportError(w, err)
	}

	if IsJSONOutput() {
		return writeJSON(w, inspection)
	}
	fmt.Fprint(w, report.Inspection(inspection))
	return exitOK
}
