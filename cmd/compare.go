// ABOUTME: Compare command for spark-sizing CLI
// ABOUTME: Sizes several node shapes side by side, optionally in a TUI table

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/markalston/spark-sizing-advisor/internal/tui/compare"
	"github.com/markalston/spark-sizing-advisor/internal/tui/report"
	"github.com/markalston/spark-sizing-advisor/models"
	"github.com/spf13/cobra"
)

var (
	compareNodes []string
	compareFile  string
	compareTUI   bool
)

var compareCmd = &cobra.Command{
	Use:   "compare [machine-type...]",
	Short: "Compare recommendations across node shapes",
	Long: `Compare executor recommendations for several node shapes.

Nodes come from machine type arguments, repeated --node specs, and a YAML or
JSON file with a top-level "nodes" list. Nodes that cannot be sized are
reported in place; the rest are still compared.

Example:
  spark-sizing compare n1-standard-8 n1-standard-16 g4dn.4xlarge
  spark-sizing compare --node name=big,cores=32,memory=262144,gpu=A100 --tui`,
	Run: func(cmd *cobra.Command, args []string) {
		nodes, err := collectNodes(args, compareNodes, compareFile)
		if err != nil {
			os.Exit(reportError(os.Stdout, err))
		}

		runAndExit(func(ctx context.Context, a advisor) int {
			if compareTUI && !IsJSONOutput() {
				results, err := a.RecommendBatch(ctx, nodes)
				if err != nil {
					return reportError(os.Stdout, err)
				}
				if err := compare.Run(results); err != nil {
					return reportError(os.Stdout, err)
				}
				return exitOK
			}
			return runCompare(ctx, a, os.Stdout, nodes)
		})
	},
}

func init() {
	rootCmd.AddCommand(compareCmd)
	compareCmd.Flags().StringArrayVar(&compareNodes, "node", nil, "Node spec key=value list (name, machine-type, cores, memory, gpu, gpu-memory, gpu-count); repeatable")
	compareCmd.Flags().StringVarP(&compareFile, "file", "f", "", "YAML or JSON file with a nodes list")
	compareCmd.Flags().BoolVar(&compareTUI, "tui", false, "Open an interactive comparison table")
}

// collectNodes gathers nodes from machine types, inline specs, and a file, in that order
func collectNodes(machineTypes, specs []string, file string) ([]models.NodeShape, error) {
	var nodes []models.NodeShape
	for _, mt := range machineTypes {
		node, err := resolveMachineType(mt)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}
	for _, spec := range specs {
		node, err := parseNodeSpec(spec)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}
	if file != "" {
		fromFile, err := readNodesFile(file)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, fromFile...)
	}
	if len(nodes) == 0 {
		return nil, &models.InvalidInputError{Field: "nodes", Reason: "give machine types, --node, or --file"}
	}
	return nodes, nil
}

// runCompare sizes every node and prints a table
func runCompare(ctx context.Context, a advisor, w io.Writer, nodes []models.NodeShape) int {
	results, err := a.RecommendBatch(ctx, nodes)
	if err != nil {
		return reportError(w, err)
	}

	if IsJSONOutput() {
		return writeJSON(w, models.BatchRecommendResponse{Results: results})
	}
	fmt.Fprint(w, report.Batch(results))
	return exitOK
}
