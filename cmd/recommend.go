// ABOUTME: Recommend command for spark-sizing CLI
// ABOUTME: Sizes executors for one node from flags or the interactive wizard

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/markalston/spark-sizing-advisor/internal/tui/report"
	"github.com/markalston/spark-sizing-advisor/internal/tui/wizard"
	"github.com/markalston/spark-sizing-advisor/models"
	"github.com/spf13/cobra"
)

var (
	recommendNode        nodeFlags
	recommendInteractive bool
)

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Recommend executor settings for a node",
	Long: `Recommend Spark executor settings for one worker node.

Describe the node with --cores/--memory (and --gpu or --gpu-memory for GPU
nodes), with --machine-type, or interactively with --interactive.

Exit codes:
  0 - Recommendation printed
  1 - Error (connectivity, configuration)
  2 - Invalid node shape

Example:
  spark-sizing recommend --cores 8 --memory 65536 --gpu T4
  spark-sizing recommend --machine-type g4dn.2xlarge --json`,
	Run: func(cmd *cobra.Command, args []string) {
		node, err := recommendNode.shape()
		if err != nil {
			os.Exit(reportError(os.Stdout, err))
		}
		if recommendInteractive {
			node, err = wizard.New(node).Run()
			if err != nil {
				os.Exit(reportError(os.Stdout, err))
			}
		}

		runAndExit(func(ctx context.Context, a advisor) int {
			return runRecommend(ctx, a, os.Stdout, node)
		})
	},
}

func init() {
	rootCmd.AddCommand(recommendCmd)
	recommendNode.register(recommendCmd)
	recommendCmd.Flags().BoolVarP(&recommendInteractive, "interactive", "i", false, "Describe the node in an interactive form")
}

// runRecommend sizes node and returns the exit code
func runRecommend(ctx context.Context, a advisor, w io.Writer, node models.NodeShape) int {
	result, err := a.Recommend(ctx, node)
	if err != nil {
		return reportError(w, err)
	}

	if IsJSONOutput() {
		return writeJSON(w, result)
	}
	if result.Recommendation == nil {
		return reportError(w, fmt.Errorf("backend returned no recommendation"))
	}
	fmt.Fprint(w, report.Recommendation(result.Node, *result.Recommendation))
	return exitOK
}
