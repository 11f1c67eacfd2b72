// ABOUTME: Root command for the spark-sizing CLI
// ABOUTME: Handles global flags, logging, and exit code mapping

package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/markalston/spark-sizing-advisor/bootstrap"
	"github.com/markalston/spark-sizing-advisor/logger"
	"github.com/markalston/spark-sizing-advisor/models"
	"github.com/markalston/spark-sizing-advisor/services"
	"github.com/spf13/cobra"
)

var (
	apiURL        string
	jsonOutput    bool
	constantsPath string
)

// Exit codes
const (
	exitOK           = 0
	exitError        = 1
	exitInvalidInput = 2
)

// rootCmd is the base command
var rootCmd = &cobra.Command{
	Use:   "spark-sizing",
	Short: "Spark executor sizing for CPU and GPU clusters",
	Long: `spark-sizing recommends Spark executor settings (heap, overhead, pinned and
pageable pools, concurrent GPU tasks) from a worker node's cores, memory and GPU.

Commands run locally unless --api-url (or SPARK_SIZING_API_URL) points at a
running "spark-sizing serve" instance.

Environment Variables:
  SPARK_SIZING_API_URL   Backend API URL for remote mode
  SIZING_CONSTANTS_FILE  Sizing constants document (YAML or JSON)
  LOG_LEVEL              debug, info, warn, error (default: info)
  LOG_FORMAT             text, json (default: text)`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.InitWithWriter(os.Stderr)
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Backend API URL (overrides SPARK_SIZING_API_URL)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output JSON instead of human-readable text")
	rootCmd.PersistentFlags().StringVar(&constantsPath, "constants", "", "Sizing constants file (overrides SIZING_CONSTANTS_FILE)")
}

// GetAPIURL returns the API URL from flag or env. Empty means local mode.
func GetAPIURL() string {
	if apiURL != "" {
		return apiURL
	}
	return os.Getenv("SPARK_SIZING_API_URL")
}

// IsJSONOutput returns whether JSON output is requested
func IsJSONOutput() bool {
	return jsonOutput
}

// signalContext returns a context canceled on SIGINT or SIGTERM
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

// runAndExit runs a command body and exits the process with its code
func runAndExit(run func(ctx context.Context, a advisor) int) {
	ctx, cancel := signalContext()
	defer cancel()

	a, err := newAdvisor()
	if err != nil {
		cancel()
		os.Exit(reportError(os.Stdout, err))
	}

	exitCode := run(ctx, a)
	cancel()
	if exitCode != exitOK {
		os.Exit(exitCode)
	}
}

// exitCodeFor maps an error onto the process exit code. Bad input from the
// user exits 2; everything else exits 1.
func exitCodeFor(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, models.ErrInvalidInput),
		errors.Is(err, bootstrap.ErrUnknownProvider),
		errors.Is(err, services.ErrUnknownProvider):
		return exitInvalidInput
	default:
		return exitError
	}
}

// reportError prints err and returns its exit code
func reportError(w io.Writer, err error) int {
	fmt.Fprintf(w, "Error: %v\n", err)
	return exitCodeFor(err)
}

// writeJSON prints v as indented JSON
func writeJSON(w io.Writer, v any) int {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return reportError(w, fmt.Errorf("encoding output: %w", err))
	}
	fmt.Fprintln(w, string(data))
	return exitOK
}
