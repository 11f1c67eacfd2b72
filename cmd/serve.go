// ABOUTME: Serve command running the sizing HTTP API
// ABOUTME: Wires config, constants, cache, handlers, and middleware with graceful shutdown

package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/markalston/spark-sizing-advisor/cache"
	"github.com/markalston/spark-sizing-advisor/config"
	"github.com/markalston/spark-sizing-advisor/handlers"
	"github.com/markalston/spark-sizing-advisor/logger"
	"github.com/markalston/spark-sizing-advisor/middleware"
	"github.com/markalston/spark-sizing-advisor/services"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var servePort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the sizing HTTP API",
	Long: `Run the HTTP API under /api/v1.

Environment Variables:
  PORT                  Listen port (default: 8080)
  CACHE_TTL             Default cache TTL in seconds (default: 300)
  CORS_ALLOWED_ORIGINS  Comma-separated origins (default: any)
  RATE_LIMIT_ENABLED    Enable per-client rate limiting (default: true)
  RATE_LIMIT_DEFAULT    Requests per minute per client (default: 100)
  VSPHERE_*             Optional vSphere discovery settings`,
	Run: func(cmd *cobra.Command, args []string) {
		// The server logs to stdout like any other service.
		logger.Init()

		ctx, cancel := signalContext()
		defer cancel()

		cfg, err := config.Load()
		if err != nil {
			slog.Error("Failed to load configuration", "error", err)
			cancel()
			os.Exit(exitError)
		}
		if servePort != "" {
			cfg.Port = servePort
		}
		path := constantsPath
		if path == "" {
			path = cfg.ConstantsFile
		}

		ln, err := net.Listen("tcp", ":"+cfg.Port)
		if err != nil {
			slog.Error("Failed to listen", "port", cfg.Port, "error", err)
			cancel()
			os.Exit(exitError)
		}

		if err := runServe(ctx, cfg, path, ln); err != nil {
			slog.Error("Server failed", "error", err)
			cancel()
			os.Exit(exitCodeFor(err))
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&servePort, "port", "", "Listen port (overrides PORT)")
}

// runServe serves the API on ln until ctx is canceled, then shuts down gracefully
func runServe(ctx context.Context, cfg *config.Config, constantsFile string, ln net.Listener) error {
	constants, err := config.LoadConstants(constantsFile)
	if err != nil {
		ln.Close()
		return err
	}
	calc, err := services.NewCalculator(constants)
	if err != nil {
		ln.Close()
		return err
	}

	source := config.ConstantsSource(constantsFile)
	slog.Info("Starting Spark sizing API", "constants", source)
	if cfg.VSphereConfigured() {
		slog.Info("vSphere configured", "host", cfg.VSphereHost, "datacenter", cfg.VSphereDatacenter)
	} else {
		slog.Info("vSphere not configured, discovery disabled")
	}

	cacheTTL := time.Duration(cfg.CacheTTL) * time.Second
	c := cache.New(cacheTTL)
	defer c.Close()
	slog.Info("Cache initialized", "ttl", cacheTTL)

	h := handlers.NewHandler(cfg, c, calc, source)
	server := &http.Server{
		Handler:           newServeMux(cfg, h),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server listening", "addr", ln.Addr().String())
		errCh <- server.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serving: %w", err)
	case <-ctx.Done():
	}

	slog.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serving: %w", err)
	}
	return nil
}

// newServeMux registers every route behind logging, CORS, and (when enabled)
// per-client rate limiting.
func newServeMux(cfg *config.Config, h *handlers.Handler) *http.ServeMux {
	chain := []middleware.Middleware{
		middleware.LogRequest,
		middleware.CORS(cfg.CORSAllowedOrigins),
	}
	if cfg.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(cfg.RateLimitDefault, time.Minute)
		chain = append(chain, middleware.RateLimit(limiter, middleware.ClientIP))
		slog.Info("Rate limiting enabled", "requests_per_minute", cfg.RateLimitDefault)
	}

	mux := http.NewServeMux()
	h.Register(mux, chain...)
	return mux
}
