// ABOUTME: Process configuration for the sizing service and CLI
// ABOUTME: Loads settings from environment variables (and an optional .env) with defaults

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port               string
	CacheTTL           int      // seconds, default for general cache
	ConstantsFile      string   // sizing constants document, empty = embedded defaults
	CORSAllowedOrigins []string // allowed CORS origins (empty = any origin)

	// Rate Limiting
	RateLimitEnabled bool // Enable rate limiting (default: true)
	RateLimitDefault int  // Requests per minute per client (default: 100)

	// vSphere (optional)
	VSphereHost       string
	VSphereUsername   string
	VSpherePassword   string
	VSphereDatacenter string
	VSphereInsecure   bool
	VSphereCacheTTL   int    // seconds, default 300 (5 min)
	VSphereAllProxy   string // ssh+socks5://user@jumpbox:22?private-key=/path
}

// VSphereConfigured returns true if vSphere credentials are set
func (c *Config) VSphereConfigured() bool {
	return c.VSphereHost != "" && c.VSphereUsername != "" && c.VSpherePassword != "" && c.VSphereDatacenter != ""
}

// vSpherePartiallyConfigured reports whether some but not all vSphere credentials are set
func (c *Config) vSpherePartiallyConfigured() bool {
	set := 0
	for _, v := range []string{c.VSphereHost, c.VSphereUsername, c.VSpherePassword, c.VSphereDatacenter} {
		if v != "" {
			set++
		}
	}
	return set > 0 && set < 4
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present; variables already set win.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		CacheTTL:           getEnvInt("CACHE_TTL", 300),
		ConstantsFile:      os.Getenv("SIZING_CONSTANTS_FILE"),
		CORSAllowedOrigins: getEnvStringList("CORS_ALLOWED_ORIGINS"),

		RateLimitEnabled: getEnvBool("RATE_LIMIT_ENABLED", true),
		RateLimitDefault: getEnvInt("RATE_LIMIT_DEFAULT", 100),

		VSphereHost:       os.Getenv("VSPHERE_HOST"),
		VSphereUsername:   os.Getenv("VSPHERE_USERNAME"),
		VSpherePassword:   os.Getenv("VSPHERE_PASSWORD"),
		VSphereDatacenter: os.Getenv("VSPHERE_DATACENTER"),
		VSphereInsecure:   getEnvBool("VSPHERE_INSECURE", false),
		VSphereCacheTTL:   getEnvInt("VSPHERE_CACHE_TTL", 300),
		VSphereAllProxy:   os.Getenv("VSPHERE_ALL_PROXY"),
	}

	if cfg.RateLimitDefault < 1 || cfg.RateLimitDefault > 10000 {
		return nil, fmt.Errorf("RATE_LIMIT_DEFAULT must be between 1 and 10000, got %d", cfg.RateLimitDefault)
	}
	if cfg.CacheTTL < 0 {
		return nil, fmt.Errorf("CACHE_TTL must not be negative, got %d", cfg.CacheTTL)
	}
	if cfg.VSphereCacheTTL < 0 {
		return nil, fmt.Errorf("VSPHERE_CACHE_TTL must not be negative, got %d", cfg.VSphereCacheTTL)
	}

	if cfg.vSpherePartiallyConfigured() {
		return nil, fmt.Errorf("vSphere requires VSPHERE_HOST, VSPHERE_USERNAME, VSPHERE_PASSWORD and VSPHERE_DATACENTER together")
	}
	if cfg.VSphereAllProxy != "" && !cfg.VSphereConfigured() {
		return nil, fmt.Errorf("VSPHERE_ALL_PROXY is set but vSphere is not configured")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvStringList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
