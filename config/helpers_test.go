// ABOUTME: Test helpers for config tests
// ABOUTME: Provides utilities for environment variable and constants file management

package config

import (
	"os"
	"path/filepath"
	"testing"
)

// withCleanEnv clears the environment, sets the given vars, and returns a
// cleanup function that restores the original env. Use with t.Cleanup().
//
// Example:
//
//	func TestSomething(t *testing.T) {
//	    t.Cleanup(withCleanEnv(t, map[string]string{
//	        "PORT": "9090",
//	    }))
//	}
func withCleanEnv(t *testing.T, vars map[string]string) func() {
	t.Helper()

	originalEnv := os.Environ()
	os.Clearenv()

	for key, value := range vars {
		os.Setenv(key, value)
	}

	return func() {
		os.Clearenv()
		for _, env := range originalEnv {
			for i := 0; i < len(env); i++ {
				if env[i] == '=' {
					os.Setenv(env[:i], env[i+1:])
					break
				}
			}
		}
	}
}

// writeConstantsFile writes content to name inside a temp dir and returns its path.
func writeConstantsFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write constants file: %v", err)
	}
	return path
}
