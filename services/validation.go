// ABOUTME: Input validation helpers for identifiers taken from cluster descriptions
// ABOUTME: Prevents log injection and malformed machine type names

package services

import (
	"fmt"
	"regexp"
	"strings"
)

// gceMachineTypePattern matches predefined and custom Compute Engine machine types
var gceMachineTypePattern = regexp.MustCompile(`^[a-z][a-z0-9]*-[a-z]+-\d+(-\d+)?$`)

// sanitizeForLog removes control characters from strings to prevent log injection
// when including user input in error messages
func sanitizeForLog(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 || r == 127 {
			return -1 // Remove control characters
		}
		return r
	}, s)
}

// ValidateMachineType checks that a Compute Engine machine type has the
// family-class-cores shape, e.g. n1-standard-8 or n1-custom-8-30720.
func ValidateMachineType(machineType string) error {
	if machineType == "" {
		return fmt.Errorf("machine type cannot be empty")
	}
	if !gceMachineTypePattern.MatchString(machineType) {
		return fmt.Errorf("invalid machine type format: %s", sanitizeForLog(machineType))
	}
	return nil
}
