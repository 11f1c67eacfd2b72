// ABOUTME: Identifier validation for values substituted into shell commands
// ABOUTME: Rejects anything outside strict patterns so rendered text is safe to paste

package bootstrap

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/markalston/spark-sizing-advisor/models"
)

var (
	// clusterNamePattern matches EMR cluster names
	clusterNamePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]{0,99}$`)

	// dataprocClusterNamePattern matches Dataproc cluster names (lowercase, max 51 chars)
	dataprocClusterNamePattern = regexp.MustCompile(`^[a-z]([-a-z0-9]{0,49}[a-z0-9])?$`)

	// regionPattern matches GCP and AWS regions, e.g. us-central1, us-west-2
	regionPattern = regexp.MustCompile(`^[a-z]+(-[a-z]+)+-?\d+$`)

	// zonePattern matches GCP and AWS zones, e.g. us-central1-a, us-west-2a
	zonePattern = regexp.MustCompile(`^[a-z]+(-[a-z]+)+-?\d+-?[a-z]$`)

	// machineTypePattern matches Compute Engine and EC2 types, e.g. n1-standard-8, g4dn.2xlarge
	machineTypePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9.-]*$`)

	// imageVersionPattern matches Dataproc image versions, e.g. 2.1-debian11, 2.0.50-ubuntu18
	imageVersionPattern = regexp.MustCompile(`^\d+\.\d+(\.\d+)?(-[a-z0-9]+)?$`)

	// releaseLabelPattern matches EMR release labels, e.g. emr-6.10.0
	releaseLabelPattern = regexp.MustCompile(`^emr-\d+\.\d+\.\d+$`)

	// gpuTypePattern matches GPU model names, e.g. T4, A10G
	gpuTypePattern = regexp.MustCompile(`^[A-Za-z0-9]+$`)
)

// sanitizeForLog removes control characters from strings to prevent log injection
// when including user input in error messages
func sanitizeForLog(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 || r == 127 {
			return -1
		}
		return r
	}, s)
}

func invalid(field, format string, args ...any) error {
	return &models.InvalidInputError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

func requireField(field, value string, pattern *regexp.Regexp) error {
	if value == "" {
		return invalid(field, "cannot be empty")
	}
	if !pattern.MatchString(value) {
		return invalid(field, "invalid format: %s", sanitizeForLog(value))
	}
	return nil
}

func optionalField(field, value string, pattern *regexp.Regexp) error {
	if value == "" {
		return nil
	}
	return requireField(field, value, pattern)
}

// ValidateCluster checks the identifiers a provider's template substitutes.
// Providers that render only Spark properties need no identifiers.
func ValidateCluster(provider string, c models.ClusterSpec) error {
	switch provider {
	case ProviderEMR:
		return validateAll(
			requireField("cluster_name", c.ClusterName, clusterNamePattern),
			requireField("region", c.Region, regionPattern),
			requireField("master_machine_type", c.MasterMachineType, machineTypePattern),
			requireField("worker_machine_type", c.WorkerMachineType, machineTypePattern),
			optionalField("release_label", c.ReleaseLabel, releaseLabelPattern),
			validateCounts(c),
		)
	case ProviderDataproc:
		return validateAll(
			requireField("cluster_name", c.ClusterName, dataprocClusterNamePattern),
			requireField("region", c.Region, regionPattern),
			optionalField("zone", c.Zone, zonePattern),
			requireField("master_machine_type", c.MasterMachineType, machineTypePattern),
			requireField("worker_machine_type", c.WorkerMachineType, machineTypePattern),
			optionalField("image_version", c.ImageVersion, imageVersionPattern),
			optionalField("gpu_type", c.GPUType, gpuTypePattern),
			validateCounts(c),
		)
	case ProviderEMRConfigurations, ProviderSparkDefaults:
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownProvider, sanitizeForLog(provider))
	}
}

func validateCounts(c models.ClusterSpec) error {
	if c.WorkerCount < 1 {
		return invalid("worker_count", "must be at least 1, got %d", c.WorkerCount)
	}
	if c.GPUCount < 0 {
		return invalid("gpu_count", "must not be negative, got %d", c.GPUCount)
	}
	return nil
}

// validateAll returns the first non-nil error
func validateAll(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
