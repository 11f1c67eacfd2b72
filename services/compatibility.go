// ABOUTME: GPU compatibility checks for existing Dataproc and EMR clusters
// ABOUTME: Flags image versions, machine types, and disks that block RAPIDS acceleration

package services

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/markalston/spark-sizing-advisor/models"
)

// n1CoreSizes are the predefined N1 core counts Dataproc can attach GPUs to
var n1CoreSizes = []int{2, 4, 8, 16, 32, 64, 96}

// CompatibilityCriteria are the cluster settings to check. Empty strings and
// nil pointers skip the corresponding check.
type CompatibilityCriteria struct {
	ImageVersion    string
	ReleaseLabel    string
	MachineType     string
	EC2InstanceType string
	WorkerLocalSSDs *int
}

// IsGPUCompatibleMachine reports whether Dataproc can attach GPUs to the machine
// type. Only the N1 family supports GPUs.
func IsGPUCompatibleMachine(machineType string) bool {
	return strings.HasPrefix(strings.ToLower(machineType), "n1-")
}

// MapToClosestN1 converts a machine type to the N1 type of the same class with
// the nearest core count at or above the original, capped at 96 cores.
//
//	n2-standard-8   -> n1-standard-8
//	n2-highmem-128  -> n1-highmem-96
func MapToClosestN1(machineType string) (string, error) {
	mt, err := ParseGCEMachineType(machineType)
	if err != nil {
		return "", err
	}

	if mt.Class == "custom" {
		mt.Family = "n1"
		return mt.String(), nil
	}

	return fmt.Sprintf("n1-%s-%d", mt.Class, closestN1Cores(mt.Cores)), nil
}

func closestN1Cores(cores int) int {
	for _, c := range n1CoreSizes {
		if c >= cores {
			return c
		}
	}
	return n1CoreSizes[len(n1CoreSizes)-1]
}

// CheckCompatibility returns every criterion the cluster fails, in a fixed order.
// A machine type that cannot be parsed yields an error.
func CheckCompatibility(criteria CompatibilityCriteria) ([]models.Incompatibility, error) {
	findings := []models.Incompatibility{}

	if v := criteria.ImageVersion; v != "" && strings.HasPrefix(v, "1.5") {
		findings = append(findings, models.Incompatibility{
			Criterion: models.CriterionImageVersion,
			Current:   v,
			Suggested: "2.0+",
			Comment: fmt.Sprintf("The cluster image %s is not supported. "+
				"GPU acceleration requires an image that runs Spark 3.x.", v),
		})
	}

	if label := criteria.ReleaseLabel; label != "" && !emrSupportsSpark3(label) {
		findings = append(findings, models.Incompatibility{
			Criterion: models.CriterionReleaseLabel,
			Current:   label,
			Suggested: "emr-6.2.0+",
			Comment: fmt.Sprintf("The release label %s is not supported. "+
				"GPU acceleration requires an EMR release that runs Spark 3.x.", label),
		})
	}

	if mt := criteria.MachineType; mt != "" && !IsGPUCompatibleMachine(mt) {
		converted, err := MapToClosestN1(mt)
		if err != nil {
			return nil, fmt.Errorf("checking machine type: %w", err)
		}
		findings = append(findings, models.Incompatibility{
			Criterion: models.CriterionMachineType,
			Current:   mt,
			Suggested: converted,
			Comment: fmt.Sprintf("To support acceleration with T4 GPUs, switch the worker "+
				"machine type <%s> to %s.", mt, converted),
		})
	}

	if it := criteria.EC2InstanceType; it != "" {
		if finding, ok := checkEC2Instance(it); ok {
			findings = append(findings, finding)
		}
	}

	if ssds := criteria.WorkerLocalSSDs; ssds != nil && *ssds == 0 {
		findings = append(findings, models.Incompatibility{
			Criterion: models.CriterionWorkerLocalSSDs,
			Current:   "0",
			Suggested: "1",
			Comment: "Worker nodes have no local SSDs. " +
				"Local SSD is recommended for Spark scratch space to improve IO.",
		})
	}

	return findings, nil
}

// checkEC2Instance flags known EC2 instance types without a GPU and suggests a
// g4dn instance with at least as many vCPUs.
func checkEC2Instance(instanceType string) (models.Incompatibility, bool) {
	spec, ok := LookupEC2Instance(instanceType)
	if !ok || spec.GPUCount > 0 {
		return models.Incompatibility{}, false
	}

	suggested, ok := ClosestGPUInstance("g4dn", spec.VCPUs)
	if !ok {
		return models.Incompatibility{}, false
	}
	return models.Incompatibility{
		Criterion: models.CriterionMachineType,
		Current:   instanceType,
		Suggested: suggested,
		Comment: fmt.Sprintf("Instance type <%s> has no GPU. To support acceleration with "+
			"T4 GPUs, switch the core instance group to %s.", instanceType, suggested),
	}, true
}

// emrSupportsSpark3 reports whether an EMR release label such as emr-6.10.0
// ships Spark 3.x, which started with 6.1.0 and is supported for RAPIDS from 6.2.0.
func emrSupportsSpark3(label string) bool {
	version := strings.TrimPrefix(strings.ToLower(label), "emr-")
	parts := strings.SplitN(version, ".", 3)
	if len(parts) < 2 {
		return false
	}
	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return false
	}
	minor, err := strconv.Atoi(parts[1])
	if err != nil {
		return false
	}
	return major > 6 || (major == 6 && minor >= 2)
}
