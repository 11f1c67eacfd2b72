// ABOUTME: Cluster inspection combining introspection, compatibility checks, and sizing
// ABOUTME: Turns Dataproc and EMR describe output into a ClusterInspection report

package services

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/markalston/spark-sizing-advisor/models"
)

// ErrUnknownProvider reports an inspection provider other than dataproc or emr
var ErrUnknownProvider = errors.New("unknown cluster provider")

// InspectDataproc parses a Dataproc cluster description and sizes its workers.
// Optional machine type describe output and nvidia-smi output in req refine
// the worker shape beyond the built-in machine catalog.
func (c *Calculator) InspectDataproc(req models.InspectRequest) (*models.ClusterInspection, error) {
	cluster, err := ParseDataprocCluster([]byte(req.Content))
	if err != nil {
		return nil, invalidContent(err)
	}

	worker, err := cluster.WorkerMachine()
	if err != nil {
		return nil, invalidContent(err)
	}

	node, err := dataprocWorkerShape(worker.MachineType, req.MachineTypeDescription)
	if err != nil {
		return nil, invalidContent(err)
	}

	gpu, hasGPU := cluster.WorkerGPU()
	gpu, hasGPU, err = refineGPU(gpu, hasGPU, req)
	if err != nil {
		return nil, invalidContent(err)
	}

	criteria, err := cluster.CompatibilityCriteria()
	if err != nil {
		return nil, invalidContent(err)
	}
	findings, err := CheckCompatibility(criteria)
	if err != nil {
		return nil, invalidContent(err)
	}
	for _, f := range findings {
		if f.Criterion == models.CriterionImageVersion {
			slog.Warn("Unsupported Dataproc image", "image_version", sanitizeForLog(f.Current))
		}
	}

	inspection := &models.ClusterInspection{
		Provider:          "dataproc",
		ClusterName:       cluster.ClusterName,
		ClusterID:         cluster.ClusterUUID,
		Region:            worker.Region,
		Zone:              worker.Zone,
		SoftwareVersion:   cluster.ImageVersion(),
		WorkerMachineType: worker.MachineType,
		WorkerCount:       cluster.WorkerCount(),
		WorkerLocalSSDs:   cluster.WorkerLocalSSDs(),
		SparkProperties:   cluster.SparkProperties(),
		HistoryDirs:       cluster.HistoryDirs(),
		Incompatibilities: findings,
	}
	c.finishInspection(inspection, node, gpu, hasGPU)
	return inspection, nil
}

// InspectEMR parses an EMR describe-cluster document and sizes its workers.
func (c *Calculator) InspectEMR(req models.InspectRequest) (*models.ClusterInspection, error) {
	cluster, err := ParseEMRCluster([]byte(req.Content))
	if err != nil {
		return nil, invalidContent(err)
	}

	group, err := cluster.WorkerGroup()
	if err != nil {
		return nil, invalidContent(err)
	}

	node, err := EC2NodeShape(group.InstanceType)
	if err != nil {
		return nil, invalidContent(err)
	}

	gpu, hasGPU := cluster.WorkerGPU()
	gpu, hasGPU, err = refineGPU(gpu, hasGPU, req)
	if err != nil {
		return nil, invalidContent(err)
	}

	criteria, err := cluster.CompatibilityCriteria()
	if err != nil {
		return nil, invalidContent(err)
	}
	findings, err := CheckCompatibility(criteria)
	if err != nil {
		return nil, invalidContent(err)
	}

	inspection := &models.ClusterInspection{
		Provider:          "emr",
		ClusterName:       cluster.Name,
		ClusterID:         cluster.ID,
		State:             cluster.State,
		Region:            cluster.Region(),
		Zone:              cluster.AvailabilityZone,
		SoftwareVersion:   cluster.ReleaseLabel,
		WorkerMachineType: group.InstanceType,
		WorkerCount:       group.InstanceCount(),
		SparkProperties:   cluster.SparkProperties(),
		Incompatibilities: findings,
	}
	c.finishInspection(inspection, node, gpu, hasGPU)
	return inspection, nil
}

func (c *Calculator) finishInspection(inspection *models.ClusterInspection, node models.NodeShape, gpu models.GPUInfo, hasGPU bool) {
	node.GPUMemoryMB, node.GPUCount, node.GPUName = 0, 0, ""
	if hasGPU {
		node.GPUMemoryMB = gpu.MemoryMB
		node.GPUCount = gpu.Count
		node.GPUName = gpu.Name
		inspection.GPU = &gpu
	}
	inspection.Worker = node

	rec, err := c.Recommend(node)
	if err != nil {
		inspection.RecommendationError = err.Error()
		return
	}
	inspection.Recommendation = &rec
	inspection.RecommendedProperties = rec.SparkProperties()
}

func dataprocWorkerShape(machineType, description string) (models.NodeShape, error) {
	if description != "" {
		desc, err := ParseMachineTypeDescription([]byte(description))
		if err != nil {
			return models.NodeShape{}, err
		}
		node := desc.NodeShape()
		if node.Name == "" {
			node.Name = machineType
		}
		return node, nil
	}
	return GCENodeShape(machineType)
}

// refineGPU overrides catalog GPU data with what nvidia-smi reported.
func refineGPU(gpu models.GPUInfo, hasGPU bool, req models.InspectRequest) (models.GPUInfo, bool, error) {
	if req.NvidiaSMIMemory != "" {
		count, memory, err := ParseNvidiaSMIMemory(req.NvidiaSMIMemory)
		if err != nil {
			return models.GPUInfo{}, false, err
		}
		gpu.Count, gpu.MemoryMB, hasGPU = count, memory, true
	}
	if req.NvidiaSMIDevice != "" {
		name, err := ParseNvidiaSMIDevice(req.NvidiaSMIDevice)
		if err != nil {
			return models.GPUInfo{}, false, err
		}
		gpu.Name = name
		if !hasGPU {
			gpu.Count = 1
			gpu.MemoryMB, _ = GPUMemoryMB(name)
			hasGPU = true
		}
	}
	return gpu, hasGPU, nil
}

func invalidContent(err error) error {
	return &models.InvalidInputError{Field: "content", Reason: err.Error()}
}

// Inspect dispatches to the provider-specific inspection.
func (c *Calculator) Inspect(provider string, req models.InspectRequest) (*models.ClusterInspection, error) {
	switch provider {
	case "dataproc":
		return c.InspectDataproc(req)
	case "emr":
		return c.InspectEMR(req)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, sanitizeForLog(provider))
	}
}
