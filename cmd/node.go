// ABOUTME: Node shape flags and parsing shared by recommend, compare, and bootstrap
// ABOUTME: Resolves machine type names and inline node specs into node shapes

package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/markalston/spark-sizing-advisor/models"
	"github.com/markalston/spark-sizing-advisor/services"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// nodeFlags describes one worker node from the command line. Explicit values
// override what the machine type implies.
type nodeFlags struct {
	name        string
	machineType string
	cores       int
	memoryMB    int
	gpuMemoryMB int
	gpuCount    int
	gpuName     string
}

func (f *nodeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "Label for the node")
	cmd.Flags().StringVar(&f.machineType, "machine-type", "", "Compute Engine machine type or EC2 instance type (e.g. n1-standard-16, g4dn.2xlarge)")
	cmd.Flags().IntVar(&f.cores, "cores", 0, "CPU cores per node")
	cmd.Flags().IntVar(&f.memoryMB, "memory", 0, "Total memory per node in MB")
	cmd.Flags().IntVar(&f.gpuMemoryMB, "gpu-memory", 0, "GPU memory per device in MB (0 = no GPU)")
	cmd.Flags().IntVar(&f.gpuCount, "gpu-count", 0, "GPUs per node")
	cmd.Flags().StringVar(&f.gpuName, "gpu", "", "GPU model ("+strings.Join(services.SupportedGPUs, ", ")+"); sets --gpu-memory when omitted")
}

// shape builds the node shape the flags describe
func (f *nodeFlags) shape() (models.NodeShape, error) {
	var node models.NodeShape
	if f.machineType != "" {
		resolved, err := resolveMachineType(f.machineType)
		if err != nil {
			return models.NodeShape{}, err
		}
		node = resolved
	}

	if f.name != "" {
		node.Name = f.name
	}
	if f.cores != 0 {
		node.CoreCount = f.cores
	}
	if f.memoryMB != 0 {
		node.MemoryMB = f.memoryMB
	}
	if f.gpuMemoryMB != 0 {
		node.GPUMemoryMB = f.gpuMemoryMB
	}
	if f.gpuCount != 0 {
		node.GPUCount = f.gpuCount
	}
	if f.gpuName != "" {
		if err := applyGPU(&node, f.gpuName, f.gpuMemoryMB == 0); err != nil {
			return models.NodeShape{}, err
		}
	}
	return node, nil
}

// applyGPU sets the GPU model on node, and its memory when setMemory is true
func applyGPU(node *models.NodeShape, name string, setMemory bool) error {
	gpu, ok := services.ParseSupportedGPU(name)
	if !ok {
		return &models.InvalidInputError{
			Field:  "gpu",
			Reason: fmt.Sprintf("unsupported GPU %q, expected one of %s", name, strings.Join(services.SupportedGPUs, ", ")),
		}
	}
	node.GPUName = gpu
	if setMemory {
		node.GPUMemoryMB, _ = services.GPUMemoryMB(gpu)
	}
	if node.GPUCount == 0 {
		node.GPUCount = 1
	}
	return nil
}

// resolveMachineType looks up an EC2 instance type first, then parses a
// Compute Engine machine type.
func resolveMachineType(machineType string) (models.NodeShape, error) {
	if _, ok := services.LookupEC2Instance(machineType); ok {
		return services.EC2NodeShape(machineType)
	}
	node, err := services.GCENodeShape(machineType)
	if err != nil {
		return models.NodeShape{}, &models.InvalidInputError{Field: "machine_type", Reason: err.Error()}
	}
	return node, nil
}

// parseNodeSpec parses an inline node such as
// "name=big,cores=16,memory=131072,gpu=T4" or a bare machine type.
func parseNodeSpec(spec string) (models.NodeShape, error) {
	spec = strings.TrimSpace(spec)
	if !strings.Contains(spec, "=") {
		return resolveMachineType(spec)
	}

	var f nodeFlags
	for _, part := range strings.Split(spec, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			return models.NodeShape{}, &models.InvalidInputError{Field: "node", Reason: fmt.Sprintf("expected key=value, got %q", part)}
		}
		var err error
		switch strings.TrimSpace(key) {
		case "name":
			f.name = value
		case "machine-type", "machine_type":
			f.machineType = value
		case "cores", "core_count":
			f.cores, err = strconv.Atoi(value)
		case "memory", "memory_mb":
			f.memoryMB, err = strconv.Atoi(value)
		case "gpu-memory", "gpu_memory_mb":
			f.gpuMemoryMB, err = strconv.Atoi(value)
		case "gpu-count", "gpu_count":
			f.gpuCount, err = strconv.Atoi(value)
		case "gpu":
			f.gpuName = value
		default:
			return models.NodeShape{}, &models.InvalidInputError{Field: "node", Reason: fmt.Sprintf("unknown key %q", key)}
		}
		if err != nil {
			return models.NodeShape{}, &models.InvalidInputError{Field: key, Reason: fmt.Sprintf("not a number: %q", value)}
		}
	}
	return f.shape()
}

// nodesFile is the document read by compare --file
type nodesFile struct {
	Nodes []models.NodeShape `yaml:"nodes"`
}

// readNodesFile reads a YAML or JSON document with a top-level nodes list
func readNodesFile(path string) ([]models.NodeShape, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading nodes file: %w", err)
	}
	var doc nodesFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &models.InvalidInputError{Field: "file", Reason: fmt.Sprintf("parsing %s: %v", path, err)}
	}
	return doc.Nodes, nil
}
