// ABOUTME: Machine catalog for Compute Engine (Dataproc) and EC2 (EMR) worker types
// ABOUTME: Resolves machine type names and describe output into node shapes

package services

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/markalston/spark-sizing-advisor/models"
	"gopkg.in/yaml.v3"
)

// GCEMachineType is a parsed Compute Engine machine type name
type GCEMachineType struct {
	Family   string // n1, n2, e2, ...
	Class    string // standard, highmem, highcpu, custom
	Cores    int
	MemoryMB int // only set for custom types
}

// gceMemoryPerCoreGB holds GB of memory per vCPU by family and class
var gceMemoryPerCoreGB = map[string]map[string]float64{
	"n1": {"standard": 3.75, "highmem": 6.5, "highcpu": 0.9},
	"n2": {"standard": 4, "highmem": 8, "highcpu": 1},
	"e2": {"standard": 4, "highmem": 8, "highcpu": 1},
}

// ParseGCEMachineType splits a machine type such as n2-highmem-16 or
// n1-custom-8-30720 into its parts.
func ParseGCEMachineType(machineType string) (GCEMachineType, error) {
	if err := ValidateMachineType(machineType); err != nil {
		return GCEMachineType{}, err
	}

	parts := strings.Split(strings.ToLower(machineType), "-")
	mt := GCEMachineType{Family: parts[0], Class: parts[1]}

	cores, err := strconv.Atoi(parts[2])
	if err != nil || cores <= 0 {
		return GCEMachineType{}, fmt.Errorf("invalid core count in machine type %s", machineType)
	}
	mt.Cores = cores

	if len(parts) == 4 {
		if mt.Class != "custom" {
			return GCEMachineType{}, fmt.Errorf("invalid machine type format: %s", machineType)
		}
		memory, err := strconv.Atoi(parts[3])
		if err != nil || memory <= 0 {
			return GCEMachineType{}, fmt.Errorf("invalid memory in custom machine type %s", machineType)
		}
		mt.MemoryMB = memory
	}

	return mt, nil
}

// String formats the machine type back into its canonical name
func (m GCEMachineType) String() string {
	if m.Class == "custom" {
		return fmt.Sprintf("%s-custom-%d-%d", m.Family, m.Cores, m.MemoryMB)
	}
	return fmt.Sprintf("%s-%s-%d", m.Family, m.Class, m.Cores)
}

// GCENodeShape returns the node shape of a predefined or custom machine type.
func GCENodeShape(machineType string) (models.NodeShape, error) {
	mt, err := ParseGCEMachineType(machineType)
	if err != nil {
		return models.NodeShape{}, err
	}

	memoryMB := mt.MemoryMB
	if memoryMB == 0 {
		perCore, ok := gceMemoryPerCoreGB[mt.Family][mt.Class]
		if !ok {
			return models.NodeShape{}, fmt.Errorf("unknown machine family or class: %s", sanitizeForLog(machineType))
		}
		memoryMB = int(math.Round(float64(mt.Cores) * perCore * 1024))
	}

	return models.NodeShape{
		Name:      mt.String(),
		CoreCount: mt.Cores,
		MemoryMB:  memoryMB,
	}, nil
}

// MachineTypeDescription is the subset of `gcloud compute machine-types describe` output used for sizing
type MachineTypeDescription struct {
	Name      string `yaml:"name"`
	GuestCPUs int    `yaml:"guestCpus"`
	MemoryMB  int    `yaml:"memoryMb"`
	Zone      string `yaml:"zone"`
}

// ParseMachineTypeDescription parses describe output (YAML or JSON).
func ParseMachineTypeDescription(data []byte) (MachineTypeDescription, error) {
	var desc MachineTypeDescription
	if err := yaml.Unmarshal(data, &desc); err != nil {
		return MachineTypeDescription{}, fmt.Errorf("parsing machine type description: %w", err)
	}
	if desc.GuestCPUs <= 0 || desc.MemoryMB <= 0 {
		return MachineTypeDescription{}, fmt.Errorf("machine type description missing guestCpus or memoryMb")
	}
	return desc, nil
}

// NodeShape converts the description into a node shape
func (d MachineTypeDescription) NodeShape() models.NodeShape {
	return models.NodeShape{
		Name:      d.Name,
		CoreCount: d.GuestCPUs,
		MemoryMB:  d.MemoryMB,
	}
}

// EC2InstanceSpec describes an EC2 instance type commonly used for EMR workers
type EC2InstanceSpec struct {
	VCPUs    int
	MemoryMB int
	GPUName  string
	GPUCount int
}

var ec2Instances = map[string]EC2InstanceSpec{
	"m5.xlarge":     {VCPUs: 4, MemoryMB: 16384},
	"m5.2xlarge":    {VCPUs: 8, MemoryMB: 32768},
	"m5.4xlarge":    {VCPUs: 16, MemoryMB: 65536},
	"m5.8xlarge":    {VCPUs: 32, MemoryMB: 131072},
	"r5.2xlarge":    {VCPUs: 8, MemoryMB: 65536},
	"r5.4xlarge":    {VCPUs: 16, MemoryMB: 131072},
	"c5.4xlarge":    {VCPUs: 16, MemoryMB: 32768},
	"g4dn.xlarge":   {VCPUs: 4, MemoryMB: 16384, GPUName: "T4", GPUCount: 1},
	"g4dn.2xlarge":  {VCPUs: 8, MemoryMB: 32768, GPUName: "T4", GPUCount: 1},
	"g4dn.4xlarge":  {VCPUs: 16, MemoryMB: 65536, GPUName: "T4", GPUCount: 1},
	"g4dn.8xlarge":  {VCPUs: 32, MemoryMB: 131072, GPUName: "T4", GPUCount: 1},
	"g4dn.12xlarge": {VCPUs: 48, MemoryMB: 196608, GPUName: "T4", GPUCount: 4},
	"g4dn.16xlarge": {VCPUs: 64, MemoryMB: 262144, GPUName: "T4", GPUCount: 1},
	"g5.xlarge":     {VCPUs: 4, MemoryMB: 16384, GPUName: "A10G", GPUCount: 1},
	"g5.2xlarge":    {VCPUs: 8, MemoryMB: 32768, GPUName: "A10G", GPUCount: 1},
	"g5.4xlarge":    {VCPUs: 16, MemoryMB: 65536, GPUName: "A10G", GPUCount: 1},
	"g5.8xlarge":    {VCPUs: 32, MemoryMB: 131072, GPUName: "A10G", GPUCount: 1},
	"g5.12xlarge":   {VCPUs: 48, MemoryMB: 196608, GPUName: "A10G", GPUCount: 4},
	"g5.16xlarge":   {VCPUs: 64, MemoryMB: 262144, GPUName: "A10G", GPUCount: 1},
	"p3.2xlarge":    {VCPUs: 8, MemoryMB: 62464, GPUName: "V100", GPUCount: 1},
	"p3.8xlarge":    {VCPUs: 32, MemoryMB: 249856, GPUName: "V100", GPUCount: 4},
	"p4d.24xlarge":  {VCPUs: 96, MemoryMB: 1179648, GPUName: "A100", GPUCount: 8},
}

// LookupEC2Instance returns the spec of a known EC2 instance type.
func LookupEC2Instance(instanceType string) (EC2InstanceSpec, bool) {
	spec, ok := ec2Instances[strings.ToLower(instanceType)]
	return spec, ok
}

// EC2NodeShape returns the node shape of a known EC2 instance type. GPU memory
// is the per-device memory of the attached model.
func EC2NodeShape(instanceType string) (models.NodeShape, error) {
	spec, ok := LookupEC2Instance(instanceType)
	if !ok {
		return models.NodeShape{}, fmt.Errorf("unknown EC2 instance type: %s", sanitizeForLog(instanceType))
	}

	node := models.NodeShape{
		Name:      instanceType,
		CoreCount: spec.VCPUs,
		MemoryMB:  spec.MemoryMB,
	}
	if spec.GPUCount > 0 {
		node.GPUName = spec.GPUName
		node.GPUCount = spec.GPUCount
		node.GPUMemoryMB, _ = GPUMemoryMB(spec.GPUName)
	}
	return node, nil
}

// ClosestGPUInstance returns the smallest known GPU instance of the given
// family prefix (e.g. "g4dn") with at least the requested vCPUs and one GPU
// per instance. The largest such instance is returned when none is big enough.
func ClosestGPUInstance(family string, vcpus int) (string, bool) {
	var candidates []string
	for name, spec := range ec2Instances {
		if strings.HasPrefix(name, family+".") && spec.GPUCount == 1 {
			candidates = append(candidates, name)
		}
	}
	if len(candidates) == 0 {
		return "", false
	}

	sort.Slice(candidates, func(i, j int) bool {
		return ec2Instances[candidates[i]].VCPUs < ec2Instances[candidates[j]].VCPUs
	})
	for _, name := range candidates {
		if ec2Instances[name].VCPUs >= vcpus {
			return name, true
		}
	}
	return candidates[len(candidates)-1], true
}
