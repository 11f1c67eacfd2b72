// ABOUTME: Node shape describing a worker's CPU, memory, and GPU capacity
// ABOUTME: Input to the executor sizing calculation

package models

import "fmt"

// NodeShape describes one worker type. GPUMemoryMB of zero means the node has no GPU.
type NodeShape struct {
	Name        string `json:"name,omitempty" yaml:"name,omitempty"`
	CoreCount   int    `json:"core_count" yaml:"core_count"`
	MemoryMB    int    `json:"memory_mb" yaml:"memory_mb"`
	GPUMemoryMB int    `json:"gpu_memory_mb,omitempty" yaml:"gpu_memory_mb,omitempty"`
	GPUCount    int    `json:"gpu_count,omitempty" yaml:"gpu_count,omitempty"`
	GPUName     string `json:"gpu_name,omitempty" yaml:"gpu_name,omitempty"`
}

// GPUEnabled reports whether the node advertises GPU memory.
func (n NodeShape) GPUEnabled() bool {
	return n.GPUMemoryMB > 0
}

// Validate rejects shapes that would yield negative or meaningless recommendations.
func (n NodeShape) Validate() error {
	if n.CoreCount <= 0 {
		return &InvalidInputError{
			Field:  "core_count",
			Reason: fmt.Sprintf("must be positive, got %d", n.CoreCount),
		}
	}
	if n.MemoryMB <= 0 {
		return &InvalidInputError{
			Field:  "memory_mb",
			Reason: fmt.Sprintf("must be positive, got %d", n.MemoryMB),
		}
	}
	if n.GPUMemoryMB < 0 {
		return &InvalidInputError{
			Field:  "gpu_memory_mb",
			Reason: fmt.Sprintf("must not be negative, got %d", n.GPUMemoryMB),
		}
	}
	if n.GPUCount < 0 {
		return &InvalidInputError{
			Field:  "gpu_count",
			Reason: fmt.Sprintf("must not be negative, got %d", n.GPUCount),
		}
	}
	return nil
}

// Label returns the node name, or a synthesized description when unnamed.
func (n NodeShape) Label() string {
	if n.Name != "" {
		return n.Name
	}
	if n.GPUEnabled() {
		return fmt.Sprintf("%d cores / %d MB / GPU %d MB", n.CoreCount, n.MemoryMB, n.GPUMemoryMB)
	}
	return fmt.Sprintf("%d cores / %d MB", n.CoreCount, n.MemoryMB)
}
