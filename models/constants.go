// ABOUTME: Cluster sizing constants used to derive executor settings
// ABOUTME: Immutable value loaded once at startup and validated before use

package models

import "fmt"

// ClusterConstants holds the tunables that drive executor sizing.
type ClusterConstants struct {
	MaxPinnedMemoryMB       int     `json:"max_pinned_memory_mb" yaml:"max_pinned_memory_mb" mapstructure:"max_pinned_memory_mb"`
	DefaultPageablePoolMB   int     `json:"default_pageable_pool_mb" yaml:"default_pageable_pool_mb" mapstructure:"default_pageable_pool_mb"`
	MaxGPUConcurrent        int     `json:"max_gpu_concurrent" yaml:"max_gpu_concurrent" mapstructure:"max_gpu_concurrent"`
	GPUMemPerTaskMB         int     `json:"gpu_mem_per_task_mb" yaml:"gpu_mem_per_task_mb" mapstructure:"gpu_mem_per_task_mb"`
	HeapPerCoreMB           int     `json:"heap_per_core_mb" yaml:"heap_per_core_mb" mapstructure:"heap_per_core_mb"`
	HeapOverheadFraction    float64 `json:"heap_overhead_fraction" yaml:"heap_overhead_fraction" mapstructure:"heap_overhead_fraction"`
	SystemReserveMB         int     `json:"system_reserve_mb" yaml:"system_reserve_mb" mapstructure:"system_reserve_mb"`
	MaxSQLFilesPartitionsMB int     `json:"max_sql_files_partitions_mb" yaml:"max_sql_files_partitions_mb" mapstructure:"max_sql_files_partitions_mb"`
}

// ConstantKeys lists the document keys of every ClusterConstants field, in declaration order.
var ConstantKeys = []string{
	"max_pinned_memory_mb",
	"default_pageable_pool_mb",
	"max_gpu_concurrent",
	"gpu_mem_per_task_mb",
	"heap_per_core_mb",
	"heap_overhead_fraction",
	"system_reserve_mb",
	"max_sql_files_partitions_mb",
}

// Validate checks that the constants can drive a recommendation without
// producing negative or undefined values.
func (c ClusterConstants) Validate() error {
	for _, f := range []struct {
		key   string
		value int
		min   int
	}{
		{"max_pinned_memory_mb", c.MaxPinnedMemoryMB, 0},
		{"default_pageable_pool_mb", c.DefaultPageablePoolMB, 0},
		{"max_gpu_concurrent", c.MaxGPUConcurrent, 1},
		{"gpu_mem_per_task_mb", c.GPUMemPerTaskMB, 1},
		{"heap_per_core_mb", c.HeapPerCoreMB, 1},
		{"system_reserve_mb", c.SystemReserveMB, 0},
		{"max_sql_files_partitions_mb", c.MaxSQLFilesPartitionsMB, 1},
	} {
		if f.value < f.min {
			return &ConfigurationError{
				Key:    f.key,
				Reason: fmt.Sprintf("must be at least %d, got %d", f.min, f.value),
			}
		}
	}

	if c.HeapOverheadFraction < 0 || c.HeapOverheadFraction >= 1 {
		return &ConfigurationError{
			Key:    "heap_overhead_fraction",
			Reason: fmt.Sprintf("must be in [0, 1), got %g", c.HeapOverheadFraction),
		}
	}

	return nil
}
