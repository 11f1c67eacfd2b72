// ABOUTME: Executor sizing recommendations derived from node shape and constants
// ABOUTME: Pure calculation plus the Spark property names templates substitute

package models

import (
	"math"
	"strconv"
)

// ExecutorRecommendation is the derived executor configuration for one node shape.
// ConcurrentGPUTasks is zero (and omitted from JSON) for nodes without a GPU.
type ExecutorRecommendation struct {
	ExecutorCores      int `json:"executor_cores" yaml:"executor_cores"`
	UsableMemoryMB     int `json:"usable_memory_mb" yaml:"usable_memory_mb"`
	IdealHeapMB        int `json:"ideal_heap_mb" yaml:"ideal_heap_mb"`
	HeapMB             int `json:"heap_mb" yaml:"heap_mb"`
	OverheadMB         int `json:"overhead_mb" yaml:"overhead_mb"`
	PinnedMemoryMB     int `json:"pinned_memory_mb" yaml:"pinned_memory_mb"`
	PageablePoolMB     int `json:"pageable_pool_mb" yaml:"pageable_pool_mb"`
	ConcurrentGPUTasks int `json:"concurrent_gpu_tasks,omitempty" yaml:"concurrent_gpu_tasks,omitempty"`
	MaxPartitionMB     int `json:"max_partition_mb" yaml:"max_partition_mb"`
}

// GPUEnabled reports whether the recommendation carries GPU settings.
func (r ExecutorRecommendation) GPUEnabled() bool {
	return r.ConcurrentGPUTasks > 0
}

// TotalAllocatedMB is heap plus every off-heap allocation.
func (r ExecutorRecommendation) TotalAllocatedMB() int {
	return r.HeapMB + r.OffHeapMB()
}

// OffHeapMB is the memory Spark must reserve outside the JVM heap.
func (r ExecutorRecommendation) OffHeapMB() int {
	return r.OverheadMB + r.PinnedMemoryMB + r.PageablePoolMB
}

// Recommend derives executor settings for node under constants.
//
// Heap is the smaller of the per-core ideal and what fits in usable memory with
// its overhead. Pinned and pageable pools take what remains, each capped by its
// constant. Every memory value is non-negative and the total never exceeds
// node.MemoryMB - constants.SystemReserveMB.
func Recommend(node NodeShape, constants ClusterConstants) (ExecutorRecommendation, error) {
	if err := constants.Validate(); err != nil {
		return ExecutorRecommendation{}, err
	}
	if err := node.Validate(); err != nil {
		return ExecutorRecommendation{}, err
	}

	usable := node.MemoryMB - constants.SystemReserveMB
	if usable <= 0 {
		return ExecutorRecommendation{}, &InvalidInputError{
			Field:  "memory_mb",
			Reason: "total memory " + strconv.Itoa(node.MemoryMB) + " MB does not exceed system reserve " + strconv.Itoa(constants.SystemReserveMB) + " MB",
		}
	}

	idealHeap := idealHeapFor(node.CoreCount, constants.HeapPerCoreMB)
	heap := min(idealHeap, fitHeapFor(usable, constants.HeapOverheadFraction))

	overhead := overheadFor(heap, constants.HeapOverheadFraction)
	for heap > 0 && heap > usable-overhead {
		heap--
		overhead = overheadFor(heap, constants.HeapOverheadFraction)
	}

	remaining := usable - heap - overhead
	pinned := max(0, min(constants.MaxPinnedMemoryMB, remaining))
	remaining -= pinned

	pageable := max(0, min(constants.DefaultPageablePoolMB, remaining))

	rec := ExecutorRecommendation{
		ExecutorCores:  node.CoreCount,
		UsableMemoryMB: usable,
		IdealHeapMB:    idealHeap,
		HeapMB:         heap,
		OverheadMB:     overhead,
		PinnedMemoryMB: pinned,
		PageablePoolMB: pageable,
		MaxPartitionMB: constants.MaxSQLFilesPartitionsMB,
	}

	if node.GPUEnabled() {
		tasks := min(constants.MaxGPUConcurrent, node.GPUMemoryMB/constants.GPUMemPerTaskMB)
		rec.ConcurrentGPUTasks = max(1, tasks)
	}

	return rec, nil
}

// idealHeapFor saturates at math.MaxInt instead of overflowing.
func idealHeapFor(cores, heapPerCoreMB int) int {
	if cores > math.MaxInt/heapPerCoreMB {
		return math.MaxInt
	}
	return cores * heapPerCoreMB
}

// fitHeapFor is the largest heap whose overhead still fits in usable. Near
// math.MaxInt the float quotient can round above usable, so it is clamped.
func fitHeapFor(usable int, fraction float64) int {
	fit := math.Floor(float64(usable) / (1 + fraction))
	if fit >= float64(usable) {
		return usable
	}
	return int(fit)
}

func overheadFor(heap int, fraction float64) int {
	return int(math.Floor(float64(heap) * fraction))
}

// SparkProperty is a single Spark configuration entry.
type SparkProperty struct {
	Key   string `json:"key" yaml:"key"`
	Value string `json:"value" yaml:"value"`
}

// Spark property names that carry the recommendation.
const (
	PropExecutorCores       = "spark.executor.cores"
	PropExecutorMemory      = "spark.executor.memory"
	PropExecutorOverhead    = "spark.executor.memoryOverhead"
	PropPinnedPoolSize      = "spark.rapids.memory.pinnedPool.size"
	PropHostSpillStorage    = "spark.rapids.memory.host.spillStorageSize"
	PropMaxPartitionBytes   = "spark.sql.files.maxPartitionBytes"
	PropConcurrentGPUTasks  = "spark.rapids.sql.concurrentGpuTasks"
	PropExecutorGPUAmount   = "spark.executor.resource.gpu.amount"
	PropTaskGPUAmount       = "spark.task.resource.gpu.amount"
	megabyteSuffix          = "m"
	executorGPUAmountPerGPU = "1"
)

// SparkProperties maps the recommendation onto Spark configuration keys.
// The executor overhead property covers all off-heap memory: JVM overhead
// plus the pinned and pageable pools.
func (r ExecutorRecommendation) SparkProperties() []SparkProperty {
	props := []SparkProperty{
		{Key: PropExecutorCores, Value: strconv.Itoa(r.ExecutorCores)},
		{Key: PropExecutorMemory, Value: megabytes(r.HeapMB)},
		{Key: PropExecutorOverhead, Value: megabytes(r.OffHeapMB())},
		{Key: PropPinnedPoolSize, Value: megabytes(r.PinnedMemoryMB)},
		{Key: PropHostSpillStorage, Value: megabytes(r.PageablePoolMB)},
		{Key: PropMaxPartitionBytes, Value: megabytes(r.MaxPartitionMB)},
	}

	if r.GPUEnabled() {
		props = append(props,
			SparkProperty{Key: PropConcurrentGPUTasks, Value: strconv.Itoa(r.ConcurrentGPUTasks)},
			SparkProperty{Key: PropExecutorGPUAmount, Value: executorGPUAmountPerGPU},
		)
		if r.ExecutorCores > 0 {
			amount := 1 / float64(r.ExecutorCores)
			props = append(props, SparkProperty{
				Key:   PropTaskGPUAmount,
				Value: strconv.FormatFloat(amount, 'f', -1, 64),
			})
		}
	}

	return props
}

// SparkPropertyMap returns SparkProperties keyed by property name.
func (r ExecutorRecommendation) SparkPropertyMap() map[string]string {
	props := r.SparkProperties()
	m := make(map[string]string, len(props))
	for _, p := range props {
		m[p.Key] = p.Value
	}
	return m
}

func megabytes(mb int) string {
	return strconv.Itoa(mb) + megabyteSuffix
}
