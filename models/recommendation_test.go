// ABOUTME: Tests for executor sizing recommendations
// ABOUTME: Validates worked examples, invariants, GPU concurrency, and Spark property mapping

package models

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func testConstants() ClusterConstants {
	return ClusterConstants{
		MaxPinnedMemoryMB:       4096,
		DefaultPageablePoolMB:   1024,
		MaxGPUConcurrent:        4,
		GPUMemPerTaskMB:         7500,
		HeapPerCoreMB:           2048,
		HeapOverheadFraction:    0.1,
		SystemReserveMB:         2048,
		MaxSQLFilesPartitionsMB: 512,
	}
}

func TestRecommend_CPUNode(t *testing.T) {
	rec, err := Recommend(NodeShape{CoreCount: 8, MemoryMB: 32768}, testConstants())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := ExecutorRecommendation{
		ExecutorCores:  8,
		UsableMemoryMB: 30720,
		IdealHeapMB:    16384,
		HeapMB:         16384,
		OverheadMB:     1638,
		PinnedMemoryMB: 4096,
		PageablePoolMB: 1024,
		MaxPartitionMB: 512,
	}
	if diff := cmp.Diff(want, rec); diff != "" {
		t.Errorf("Recommend() mismatch (-want +got):\n%s", diff)
	}
	if rec.GPUEnabled() {
		t.Error("expected no GPU settings for a CPU-only node")
	}
}

func TestRecommend_GPUNode(t *testing.T) {
	node := NodeShape{CoreCount: 16, MemoryMB: 61440, GPUMemoryMB: 14750, GPUCount: 1}

	rec, err := Recommend(node, testConstants())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := ExecutorRecommendation{
		ExecutorCores:      16,
		UsableMemoryMB:     59392,
		IdealHeapMB:        32768,
		HeapMB:             32768,
		OverheadMB:         3276,
		PinnedMemoryMB:     4096,
		PageablePoolMB:     1024,
		ConcurrentGPUTasks: 1,
		MaxPartitionMB:     512,
	}
	if diff := cmp.Diff(want, rec); diff != "" {
		t.Errorf("Recommend() mismatch (-want +got):\n%s", diff)
	}
}

func TestRecommend_MemoryConstrainedHeap(t *testing.T) {
	rec, err := Recommend(NodeShape{CoreCount: 4, MemoryMB: 8192}, testConstants())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// usable 6144, heap clamped to floor(6144/1.1)
	if rec.HeapMB != 5585 {
		t.Errorf("expected heap 5585, got %d", rec.HeapMB)
	}
	if rec.OverheadMB != 558 {
		t.Errorf("expected overhead 558, got %d", rec.OverheadMB)
	}
	if rec.PinnedMemoryMB != 1 {
		t.Errorf("expected pinned 1, got %d", rec.PinnedMemoryMB)
	}
	if rec.PageablePoolMB != 0 {
		t.Errorf("expected pageable 0, got %d", rec.PageablePoolMB)
	}
}

func TestRecommend_PageablePoolShrinksToHeadroom(t *testing.T) {
	rec, err := Recommend(NodeShape{CoreCount: 4, MemoryMB: 15360}, testConstants())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// usable 13312 - heap 8192 - overhead 819 - pinned 4096 = 205
	if rec.PinnedMemoryMB != 4096 {
		t.Errorf("expected pinned 4096, got %d", rec.PinnedMemoryMB)
	}
	if rec.PageablePoolMB != 205 {
		t.Errorf("expected pageable 205, got %d", rec.PageablePoolMB)
	}
	if rec.TotalAllocatedMB() != rec.UsableMemoryMB {
		t.Errorf("expected allocation to fill usable memory, got %d of %d", rec.TotalAllocatedMB(), rec.UsableMemoryMB)
	}
}

func TestRecommend_ZeroOverheadFraction(t *testing.T) {
	c := testConstants()
	c.HeapOverheadFraction = 0

	rec, err := Recommend(NodeShape{CoreCount: 2, MemoryMB: 8192}, c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.HeapMB != 4096 {
		t.Errorf("expected heap 4096, got %d", rec.HeapMB)
	}
	if rec.OverheadMB != 0 {
		t.Errorf("expected overhead 0, got %d", rec.OverheadMB)
	}
}

func TestRecommend_GPUConcurrency(t *testing.T) {
	tests := []struct {
		name        string
		gpuMemoryMB int
		want        int
	}{
		{"T4 fits one task", 14750, 1},
		{"V100 fits two tasks", 16384, 2},
		{"A100 capped at max", 40960, 4},
		{"tiny GPU floored at one", 100, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node := NodeShape{CoreCount: 8, MemoryMB: 65536, GPUMemoryMB: tt.gpuMemoryMB}
			rec, err := Recommend(node, testConstants())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if rec.ConcurrentGPUTasks != tt.want {
				t.Errorf("expected %d concurrent tasks, got %d", tt.want, rec.ConcurrentGPUTasks)
			}
		})
	}
}

func TestRecommend_InvalidInput(t *testing.T) {
	tests := []struct {
		name  string
		node  NodeShape
		field string
	}{
		{"memory below reserve", NodeShape{CoreCount: 4, MemoryMB: 1024}, "memory_mb"},
		{"memory equal to reserve", NodeShape{CoreCount: 4, MemoryMB: 2048}, "memory_mb"},
		{"zero cores", NodeShape{CoreCount: 0, MemoryMB: 32768}, "core_count"},
		{"negative cores", NodeShape{CoreCount: -2, MemoryMB: 32768}, "core_count"},
		{"zero memory", NodeShape{CoreCount: 4, MemoryMB: 0}, "memory_mb"},
		{"negative GPU memory", NodeShape{CoreCount: 4, MemoryMB: 32768, GPUMemoryMB: -1}, "gpu_memory_mb"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Recommend(tt.node, testConstants())
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
			var inputErr *InvalidInputError
			if !errors.As(err, &inputErr) {
				t.Fatalf("expected *InvalidInputError, got %T", err)
			}
			if inputErr.Field != tt.field {
				t.Errorf("expected field %q, got %q", tt.field, inputErr.Field)
			}
		})
	}
}

func TestRecommend_InvalidConstants(t *testing.T) {
	c := testConstants()
	c.GPUMemPerTaskMB = 0

	_, err := Recommend(NodeShape{CoreCount: 4, MemoryMB: 32768, GPUMemoryMB: 16000}, c)
	if !errors.Is(err, ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}

func TestRecommend_Invariants(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	c := testConstants()

	for i := 0; i < 5000; i++ {
		c.HeapOverheadFraction = rng.Float64() * 0.99
		node := NodeShape{
			CoreCount: 1 + rng.Intn(128),
			MemoryMB:  c.SystemReserveMB + 1 + rng.Intn(1<<20),
		}
		if rng.Intn(2) == 0 {
			node.GPUMemoryMB = 1 + rng.Intn(81920)
		}

		rec, err := Recommend(node, c)
		if err != nil {
			t.Fatalf("case %d %+v: unexpected error: %v", i, node, err)
		}

		usable := node.MemoryMB - c.SystemReserveMB
		if rec.TotalAllocatedMB() > usable {
			t.Fatalf("case %d %+v: allocated %d exceeds usable %d", i, node, rec.TotalAllocatedMB(), usable)
		}
		for name, v := range map[string]int{
			"heap":     rec.HeapMB,
			"overhead": rec.OverheadMB,
			"pinned":   rec.PinnedMemoryMB,
			"pageable": rec.PageablePoolMB,
		} {
			if v < 0 {
				t.Fatalf("case %d %+v: %s is negative: %d", i, node, name, v)
			}
			if v > usable {
				t.Fatalf("case %d %+v: %s %d exceeds usable %d", i, node, name, v, usable)
			}
		}

		if node.GPUEnabled() {
			if rec.ConcurrentGPUTasks < 1 || rec.ConcurrentGPUTasks > c.MaxGPUConcurrent {
				t.Fatalf("case %d %+v: concurrent tasks %d outside [1, %d]", i, node, rec.ConcurrentGPUTasks, c.MaxGPUConcurrent)
			}
		} else if rec.ConcurrentGPUTasks != 0 {
			t.Fatalf("case %d %+v: expected no concurrent tasks, got %d", i, node, rec.ConcurrentGPUTasks)
		}
	}
}

func TestRecommend_ExtremeShapes(t *testing.T) {
	zeroOverhead := testConstants()
	zeroOverhead.HeapOverheadFraction = 0

	tests := []struct {
		name      string
		node      NodeShape
		constants ClusterConstants
	}{
		{"cores overflow ideal heap", NodeShape{CoreCount: math.MaxInt / 1024, MemoryMB: 65536}, testConstants()},
		{"cores just past ideal heap limit", NodeShape{CoreCount: math.MaxInt/2048 + 1, MemoryMB: 65536}, testConstants()},
		{"max cores", NodeShape{CoreCount: math.MaxInt, MemoryMB: 65536, GPUMemoryMB: 16384}, testConstants()},
		{"max memory", NodeShape{CoreCount: 8, MemoryMB: math.MaxInt}, testConstants()},
		{"max memory and cores", NodeShape{CoreCount: math.MaxInt, MemoryMB: math.MaxInt}, testConstants()},
		{"max memory without overhead", NodeShape{CoreCount: math.MaxInt / 1024, MemoryMB: math.MaxInt}, zeroOverhead},
		{"max memory GPU node", NodeShape{CoreCount: math.MaxInt / 2048, MemoryMB: math.MaxInt - 1, GPUMemoryMB: math.MaxInt}, testConstants()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := Recommend(tt.node, tt.constants)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			usable := tt.node.MemoryMB - tt.constants.SystemReserveMB
			for name, v := range map[string]int{
				"ideal heap": rec.IdealHeapMB,
				"heap":       rec.HeapMB,
				"overhead":   rec.OverheadMB,
				"pinned":     rec.PinnedMemoryMB,
				"pageable":   rec.PageablePoolMB,
			} {
				if v < 0 {
					t.Errorf("%s is negative: %d", name, v)
				}
			}
			if rec.HeapMB == 0 {
				t.Error("expected a positive heap")
			}
			if total := rec.TotalAllocatedMB(); total < 0 || total > usable {
				t.Errorf("allocated %d outside [0, %d]", total, usable)
			}
			if rec.IdealHeapMB < rec.HeapMB {
				t.Errorf("ideal heap %d below heap %d", rec.IdealHeapMB, rec.HeapMB)
			}
		})
	}
}

func TestRecommend_IdealHeapMonotonicInCores(t *testing.T) {
	c := testConstants()
	prev := 0
	for cores := 1; cores <= 96; cores++ {
		rec, err := Recommend(NodeShape{CoreCount: cores, MemoryMB: 65536}, c)
		if err != nil {
			t.Fatalf("cores=%d: unexpected error: %v", cores, err)
		}
		if rec.IdealHeapMB < prev {
			t.Fatalf("cores=%d: ideal heap decreased from %d to %d", cores, prev, rec.IdealHeapMB)
		}
		prev = rec.IdealHeapMB
	}
}

func TestSparkProperties_CPUNode(t *testing.T) {
	rec, err := Recommend(NodeShape{CoreCount: 8, MemoryMB: 32768}, testConstants())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := rec.SparkPropertyMap()
	want := map[string]string{
		PropExecutorCores:     "8",
		PropExecutorMemory:    "16384m",
		PropExecutorOverhead:  "6758m",
		PropPinnedPoolSize:    "4096m",
		PropHostSpillStorage:  "1024m",
		PropMaxPartitionBytes: "512m",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("SparkPropertyMap() mismatch (-want +got):\n%s", diff)
	}
}

func TestSparkProperties_GPUNode(t *testing.T) {
	rec, err := Recommend(NodeShape{CoreCount: 16, MemoryMB: 61440, GPUMemoryMB: 16384}, testConstants())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := rec.SparkPropertyMap()
	if got[PropConcurrentGPUTasks] != "2" {
		t.Errorf("expected concurrentGpuTasks 2, got %q", got[PropConcurrentGPUTasks])
	}
	if got[PropExecutorGPUAmount] != "1" {
		t.Errorf("expected executor gpu amount 1, got %q", got[PropExecutorGPUAmount])
	}
	if got[PropTaskGPUAmount] != "0.0625" {
		t.Errorf("expected task gpu amount 0.0625, got %q", got[PropTaskGPUAmount])
	}

	props := rec.SparkProperties()
	if props[0].Key != PropExecutorCores {
		t.Errorf("expected executor cores first, got %s", props[0].Key)
	}
}
