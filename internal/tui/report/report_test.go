// ABOUTME: Tests for the terminal report renderers
// ABOUTME: Checks content rather than styling so they pass without a color profile

package report

import (
	"strings"
	"testing"
	"time"

	"github.com/markalston/spark-sizing-advisor/models"
)

func gpuRecommendation() models.ExecutorRecommendation {
	return models.ExecutorRecommendation{
		ExecutorCores:      8,
		UsableMemoryMB:     63488,
		IdealHeapMB:        16384,
		HeapMB:             16384,
		OverheadMB:         1638,
		PinnedMemoryMB:     4096,
		PageablePoolMB:     1024,
		ConcurrentGPUTasks: 2,
		MaxPartitionMB:     512,
	}
}

func TestSize(t *testing.T) {
	tests := []struct {
		mb   int
		want string
	}{
		{16384, "16 GiB"},
		{512, "512 MiB"},
		{0, "0 B"},
		{-1024, "-1.0 GiB"},
	}
	for _, tt := range tests {
		if got := Size(tt.mb); got != tt.want {
			t.Errorf("Size(%d) = %q, want %q", tt.mb, got, tt.want)
		}
	}
}

func TestRecommendation(t *testing.T) {
	node := models.NodeShape{Name: "n1-standard-8", CoreCount: 8, MemoryMB: 65536, GPUMemoryMB: 16384}
	out := Recommendation(node, gpuRecommendation())

	for _, want := range []string{
		"n1-standard-8",
		"16 GiB (16384 MB)",
		"Concurrent GPU tasks",
		"spark.executor.memory",
		"16384m",
		"spark.rapids.sql.concurrentGpuTasks",
		"free",
		"GPU x",
		"% allocated",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q\n%s", want, out)
		}
	}
}

func TestRecommendationWithoutGPU(t *testing.T) {
	rec := gpuRecommendation()
	rec.ConcurrentGPUTasks = 0

	out := Recommendation(models.NodeShape{CoreCount: 8, MemoryMB: 65536}, rec)

	if strings.Contains(out, "Concurrent GPU tasks") {
		t.Error("expected no GPU task row for a CPU-only node")
	}
	if !strings.Contains(out, "CPU") {
		t.Errorf("expected CPU badge, got\n%s", out)
	}
	if !strings.Contains(out, "8 cores / 65536 MB") {
		t.Errorf("expected synthesized label, got\n%s", out)
	}
}

func TestBatch(t *testing.T) {
	rec := gpuRecommendation()
	out := Batch([]models.NodeRecommendation{
		{Node: models.NodeShape{Name: "gpu", CoreCount: 8, MemoryMB: 65536, GPUMemoryMB: 16384}, Recommendation: &rec},
		{Node: models.NodeShape{Name: "broken", CoreCount: 0, MemoryMB: 1024}, Error: "invalid core_count: must be positive, got 0"},
	})

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[0], "GPU TASKS") {
		t.Errorf("expected header row, got %q", lines[0])
	}
	if !strings.Contains(lines[1], "gpu") || !strings.Contains(lines[1], "16 GiB") {
		t.Errorf("unexpected first row %q", lines[1])
	}
	if !strings.Contains(lines[2], "error: invalid core_count") {
		t.Errorf("expected error row, got %q", lines[2])
	}
}

func TestBatchEmpty(t *testing.T) {
	if out := Batch(nil); !strings.Contains(out, "No nodes") {
		t.Errorf("expected empty message, got %q", out)
	}
}

func TestBatchRow(t *testing.T) {
	rec := gpuRecommendation()
	rec.ConcurrentGPUTasks = 0
	row := BatchRow(models.NodeRecommendation{
		Node:           models.NodeShape{Name: "cpu", CoreCount: 8, MemoryMB: 65536},
		Recommendation: &rec,
	})

	want := []string{"cpu", "8", "64 GiB", "16 GiB", "6.6 GiB", "-"}
	if len(row) != len(want) {
		t.Fatalf("expected %d cells, got %v", len(want), row)
	}
	for i := range want {
		if row[i] != want[i] {
			t.Errorf("cell %d = %q, want %q", i, row[i], want[i])
		}
	}
}

func TestInspection(t *testing.T) {
	rec := gpuRecommendation()
	in := &models.ClusterInspection{
		Provider:          "dataproc",
		ClusterName:       "etl",
		Zone:              "us-central1-a",
		WorkerMachineType: "n2-standard-8",
		WorkerCount:       2,
		Worker:            models.NodeShape{Name: "n2-standard-8", CoreCount: 8, MemoryMB: 32768},
		SparkProperties:   map[string]string{"spark.executor.cores": "4"},
		Incompatibilities: []models.Incompatibility{{
			Criterion: models.CriterionMachineType,
			Current:   "n2-standard-8",
			Suggested: "n1-standard-8",
			Comment:   "switch the worker machine type",
		}},
		Recommendation: &rec,
	}

	out := Inspection(in)
	for _, want := range []string{
		"DATAPROC cluster: etl",
		"us-central1-a",
		"2 x n2-standard-8",
		"1 compatibility finding(s)",
		"n2-standard-8 -> n1-standard-8",
		"Current Spark properties",
		"Executor recommendation",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q\n%s", want, out)
		}
	}
}

func TestInspectionRecommendationError(t *testing.T) {
	out := Inspection(&models.ClusterInspection{
		Provider:            "emr",
		ClusterID:           "j-123",
		RecommendationError: "invalid memory_mb: must be positive, got 0",
		Incompatibilities:   []models.Incompatibility{},
	})

	if !strings.Contains(out, "EMR cluster: j-123") {
		t.Errorf("expected cluster id fallback, got\n%s", out)
	}
	if !strings.Contains(out, "Compatible with GPU acceleration") {
		t.Error("expected compatible status")
	}
	if !strings.Contains(out, "No recommendation: invalid memory_mb") {
		t.Error("expected recommendation error")
	}
}

func TestInfrastructure(t *testing.T) {
	rec := gpuRecommendation()
	out := Infrastructure(&models.InfrastructureResponse{
		Source:     "vsphere",
		Datacenter: "DC0",
		Hosts:      []models.DiscoveredHost{{Cluster: "c1", Node: models.NodeShape{Name: "esx-1", CoreCount: 8, MemoryMB: 65536}}},
		Results: []models.NodeRecommendation{{
			Node:           models.NodeShape{Name: "esx-1", CoreCount: 8, MemoryMB: 65536},
			Recommendation: &rec,
		}},
		DiscoveredAt: time.Now().Add(-2 * time.Minute),
	})

	for _, want := range []string{"DC0", "Usable hosts", "esx-1", "minutes ago"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q\n%s", want, out)
		}
	}
}

func TestConstants(t *testing.T) {
	out := Constants(models.ClusterConstants{
		MaxPinnedMemoryMB:       4096,
		DefaultPageablePoolMB:   1024,
		MaxGPUConcurrent:        4,
		GPUMemPerTaskMB:         7500,
		HeapPerCoreMB:           2048,
		HeapOverheadFraction:    0.1,
		SystemReserveMB:         2048,
		MaxSQLFilesPartitionsMB: 512,
	}, "embedded defaults")

	for _, want := range []string{"embedded defaults", "heap_overhead_fraction", "0.1", "7500 MB"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q\n%s", want, out)
		}
	}
}
