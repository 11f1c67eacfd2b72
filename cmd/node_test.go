package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/markalston/spark-sizing-advisor/models"
)

func TestNodeFlagsShape(t *testing.T) {
	tests := []struct {
		name  string
		flags nodeFlags
		want  models.NodeShape
	}{
		{
			name:  "explicit values",
			flags: nodeFlags{cores: 8, memoryMB: 65536, gpuMemoryMB: 16384},
			want:  models.NodeShape{CoreCount: 8, MemoryMB: 65536, GPUMemoryMB: 16384},
		},
		{
			name:  "GPU model sets memory and count",
			flags: nodeFlags{cores: 8, memoryMB: 65536, gpuName: "t4"},
			want:  models.NodeShape{CoreCount: 8, MemoryMB: 65536, GPUName: "T4", GPUMemoryMB: 15360, GPUCount: 1},
		},
		{
			name:  "explicit GPU memory wins over model",
			flags: nodeFlags{cores: 8, memoryMB: 65536, gpuName: "A100", gpuMemoryMB: 81920, gpuCount: 8},
			want:  models.NodeShape{CoreCount: 8, MemoryMB: 65536, GPUName: "A100", GPUMemoryMB: 81920, GPUCount: 8},
		},
		{
			name:  "GCE machine type",
			flags: nodeFlags{machineType: "n1-standard-16"},
			want:  models.NodeShape{Name: "n1-standard-16", CoreCount: 16, MemoryMB: 61440},
		},
		{
			name:  "EC2 instance type with overrides",
			flags: nodeFlags{machineType: "g4dn.2xlarge", name: "workers", memoryMB: 30000},
			want:  models.NodeShape{Name: "workers", CoreCount: 8, MemoryMB: 30000, GPUName: "T4", GPUMemoryMB: 15360, GPUCount: 1},
		},
		{
			name:  "negative values pass through for validation",
			flags: nodeFlags{cores: 4, memoryMB: 8192, gpuMemoryMB: -1},
			want:  models.NodeShape{CoreCount: 4, MemoryMB: 8192, GPUMemoryMB: -1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.flags.shape()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("shape mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNodeFlagsShape_Errors(t *testing.T) {
	tests := []struct {
		name  string
		flags nodeFlags
	}{
		{"unknown GPU", nodeFlags{cores: 4, memoryMB: 8192, gpuName: "H100"}},
		{"bad machine type", nodeFlags{machineType: "not a machine"}},
		{"unknown family", nodeFlags{machineType: "z9-standard-8"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.flags.shape()
			if !errors.Is(err, models.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestParseNodeSpec(t *testing.T) {
	tests := []struct {
		spec string
		want models.NodeShape
	}{
		{"n1-highmem-8", models.NodeShape{Name: "n1-highmem-8", CoreCount: 8, MemoryMB: 53248}},
		{"name=big, cores=32, memory=262144, gpu=A100", models.NodeShape{Name: "big", CoreCount: 32, MemoryMB: 262144, GPUName: "A100", GPUMemoryMB: 40960, GPUCount: 1}},
		{"machine-type=m5.2xlarge,name=cpu", models.NodeShape{Name: "cpu", CoreCount: 8, MemoryMB: 32768}},
		{"core_count=4,memory_mb=16384,gpu_memory_mb=12288,gpu_count=2", models.NodeShape{CoreCount: 4, MemoryMB: 16384, GPUMemoryMB: 12288, GPUCount: 2}},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			got, err := parseNodeSpec(tt.spec)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("spec mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseNodeSpec_Errors(t *testing.T) {
	for _, spec := range []string{
		"cores=eight,memory=1024",
		"cores=8,ram=1024",
		"cores=8,memory",
	} {
		t.Run(spec, func(t *testing.T) {
			_, err := parseNodeSpec(spec)
			if !errors.Is(err, models.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestReadNodesFile(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "nodes.yaml")
	os.WriteFile(yamlPath, []byte(`nodes:
  - name: gpu
    core_count: 8
    memory_mb: 65536
    gpu_memory_mb: 16384
  - name: cpu
    core_count: 16
    memory_mb: 131072
`), 0o600)

	jsonPath := filepath.Join(dir, "nodes.json")
	os.WriteFile(jsonPath, []byte(`{"nodes": [{"name": "json", "core_count": 4, "memory_mb": 16384}]}`), 0o600)

	nodes, err := readNodesFile(yamlPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []models.NodeShape{
		{Name: "gpu", CoreCount: 8, MemoryMB: 65536, GPUMemoryMB: 16384},
		{Name: "cpu", CoreCount: 16, MemoryMB: 131072},
	}
	if diff := cmp.Diff(want, nodes); diff != "" {
		t.Errorf("yaml nodes mismatch (-want +got):\n%s", diff)
	}

	nodes, err = readNodesFile(jsonPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(nodes) != 1 || nodes[0].Name != "json" {
		t.Errorf("unexpected json nodes %+v", nodes)
	}
}

func TestReadNodesFile_Errors(t *testing.T) {
	if _, err := readNodesFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	os.WriteFile(bad, []byte("nodes: [unterminated"), 0o600)
	if _, err := readNodesFile(bad); !errors.Is(err, models.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for malformed file, got %v", err)
	}
}
