package services

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSupportedGPU(t *testing.T) {
	tests := []struct {
		input string
		want  string
		ok    bool
	}{
		{"Tesla T4", "T4", true},
		{"nvidia-tesla-v100", "V100", true},
		{"NVIDIA A100-SXM4-40GB", "A100", true},
		{"NVIDIA A10G", "A10G", true},
		{"Tesla K80", "K80", true},
		{"tesla-p100", "P100", true},
		{"NVIDIA H100 80GB HBM3", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseSupportedGPU(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGPUMemoryMB(t *testing.T) {
	mb, ok := GPUMemoryMB("t4")
	require.True(t, ok)
	assert.Equal(t, 15360, mb)

	_, ok = GPUMemoryMB("H100")
	assert.False(t, ok)
}

func TestParseNvidiaSMIMemory(t *testing.T) {
	data, err := os.ReadFile("testdata/nvidia-smi-memory.txt")
	require.NoError(t, err)

	count, memory, err := ParseNvidiaSMIMemory(string(data))
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, 15360, memory)
}

func TestParseNvidiaSMIMemory_Unrecognized(t *testing.T) {
	_, _, err := ParseNvidiaSMIMemory("NVIDIA-SMI has failed because it couldn't communicate with the NVIDIA driver")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unrecognized GPU memory output")
}

func TestParseNvidiaSMIDevice(t *testing.T) {
	gpu, err := ParseNvidiaSMIDevice("\nTesla T4\nTesla T4\n")
	require.NoError(t, err)
	assert.Equal(t, "T4", gpu)

	_, err = ParseNvidiaSMIDevice("Quadro RTX 8000\n")
	assert.Error(t, err)

	_, err = ParseNvidiaSMIDevice("   \n")
	assert.Error(t, err)
}
