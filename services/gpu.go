// ABOUTME: GPU device recognition and nvidia-smi output parsing
// ABOUTME: Maps device names to supported RAPIDS GPUs and their memory size

package services

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// SupportedGPUs lists the GPU models RAPIDS acceleration is sized for, in match order
var SupportedGPUs = []string{"T4", "V100", "K80", "A100", "P100", "A10G"}

// gpuMemoryMB is the device memory per GPU model
var gpuMemoryMB = map[string]int{
	"T4":   15360,
	"V100": 16384,
	"K80":  12288,
	"A100": 40960,
	"P100": 16384,
	"A10G": 24576,
}

// nvidiaSMIMemoryPattern matches lines like "15109 MiB". SSH banners and
// warnings mixed into remote output are ignored.
var nvidiaSMIMemoryPattern = regexp.MustCompile(`(?m)(\d+)\s+MiB`)

// ParseSupportedGPU finds a supported GPU model in a device or accelerator
// name such as "Tesla T4" or "nvidia-tesla-v100".
func ParseSupportedGPU(value string) (string, bool) {
	normalized := strings.ToUpper(value)
	for _, gpu := range SupportedGPUs {
		if strings.Contains(normalized, gpu) {
			return gpu, true
		}
	}
	return "", false
}

// GPUMemoryMB returns the device memory of a supported GPU model.
func GPUMemoryMB(gpu string) (int, bool) {
	mb, ok := gpuMemoryMB[strings.ToUpper(gpu)]
	return mb, ok
}

// ParseNvidiaSMIMemory parses `nvidia-smi --query-gpu=memory.total --format=csv,noheader`
// output into the GPU count and the largest per-GPU memory in MiB.
func ParseNvidiaSMIMemory(output string) (count, maxMemoryMB int, err error) {
	matches := nvidiaSMIMemoryPattern.FindAllStringSubmatch(output, -1)
	if len(matches) == 0 {
		return 0, 0, fmt.Errorf("unrecognized GPU memory output format: %s", sanitizeForLog(truncate(output, 200)))
	}

	for _, m := range matches {
		mb, convErr := strconv.Atoi(m[1])
		if convErr != nil {
			return 0, 0, fmt.Errorf("parsing GPU memory %q: %w", m[1], convErr)
		}
		maxMemoryMB = max(maxMemoryMB, mb)
	}
	return len(matches), maxMemoryMB, nil
}

// ParseNvidiaSMIDevice parses `nvidia-smi --query-gpu=gpu_name --format=csv,noheader`
// output and returns the supported model of the first device.
func ParseNvidiaSMIDevice(output string) (string, error) {
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		gpu, ok := ParseSupportedGPU(line)
		if !ok {
			return "", fmt.Errorf("unrecognized GPU device: %s", sanitizeForLog(line))
		}
		return gpu, nil
	}
	return "", fmt.Errorf("no GPU device found in nvidia-smi output")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
