// ABOUTME: Data models for cluster introspection and GPU compatibility findings
// ABOUTME: Shared by the Dataproc/EMR parsers, HTTP handlers, and CLI report

package models

// Compatibility criteria names
const (
	CriterionImageVersion    = "imageVersion"
	CriterionReleaseLabel    = "releaseLabel"
	CriterionMachineType     = "machineType"
	CriterionWorkerLocalSSDs = "workerLocalSSDs"
)

// Incompatibility is a cluster setting that prevents or hurts GPU acceleration,
// with the suggested replacement value.
type Incompatibility struct {
	Criterion string `json:"criterion" yaml:"criterion"`
	Current   string `json:"current" yaml:"current"`
	Suggested string `json:"suggested" yaml:"suggested"`
	Comment   string `json:"comment" yaml:"comment"`
}

// GPUInfo describes the accelerators attached to each worker
type GPUInfo struct {
	Name     string `json:"name,omitempty" yaml:"name,omitempty"`
	Count    int    `json:"count" yaml:"count"`
	MemoryMB int    `json:"memory_mb" yaml:"memory_mb"`
}

// ClusterInspection summarizes an existing cluster and what executor settings
// its workers should run with.
type ClusterInspection struct {
	Provider          string            `json:"provider" yaml:"provider"` // "dataproc" or "emr"
	ClusterName       string            `json:"cluster_name,omitempty" yaml:"cluster_name,omitempty"`
	ClusterID         string            `json:"cluster_id,omitempty" yaml:"cluster_id,omitempty"`
	State             string            `json:"state,omitempty" yaml:"state,omitempty"`
	Region            string            `json:"region,omitempty" yaml:"region,omitempty"`
	Zone              string            `json:"zone,omitempty" yaml:"zone,omitempty"`
	SoftwareVersion   string            `json:"software_version,omitempty" yaml:"software_version,omitempty"`
	WorkerMachineType string            `json:"worker_machine_type" yaml:"worker_machine_type"`
	WorkerCount       int               `json:"worker_count" yaml:"worker_count"`
	WorkerLocalSSDs   int               `json:"worker_local_ssds" yaml:"worker_local_ssds"`
	Worker            NodeShape         `json:"worker" yaml:"worker"`
	GPU               *GPUInfo          `json:"gpu,omitempty" yaml:"gpu,omitempty"`
	SparkProperties   map[string]string `json:"spark_properties,omitempty" yaml:"spark_properties,omitempty"`
	HistoryDirs       []string          `json:"history_dirs,omitempty" yaml:"history_dirs,omitempty"`
	Incompatibilities []Incompatibility `json:"incompatibilities" yaml:"incompatibilities"`

	Recommendation        *ExecutorRecommendation `json:"recommendation,omitempty" yaml:"recommendation,omitempty"`
	RecommendedProperties []SparkProperty         `json:"recommended_properties,omitempty" yaml:"recommended_properties,omitempty"`
	RecommendationError   string                  `json:"recommendation_error,omitempty" yaml:"recommendation_error,omitempty"`
}

// Compatible reports whether no incompatibilities were found
func (c ClusterInspection) Compatible() bool {
	return len(c.Incompatibilities) == 0
}

// InspectRequest carries raw CLI output to introspect. Content is the cluster
// describe output; the optional fields refine the worker shape.
type InspectRequest struct {
	Content                string `json:"content"`
	MachineTypeDescription string `json:"machine_type_description,omitempty"`
	NvidiaSMIMemory        string `json:"nvidia_smi_memory,omitempty"`
	NvidiaSMIDevice        string `json:"nvidia_smi_device,omitempty"`
}
