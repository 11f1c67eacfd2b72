// ABOUTME: Cluster identifiers substituted into rendered bootstrap commands
// ABOUTME: Request and response types for the bootstrap rendering endpoint

package models

// ClusterSpec names the cluster a bootstrap command creates. Which fields are
// required depends on the provider being rendered.
type ClusterSpec struct {
	ClusterName       string `json:"cluster_name,omitempty" yaml:"cluster_name,omitempty"`
	Region            string `json:"region,omitempty" yaml:"region,omitempty"`
	Zone              string `json:"zone,omitempty" yaml:"zone,omitempty"`
	MasterMachineType string `json:"master_machine_type,omitempty" yaml:"master_machine_type,omitempty"`
	WorkerMachineType string `json:"worker_machine_type,omitempty" yaml:"worker_machine_type,omitempty"`
	WorkerCount       int    `json:"worker_count,omitempty" yaml:"worker_count,omitempty"`
	ImageVersion      string `json:"image_version,omitempty" yaml:"image_version,omitempty"`
	ReleaseLabel      string `json:"release_label,omitempty" yaml:"release_label,omitempty"`
	GPUType           string `json:"gpu_type,omitempty" yaml:"gpu_type,omitempty"`
	GPUCount          int    `json:"gpu_count,omitempty" yaml:"gpu_count,omitempty"`
}

// BootstrapRequest asks for bootstrap text sized for Node.
type BootstrapRequest struct {
	Cluster ClusterSpec `json:"cluster"`
	Node    NodeShape   `json:"node"`
}

// BootstrapResponse carries rendered bootstrap text and the recommendation behind it.
type BootstrapResponse struct {
	Provider       string                 `json:"provider"`
	Content        string                 `json:"content"`
	Recommendation ExecutorRecommendation `json:"recommendation"`
}
