// ABOUTME: API request and response models for the sizing service
// ABOUTME: JSON-serializable structures shared by handlers and the CLI client

package models

// NodeRecommendation pairs a node shape with its recommendation or the reason none was produced
type NodeRecommendation struct {
	Node            NodeShape               `json:"node"`
	Recommendation  *ExecutorRecommendation `json:"recommendation,omitempty"`
	SparkProperties []SparkProperty         `json:"spark_properties,omitempty"`
	Error           string                  `json:"error,omitempty"`
}

// BatchRecommendRequest is the body of a batch recommendation request
type BatchRecommendRequest struct {
	Nodes []NodeShape `json:"nodes"`
}

// BatchRecommendResponse holds one result per requested node, in request order
type BatchRecommendResponse struct {
	Results []NodeRecommendation `json:"results"`
}

// HealthResponse reports service readiness
type HealthResponse struct {
	Status            string `json:"status"`
	ConstantsSource   string `json:"constants_source"`
	VSphereConfigured bool   `json:"vsphere_configured"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error      string `json:"error"`
	Details    string `json:"details,omitempty"`
	Code       int    `json:"code"`
	RetryAfter int    `json:"retry_after,omitempty"`
}
