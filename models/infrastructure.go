// ABOUTME: Data models for discovered on-prem infrastructure
// ABOUTME: vSphere hosts expressed as node shapes with their recommendations

package models

import "time"

// DiscoveredHost is an ESXi host usable as a Spark worker
type DiscoveredHost struct {
	Cluster     string    `json:"cluster"`
	Node        NodeShape `json:"node"`
	PowerState  string    `json:"power_state"`
	Maintenance bool      `json:"maintenance"`
}

// InfrastructureResponse lists discovered hosts and a recommendation per host
type InfrastructureResponse struct {
	Source       string               `json:"source"` // "vsphere"
	Datacenter   string               `json:"datacenter"`
	Hosts        []DiscoveredHost     `json:"hosts"`
	Results      []NodeRecommendation `json:"results"`
	DiscoveredAt time.Time            `json:"discovered_at"`
}
