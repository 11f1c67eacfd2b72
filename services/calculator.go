// ABOUTME: Executor sizing service holding validated cluster constants
// ABOUTME: Computes recommendations for single nodes and batches

package services

import (
	"log/slog"
	"time"

	"github.com/markalston/spark-sizing-advisor/models"
)

// Calculator derives executor recommendations from a fixed set of constants.
// It is safe for concurrent use.
type Calculator struct {
	constants models.ClusterConstants
}

// NewCalculator validates constants and returns a calculator bound to them.
func NewCalculator(constants models.ClusterConstants) (*Calculator, error) {
	if err := constants.Validate(); err != nil {
		return nil, err
	}
	return &Calculator{constants: constants}, nil
}

// Constants returns the constants the calculator was built with
func (c *Calculator) Constants() models.ClusterConstants {
	return c.constants
}

// Recommend computes executor settings for one node shape.
func (c *Calculator) Recommend(node models.NodeShape) (models.ExecutorRecommendation, error) {
	rec, err := models.Recommend(node, c.constants)
	if err != nil {
		slog.Debug("Recommendation rejected", "node", sanitizeForLog(node.Label()), "error", err)
		return models.ExecutorRecommendation{}, err
	}
	slog.Debug("Recommendation computed",
		"node", sanitizeForLog(node.Label()),
		"heap_mb", rec.HeapMB,
		"overhead_mb", rec.OverheadMB,
		"pinned_mb", rec.PinnedMemoryMB,
		"pageable_mb", rec.PageablePoolMB,
		"gpu_tasks", rec.ConcurrentGPUTasks,
	)
	return rec, nil
}

// RecommendNode wraps Recommend into a NodeRecommendation, recording any error
// on the result instead of returning it.
func (c *Calculator) RecommendNode(node models.NodeShape) models.NodeRecommendation {
	result := models.NodeRecommendation{Node: node}
	rec, err := c.Recommend(node)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	result.Recommendation = &rec
	result.SparkProperties = rec.SparkProperties()
	return result
}

// RecommendAll computes a result per node, in input order. A failing node does
// not stop the others.
func (c *Calculator) RecommendAll(nodes []models.NodeShape) []models.NodeRecommendation {
	results := make([]models.NodeRecommendation, len(nodes))
	for i, node := range nodes {
		results[i] = c.RecommendNode(node)
	}
	return results
}

// SizeHosts recommends executors for every discovered host, in host order.
func (c *Calculator) SizeHosts(source, datacenter string, hosts []models.DiscoveredHost) models.InfrastructureResponse {
	if hosts == nil {
		hosts = []models.DiscoveredHost{}
	}
	nodes := make([]models.NodeShape, len(hosts))
	for i, host := range hosts {
		nodes[i] = host.Node
	}
	return models.InfrastructureResponse{
		Source:       source,
		Datacenter:   datacenter,
		Hosts:        hosts,
		Results:      c.RecommendAll(nodes),
		DiscoveredAt: time.Now().UTC(),
	}
}
