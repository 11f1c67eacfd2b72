// ABOUTME: HTTP handlers for executor recommendations
// ABOUTME: Single node and batch sizing endpoints

package handlers

import (
	"fmt"
	"net/http"

	"github.com/markalston/spark-sizing-advisor/models"
)

// maxBatchNodes bounds the work a single batch request can ask for
const maxBatchNodes = 1000

// Recommend sizes executors for one node shape.
func (h *Handler) Recommend(w http.ResponseWriter, r *http.Request) {
	var node models.NodeShape
	if !h.decodeJSON(w, r, &node) {
		return
	}

	rec, err := h.calc.Recommend(node)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, models.NodeRecommendation{
		Node:            node,
		Recommendation:  &rec,
		SparkProperties: rec.SparkProperties(),
	})
}

// RecommendBatch sizes executors for several node shapes. Invalid nodes are
// reported per result; the request as a whole still succeeds.
func (h *Handler) RecommendBatch(w http.ResponseWriter, r *http.Request) {
	var req models.BatchRecommendRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	if len(req.Nodes) == 0 {
		h.writeError(w, "At least one node is required", http.StatusBadRequest)
		return
	}
	if len(req.Nodes) > maxBatchNodes {
		h.writeError(w, fmt.Sprintf("At most %d nodes per request", maxBatchNodes), http.StatusBadRequest)
		return
	}

	h.writeJSON(w, http.StatusOK, models.BatchRecommendResponse{
		Results: h.calc.RecommendAll(req.Nodes),
	})
}
