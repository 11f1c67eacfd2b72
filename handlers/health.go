// ABOUTME: HTTP handlers for health and effective constants
// ABOUTME: Reports readiness and the constants every recommendation uses

package handlers

import (
	"net/http"

	"github.com/markalston/spark-sizing-advisor/models"
)

// Health returns API health status, where the constants came from, and
// whether vSphere discovery is available.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, models.HealthResponse{
		Status:            "ok",
		ConstantsSource:   h.constantsSource,
		VSphereConfigured: h.discoverer != nil,
	})
}

// GetConstants returns the constants the calculator was built with.
func (h *Handler) GetConstants(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.calc.Constants())
}
