// ABOUTME: HTTP handlers for Dataproc and EMR cluster inspection
// ABOUTME: Accepts describe output and returns worker shape, GPU findings, and sizing

package handlers

import (
	"net/http"

	"github.com/markalston/spark-sizing-advisor/models"
)

// InspectDataproc inspects `gcloud dataproc clusters describe` output.
func (h *Handler) InspectDataproc(w http.ResponseWriter, r *http.Request) {
	h.inspect(w, r, "dataproc")
}

// InspectEMR inspects `aws emr describe-cluster` output.
func (h *Handler) InspectEMR(w http.ResponseWriter, r *http.Request) {
	h.inspect(w, r, "emr")
}

func (h *Handler) inspect(w http.ResponseWriter, r *http.Request, provider string) {
	var req models.InspectRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	if req.Content == "" {
		h.writeError(w, "content is required", http.StatusBadRequest)
		return
	}

	inspection, err := h.calc.Inspect(provider, req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, inspection)
}
