// ABOUTME: HTTP handler rendering bootstrap text for a provider
// ABOUTME: Sizes the requested node and substitutes the result into the provider template

package handlers

import (
	"bytes"
	"net/http"
	"slices"
	"strings"

	"github.com/markalston/spark-sizing-advisor/bootstrap"
	"github.com/markalston/spark-sizing-advisor/models"
)

// RenderBootstrap renders bootstrap text for the provider in the path.
// With ?format=text the rendered text is returned as text/plain.
func (h *Handler) RenderBootstrap(w http.ResponseWriter, r *http.Request) {
	provider := r.PathValue("provider")
	if !slices.Contains(bootstrap.Providers(), provider) {
		h.writeErrorDetails(w, "Unknown bootstrap provider",
			"expected one of "+strings.Join(bootstrap.Providers(), ", "), http.StatusNotFound)
		return
	}

	var req models.BootstrapRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	rec, err := h.calc.Recommend(req.Node)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := bootstrap.Render(&buf, provider, bootstrap.Params{Cluster: req.Cluster, Recommendation: rec}); err != nil {
		h.writeServiceError(w, err)
		return
	}

	if r.URL.Query().Get("format") == "text" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		buf.WriteTo(w)
		return
	}

	h.writeJSON(w, http.StatusOK, models.BootstrapResponse{
		Provider:       provider,
		Content:        buf.String(),
		Recommendation: rec,
	})
}
