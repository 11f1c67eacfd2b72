// ABOUTME: HTTP handlers for the sizing API
// ABOUTME: Shared handler state plus JSON request decoding and response helpers

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/markalston/spark-sizing-advisor/cache"
	"github.com/markalston/spark-sizing-advisor/config"
	"github.com/markalston/spark-sizing-advisor/models"
	"github.com/markalston/spark-sizing-advisor/services"
)

// maxRequestBodySize limits JSON request bodies to 1MB to prevent DOS attacks
const maxRequestBodySize = 1 << 20 // 1MB

// hostDiscoverer lists on-prem hosts usable as Spark workers
type hostDiscoverer interface {
	DiscoverHosts(ctx context.Context) ([]models.DiscoveredHost, error)
	Datacenter() string
}

type Handler struct {
	cfg             *config.Config
	cache           *cache.Cache
	calc            *services.Calculator
	constantsSource string
	discoverer      hostDiscoverer
}

func NewHandler(cfg *config.Config, c *cache.Cache, calc *services.Calculator, constantsSource string) *Handler {
	h := &Handler{
		cfg:             cfg,
		cache:           c,
		calc:            calc,
		constantsSource: constantsSource,
	}

	// vSphere discovery is optional
	if cfg != nil && cfg.VSphereConfigured() {
		h.discoverer = services.NewVSphereClient(services.VSphereCredentials{
			Host:       cfg.VSphereHost,
			Username:   cfg.VSphereUsername,
			Password:   cfg.VSpherePassword,
			Datacenter: cfg.VSphereDatacenter,
			Insecure:   cfg.VSphereInsecure,
			AllProxy:   cfg.VSphereAllProxy,
		})
	}

	return h
}

func (h *Handler) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	h.writeJSON(w, code, models.ErrorResponse{Error: message, Code: code})
}

func (h *Handler) writeErrorDetails(w http.ResponseWriter, message, details string, code int) {
	h.writeJSON(w, code, models.ErrorResponse{Error: message, Details: details, Code: code})
}

// decodeJSON reads a size-limited JSON body into v, writing the error response
// itself and returning false on failure.
func (h *Handler) decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.writeError(w, "Request body too large", http.StatusRequestEntityTooLarge)
			return false
		}
		h.writeErrorDetails(w, "Invalid JSON", err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

// writeServiceError maps typed service errors onto HTTP status codes.
func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrInvalidInput):
		h.writeErrorDetails(w, "Invalid input", err.Error(), http.StatusBadRequest)
	case errors.Is(err, models.ErrConfiguration):
		slog.Error("Sizing configuration error", "error", err)
		h.writeError(w, "Sizing constants are misconfigured", http.StatusInternalServerError)
	default:
		slog.Error("Request failed", "error", err)
		h.writeError(w, "Internal server error", http.StatusInternalServerError)
	}
}
