// ABOUTME: HTTP handler for on-prem worker discovery through vSphere
// ABOUTME: Caches discovered hosts and sizes executors for each of them

package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

const (
	vsphereCacheKey  = "infrastructure:vsphere"
	discoveryTimeout = 30 * time.Second
)

// GetVSphereInfrastructure returns the usable vSphere hosts with a
// recommendation per host. Results are cached for VSPHERE_CACHE_TTL; pass
// ?refresh=true to rediscover.
func (h *Handler) GetVSphereInfrastructure(w http.ResponseWriter, r *http.Request) {
	if h.discoverer == nil {
		h.writeError(w, "vSphere not configured. Set VSPHERE_HOST, VSPHERE_USERNAME, VSPHERE_PASSWORD, and VSPHERE_DATACENTER environment variables.", http.StatusServiceUnavailable)
		return
	}

	if r.URL.Query().Get("refresh") == "true" {
		h.cache.Clear(vsphereCacheKey)
	}

	ttl := time.Duration(h.cfg.VSphereCacheTTL) * time.Second
	result, err := h.cache.GetOrLoadWithTTL(vsphereCacheKey, ttl, h.discoverInfrastructure)
	if err != nil {
		slog.Error("vSphere discovery failed", "error", err)
		h.writeError(w, "Infrastructure service temporarily unavailable", http.StatusServiceUnavailable)
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

// discoverInfrastructure runs detached from any single request because its
// result is shared by every caller waiting on the load.
func (h *Handler) discoverInfrastructure() (any, error) {
	ctx, cancel := context.WithTimeout(context.Background(), discoveryTimeout)
	defer cancel()

	hosts, err := h.discoverer.DiscoverHosts(ctx)
	if err != nil {
		return nil, err
	}
	return h.calc.SizeHosts("vsphere", h.discoverer.Datacenter(), hosts), nil
}
