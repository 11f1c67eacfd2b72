// ABOUTME: Declarative route table for API endpoints
// ABOUTME: Defines all routes with their HTTP methods and handlers

package handlers

import (
	"net/http"

	"github.com/markalston/spark-sizing-advisor/middleware"
)

// Route defines an API endpoint with its HTTP method and handler.
type Route struct {
	Method  string           // HTTP method (GET, POST, etc.)
	Path    string           // URL path (e.g., "/api/v1/health")
	Handler http.HandlerFunc // Handler function
}

// Routes returns all API routes for registration.
func (h *Handler) Routes() []Route {
	return []Route{
		// Health & constants
		{Method: http.MethodGet, Path: "/api/v1/health", Handler: h.Health},
		{Method: http.MethodGet, Path: "/api/v1/constants", Handler: h.GetConstants},
		{Method: http.MethodGet, Path: "/api/v1/openapi.yaml", Handler: h.OpenAPISpec},

		// Recommendations
		{Method: http.MethodPost, Path: "/api/v1/recommend", Handler: h.Recommend},
		{Method: http.MethodPost, Path: "/api/v1/recommend/batch", Handler: h.RecommendBatch},

		// Bootstrap rendering
		{Method: http.MethodPost, Path: "/api/v1/bootstrap/{provider}", Handler: h.RenderBootstrap},

		// Cluster inspection
		{Method: http.MethodPost, Path: "/api/v1/inspect/dataproc", Handler: h.InspectDataproc},
		{Method: http.MethodPost, Path: "/api/v1/inspect/emr", Handler: h.InspectEMR},

		// Infrastructure
		{Method: http.MethodGet, Path: "/api/v1/infrastructure/vsphere", Handler: h.GetVSphereInfrastructure},
	}
}

// Register adds every route to mux wrapped in the given middleware. Each path
// also accepts OPTIONS so CORS preflight reaches the middleware.
func (h *Handler) Register(mux *http.ServeMux, middlewares ...middleware.Middleware) {
	preflight := make(map[string]bool)
	for _, route := range h.Routes() {
		handler := middleware.Chain(route.Handler, middlewares...)
		mux.HandleFunc(route.Method+" "+route.Path, handler)
		if !preflight[route.Path] {
			mux.HandleFunc(http.MethodOptions+" "+route.Path, handler)
			preflight[route.Path] = true
		}
	}
}
