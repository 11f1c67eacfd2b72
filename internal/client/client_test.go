// ABOUTME: Tests for the sizing API client
// ABOUTME: Uses httptest to mock backend responses and to serve the real handlers

package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/markalston/spark-sizing-advisor/cache"
	"github.com/markalston/spark-sizing-advisor/config"
	"github.com/markalston/spark-sizing-advisor/handlers"
	"github.com/markalston/spark-sizing-advisor/models"
	"github.com/markalston/spark-sizing-advisor/services"
)

func TestHealth_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/health" {
			t.Errorf("expected path /api/v1/health, got %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(models.HealthResponse{
			Status:          "ok",
			ConstantsSource: "embedded defaults",
		})
	}))
	defer server.Close()

	c := New(server.URL)
	resp, err := c.Health(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Status != "ok" {
		t.Errorf("expected status ok, got %s", resp.Status)
	}
	if resp.ConstantsSource != "embedded defaults" {
		t.Errorf("expected embedded defaults, got %s", resp.ConstantsSource)
	}
}

func TestHealth_ConnectionError(t *testing.T) {
	c := New("http://localhost:99999")
	_, err := c.Health(context.Background())
	if err == nil {
		t.Fatal("expected connection error, got nil")
	}
	if !strings.Contains(err.Error(), "cannot connect to backend") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestHealth_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
		json.NewEncoder(w).Encode(models.HealthResponse{Status: "ok"})
	}))
	defer server.Close()

	c := New(server.URL)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Health(ctx)
	if err == nil || err.Error() != "request canceled" {
		t.Errorf("expected request canceled, got %v", err)
	}
}

func TestHealth_ContextTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
		json.NewEncoder(w).Encode(models.HealthResponse{Status: "ok"})
	}))
	defer server.Close()

	c := New(server.URL)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := c.Health(ctx)
	if err == nil || err.Error() != "request timed out" {
		t.Errorf("expected request timed out, got %v", err)
	}
}

func TestErrorResponse_BadRequestMatchesInvalidInput(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(models.ErrorResponse{
			Error:   "Invalid input",
			Details: "invalid core_count: must be positive, got 0",
			Code:    http.StatusBadRequest,
		})
	}))
	defer server.Close()

	_, err := New(server.URL).Recommend(context.Background(), models.NodeShape{MemoryMB: 1024})
	if !errors.Is(err, models.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T", err)
	}
	if apiErr.StatusCode != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", apiErr.StatusCode)
	}
	if !strings.Contains(err.Error(), "core_count") {
		t.Errorf("expected details in error, got %q", err.Error())
	}
}

func TestErrorResponse_ServerErrorIsNotInvalidInput(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("upstream down"))
	}))
	defer server.Close()

	_, err := New(server.URL).VSphereInfrastructure(context.Background(), false)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if errors.Is(err, models.ErrInvalidInput) {
		t.Error("503 must not match ErrInvalidInput")
	}
	if !strings.Contains(err.Error(), "status 503") {
		t.Errorf("expected status in error, got %q", err.Error())
	}
}

func TestVSphereInfrastructure_Refresh(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/infrastructure/vsphere" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("refresh") != "true" {
			t.Errorf("expected refresh=true, got %q", r.URL.RawQuery)
		}
		json.NewEncoder(w).Encode(models.InfrastructureResponse{Source: "vsphere", Datacenter: "dc1"})
	}))
	defer server.Close()

	infra, err := New(server.URL).VSphereInfrastructure(context.Background(), true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if infra.Datacenter != "dc1" {
		t.Errorf("expected datacenter dc1, got %s", infra.Datacenter)
	}
}

// newBackend serves the real handlers so request and response shapes stay in sync.
func newBackend(t *testing.T) *httptest.Server {
	t.Helper()

	calc, err := services.NewCalculator(config.DefaultConstants())
	if err != nil {
		t.Fatalf("NewCalculator: %v", err)
	}
	c := cache.New(time.Minute)
	t.Cleanup(c.Close)

	h := handlers.NewHandler(&config.Config{}, c, calc, config.DefaultConstantsSource)
	mux := http.NewServeMux()
	h.Register(mux)

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestAgainstHandlers_Recommend(t *testing.T) {
	c := New(newBackend(t).URL)

	result, err := c.Recommend(context.Background(), models.NodeShape{CoreCount: 8, MemoryMB: 65536, GPUMemoryMB: 16384})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Recommendation == nil {
		t.Fatal("expected recommendation")
	}
	if result.Recommendation.HeapMB != 16384 {
		t.Errorf("expected heap 16384, got %d", result.Recommendation.HeapMB)
	}
	if result.Recommendation.ConcurrentGPUTasks != 2 {
		t.Errorf("expected 2 GPU tasks, got %d", result.Recommendation.ConcurrentGPUTasks)
	}
}

func TestAgainstHandlers_RecommendBatch(t *testing.T) {
	c := New(newBackend(t).URL)

	results, err := c.RecommendBatch(context.Background(), []models.NodeShape{
		{Name: "good", CoreCount: 4, MemoryMB: 16384},
		{Name: "bad", CoreCount: 0, MemoryMB: 16384},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Recommendation == nil || results[0].Error != "" {
		t.Errorf("expected first node to succeed, got %+v", results[0])
	}
	if results[1].Error == "" {
		t.Error("expected second node to carry an error")
	}
}

func TestAgainstHandlers_Constants(t *testing.T) {
	c := New(newBackend(t).URL)

	constants, err := c.Constants(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if constants != config.DefaultConstants() {
		t.Errorf("expected default constants, got %+v", constants)
	}
}

func TestAgainstHandlers_Bootstrap(t *testing.T) {
	c := New(newBackend(t).URL)

	resp, err := c.Bootstrap(context.Background(), "spark-defaults", models.BootstrapRequest{
		Node: models.NodeShape{CoreCount: 8, MemoryMB: 65536},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(resp.Content, "spark.executor.memory") {
		t.Errorf("expected rendered properties, got:\n%s", resp.Content)
	}

	_, err = c.Bootstrap(context.Background(), "nomad", models.BootstrapRequest{
		Node: models.NodeShape{CoreCount: 8, MemoryMB: 65536},
	})
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 APIError, got %v", err)
	}
}

func TestAgainstHandlers_InspectRejectsEmptyContent(t *testing.T) {
	c := New(newBackend(t).URL)

	_, err := c.Inspect(context.Background(), "dataproc", models.InspectRequest{})
	if !errors.Is(err, models.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestAgainstHandlers_VSphereNotConfigured(t *testing.T) {
	c := New(newBackend(t).URL)

	_, err := c.VSphereInfrastructure(context.Background(), false)
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("expected 503 APIError, got %v", err)
	}
}
