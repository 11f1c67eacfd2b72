package handlers

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestOpenAPISpec_Served(t *testing.T) {
	srv := newTestServer(t, newTestHandler(t))

	resp, err := http.Get(srv.URL + "/api/v1/openapi.yaml")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/yaml" {
		t.Errorf("Expected application/yaml, got %q", ct)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.HasPrefix(string(body), "openapi: 3") {
		t.Errorf("Expected an OpenAPI 3 document, got %.40q", body)
	}
}

func TestOpenAPISpec_DocumentsEveryRoute(t *testing.T) {
	var doc struct {
		Paths map[string]map[string]any `yaml:"paths"`
	}
	if err := yaml.Unmarshal(openapiSpec, &doc); err != nil {
		t.Fatalf("openapi.yaml does not parse: %v", err)
	}

	for _, route := range newTestHandler(t).Routes() {
		ops, ok := doc.Paths[route.Path]
		if !ok {
			t.Errorf("Route %s is not documented", route.Path)
			continue
		}
		if _, ok := ops[strings.ToLower(route.Method)]; !ok {
			t.Errorf("Route %s %s is not documented", route.Method, route.Path)
		}
	}
}
