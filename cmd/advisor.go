// ABOUTME: Sizing backend used by commands, local or remote
// ABOUTME: Local mode runs the calculator in-process; remote mode calls the HTTP API

package cmd

import (
	"bytes"
	"context"
	"fmt"

	"github.com/markalston/spark-sizing-advisor/bootstrap"
	"github.com/markalston/spark-sizing-advisor/config"
	"github.com/markalston/spark-sizing-advisor/internal/client"
	"github.com/markalston/spark-sizing-advisor/models"
	"github.com/markalston/spark-sizing-advisor/services"
)

// advisor is the sizing API as commands see it. *client.Client satisfies it
// for remote mode.
type advisor interface {
	Health(ctx context.Context) (*models.HealthResponse, error)
	Constants(ctx context.Context) (models.ClusterConstants, error)
	Recommend(ctx context.Context, node models.NodeShape) (*models.NodeRecommendation, error)
	RecommendBatch(ctx context.Context, nodes []models.NodeShape) ([]models.NodeRecommendation, error)
	Bootstrap(ctx context.Context, provider string, req models.BootstrapRequest) (*models.BootstrapResponse, error)
	Inspect(ctx context.Context, provider string, req models.InspectRequest) (*models.ClusterInspection, error)
	VSphereInfrastructure(ctx context.Context, refresh bool) (*models.InfrastructureResponse, error)
}

var _ advisor = (*client.Client)(nil)

// hostDiscoverer lists on-prem hosts usable as Spark workers
type hostDiscoverer interface {
	DiscoverHosts(ctx context.Context) ([]models.DiscoveredHost, error)
	Datacenter() string
}

// localAdvisor answers every request in-process
type localAdvisor struct {
	calc            *services.Calculator
	constantsSource string
	discoverer      hostDiscoverer
}

// newAdvisor returns a remote advisor when an API URL is set, otherwise a
// local one built from the environment and --constants.
func newAdvisor() (advisor, error) {
	if url := GetAPIURL(); url != "" {
		return client.New(url), nil
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	path := constantsPath
	if path == "" {
		path = cfg.ConstantsFile
	}
	return newLocalAdvisor(cfg, path)
}

func newLocalAdvisor(cfg *config.Config, path string) (*localAdvisor, error) {
	constants, err := config.LoadConstants(path)
	if err != nil {
		return nil, err
	}
	calc, err := services.NewCalculator(constants)
	if err != nil {
		return nil, err
	}

	a := &localAdvisor{calc: calc, constantsSource: config.ConstantsSource(path)}
	if cfg != nil && cfg.VSphereConfigured() {
		a.discoverer = services.NewVSphereClient(services.VSphereCredentials{
			Host:       cfg.VSphereHost,
			Username:   cfg.VSphereUsername,
			Password:   cfg.VSpherePassword,
			Datacenter: cfg.VSphereDatacenter,
			Insecure:   cfg.VSphereInsecure,
			AllProxy:   cfg.VSphereAllProxy,
		})
	}
	return a, nil
}

func (a *localAdvisor) Health(ctx context.Context) (*models.HealthResponse, error) {
	return &models.HealthResponse{
		Status:            "ok",
		ConstantsSource:   a.constantsSource,
		VSphereConfigured: a.discoverer != nil,
	}, nil
}

func (a *localAdvisor) Constants(ctx context.Context) (models.ClusterConstants, error) {
	return a.calc.Constants(), nil
}

func (a *localAdvisor) Recommend(ctx context.Context, node models.NodeShape) (*models.NodeRecommendation, error) {
	rec, err := a.calc.Recommend(node)
	if err != nil {
		return nil, err
	}
	return &models.NodeRecommendation{
		Node:            node,
		Recommendation:  &rec,
		SparkProperties: rec.SparkProperties(),
	}, nil
}

func (a *localAdvisor) RecommendBatch(ctx context.Context, nodes []models.NodeShape) ([]models.NodeRecommendation, error) {
	if len(nodes) == 0 {
		return nil, &models.InvalidInputError{Field: "nodes", Reason: "at least one node is required"}
	}
	return a.calc.RecommendAll(nodes), nil
}

func (a *localAdvisor) Bootstrap(ctx context.Context, provider string, req models.BootstrapRequest) (*models.BootstrapResponse, error) {
	rec, err := a.calc.Recommend(req.Node)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := bootstrap.Render(&buf, provider, bootstrap.Params{Cluster: req.Cluster, Recommendation: rec}); err != nil {
		return nil, err
	}
	return &models.BootstrapResponse{
		Provider:       provider,
		Content:        buf.String(),
		Recommendation: rec,
	}, nil
}

func (a *localAdvisor) Inspect(ctx context.Context, provider string, req models.InspectRequest) (*models.ClusterInspection, error) {
	return a.calc.Inspect(provider, req)
}

// VSphereInfrastructure discovers hosts directly; a one-shot process has
// nothing cached, so refresh has no effect.
func (a *localAdvisor) VSphereInfrastructure(ctx context.Context, refresh bool) (*models.InfrastructureResponse, error) {
	if a.discoverer == nil {
		return nil, fmt.Errorf("vSphere not configured: set VSPHERE_HOST, VSPHERE_USERNAME, VSPHERE_PASSWORD, and VSPHERE_DATACENTER")
	}

	hosts, err := a.discoverer.DiscoverHosts(ctx)
	if err != nil {
		return nil, fmt.Errorf("vSphere discovery failed: %w", err)
	}
	infra := a.calc.SizeHosts("vsphere", a.discoverer.Datacenter(), hosts)
	return &infra, nil
}
