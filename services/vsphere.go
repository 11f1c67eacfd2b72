// ABOUTME: vSphere client for on-prem worker discovery via govmomi
// ABOUTME: Lists ESXi cluster hosts and converts them into node shapes for sizing

package services

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/markalston/spark-sizing-advisor/models"
	"github.com/vmware/govmomi"
	"github.com/vmware/govmomi/find"
	"github.com/vmware/govmomi/object"
	"github.com/vmware/govmomi/session"
	"github.com/vmware/govmomi/vim25"
	"github.com/vmware/govmomi/vim25/mo"
	"github.com/vmware/govmomi/vim25/soap"
	"github.com/vmware/govmomi/vim25/types"
)

// VSphereCredentials holds vCenter connection info
type VSphereCredentials struct {
	Host       string
	Username   string
	Password   string
	Datacenter string
	Insecure   bool
	AllProxy   string // optional ssh+socks5:// jumpbox
}

// VSphereClient wraps govmomi client for infrastructure discovery
type VSphereClient struct {
	creds  VSphereCredentials
	client *govmomi.Client
	finder *find.Finder
}

// NewVSphereClient creates a new vSphere client
func NewVSphereClient(creds VSphereCredentials) *VSphereClient {
	return &VSphereClient{
		creds: creds,
	}
}

// Connect establishes connection to vCenter
func (v *VSphereClient) Connect(ctx context.Context) error {
	host := v.creds.Host
	if !strings.HasPrefix(host, "https://") && !strings.HasPrefix(host, "http://") {
		host = "https://" + host
	}

	u, err := url.Parse(host + "/sdk")
	if err != nil {
		return fmt.Errorf("invalid vCenter URL '%s': %w", sanitizeForLog(v.creds.Host), err)
	}
	u.User = url.UserPassword(v.creds.Username, v.creds.Password)

	soapClient := soap.NewClient(u, v.creds.Insecure)
	if v.creds.AllProxy != "" {
		dial, err := NewSOCKS5DialContextFunc(v.creds.AllProxy)
		if err != nil {
			return fmt.Errorf("configuring vSphere proxy: %w", err)
		}
		soapClient.DefaultTransport().DialContext = dial
		slog.Debug("vSphere connections tunneled through SOCKS5 proxy")
	}

	vimClient, err := vim25.NewClient(ctx, soapClient)
	if err != nil {
		return v.connectError(err)
	}

	client := &govmomi.Client{
		Client:         vimClient,
		SessionManager: session.NewManager(vimClient),
	}
	if err := client.Login(ctx, u.User); err != nil {
		return v.connectError(err)
	}

	v.client = client
	v.finder = find.NewFinder(client.Client, true)

	dc, err := v.finder.Datacenter(ctx, v.creds.Datacenter)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			return fmt.Errorf("datacenter '%s' not found - verify the datacenter name", sanitizeForLog(v.creds.Datacenter))
		}
		return fmt.Errorf("error accessing datacenter '%s': %w", sanitizeForLog(v.creds.Datacenter), err)
	}
	v.finder.SetDatacenter(dc)

	slog.Info("vSphere connected successfully")
	slog.Debug("vSphere connection details", "host", v.creds.Host, "datacenter", v.creds.Datacenter)
	return nil
}

// connectError turns common connection failures into actionable messages
func (v *VSphereClient) connectError(err error) error {
	errStr := err.Error()
	host := sanitizeForLog(v.creds.Host)
	switch {
	case strings.Contains(errStr, "connection refused"):
		return fmt.Errorf("connection refused to vCenter at %s - verify the host is reachable", host)
	case strings.Contains(errStr, "no such host"):
		return fmt.Errorf("cannot resolve vCenter hostname '%s' - verify DNS", host)
	case strings.Contains(errStr, "401") || strings.Contains(errStr, "Cannot complete login"):
		return fmt.Errorf("authentication failed - verify username and password")
	case strings.Contains(errStr, "context deadline exceeded") || strings.Contains(errStr, "timeout"):
		return fmt.Errorf("connection timeout to vCenter at %s - check network connectivity", host)
	case strings.Contains(errStr, "certificate") || strings.Contains(errStr, "x509"):
		return fmt.Errorf("SSL certificate error connecting to %s - try setting VSPHERE_INSECURE=true", host)
	default:
		return fmt.Errorf("failed to connect to vCenter at %s: %w", host, err)
	}
}

// Disconnect closes the vCenter connection
func (v *VSphereClient) Disconnect(ctx context.Context) error {
	if v.client != nil {
		return v.client.Logout(ctx)
	}
	return nil
}

// IsConnected returns true if client has an active connection
func (v *VSphereClient) IsConnected() bool {
	return v.client != nil && v.client.Valid()
}

// Hosts lists every host in every compute cluster of the datacenter that can
// run Spark executors: powered on and not in maintenance mode.
func (v *VSphereClient) Hosts(ctx context.Context) ([]models.DiscoveredHost, error) {
	if v.finder == nil {
		return nil, fmt.Errorf("vSphere client is not connected")
	}

	clusters, err := v.finder.ClusterComputeResourceList(ctx, "*")
	if err != nil {
		return nil, fmt.Errorf("listing clusters: %w", err)
	}

	var hosts []models.DiscoveredHost
	for _, cluster := range clusters {
		clusterHosts, err := v.clusterHosts(ctx, cluster)
		if err != nil {
			return nil, fmt.Errorf("getting cluster %s hosts: %w", cluster.Name(), err)
		}
		for _, h := range clusterHosts {
			if h.PowerState != string(types.HostSystemPowerStatePoweredOn) || h.Maintenance {
				slog.Debug("Skipping unavailable host", "host", h.Node.Name, "power_state", h.PowerState, "maintenance", h.Maintenance)
				continue
			}
			hosts = append(hosts, h)
		}
	}

	slog.Info("vSphere host discovery complete", "host_count", len(hosts))
	return hosts, nil
}

// clusterHosts retrieves every host of a single cluster
func (v *VSphereClient) clusterHosts(ctx context.Context, cluster *object.ClusterComputeResource) ([]models.DiscoveredHost, error) {
	var clusterMo mo.ClusterComputeResource
	err := cluster.Properties(ctx, cluster.Reference(), []string{"host"}, &clusterMo)
	if err != nil {
		return nil, fmt.Errorf("getting cluster properties: %w", err)
	}

	hosts := make([]models.DiscoveredHost, 0, len(clusterMo.Host))
	for _, hostRef := range clusterMo.Host {
		host := object.NewHostSystem(v.client.Client, hostRef)
		info, err := v.hostInfo(ctx, host, cluster.Name())
		if err != nil {
			return nil, fmt.Errorf("getting host info: %w", err)
		}
		hosts = append(hosts, info)
	}
	return hosts, nil
}

// hostInfo retrieves host hardware summary as a node shape
func (v *VSphereClient) hostInfo(ctx context.Context, host *object.HostSystem, clusterName string) (models.DiscoveredHost, error) {
	var hostMo mo.HostSystem
	err := host.Properties(ctx, host.Reference(), []string{"name", "summary", "runtime"}, &hostMo)
	if err != nil {
		return models.DiscoveredHost{}, fmt.Errorf("getting host properties: %w", err)
	}

	node := models.NodeShape{Name: hostMo.Name}
	if hw := hostMo.Summary.Hardware; hw != nil {
		node.CoreCount = int(hw.NumCpuThreads) // Logical processors (includes hyperthreading)
		node.MemoryMB = int(hw.MemorySize / (1024 * 1024))
	}

	return models.DiscoveredHost{
		Cluster:     clusterName,
		Node:        node,
		PowerState:  string(hostMo.Runtime.PowerState),
		Maintenance: hostMo.Runtime.InMaintenanceMode,
	}, nil
}

// DiscoverHosts connects, lists usable hosts, and disconnects.
func (v *VSphereClient) DiscoverHosts(ctx context.Context) ([]models.DiscoveredHost, error) {
	if err := v.Connect(ctx); err != nil {
		return nil, err
	}
	defer func() {
		if err := v.Disconnect(ctx); err != nil {
			slog.Warn("vSphere logout failed", "error", err)
		}
	}()
	return v.Hosts(ctx)
}

// Datacenter returns the configured datacenter name
func (v *VSphereClient) Datacenter() string {
	return v.creds.Datacenter
}
