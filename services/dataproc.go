// ABOUTME: Parser for Dataproc cluster descriptions (gcloud describe or exported config)
// ABOUTME: Extracts worker machine, zone, disks, accelerators, and Spark properties

package services

import (
	"fmt"
	"strings"

	"github.com/markalston/spark-sizing-advisor/models"
	"gopkg.in/yaml.v3"
)

const sparkPropertyPrefix = "spark:"

// DataprocCluster is the subset of a Dataproc cluster description used for sizing.
// Live clusters come from `gcloud dataproc clusters describe`; offline clusters
// from an exported or hand-written config whose machineTypeUri is a bare type.
type DataprocCluster struct {
	ClusterName string         `yaml:"clusterName"`
	ClusterUUID string         `yaml:"clusterUuid"`
	ProjectID   string         `yaml:"projectId"`
	Config      DataprocConfig `yaml:"config"`
}

type DataprocConfig struct {
	TempBucket       string                 `yaml:"tempBucket"`
	ConfigBucket     string                 `yaml:"configBucket"`
	GCEClusterConfig DataprocGCEConfig      `yaml:"gceClusterConfig"`
	MasterConfig     DataprocInstanceGroup  `yaml:"masterConfig"`
	WorkerConfig     DataprocInstanceGroup  `yaml:"workerConfig"`
	SoftwareConfig   DataprocSoftwareConfig `yaml:"softwareConfig"`
}

type DataprocGCEConfig struct {
	ZoneURI string `yaml:"zoneUri"`
}

type DataprocInstanceGroup struct {
	NumInstances   *int                  `yaml:"numInstances"`
	MachineTypeURI string                `yaml:"machineTypeUri"`
	InstanceNames  []string              `yaml:"instanceNames"`
	DiskConfig     DataprocDiskConfig    `yaml:"diskConfig"`
	Accelerators   []DataprocAccelerator `yaml:"accelerators"`
	Zone           string                `yaml:"zone"`
	Region         string                `yaml:"region"`
}

type DataprocDiskConfig struct {
	BootDiskSizeGB int    `yaml:"bootDiskSizeGb"`
	BootDiskType   string `yaml:"bootDiskType"`
	NumLocalSSDs   *int   `yaml:"numLocalSsds"`
}

type DataprocAccelerator struct {
	AcceleratorCount   int    `yaml:"acceleratorCount"`
	AcceleratorTypeURI string `yaml:"acceleratorTypeUri"`
}

type DataprocSoftwareConfig struct {
	ImageVersion string            `yaml:"imageVersion"`
	Properties   map[string]string `yaml:"properties"`
}

// MachineLocation is where and on what machine type a node group runs
type MachineLocation struct {
	Region      string
	Zone        string
	MachineType string
}

// ParseDataprocCluster parses a cluster description in YAML or JSON. Keys may
// be camelCase (gcloud output) or snake_case (API exports); the cluster config
// may be nested under "config" or "clusterConfig" at any depth.
func ParseDataprocCluster(data []byte) (*DataprocCluster, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parsing Dataproc cluster description: %w", err)
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil, fmt.Errorf("empty Dataproc cluster description")
	}

	doc := root.Content[0]
	if doc.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("Dataproc cluster description must be a mapping")
	}
	normalizeKeys(doc)

	parent, configNode := findClusterConfig(doc)
	if configNode == nil {
		return nil, fmt.Errorf("Dataproc cluster description has no config section")
	}

	var cluster DataprocCluster
	if err := parent.Decode(&cluster); err != nil {
		return nil, fmt.Errorf("decoding Dataproc cluster: %w", err)
	}
	if err := configNode.Decode(&cluster.Config); err != nil {
		return nil, fmt.Errorf("decoding Dataproc cluster config: %w", err)
	}
	if cluster.Config.WorkerConfig.MachineTypeURI == "" {
		return nil, fmt.Errorf("Dataproc cluster config has no workerConfig.machineTypeUri")
	}

	return &cluster, nil
}

// normalizeKeys rewrites snake_case mapping keys to camelCase in place.
// Spark property maps are left untouched.
func normalizeKeys(n *yaml.Node) {
	switch n.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(n.Content); i += 2 {
			key, val := n.Content[i], n.Content[i+1]
			key.Value = snakeToCamel(key.Value)
			if key.Value == "properties" {
				continue
			}
			normalizeKeys(val)
		}
	case yaml.SequenceNode, yaml.DocumentNode:
		for _, c := range n.Content {
			normalizeKeys(c)
		}
	}
}

func snakeToCamel(s string) string {
	if !strings.Contains(s, "_") {
		return s
	}
	parts := strings.Split(s, "_")
	var b strings.Builder
	b.WriteString(parts[0])
	for _, p := range parts[1:] {
		if p == "" {
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]) + p[1:])
	}
	return b.String()
}

// findClusterConfig returns the first mapping stored under "config" or
// "clusterConfig", searching depth first, along with the mapping holding it.
func findClusterConfig(n *yaml.Node) (parent, config *yaml.Node) {
	if n.Kind != yaml.MappingNode {
		return nil, nil
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := n.Content[i], n.Content[i+1]
		if val.Kind == yaml.MappingNode && (key.Value == "config" || key.Value == "clusterConfig") {
			return n, val
		}
	}
	for i := 1; i < len(n.Content); i += 2 {
		if p, c := findClusterConfig(n.Content[i]); c != nil {
			return p, c
		}
	}
	return nil, nil
}

// DecodeMachineTypeURI splits a machine type URI of the form
// .../zones/<zone>/machineTypes/<type> into zone and machine type.
func DecodeMachineTypeURI(uri string) (zone, machineType string, err error) {
	parts := strings.Split(strings.TrimRight(uri, "/"), "/")
	if len(parts) < 4 {
		return "", "", fmt.Errorf("unable to parse machine type from machine type URI: %s", sanitizeForLog(uri))
	}
	parts = parts[len(parts)-4:]
	if parts[0] != "zones" || parts[2] != "machineTypes" {
		return "", "", fmt.Errorf("unable to parse machine type from machine type URI: %s", sanitizeForLog(uri))
	}
	return parts[1], parts[3], nil
}

// RegionFromZone derives the region from a zone name, e.g. us-central1-a -> us-central1.
func RegionFromZone(zone string) (string, error) {
	parts := strings.Split(zone, "-")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", fmt.Errorf("invalid zone: %s", sanitizeForLog(zone))
	}
	return parts[0] + "-" + parts[1], nil
}

// Offline reports whether the description is of a cluster that is not running.
func (c *DataprocCluster) Offline() bool {
	return c.ClusterUUID == ""
}

// Zone returns the cluster zone from gceClusterConfig.zoneUri.
func (c *DataprocCluster) Zone() string {
	uri := c.Config.GCEClusterConfig.ZoneURI
	if i := strings.LastIndex(uri, "/"); i >= 0 {
		return uri[i+1:]
	}
	return uri
}

// ImageVersion returns the Dataproc image version
func (c *DataprocCluster) ImageVersion() string {
	return c.Config.SoftwareConfig.ImageVersion
}

// WorkerMachine returns the worker group's region, zone, and machine type.
func (c *DataprocCluster) WorkerMachine() (MachineLocation, error) {
	return c.machineLocation(c.Config.WorkerConfig)
}

// MasterMachine returns the master group's region, zone, and machine type.
func (c *DataprocCluster) MasterMachine() (MachineLocation, error) {
	return c.machineLocation(c.Config.MasterConfig)
}

func (c *DataprocCluster) machineLocation(group DataprocInstanceGroup) (MachineLocation, error) {
	uri := group.MachineTypeURI
	if uri == "" {
		return MachineLocation{}, fmt.Errorf("node group has no machineTypeUri")
	}

	loc := MachineLocation{Zone: group.Zone, Region: group.Region}
	if strings.Contains(uri, "/") {
		zone, machineType, err := DecodeMachineTypeURI(uri)
		if err != nil {
			return MachineLocation{}, err
		}
		loc.Zone, loc.MachineType = zone, machineType
	} else {
		loc.MachineType = uri
	}

	if loc.Zone == "" {
		loc.Zone = c.Zone()
	}
	if loc.Region == "" && loc.Zone != "" {
		region, err := RegionFromZone(loc.Zone)
		if err != nil {
			return MachineLocation{}, err
		}
		loc.Region = region
	}
	return loc, nil
}

// WorkerCount returns the number of primary workers; a missing value means 1.
func (c *DataprocCluster) WorkerCount() int {
	return instanceCount(c.Config.WorkerConfig)
}

// MasterCount returns the number of masters; a missing value means 1.
func (c *DataprocCluster) MasterCount() int {
	return instanceCount(c.Config.MasterConfig)
}

func instanceCount(group DataprocInstanceGroup) int {
	if group.NumInstances == nil {
		return 1
	}
	return *group.NumInstances
}

// WorkerLocalSSDs returns the number of local SSDs per worker; missing means 0.
func (c *DataprocCluster) WorkerLocalSSDs() int {
	if n := c.Config.WorkerConfig.DiskConfig.NumLocalSSDs; n != nil {
		return *n
	}
	return 0
}

// WorkerGPU returns the supported GPU attached to each worker, if any.
func (c *DataprocCluster) WorkerGPU() (models.GPUInfo, bool) {
	for _, acc := range c.Config.WorkerConfig.Accelerators {
		if acc.AcceleratorCount <= 0 {
			continue
		}
		name, ok := ParseSupportedGPU(acc.AcceleratorTypeURI)
		if !ok {
			continue
		}
		memory, _ := GPUMemoryMB(name)
		return models.GPUInfo{Name: name, Count: acc.AcceleratorCount, MemoryMB: memory}, true
	}
	return models.GPUInfo{}, false
}

// SparkProperties returns the cluster's Spark properties with the "spark:"
// prefix stripped. Properties for other components are skipped.
func (c *DataprocCluster) SparkProperties() map[string]string {
	props := make(map[string]string)
	for key, value := range c.Config.SoftwareConfig.Properties {
		if strings.HasPrefix(key, sparkPropertyPrefix) {
			props[strings.TrimPrefix(key, sparkPropertyPrefix)] = value
		}
	}
	return props
}

// TempStorage returns the cluster's scratch location in its temp bucket.
func (c *DataprocCluster) TempStorage() string {
	if c.Config.TempBucket == "" || c.ClusterUUID == "" {
		return ""
	}
	return fmt.Sprintf("gs://%s/%s", c.Config.TempBucket, c.ClusterUUID)
}

// HistoryDirs returns where Spark event logs live: a configured persistent
// history server directory first, then the cluster's default location.
func (c *DataprocCluster) HistoryDirs() []string {
	var dirs []string
	if phs := c.Config.SoftwareConfig.Properties[sparkPropertyPrefix+"spark.eventLog.dir"]; phs != "" {
		dirs = append(dirs, phs)
	}
	if temp := c.TempStorage(); temp != "" {
		dirs = append(dirs, temp+"/spark-job-history")
	}
	return dirs
}

// CompatibilityCriteria returns the worker settings checked for GPU support.
func (c *DataprocCluster) CompatibilityCriteria() (CompatibilityCriteria, error) {
	worker, err := c.WorkerMachine()
	if err != nil {
		return CompatibilityCriteria{}, err
	}
	ssds := c.WorkerLocalSSDs()
	return CompatibilityCriteria{
		ImageVersion:    c.ImageVersion(),
		MachineType:     worker.MachineType,
		WorkerLocalSSDs: &ssds,
	}, nil
}
