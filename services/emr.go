// ABOUTME: Parser for EMR cluster descriptions (aws emr describe-cluster JSON)
// ABOUTME: Extracts release label, instance groups, and Spark configuration via gjson

package services

import (
	"fmt"
	"strings"

	"github.com/markalston/spark-sizing-advisor/models"
	"github.com/tidwall/gjson"
)

// EMR instance group roles
const (
	EMRGroupMaster = "MASTER"
	EMRGroupCore   = "CORE"
	EMRGroupTask   = "TASK"
)

// EMRCluster is the subset of an EMR cluster description used for sizing
type EMRCluster struct {
	ID               string
	Name             string
	State            string
	ReleaseLabel     string
	AvailabilityZone string
	Applications     []EMRApplication
	InstanceGroups   []EMRInstanceGroup
	Configurations   []EMRConfiguration
}

type EMRApplication struct {
	Name    string
	Version string
}

type EMRInstanceGroup struct {
	ID                     string
	Name                   string
	Market                 string
	InstanceGroupType      string
	InstanceType           string
	RequestedInstanceCount int
	RunningInstanceCount   int
	EBSVolumes             []EMREBSVolume
}

type EMREBSVolume struct {
	Device     string
	VolumeType string
	SizeGB     int
}

type EMRConfiguration struct {
	Classification string
	Properties     map[string]string
}

// ParseEMRCluster parses `aws emr describe-cluster` output. The document may
// be the full response or the bare Cluster object.
func ParseEMRCluster(data []byte) (*EMRCluster, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("EMR cluster description is not valid JSON")
	}

	root := gjson.ParseBytes(data)
	if c := root.Get("Cluster"); c.Exists() {
		root = c
	}
	if !root.Get("Id").Exists() && !root.Get("InstanceGroups").Exists() {
		return nil, fmt.Errorf("EMR cluster description has no Id or InstanceGroups")
	}

	cluster := &EMRCluster{
		ID:               root.Get("Id").String(),
		Name:             root.Get("Name").String(),
		State:            root.Get("Status.State").String(),
		ReleaseLabel:     root.Get("ReleaseLabel").String(),
		AvailabilityZone: root.Get("Ec2InstanceAttributes.Ec2AvailabilityZone").String(),
	}

	root.Get("Applications").ForEach(func(_, app gjson.Result) bool {
		cluster.Applications = append(cluster.Applications, EMRApplication{
			Name:    app.Get("Name").String(),
			Version: app.Get("Version").String(),
		})
		return true
	})

	root.Get("InstanceGroups").ForEach(func(_, g gjson.Result) bool {
		group := EMRInstanceGroup{
			ID:                     g.Get("Id").String(),
			Name:                   g.Get("Name").String(),
			Market:                 g.Get("Market").String(),
			InstanceGroupType:      strings.ToUpper(g.Get("InstanceGroupType").String()),
			InstanceType:           g.Get("InstanceType").String(),
			RequestedInstanceCount: int(g.Get("RequestedInstanceCount").Int()),
			RunningInstanceCount:   int(g.Get("RunningInstanceCount").Int()),
		}
		g.Get("EbsBlockDevices").ForEach(func(_, v gjson.Result) bool {
			group.EBSVolumes = append(group.EBSVolumes, EMREBSVolume{
				Device:     v.Get("Device").String(),
				VolumeType: v.Get("VolumeSpecification.VolumeType").String(),
				SizeGB:     int(v.Get("VolumeSpecification.SizeInGB").Int()),
			})
			return true
		})
		cluster.InstanceGroups = append(cluster.InstanceGroups, group)
		return true
	})

	root.Get("Configurations").ForEach(func(_, c gjson.Result) bool {
		cfg := EMRConfiguration{
			Classification: c.Get("Classification").String(),
			Properties:     make(map[string]string),
		}
		c.Get("Properties").ForEach(func(k, v gjson.Result) bool {
			cfg.Properties[k.String()] = v.String()
			return true
		})
		cluster.Configurations = append(cluster.Configurations, cfg)
		return true
	})

	return cluster, nil
}

// InstanceGroup returns the first instance group of the given role
func (c *EMRCluster) InstanceGroup(groupType string) (EMRInstanceGroup, bool) {
	for _, g := range c.InstanceGroups {
		if g.InstanceGroupType == groupType {
			return g, true
		}
	}
	return EMRInstanceGroup{}, false
}

// WorkerGroup returns the group Spark executors run on: the core group, or the
// task group for clusters without one.
func (c *EMRCluster) WorkerGroup() (EMRInstanceGroup, error) {
	if g, ok := c.InstanceGroup(EMRGroupCore); ok {
		return g, nil
	}
	if g, ok := c.InstanceGroup(EMRGroupTask); ok {
		return g, nil
	}
	return EMRInstanceGroup{}, fmt.Errorf("EMR cluster %s has no core or task instance group", sanitizeForLog(c.ID))
}

// InstanceCount returns running instances, or requested ones for clusters not yet running
func (g EMRInstanceGroup) InstanceCount() int {
	if g.RunningInstanceCount > 0 {
		return g.RunningInstanceCount
	}
	return g.RequestedInstanceCount
}

// Region derives the region from the availability zone, e.g. us-west-2a -> us-west-2.
func (c *EMRCluster) Region() string {
	az := c.AvailabilityZone
	if az == "" {
		return ""
	}
	last := az[len(az)-1]
	if last >= 'a' && last <= 'z' {
		return az[:len(az)-1]
	}
	return az
}

// HasApplication reports whether an application (e.g. "Spark") is installed
func (c *EMRCluster) HasApplication(name string) bool {
	for _, app := range c.Applications {
		if strings.EqualFold(app.Name, name) {
			return true
		}
	}
	return false
}

// SparkProperties returns the cluster-level spark-defaults configuration.
func (c *EMRCluster) SparkProperties() map[string]string {
	props := make(map[string]string)
	for _, cfg := range c.Configurations {
		if cfg.Classification != "spark-defaults" {
			continue
		}
		for k, v := range cfg.Properties {
			props[k] = v
		}
	}
	return props
}

// WorkerGPU returns the GPU attached to each worker instance, if any.
func (c *EMRCluster) WorkerGPU() (models.GPUInfo, bool) {
	g, err := c.WorkerGroup()
	if err != nil {
		return models.GPUInfo{}, false
	}
	spec, ok := LookupEC2Instance(g.InstanceType)
	if !ok || spec.GPUCount == 0 {
		return models.GPUInfo{}, false
	}
	memory, _ := GPUMemoryMB(spec.GPUName)
	return models.GPUInfo{Name: spec.GPUName, Count: spec.GPUCount, MemoryMB: memory}, true
}

// CompatibilityCriteria returns the worker settings checked for GPU support.
func (c *EMRCluster) CompatibilityCriteria() (CompatibilityCriteria, error) {
	g, err := c.WorkerGroup()
	if err != nil {
		return CompatibilityCriteria{}, err
	}
	return CompatibilityCriteria{
		ReleaseLabel:    c.ReleaseLabel,
		EC2InstanceType: g.InstanceType,
	}, nil
}
