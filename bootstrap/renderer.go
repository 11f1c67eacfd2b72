// ABOUTME: Renders executor recommendations into provider-specific bootstrap text
// ABOUTME: EMR create-cluster script, EMR configurations JSON, Dataproc gcloud command, spark-defaults.conf

package bootstrap

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/template"

	"github.com/dustin/go-humanize"
	"github.com/markalston/spark-sizing-advisor/models"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Supported providers
const (
	ProviderEMR               = "emr"
	ProviderEMRConfigurations = "emr-configurations"
	ProviderDataproc          = "dataproc"
	ProviderSparkDefaults     = "spark-defaults"
)

const (
	DefaultReleaseLabel = "emr-6.10.0"
	DefaultImageVersion = "2.1-ubuntu20"
	DefaultGPUType      = "T4"

	// PropPlugins enables the RAPIDS accelerator on GPU executors
	PropPlugins   = "spark.plugins"
	rapidsPlugin  = "com.nvidia.spark.SQLPlugin"
	dominantCalc  = "org.apache.hadoop.yarn.util.resource.DominantResourceCalculator"
	yarnGPUPlugin = "yarn.io/gpu"
)

// ErrUnknownProvider reports a provider without a template
var ErrUnknownProvider = errors.New("unknown bootstrap provider")

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.New("bootstrap").Funcs(templateFuncs()).ParseFS(templateFS, "templates/*.tmpl"))

var templateNames = map[string]string{
	ProviderEMR:               "emr.sh.tmpl",
	ProviderEMRConfigurations: "emr-configurations.json.tmpl",
	ProviderDataproc:          "dataproc.sh.tmpl",
	ProviderSparkDefaults:     "spark-defaults.conf.tmpl",
}

// Params are the values substituted into a bootstrap template.
type Params struct {
	Cluster        models.ClusterSpec
	Recommendation models.ExecutorRecommendation
}

type templateData struct {
	Cluster        models.ClusterSpec
	Recommendation models.ExecutorRecommendation
	Properties     []models.SparkProperty
	GPU            bool
	Configurations string
}

// templateFuncs returns the custom template functions.
func templateFuncs() template.FuncMap {
	return template.FuncMap{
		// mb formats a size in MiB as a human-readable string.
		// Usage: {{mb .Recommendation.HeapMB}}
		"mb": func(mb int) string {
			return humanize.IBytes(uint64(max(mb, 0)) << 20)
		},

		// gcpAccelerator maps a GPU model to its Compute Engine accelerator type.
		// Usage: {{gcpAccelerator "T4"}} -> nvidia-tesla-t4
		"gcpAccelerator": func(gpu string) string {
			return "nvidia-tesla-" + strings.ToLower(gpu)
		},

		"dataprocProperties": DataprocProperties,
	}
}

// Providers lists the providers Render accepts.
func Providers() []string {
	names := make([]string, 0, len(templateNames))
	for name := range templateNames {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Render writes the bootstrap text for provider to w. Nothing is written when
// validation or rendering fails.
func Render(w io.Writer, provider string, p Params) error {
	name, ok := templateNames[provider]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownProvider, sanitizeForLog(provider))
	}

	cluster := withDefaults(p.Cluster, p.Recommendation)
	if err := ValidateCluster(provider, cluster); err != nil {
		return err
	}

	configurations, err := EMRConfigurations(p.Recommendation)
	if err != nil {
		return err
	}

	data := templateData{
		Cluster:        cluster,
		Recommendation: p.Recommendation,
		Properties:     SparkProperties(p.Recommendation),
		GPU:            p.Recommendation.GPUEnabled(),
		Configurations: configurations,
	}

	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("rendering %s bootstrap: %w", provider, err)
	}
	_, err = buf.WriteTo(w)
	return err
}

func withDefaults(c models.ClusterSpec, rec models.ExecutorRecommendation) models.ClusterSpec {
	if c.ReleaseLabel == "" {
		c.ReleaseLabel = DefaultReleaseLabel
	}
	if c.ImageVersion == "" {
		c.ImageVersion = DefaultImageVersion
	}
	if rec.GPUEnabled() {
		if c.GPUType == "" {
			c.GPUType = DefaultGPUType
		}
		if c.GPUCount == 0 {
			c.GPUCount = 1
		}
	}
	return c
}

// SparkProperties returns the recommendation's properties plus the RAPIDS
// plugin switch for GPU executors.
func SparkProperties(rec models.ExecutorRecommendation) []models.SparkProperty {
	props := rec.SparkProperties()
	if rec.GPUEnabled() {
		props = append(props, models.SparkProperty{Key: PropPlugins, Value: rapidsPlugin})
	}
	return props
}

// DataprocProperties joins properties into a gcloud --properties value, each
// key carrying the spark: file prefix.
func DataprocProperties(props []models.SparkProperty) string {
	parts := make([]string, len(props))
	for i, p := range props {
		parts[i] = "spark:" + p.Key + "=" + p.Value
	}
	return strings.Join(parts, ",")
}

type classification struct {
	name  string
	props []models.SparkProperty
}

func emrClassifications(rec models.ExecutorRecommendation) []classification {
	classes := []classification{{name: "spark-defaults", props: SparkProperties(rec)}}
	if rec.GPUEnabled() {
		classes = append(classes,
			classification{name: "yarn-site", props: []models.SparkProperty{
				{Key: "yarn.nodemanager.resource-plugins", Value: yarnGPUPlugin},
				{Key: "yarn.resource-types", Value: yarnGPUPlugin},
				{Key: "yarn.nodemanager.resource-plugins.gpu.allowed-gpu-devices", Value: "auto"},
			}},
			classification{name: "capacity-scheduler", props: []models.SparkProperty{
				{Key: "yarn.scheduler.capacity.resource-calculator", Value: dominantCalc},
			}},
		)
	}
	return classes
}

// EMRConfigurations builds the --configurations document for aws emr
// create-cluster: a spark-defaults classification and, for GPU executors, the
// YARN GPU scheduling classifications.
func EMRConfigurations(rec models.ExecutorRecommendation) (string, error) {
	doc := "[]"
	var err error
	for i, c := range emrClassifications(rec) {
		doc, err = sjson.Set(doc, fmt.Sprintf("%d.Classification", i), c.name)
		if err != nil {
			return "", fmt.Errorf("building EMR configurations: %w", err)
		}
		for _, p := range c.props {
			doc, err = sjson.Set(doc, fmt.Sprintf("%d.Properties.%s", i, escapePath(p.Key)), p.Value)
			if err != nil {
				return "", fmt.Errorf("building EMR configurations: %w", err)
			}
		}
	}
	return strings.TrimSpace(gjson.Get(doc, "@pretty").Raw), nil
}

// escapePath escapes dots so a property name is a single path component
func escapePath(key string) string {
	return strings.ReplaceAll(key, ".", `\.`)
}
