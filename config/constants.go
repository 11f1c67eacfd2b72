// ABOUTME: Sizing constants loader backed by viper
// ABOUTME: Reads a YAML/JSON constants document once at startup, with embedded defaults and env overrides

package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"

	"github.com/markalston/spark-sizing-advisor/models"
	"github.com/spf13/viper"
)

//go:embed defaults.yaml
var defaultConstantsDocument []byte

const (
	// EnvPrefix prefixes environment overrides, e.g. SPARK_SIZING_SPARK_CONFIG_HEAP_PER_CORE_MB
	EnvPrefix = "SPARK_SIZING"

	// DefaultConstantsSource names the constants origin when no file is given
	DefaultConstantsSource = "embedded defaults"

	constantsSection = "spark_config"
)

// constantsDocument mirrors the on-disk layout of a constants file.
type constantsDocument struct {
	SparkConfig models.ClusterConstants `mapstructure:"spark_config"`
}

// DefaultConstants returns the built-in sizing constants.
func DefaultConstants() models.ClusterConstants {
	return models.ClusterConstants{
		MaxPinnedMemoryMB:       4096,
		DefaultPageablePoolMB:   1024,
		MaxGPUConcurrent:        4,
		GPUMemPerTaskMB:         7500,
		HeapPerCoreMB:           2048,
		HeapOverheadFraction:    0.1,
		SystemReserveMB:         2048,
		MaxSQLFilesPartitionsMB: 512,
	}
}

// ConstantsSource describes where LoadConstants(path) reads from.
func ConstantsSource(path string) string {
	if path == "" {
		return DefaultConstantsSource
	}
	return path
}

// LoadConstants reads the constants document at path. An empty path uses the
// embedded defaults. The format follows the file extension (.yaml, .yml, .json).
// Every key under spark_config must be present; any failure is a
// *models.ConfigurationError.
func LoadConstants(path string) (models.ClusterConstants, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" {
		v.SetConfigType("yaml")
		if err := v.ReadConfig(bytes.NewReader(defaultConstantsDocument)); err != nil {
			return models.ClusterConstants{}, &models.ConfigurationError{
				Key:    DefaultConstantsSource,
				Reason: "failed to parse",
				Err:    err,
			}
		}
	} else {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return models.ClusterConstants{}, &models.ConfigurationError{
				Key:    path,
				Reason: "failed to read constants document",
				Err:    err,
			}
		}
	}

	for _, key := range models.ConstantKeys {
		fullKey := constantsSection + "." + key
		if !v.InConfig(fullKey) {
			return models.ClusterConstants{}, &models.ConfigurationError{
				Key:    fullKey,
				Reason: fmt.Sprintf("missing from %s", ConstantsSource(path)),
			}
		}
	}

	var doc constantsDocument
	if err := v.Unmarshal(&doc); err != nil {
		return models.ClusterConstants{}, &models.ConfigurationError{
			Key:    constantsSection,
			Reason: "failed to decode",
			Err:    err,
		}
	}

	if err := doc.SparkConfig.Validate(); err != nil {
		return models.ClusterConstants{}, err
	}

	return doc.SparkConfig, nil
}
