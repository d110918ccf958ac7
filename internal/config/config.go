// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"context"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"time"

	"github.com/blinklabs-io/surety/database/plugin"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

type ctxKey string

const configContextKey ctxKey = "surety.config"

const (
	DefaultShutdownTimeout = "30s"
	DefaultLogicID         = "surety-logic-v1"
	DefaultDevOracles      = 20
)

func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configContextKey, cfg)
}

func FromContext(ctx context.Context) *Config {
	cfg, ok := ctx.Value(configContextKey).(*Config)
	if !ok {
		return nil
	}
	return cfg
}

const (
	DefaultBlobPlugin     = "badger"
	DefaultMetadataPlugin = "sqlite"
)

// RunMode represents the operational mode of the surety node
type RunMode string

const (
	RunModeServe RunMode = "serve" // Serve the ledger API (default)
	RunModeDev   RunMode = "dev"   // Development mode with seeded airlines and simulated oracles
)

// Valid returns true if the RunMode is a known valid mode
func (m RunMode) Valid() bool {
	switch m {
	case RunModeServe, RunModeDev, "":
		return true
	default:
		return false
	}
}

// IsDevMode returns true if the mode enables development behaviors
// (seeding and the simulated oracle relay)
func (m RunMode) IsDevMode() bool {
	return m == RunModeDev
}

type tempConfig struct {
	Config   *Config                   `yaml:"config,omitempty"`
	Database *databaseConfig           `yaml:"database,omitempty"`
	Blob     map[string]map[string]any `yaml:"blob,omitempty"`
	Metadata map[string]map[string]any `yaml:"metadata,omitempty"`
}

type databaseConfig struct {
	Blob     map[string]any `yaml:"blob,omitempty"`
	Metadata map[string]any `yaml:"metadata,omitempty"`
}

type Config struct {
	DatabasePath    string  `yaml:"databasePath"    split_words:"true"`
	BlobPlugin      string  `yaml:"blobPlugin"      envconfig:"DATABASE_BLOB_PLUGIN"`
	MetadataPlugin  string  `yaml:"metadataPlugin"  envconfig:"DATABASE_METADATA_PLUGIN"`
	ListenAddress   string  `yaml:"listenAddress"   split_words:"true"`
	BindAddr        string  `yaml:"bindAddr"        split_words:"true"`
	LogicID         string  `yaml:"logicId"         envconfig:"LOGIC_ID"`
	GenesisFile     string  `yaml:"genesisFile"     split_words:"true"`
	ShutdownTimeout string  `yaml:"shutdownTimeout" split_words:"true"`
	RunMode         RunMode `yaml:"runMode"         envconfig:"RUN_MODE"`
	MetricsPort     uint    `yaml:"metricsPort"     split_words:"true"`
	// Number of simulated oracles registered by the dev relay
	DevOracles int `yaml:"devOracles" split_words:"true"`
	// Seed plan applied in dev mode, defaults to the built-in plan
	DevSeedFile   string `yaml:"devSeedFile"   split_words:"true"`
	Debug         bool   `yaml:"debug"         envconfig:"DEBUG"`
	Tracing       bool   `yaml:"tracing"       split_words:"true"`
	TracingStdout bool   `yaml:"tracingStdout" split_words:"true"`
}

func defaultConfig() *Config {
	return &Config{
		DatabasePath:    ".surety",
		BlobPlugin:      DefaultBlobPlugin,
		MetadataPlugin:  DefaultMetadataPlugin,
		ListenAddress:   ":8180",
		BindAddr:        "0.0.0.0",
		LogicID:         DefaultLogicID,
		ShutdownTimeout: DefaultShutdownTimeout,
		RunMode:         RunModeServe,
		MetricsPort:     12799,
		DevOracles:      DefaultDevOracles,
	}
}

var globalConfig = defaultConfig()

// ShutdownTimeoutDuration parses ShutdownTimeout, falling back to the default
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.ShutdownTimeout)
	if err != nil || d <= 0 {
		d, _ = time.ParseDuration(DefaultShutdownTimeout)
	}
	return d
}

// findConfigFile returns the first existing default config path
func findConfigFile() string {
	// Check for config file in this path: ~/.surety/surety.yaml
	if homeDir, err := os.UserHomeDir(); err == nil {
		userPath := filepath.Join(homeDir, ".surety", "surety.yaml")
		if _, err := os.Stat(userPath); err == nil {
			return userPath
		}
	}
	systemPath := "/etc/surety/surety.yaml"
	if _, err := os.Stat(systemPath); err == nil {
		return systemPath
	}
	return ""
}

func LoadConfig(configFile string) (*Config, error) {
	if configFile == "" {
		configFile = findConfigFile()
	}
	if configFile != "" {
		if err := loadConfigFile(configFile); err != nil {
			return nil, err
		}
	}
	// Process environment variables
	if err := envconfig.Process("surety", globalConfig); err != nil {
		return nil, fmt.Errorf("error processing environment: %w", err)
	}
	// Process plugin environment variables
	if err := plugin.ProcessEnvVars(); err != nil {
		return nil, fmt.Errorf(
			"error processing plugin environment variables: %w",
			err,
		)
	}
	if !globalConfig.RunMode.Valid() {
		return nil, fmt.Errorf(
			"invalid runMode: %q (must be 'serve' or 'dev')",
			globalConfig.RunMode,
		)
	}
	if globalConfig.RunMode == "" {
		globalConfig.RunMode = RunModeServe
	}
	if globalConfig.LogicID == "" {
		globalConfig.LogicID = DefaultLogicID
	}
	if globalConfig.DevOracles < 0 {
		return nil, fmt.Errorf("invalid devOracles: %d", globalConfig.DevOracles)
	}
	return globalConfig, nil
}

func loadConfigFile(configFile string) error {
	buf, err := os.ReadFile(configFile)
	if err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}
	// First unmarshal into temp config to handle plugin sections
	var tempCfg tempConfig
	if err := yaml.Unmarshal(buf, &tempCfg); err != nil {
		return fmt.Errorf("error parsing config file: %w", err)
	}
	if tempCfg.Config != nil {
		// Overlay config values onto existing defaults
		configBytes, err := yaml.Marshal(tempCfg.Config)
		if err != nil {
			return fmt.Errorf("error re-marshalling config: %w", err)
		}
		if err := yaml.Unmarshal(configBytes, globalConfig); err != nil {
			return fmt.Errorf("error parsing config section: %w", err)
		}
	} else if err := yaml.Unmarshal(buf, globalConfig); err != nil {
		return fmt.Errorf("error parsing config file: %w", err)
	}

	pluginConfig := make(map[string]map[string]map[string]any)
	if tempCfg.Blob != nil {
		pluginConfig["blob"] = tempCfg.Blob
	}
	if tempCfg.Metadata != nil {
		pluginConfig["metadata"] = tempCfg.Metadata
	}
	if tempCfg.Database != nil {
		if tempCfg.Database.Blob != nil {
			name, sections := pluginSections("blob", tempCfg.Database.Blob)
			if name != "" {
				globalConfig.BlobPlugin = name
			}
			mergePluginConfig(pluginConfig, "blob", sections)
		}
		if tempCfg.Database.Metadata != nil {
			name, sections := pluginSections("metadata", tempCfg.Database.Metadata)
			if name != "" {
				globalConfig.MetadataPlugin = name
			}
			mergePluginConfig(pluginConfig, "metadata", sections)
		}
	}
	if len(pluginConfig) > 0 {
		if err := plugin.ProcessConfig(pluginConfig); err != nil {
			return fmt.Errorf("error processing plugin config: %w", err)
		}
	}
	return nil
}

// pluginSections splits a database.blob or database.metadata section into
// the selected plugin name and the per-plugin option maps
func pluginSections(
	sectionName string,
	raw map[string]any,
) (string, map[string]map[string]any) {
	var name string
	ret := make(map[string]map[string]any)
	for k, v := range raw {
		if k == "plugin" {
			if pluginName, ok := v.(string); ok {
				name = pluginName
			}
			continue
		}
		switch val := v.(type) {
		case map[string]any:
			ret[k] = val
		case map[any]any:
			stringAnyMap := make(map[string]any, len(val))
			for vk, vv := range val {
				if keyStr, ok := vk.(string); ok {
					stringAnyMap[keyStr] = vv
				}
			}
			ret[k] = stringAnyMap
		default:
			fmt.Fprintf(
				os.Stderr,
				"warning: skipping %s config entry %q: expected map, got %T\n",
				sectionName,
				k,
				v,
			)
		}
	}
	return name, ret
}

func mergePluginConfig(
	pluginConfig map[string]map[string]map[string]any,
	pluginType string,
	sections map[string]map[string]any,
) {
	if pluginConfig[pluginType] == nil {
		pluginConfig[pluginType] = sections
		return
	}
	maps.Copy(pluginConfig[pluginType], sections)
}

func GetConfig() *Config {
	return globalConfig
}
