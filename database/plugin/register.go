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

package plugin

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
)

type PluginType int

const (
	PluginTypeBlob PluginType = iota + 1
	PluginTypeMetadata
)

func PluginTypeName(pluginType PluginType) string {
	switch pluginType {
	case PluginTypeBlob:
		return "blob"
	case PluginTypeMetadata:
		return "metadata"
	default:
		return ""
	}
}

type PluginOptionType int

const (
	PluginOptionTypeString PluginOptionType = iota + 1
	PluginOptionTypeBool
	PluginOptionTypeInt
	PluginOptionTypeUint
)

type PluginOption struct {
	DefaultValue any
	Dest         any
	Name         string
	Description  string
	Type         PluginOptionType
}

// flagName returns the command-line flag name for the option, e.g.
// "metadata-sqlite-data-dir"
func (p PluginOption) flagName(pluginType PluginType, pluginName string) string {
	return fmt.Sprintf(
		"%s-%s-%s",
		PluginTypeName(pluginType),
		pluginName,
		p.Name,
	)
}

// envVarName returns the environment variable name for the option, e.g.
// "SURETY_METADATA_SQLITE_DATA_DIR"
func (p PluginOption) envVarName(pluginType PluginType, pluginName string) string {
	ret := strings.ToUpper(
		"surety_" + p.flagName(pluginType, pluginName),
	)
	return strings.ReplaceAll(ret, "-", "_")
}

type PluginEntry struct {
	NewFromOptionsFunc func() Plugin
	Name               string
	Description        string
	Options            []PluginOption
	Type               PluginType
}

var pluginEntries []PluginEntry

// Register adds a plugin entry to the registry. It is meant to be called
// from the init() function of each plugin package.
func Register(pluginEntry PluginEntry) {
	pluginEntries = append(pluginEntries, pluginEntry)
}

// GetPlugins returns the registered plugin entries for the given type
func GetPlugins(pluginType PluginType) []PluginEntry {
	var ret []PluginEntry
	for _, p := range pluginEntries {
		if p.Type == pluginType {
			ret = append(ret, p)
		}
	}
	return ret
}

// GetPlugin returns a new instance of the named plugin, or nil if it's not registered
func GetPlugin(pluginType PluginType, name string) Plugin {
	for _, p := range pluginEntries {
		if p.Type == pluginType && p.Name == name {
			return p.NewFromOptionsFunc()
		}
	}
	return nil
}

// PopulateCmdlineOptions adds a flag for each registered plugin option to the provided flag set
func PopulateCmdlineOptions(fs *pflag.FlagSet) error {
	for _, p := range pluginEntries {
		for _, opt := range p.Options {
			name := opt.flagName(p.Type, p.Name)
			switch opt.Type {
			case PluginOptionTypeString:
				dest, ok := opt.Dest.(*string)
				if !ok {
					return fmt.Errorf("invalid destination type for option %s", name)
				}
				def, _ := opt.DefaultValue.(string)
				fs.StringVar(dest, name, def, opt.Description)
			case PluginOptionTypeBool:
				dest, ok := opt.Dest.(*bool)
				if !ok {
					return fmt.Errorf("invalid destination type for option %s", name)
				}
				def, _ := opt.DefaultValue.(bool)
				fs.BoolVar(dest, name, def, opt.Description)
			case PluginOptionTypeInt:
				dest, ok := opt.Dest.(*int)
				if !ok {
					return fmt.Errorf("invalid destination type for option %s", name)
				}
				def, _ := opt.DefaultValue.(int)
				fs.IntVar(dest, name, def, opt.Description)
			case PluginOptionTypeUint:
				dest, ok := opt.Dest.(*uint64)
				if !ok {
					return fmt.Errorf("invalid destination type for option %s", name)
				}
				def, _ := opt.DefaultValue.(uint64)
				fs.Uint64Var(dest, name, def, opt.Description)
			default:
				return fmt.Errorf("unknown plugin option type %d for option %s", opt.Type, name)
			}
		}
	}
	return nil
}

// ProcessEnvVars applies plugin option values from environment variables
func ProcessEnvVars() error {
	for _, p := range pluginEntries {
		for _, opt := range p.Options {
			envName := opt.envVarName(p.Type, p.Name)
			val, ok := os.LookupEnv(envName)
			if !ok {
				continue
			}
			if err := setOptionFromString(p, opt, val); err != nil {
				return fmt.Errorf("environment variable %s: %w", envName, err)
			}
		}
	}
	return nil
}

// ProcessConfig applies plugin option values from a config map keyed by
// plugin type name, plugin name, and option name
func ProcessConfig(pluginConfig map[string]map[string]map[string]any) error {
	for _, p := range pluginEntries {
		typeConfig, ok := pluginConfig[PluginTypeName(p.Type)]
		if !ok {
			continue
		}
		optConfig, ok := typeConfig[p.Name]
		if !ok {
			continue
		}
		for _, opt := range p.Options {
			val, ok := optConfig[opt.Name]
			if !ok {
				continue
			}
			if err := setOptionFromString(p, opt, fmt.Sprint(val)); err != nil {
				return fmt.Errorf(
					"%s plugin %s option %s: %w",
					PluginTypeName(p.Type),
					p.Name,
					opt.Name,
					err,
				)
			}
		}
	}
	return nil
}

func setOptionFromString(p PluginEntry, opt PluginOption, val string) error {
	var value any
	switch opt.Type {
	case PluginOptionTypeString:
		value = val
	case PluginOptionTypeBool:
		b, err := strconv.ParseBool(val)
		if err != nil {
			return err
		}
		value = b
	case PluginOptionTypeInt:
		i, err := strconv.Atoi(val)
		if err != nil {
			return err
		}
		value = i
	case PluginOptionTypeUint:
		u, err := strconv.ParseUint(val, 10, 64)
		if err != nil {
			return err
		}
		value = u
	default:
		return fmt.Errorf("unknown plugin option type %d", opt.Type)
	}
	return SetPluginOption(p.Type, p.Name, opt.Name, value)
}
