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

package plugin_test

import (
	"errors"
	"testing"

	"github.com/blinklabs-io/surety/database/plugin"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockPlugin struct{}

func (m *mockPlugin) Start() error { return nil }
func (m *mockPlugin) Stop() error  { return nil }

type mockOptions struct {
	dataDir   string
	cacheSize uint64
	workers   int
	gc        bool
}

func registerMockPlugin(t *testing.T, opts *mockOptions) string {
	t.Helper()
	name := "mock-" + t.Name()
	plugin.Register(plugin.PluginEntry{
		Type:               plugin.PluginTypeMetadata,
		Name:               name,
		Description:        "mock plugin",
		NewFromOptionsFunc: func() plugin.Plugin { return &mockPlugin{} },
		Options: []plugin.PluginOption{
			{
				Name:         "data-dir",
				Type:         plugin.PluginOptionTypeString,
				DefaultValue: ".surety",
				Dest:         &opts.dataDir,
			},
			{
				Name:         "cache-size",
				Type:         plugin.PluginOptionTypeUint,
				DefaultValue: uint64(1024),
				Dest:         &opts.cacheSize,
			},
			{
				Name:         "workers",
				Type:         plugin.PluginOptionTypeInt,
				DefaultValue: 2,
				Dest:         &opts.workers,
			},
			{
				Name:         "gc",
				Type:         plugin.PluginOptionTypeBool,
				DefaultValue: true,
				Dest:         &opts.gc,
			},
		},
	})
	return name
}

func TestRegisterAndGetPlugin(t *testing.T) {
	var opts mockOptions
	name := registerMockPlugin(t, &opts)
	p := plugin.GetPlugin(plugin.PluginTypeMetadata, name)
	require.NotNil(t, p)
	assert.IsType(t, &mockPlugin{}, p)
	assert.Nil(t, plugin.GetPlugin(plugin.PluginTypeBlob, name))
	found := false
	for _, entry := range plugin.GetPlugins(plugin.PluginTypeMetadata) {
		if entry.Name == name {
			found = true
		}
	}
	assert.True(t, found, "plugin not in GetPlugins list")
}

type failingPlugin struct {
	err error
}

func (f failingPlugin) Start() error { return f.err }

func (f failingPlugin) Stop() error { return nil }

func TestStartPlugin(t *testing.T) {
	var opts mockOptions
	name := registerMockPlugin(t, &opts)
	p, err := plugin.StartConfiguredPlugin(plugin.PluginTypeMetadata, name, nil, nil)
	require.NoError(t, err)
	require.NotNil(t, p)
	_, err = plugin.StartConfiguredPlugin(plugin.PluginTypeMetadata, "missing-"+name, nil, nil)
	require.Error(t, err)

	errName := "broken-" + t.Name()
	testErr := errors.New("boom")
	plugin.Register(plugin.PluginEntry{
		Type:               plugin.PluginTypeBlob,
		Name:               errName,
		NewFromOptionsFunc: func() plugin.Plugin { return failingPlugin{err: testErr} },
	})
	_, err = plugin.StartConfiguredPlugin(plugin.PluginTypeBlob, errName, nil, nil)
	require.ErrorIs(t, err, testErr)
}

func TestSetPluginOption(t *testing.T) {
	var opts mockOptions
	name := registerMockPlugin(t, &opts)
	require.NoError(t, plugin.SetPluginOption(plugin.PluginTypeMetadata, name, "data-dir", "/tmp/x"))
	assert.Equal(t, "/tmp/x", opts.dataDir)
	require.NoError(t, plugin.SetPluginOption(plugin.PluginTypeMetadata, name, "cache-size", 42))
	assert.Equal(t, uint64(42), opts.cacheSize)
	require.NoError(t, plugin.SetPluginOption(plugin.PluginTypeMetadata, name, "cache-size", uint64(7)))
	assert.Equal(t, uint64(7), opts.cacheSize)
	require.NoError(t, plugin.SetPluginOption(plugin.PluginTypeMetadata, name, "gc", false))
	assert.False(t, opts.gc)
	// Wrong value type
	require.Error(t, plugin.SetPluginOption(plugin.PluginTypeMetadata, name, "data-dir", 123))
	require.Error(t, plugin.SetPluginOption(plugin.PluginTypeMetadata, name, "cache-size", -1))
	// Unknown options are ignored
	require.NoError(t, plugin.SetPluginOption(plugin.PluginTypeMetadata, name, "does-not-exist", "x"))
	// Unknown plugin
	require.Error(t, plugin.SetPluginOption(plugin.PluginTypeMetadata, "missing-"+name, "data-dir", "x"))
}

func TestPopulateCmdlineOptions(t *testing.T) {
	var opts mockOptions
	name := registerMockPlugin(t, &opts)
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	require.NoError(t, plugin.PopulateCmdlineOptions(fs))
	require.NoError(t, fs.Parse([]string{
		"--metadata-" + name + "-data-dir=/data",
		"--metadata-" + name + "-workers=8",
	}))
	assert.Equal(t, "/data", opts.dataDir)
	assert.Equal(t, 8, opts.workers)
	assert.Equal(t, uint64(1024), opts.cacheSize)
}

func TestProcessConfig(t *testing.T) {
	var opts mockOptions
	name := registerMockPlugin(t, &opts)
	err := plugin.ProcessConfig(map[string]map[string]map[string]any{
		"metadata": {
			name: {
				"data-dir":   "/cfg",
				"cache-size": 2048,
				"gc":         true,
			},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "/cfg", opts.dataDir)
	assert.Equal(t, uint64(2048), opts.cacheSize)
	assert.True(t, opts.gc)
}

func TestProcessEnvVars(t *testing.T) {
	var opts mockOptions
	registerMockPlugin(t, &opts)
	t.Setenv("SURETY_METADATA_MOCK_TESTPROCESSENVVARS_DATA_DIR", "/env")
	t.Setenv("SURETY_METADATA_MOCK_TESTPROCESSENVVARS_GC", "false")
	opts.gc = true
	require.NoError(t, plugin.ProcessEnvVars())
	assert.Equal(t, "/env", opts.dataDir)
	assert.False(t, opts.gc)
}
