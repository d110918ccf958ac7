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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetGlobalConfig() {
	globalConfig = defaultConfig()
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "surety.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFullConfig(t *testing.T) {
	resetGlobalConfig()
	path := writeConfig(t, `
databasePath: "/var/lib/surety"
listenAddress: "127.0.0.1:9000"
metricsPort: 9100
logicId: "logic-v2"
genesisFile: "genesis.yaml"
runMode: dev
devOracles: 5
tracing: true
shutdownTimeout: "5s"
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	expected := defaultConfig()
	expected.DatabasePath = "/var/lib/surety"
	expected.ListenAddress = "127.0.0.1:9000"
	expected.MetricsPort = 9100
	expected.LogicID = "logic-v2"
	expected.GenesisFile = "genesis.yaml"
	expected.RunMode = RunModeDev
	expected.DevOracles = 5
	expected.Tracing = true
	expected.ShutdownTimeout = "5s"
	assert.Equal(t, expected, cfg)
	assert.True(t, cfg.RunMode.IsDevMode())
	assert.Equal(t, 5*time.Second, cfg.ShutdownTimeoutDuration())
}

func TestLoadConfigSection(t *testing.T) {
	resetGlobalConfig()
	path := writeConfig(t, `
config:
  listenAddress: ":9999"
database:
  metadata:
    plugin: postgres
  blob:
    plugin: badger
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.ListenAddress)
	assert.Equal(t, "postgres", cfg.MetadataPlugin)
	assert.Equal(t, DefaultBlobPlugin, cfg.BlobPlugin)
	assert.Equal(t, ".surety", cfg.DatabasePath)
}

func TestLoadWithoutConfigFileUsesDefaults(t *testing.T) {
	resetGlobalConfig()
	t.Setenv("HOME", t.TempDir())
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, defaultConfig(), cfg)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	resetGlobalConfig()
	path := writeConfig(t, `listenAddress: ":9000"`)
	t.Setenv("SURETY_LISTEN_ADDRESS", ":9001")
	t.Setenv("SURETY_LOGIC_ID", "logic-env")
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, ":9001", cfg.ListenAddress)
	assert.Equal(t, "logic-env", cfg.LogicID)
}

func TestInvalidRunMode(t *testing.T) {
	resetGlobalConfig()
	path := writeConfig(t, `runMode: load`)
	_, err := LoadConfig(path)
	require.Error(t, err)
}

func TestMissingConfigFile(t *testing.T) {
	resetGlobalConfig()
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestContext(t *testing.T) {
	assert.Nil(t, FromContext(context.Background()))
	cfg := defaultConfig()
	ctx := WithContext(context.Background(), cfg)
	assert.Same(t, cfg, FromContext(ctx))
}

func TestShutdownTimeoutFallback(t *testing.T) {
	cfg := &Config{ShutdownTimeout: "bogus"}
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeoutDuration())
}
