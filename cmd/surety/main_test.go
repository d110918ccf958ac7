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

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPluginListing(t *testing.T) {
	output := pluginListing("list", "sqlite")
	assert.Contains(t, output, "Available blob plugins:")
	assert.Contains(t, output, "badger")
	assert.NotContains(t, output, "metadata plugins")

	assert.Empty(t, pluginListing("badger", "sqlite"))

	all := pluginListing("list", "list")
	assert.Contains(t, all, "Available metadata plugins:")
	assert.Contains(t, all, "postgres")
	assert.Contains(t, all, "sqlite")
}

func TestRootCommand(t *testing.T) {
	rootCmd, err := newRootCommand()
	require.NoError(t, err)
	for _, name := range []string{"serve", "dev", "genesis", "list", "version"} {
		sub, _, err := rootCmd.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, sub.Name())
	}
	pflags := rootCmd.PersistentFlags()
	for _, name := range []string{
		"debug",
		"config",
		"metadata-postgres-ssl-mode",
		"metadata-mysql-tls",
		"blob-badger-gc",
	} {
		assert.NotNil(t, pflags.Lookup(name), name)
	}
}

func TestVersionCommand(t *testing.T) {
	rootCmd, err := newRootCommand()
	require.NoError(t, err)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version"})
	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), programName+" ")
}

func TestGenesisCheckCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "genesis.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
owner: "0xowner"
logicId: logic-v1
firstAirline:
  address: "0xa1"
  name: First Air
`), 0o600))
	cmd := genesisCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"check", path})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "first airline: First Air (0xa1)")
	assert.Contains(t, out.String(), "logic ID: logic-v1")
}

func TestGenesisEncryptRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "genesis.yaml")
	require.NoError(t, os.WriteFile(path, []byte("owner: \"0xowner\"\n"), 0o600))
	cmd := genesisCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"encrypt", path})
	assert.Error(t, cmd.Execute())
}
