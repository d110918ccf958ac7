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

package badger

import "github.com/blinklabs-io/surety/database/plugin"

// Settings tunes the badger blob store
type Settings struct {
	// DataDir holds the database files. Empty keeps everything in memory.
	DataDir        string
	BlockCacheSize uint64
	IndexCacheSize uint64
	// GC enables periodic value log garbage collection on disk
	GC             bool
}

// DefaultSettings returns an in-memory store with 256MB block and 64MB
// index caches and value log GC enabled
func DefaultSettings() Settings {
	return Settings{
		BlockCacheSize: 256 << 20,
		IndexCacheSize: 64 << 20,
		GC:             true,
	}
}

func (s *Settings) withDefaults() {
	def := DefaultSettings()
	if s.BlockCacheSize == 0 {
		s.BlockCacheSize = def.BlockCacheSize
	}
	if s.IndexCacheSize == 0 {
		s.IndexCacheSize = def.IndexCacheSize
	}
}

// pluginOptions exposes the settings as plugin options that write into s
func (s *Settings) pluginOptions(defaults Settings) []plugin.PluginOption {
	return []plugin.PluginOption{
		{
			Name:         "data-dir",
			Type:         plugin.PluginOptionTypeString,
			Description:  "Data directory for badger storage, empty for in-memory",
			DefaultValue: defaults.DataDir,
			Dest:         &s.DataDir,
		},
		{
			Name:         "block-cache-size",
			Type:         plugin.PluginOptionTypeUint,
			Description:  "Badger block cache size in bytes",
			DefaultValue: defaults.BlockCacheSize,
			Dest:         &s.BlockCacheSize,
		},
		{
			Name:         "index-cache-size",
			Type:         plugin.PluginOptionTypeUint,
			Description:  "Badger index cache size in bytes",
			DefaultValue: defaults.IndexCacheSize,
			Dest:         &s.IndexCacheSize,
		},
		{
			Name:         "gc",
			Type:         plugin.PluginOptionTypeBool,
			Description:  "Enable value log garbage collection",
			DefaultValue: defaults.GC,
			Dest:         &s.GC,
		},
	}
}
