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

import (
	"sync"

	"github.com/blinklabs-io/surety/database/plugin"
)

var (
	cmdlineOptions      = cmdlineDefaults()
	cmdlineOptionsMutex sync.RWMutex
)

func cmdlineDefaults() Settings {
	ret := DefaultSettings()
	ret.DataDir = ".surety"
	return ret
}

// Register plugin
func init() {
	plugin.Register(
		plugin.PluginEntry{
			Type:               plugin.PluginTypeBlob,
			Name:               "badger",
			Description:        "BadgerDB local key-value store",
			NewFromOptionsFunc: NewFromCmdlineOptions,
			Options:            cmdlineOptions.pluginOptions(cmdlineDefaults()),
		},
	)
}

func NewFromCmdlineOptions() plugin.Plugin {
	cmdlineOptionsMutex.RLock()
	settings := cmdlineOptions
	cmdlineOptionsMutex.RUnlock()
	return NewStore(settings)
}
