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

package records

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

// Option sets the instrumentation shared by the SQL metadata plugins
type Option func(*Store)

// WithLogger specifies the logger object to use for logging messages
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithPromRegistry specifies the prometheus registry for pool metrics
func WithPromRegistry(registry prometheus.Registerer) Option {
	return func(s *Store) {
		s.promRegistry = registry
	}
}

// Apply runs each option against the store
func (s *Store) Apply(opts ...Option) {
	for _, opt := range opts {
		opt(s)
	}
}

// Configure implements the plugin.Configurable interface. Nil values keep
// whatever the store already has.
func (s *Store) Configure(
	logger *slog.Logger,
	promRegistry prometheus.Registerer,
) {
	if logger != nil {
		s.logger = logger
	}
	if promRegistry != nil {
		s.promRegistry = promRegistry
	}
}
