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

package surety

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/blinklabs-io/surety/internal/devnet"
	"github.com/blinklabs-io/surety/ledger"
	"github.com/prometheus/client_golang/prometheus"
)

// RunMode selects the operational mode of the node
type RunMode string

const (
	RunModeServe RunMode = "serve"
	RunModeDev   RunMode = "dev"
)

func (m RunMode) Valid() bool {
	switch m {
	case RunModeServe, RunModeDev, "":
		return true
	default:
		return false
	}
}

type Config struct {
	promRegistry    prometheus.Registerer
	logger          *slog.Logger
	genesis         *ledger.Genesis
	seedPlan        *devnet.Plan
	dataDir         string
	blobPlugin      string
	metadataPlugin  string
	listenAddress   string
	logicID         string
	runMode         RunMode
	devOracles      int
	tracing         bool
	tracingStdout   bool
	shutdownTimeout time.Duration
}

// isDevMode returns true if running in development mode
func (c *Config) isDevMode() bool {
	return c.runMode == RunModeDev
}

func (n *Node) configValidate() error {
	if !n.config.runMode.Valid() {
		return fmt.Errorf("invalid run mode: %s", n.config.runMode)
	}
	if n.config.logicID == "" {
		return errors.New("no logic ID configured")
	}
	if n.config.genesis != nil {
		if err := n.config.genesis.Validate(); err != nil {
			return err
		}
	}
	if n.config.isDevMode() {
		if n.config.devOracles < ledger.OracleQuorum {
			return fmt.Errorf(
				"dev mode needs at least %d simulated oracles, got %d",
				ledger.OracleQuorum,
				n.config.devOracles,
			)
		}
		if err := n.config.seedPlan.Validate(); err != nil {
			return err
		}
		if n.config.genesis != nil &&
			n.config.genesis.FirstAirline.Address != n.config.seedPlan.Airlines[0].Address {
			return errors.New(
				"dev seed plan must start with the genesis first airline",
			)
		}
	}
	return nil
}

// ConfigOptionFunc is a type that represents functions that modify the Connection config
type ConfigOptionFunc func(*Config)

// NewConfig creates a new surety config with the specified options
func NewConfig(opts ...ConfigOptionFunc) Config {
	c := Config{
		// Default logger will throw away logs
		// We do this so we don't have to add guards around every log operation
		logger:     slog.New(slog.NewJSONHandler(io.Discard, nil)),
		runMode:    RunModeServe,
		devOracles: 20,
	}
	// Apply options
	for _, opt := range opts {
		opt(&c)
	}
	if c.seedPlan == nil {
		c.seedPlan = devnet.DefaultPlan()
	}
	return c
}

// WithDatabasePath specifies the persistent data directory to use. The default is to store everything in memory
func WithDatabasePath(dataDir string) ConfigOptionFunc {
	return func(c *Config) {
		c.dataDir = dataDir
	}
}

// WithBlobPlugin specifies the blob storage plugin to use.
func WithBlobPlugin(plugin string) ConfigOptionFunc {
	return func(c *Config) {
		c.blobPlugin = plugin
	}
}

// WithMetadataPlugin specifies the metadata storage plugin to use.
func WithMetadataPlugin(plugin string) ConfigOptionFunc {
	return func(c *Config) {
		c.metadataPlugin = plugin
	}
}

// WithLogger specifies the logger to use. This defaults to discarding log output
func WithLogger(logger *slog.Logger) ConfigOptionFunc {
	return func(c *Config) {
		c.logger = logger
	}
}

// WithListenAddress specifies the address the ledger API listens on
func WithListenAddress(address string) ConfigOptionFunc {
	return func(c *Config) {
		c.listenAddress = address
	}
}

// WithLogicID specifies the logic-layer identity presented to the authorization gate
func WithLogicID(logicID string) ConfigOptionFunc {
	return func(c *Config) {
		c.logicID = logicID
	}
}

// WithGenesis specifies the genesis used to provision an empty ledger
func WithGenesis(genesis *ledger.Genesis) ConfigOptionFunc {
	return func(c *Config) {
		c.genesis = genesis
	}
}

// WithSeedPlan specifies the airlines seeded in dev mode
func WithSeedPlan(plan *devnet.Plan) ConfigOptionFunc {
	return func(c *Config) {
		c.seedPlan = plan
	}
}

// WithDevOracles specifies the number of simulated oracles registered in dev mode
func WithDevOracles(count int) ConfigOptionFunc {
	return func(c *Config) {
		c.devOracles = count
	}
}

// WithPrometheusRegistry specifies a prometheus.Registerer instance to add metrics to. In most cases, prometheus.DefaultRegistry would be
// a good choice to get metrics working
func WithPrometheusRegistry(registry prometheus.Registerer) ConfigOptionFunc {
	return func(c *Config) {
		c.promRegistry = registry
	}
}

// WithTracing enables tracing. By default, spans are submitted to a HTTP(s) endpoint using OTLP. This can be configured
// using the OTEL_EXPORTER_OTLP_* env vars documented in the README for [go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp]
func WithTracing(tracing bool) ConfigOptionFunc {
	return func(c *Config) {
		c.tracing = tracing
	}
}

// WithTracingStdout enables tracing output to stdout. This also requires tracing to enabled separately. This is mostly useful for debugging
func WithTracingStdout(stdout bool) ConfigOptionFunc {
	return func(c *Config) {
		c.tracingStdout = stdout
	}
}

// WithShutdownTimeout specifies the timeout for graceful shutdown. Default is 30 seconds
func WithShutdownTimeout(timeout time.Duration) ConfigOptionFunc {
	return func(c *Config) {
		c.shutdownTimeout = timeout
	}
}

// WithRunMode sets the operational mode ("serve" or "dev").
// In dev mode the ledger is seeded and simulated oracles answer status requests.
func WithRunMode(mode RunMode) ConfigOptionFunc {
	return func(c *Config) {
		c.runMode = mode
	}
}
