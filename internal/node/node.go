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

package node

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/blinklabs-io/surety"
	"github.com/blinklabs-io/surety/internal/config"
	"github.com/blinklabs-io/surety/internal/devnet"
	"github.com/blinklabs-io/surety/ledger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Options builds the node options from the loaded config
func Options(cfg *config.Config, logger *slog.Logger) ([]surety.ConfigOptionFunc, error) {
	opts := []surety.ConfigOptionFunc{
		surety.WithLogger(logger),
		surety.WithDatabasePath(cfg.DatabasePath),
		surety.WithBlobPlugin(cfg.BlobPlugin),
		surety.WithMetadataPlugin(cfg.MetadataPlugin),
		surety.WithListenAddress(cfg.ListenAddress),
		surety.WithLogicID(cfg.LogicID),
		surety.WithRunMode(surety.RunMode(cfg.RunMode)),
		surety.WithDevOracles(cfg.DevOracles),
		surety.WithShutdownTimeout(cfg.ShutdownTimeoutDuration()),
		surety.WithTracing(cfg.Tracing),
		surety.WithTracingStdout(cfg.TracingStdout),
	}
	if cfg.GenesisFile != "" {
		genesis, err := ledger.LoadGenesisFile(cfg.GenesisFile)
		if err != nil {
			return nil, err
		}
		opts = append(opts, surety.WithGenesis(genesis))
	}
	if cfg.DevSeedFile != "" {
		plan, err := devnet.LoadPlan(cfg.DevSeedFile)
		if err != nil {
			return nil, err
		}
		opts = append(opts, surety.WithSeedPlan(plan))
	}
	return opts, nil
}

func Run(cfg *config.Config, logger *slog.Logger) error {
	logger.Debug(fmt.Sprintf("config: %+v", cfg), "component", "node")
	opts, err := Options(cfg, logger)
	if err != nil {
		return err
	}
	shutdownTimeout := cfg.ShutdownTimeoutDuration()
	d, err := surety.New(
		surety.NewConfig(
			append(
				opts,
				// Enable metrics with default prometheus registry
				surety.WithPrometheusRegistry(prometheus.DefaultRegisterer),
			)...,
		),
	)
	if err != nil {
		return err
	}
	// Metrics listener
	http.Handle("/metrics", promhttp.Handler())
	logger.Info(
		"serving prometheus metrics on "+fmt.Sprintf(
			"%s:%d",
			cfg.BindAddr,
			cfg.MetricsPort,
		),
		"component",
		"node",
	)
	metricsServer := &http.Server{
		Addr: fmt.Sprintf(
			"%s:%d",
			cfg.BindAddr,
			cfg.MetricsPort,
		),
		ReadHeaderTimeout: 60 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil &&
			err != http.ErrServerClosed {
			logger.Error(
				fmt.Sprintf("failed to start metrics listener: %s", err),
				"component", "node",
			)
			os.Exit(1)
		}
	}()
	// Wait for interrupt/termination signal
	signalCtx, signalCtxStop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer signalCtxStop()

	stopAll := func() error {
		shutdownCtx, cancel := context.WithTimeout(
			context.Background(),
			shutdownTimeout,
		)
		defer cancel()
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("metrics server shutdown error", "error", err)
		}
		if err := d.Stop(); err != nil {
			logger.Error("shutdown errors occurred", "error", err)
			return err
		}
		return nil
	}

	// Run node, which returns once the signal context is done
	if err := d.Run(signalCtx); err != nil {
		logger.Error("node error", "error", err)
		signalCtxStop()
		if stopErr := stopAll(); stopErr != nil {
			logger.Error(
				"shutdown errors occurred during error cleanup",
				"error",
				stopErr,
			)
		}
		return err
	}
	logger.Info("signal received, initiating graceful shutdown")
	if err := stopAll(); err != nil {
		return err
	}
	logger.Info("shutdown complete")
	return nil
}
