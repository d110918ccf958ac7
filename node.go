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
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/blinklabs-io/surety/api"
	"github.com/blinklabs-io/surety/database"
	"github.com/blinklabs-io/surety/event"
	"github.com/blinklabs-io/surety/internal/devnet"
	"github.com/blinklabs-io/surety/internal/relay"
	"github.com/blinklabs-io/surety/ledger"
)

type Node struct {
	eventBus      *event.EventBus
	db            *database.Database
	ledgerState   *ledger.LedgerState
	api           *api.Api
	relay         *relay.Relay
	shutdownFuncs []func(context.Context) error
	config        Config
	done          chan struct{}
	startOnce     sync.Once
	shutdownOnce  sync.Once
}

func New(cfg Config) (*Node, error) {
	n := &Node{
		config: cfg,
		done:   make(chan struct{}),
	}
	if err := n.configValidate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return n, nil
}

// Run starts the node and blocks until the context is cancelled or Stop is
// called
func (n *Node) Run(ctx context.Context) error {
	if err := n.Start(ctx); err != nil {
		return err
	}
	select {
	case <-ctx.Done():
	case <-n.done:
	}
	return nil
}

// Start opens the database, provisions the ledger and starts the API. In dev
// mode it also seeds the ledger and starts the simulated oracle relay.
func (n *Node) Start(ctx context.Context) error {
	err := errors.New("node already started")
	n.startOnce.Do(func() {
		err = n.start(ctx)
	})
	return err
}

func (n *Node) start(ctx context.Context) error {
	logger := n.config.logger.With("component", "node")
	// Configure tracing
	if n.config.tracing {
		if err := n.setupTracing(); err != nil {
			return err
		}
	}
	n.eventBus = event.NewEventBus(n.config.promRegistry, n.config.logger)
	// Load database
	db, err := database.New(&database.Config{
		DataDir:        n.config.dataDir,
		Logger:         n.config.logger,
		PromRegistry:   n.config.promRegistry,
		BlobPlugin:     n.config.blobPlugin,
		MetadataPlugin: n.config.metadataPlugin,
	})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	n.db = db
	// Load state
	state, err := ledger.NewLedgerState(
		ledger.LedgerStateConfig{
			Logger:       n.config.logger,
			Store:        n.db,
			EventBus:     n.eventBus,
			PromRegistry: n.config.promRegistry,
			LogicID:      n.config.logicID,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to load ledger state: %w", err)
	}
	n.ledgerState = state
	if err := n.provision(ctx); err != nil {
		return err
	}
	if n.config.isDevMode() {
		if err := devnet.Seed(ctx, n.ledgerState, n.config.seedPlan, n.config.logger); err != nil {
			return fmt.Errorf("failed to seed dev ledger: %w", err)
		}
		n.relay = relay.New(relay.RelayConfig{
			Logger:      n.config.logger,
			LedgerState: n.ledgerState,
			EventBus:    n.eventBus,
			Oracles:     n.config.devOracles,
		})
		if err := n.relay.Start(ctx); err != nil {
			return fmt.Errorf("failed to start oracle relay: %w", err)
		}
	}
	// Configure API
	n.api = api.New(api.ApiConfig{
		Logger:        n.config.logger,
		LedgerState:   n.ledgerState,
		Database:      n.db,
		EventBus:      n.eventBus,
		ListenAddress: n.config.listenAddress,
	})
	if err := n.api.Start(ctx); err != nil {
		return err
	}
	logger.Info(
		"ledger ready",
		"logic_id", n.config.logicID,
		"run_mode", string(n.config.runMode),
	)
	return nil
}

// provision applies the configured genesis. Without one the ledger must
// already be provisioned.
func (n *Node) provision(ctx context.Context) error {
	logger := n.config.logger.With("component", "node")
	genesis := n.config.genesis
	if genesis == nil && n.config.isDevMode() {
		genesis = n.config.seedPlan.Genesis(n.config.logicID)
	}
	if genesis == nil {
		if _, err := n.ledgerState.Settings(); err != nil {
			return fmt.Errorf("no genesis configured: %w", err)
		}
		return nil
	}
	applied, err := n.ledgerState.ApplyGenesis(ctx, genesis)
	if err != nil {
		return fmt.Errorf("failed to apply genesis: %w", err)
	}
	if applied {
		logger.Info(
			"applied genesis",
			"owner", genesis.Owner,
			"first_airline", genesis.FirstAirline.Address,
		)
	}
	return nil
}

// LedgerState returns the ledger state of a started node
func (n *Node) LedgerState() *ledger.LedgerState {
	return n.ledgerState
}

// EventBus returns the event bus of a started node
func (n *Node) EventBus() *event.EventBus {
	return n.eventBus
}

func (n *Node) Stop() error {
	var err error
	n.shutdownOnce.Do(func() {
		err = n.shutdown()
	})
	return err
}

func (n *Node) shutdown() error {
	// Create shutdown context with timeout (default 30s if not configured)
	shutdownTimeout := 30 * time.Second
	if n.config.shutdownTimeout > 0 {
		shutdownTimeout = n.config.shutdownTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var err error

	n.config.logger.Debug("starting graceful shutdown")

	// Phase 1: Stop accepting new work
	n.config.logger.Debug("shutdown phase 1: stopping new work")

	if n.api != nil {
		if stopErr := n.api.Stop(ctx); stopErr != nil {
			err = errors.Join(err, fmt.Errorf("api shutdown: %w", stopErr))
		}
	}

	if n.relay != nil {
		n.relay.Stop()
	}

	// Phase 2: Stop event delivery
	n.config.logger.Debug("shutdown phase 2: stopping event delivery")

	if n.eventBus != nil {
		n.eventBus.Stop()
	}

	// Phase 3: Close database
	n.config.logger.Debug("shutdown phase 3: closing database")

	if n.db != nil {
		if closeErr := n.db.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("database close: %w", closeErr))
		}
	}

	// Phase 4: Cleanup resources
	n.config.logger.Debug("shutdown phase 4: cleanup resources")

	// Call registered shutdown functions
	for _, fn := range n.shutdownFuncs {
		if fnErr := fn(ctx); fnErr != nil {
			err = errors.Join(err, fmt.Errorf("shutdown function: %w", fnErr))
		}
	}
	n.shutdownFuncs = nil

	n.config.logger.Debug("graceful shutdown complete")
	close(n.done)
	return err
}
