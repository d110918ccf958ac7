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

// Package relay runs simulated oracles for development. It registers a set
// of oracle accounts and answers every status request addressed to one of
// their indexes.
package relay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"sync"

	"github.com/blinklabs-io/surety/event"
	"github.com/blinklabs-io/surety/ledger"
	"github.com/blinklabs-io/surety/ledger/common"
)

// StatusSource decides the status reported for a request
type StatusSource interface {
	Status(key common.RequestKey) common.StatusCode
}

// RandomStatus reports a random reportable status. Every oracle answering
// the same request reports the same status, so one request reaches quorum.
type RandomStatus struct{}

var reportable = []common.StatusCode{
	common.StatusOnTime,
	common.StatusLateAirline,
	common.StatusLateWeather,
	common.StatusLateTechnical,
	common.StatusLateOther,
}

func (RandomStatus) Status(common.RequestKey) common.StatusCode {
	return reportable[rand.IntN(len(reportable))] //nolint:gosec // simulated oracle
}

// FixedStatus always reports the same status
type FixedStatus common.StatusCode

func (f FixedStatus) Status(common.RequestKey) common.StatusCode {
	return common.StatusCode(f)
}

type RelayConfig struct {
	Logger      *slog.Logger
	LedgerState *ledger.LedgerState
	EventBus    *event.EventBus
	Status      StatusSource
	// Oracles is the number of simulated oracle accounts
	Oracles int
}

type oracleAccount struct {
	address common.Address
	indexes []uint8
}

type Relay struct {
	config   RelayConfig
	logger   *slog.Logger
	oracles  []oracleAccount
	subId    event.EventSubscriberId
	wg       sync.WaitGroup
	mu       sync.Mutex
	started  bool
	cancelFn context.CancelFunc
}

func New(cfg RelayConfig) *Relay {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if cfg.Status == nil {
		cfg.Status = RandomStatus{}
	}
	return &Relay{
		config: cfg,
		logger: cfg.Logger.With("component", "relay"),
	}
}

// OracleAddress returns the address of the i-th simulated oracle
func OracleAddress(i int) common.Address {
	return common.NewAddress(fmt.Sprintf("0xdev-oracle-%02d", i))
}

// Start registers the simulated oracles, reusing any that are already
// registered, and starts answering status requests
func (r *Relay) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return errors.New("relay already started")
	}
	if r.config.LedgerState == nil || r.config.EventBus == nil {
		return errors.New("relay needs a ledger state and an event bus")
	}
	r.oracles = r.oracles[:0]
	for i := range r.config.Oracles {
		account, err := r.ensureOracle(ctx, OracleAddress(i))
		if err != nil {
			return err
		}
		r.oracles = append(r.oracles, account)
		r.logger.Debug(
			"oracle ready",
			"oracle", account.address.String(),
			"indexes", fmt.Sprint(account.indexes),
		)
	}
	runCtx, cancel := context.WithCancel(context.Background())
	r.cancelFn = cancel
	subId, ch := r.config.EventBus.Subscribe(ledger.OracleRequestEventType)
	r.subId = subId
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		for evt := range ch {
			r.handleRequest(runCtx, evt)
		}
	}()
	r.started = true
	r.logger.Info(
		fmt.Sprintf("started %d simulated oracles", len(r.oracles)),
	)
	return nil
}

func (r *Relay) ensureOracle(ctx context.Context, address common.Address) (oracleAccount, error) {
	indexes, err := r.config.LedgerState.OracleIndexes(address)
	if err == nil {
		return oracleAccount{address: address, indexes: indexes}, nil
	}
	if !errors.Is(err, ledger.ErrNotFound) {
		return oracleAccount{}, fmt.Errorf("lookup oracle %s: %w", address, err)
	}
	indexes, err = r.config.LedgerState.RegisterOracle(
		ctx,
		ledger.Call{Caller: address, Value: ledger.OracleRegistrationFee},
	)
	if err != nil {
		return oracleAccount{}, fmt.Errorf("register oracle %s: %w", address, err)
	}
	return oracleAccount{address: address, indexes: indexes}, nil
}

// Stop ends the subscription and waits for in-flight reports
func (r *Relay) Stop() {
	r.mu.Lock()
	if !r.started {
		r.mu.Unlock()
		return
	}
	r.started = false
	r.cancelFn()
	r.config.EventBus.Unsubscribe(ledger.OracleRequestEventType, r.subId)
	r.mu.Unlock()
	r.wg.Wait()
}

func (r *Relay) handleRequest(ctx context.Context, evt event.Event) {
	data, ok := evt.Data.(*ledger.OracleRequestEvent)
	if !ok {
		return
	}
	key := data.Request
	status := r.config.Status.Status(key)
	r.logger.Debug(
		"received status request",
		"request", key.String(),
		"status", status.String(),
	)
	for _, oracle := range r.oracles {
		for _, index := range oracle.indexes {
			if ctx.Err() != nil {
				return
			}
			// Every held index is tried; the ledger rejects the ones that do
			// not match the request
			reqKey := key
			reqKey.Index = index
			err := r.config.LedgerState.SubmitOracleResponse(
				ctx,
				ledger.Call{Caller: oracle.address},
				reqKey,
				status,
			)
			switch {
			case err == nil:
				r.logger.Debug(
					"report accepted",
					"oracle", oracle.address.String(),
					"index", index,
					"status", status.String(),
				)
			case errors.Is(err, ledger.ErrRequestMismatch),
				errors.Is(err, ledger.ErrStateConflict):
				// Not our request, or already reported
			default:
				r.logger.Warn(
					"report rejected",
					"oracle", oracle.address.String(),
					"index", index,
					"error", err,
				)
			}
		}
	}
}
