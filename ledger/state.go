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

// Package ledger implements the flight-insurance rules: the authorization
// gate, airline governance, flights and insurance, and oracle consensus.
// Every state-changing operation runs in a single database transaction and
// publishes its events only after commit.
package ledger

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/blinklabs-io/surety/database"
	"github.com/blinklabs-io/surety/database/models"
	"github.com/blinklabs-io/surety/database/types"
	"github.com/blinklabs-io/surety/event"
	"github.com/blinklabs-io/surety/ledger/common"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/blinklabs-io/surety/ledger"

type LedgerStateConfig struct {
	Logger       *slog.Logger
	Store        Store
	EventBus     *event.EventBus
	PromRegistry prometheus.Registerer
	Random       RandomSource
	Transferer   Transferer
	Now          func() time.Time
	// LogicID identifies this logic-layer deployment to the authorization gate
	LogicID string
}

// Call carries the caller identity and attached value attested by the host
type Call struct {
	Caller common.Address
	Value  common.Amount
}

type LedgerState struct {
	sync.Mutex
	config  LedgerStateConfig
	db      Store
	metrics stateMetrics
	tracer  trace.Tracer
}

func NewLedgerState(cfg LedgerStateConfig) (*LedgerState, error) {
	if cfg.Store == nil {
		return nil, errors.New("no store provided")
	}
	if cfg.LogicID == "" {
		return nil, errors.New("no logic ID provided")
	}
	if cfg.Logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		cfg.Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if cfg.Random == nil {
		cfg.Random = NewChainRandom()
	}
	if cfg.Transferer == nil {
		cfg.Transferer = NewOutboxTransferer(cfg.Store)
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	ls := &LedgerState{
		config: cfg,
		db:     cfg.Store,
		tracer: otel.Tracer(tracerName),
	}
	ls.metrics.init(cfg.PromRegistry)
	if err := ls.updateGauges(); err != nil {
		return nil, err
	}
	return ls, nil
}

// LogicID returns the logic-layer identity of this ledger state
func (ls *LedgerState) LogicID() string {
	return ls.config.LogicID
}

type pendingEvent struct {
	data      any
	eventType event.EventType
	seq       uint64
}

// opContext is the state of one operation while its transaction is open
type opContext struct {
	ctx           context.Context
	ls            *LedgerState
	txn           *database.Txn
	settings      *models.LedgerSettings
	op            string
	call          Call
	events        []pendingEvent
	settingsDirty bool
}

// execute runs fn as one atomic operation. Operations are serialized, and
// the events recorded by fn are published only if the transaction commits.
func (ls *LedgerState) execute(
	ctx context.Context,
	op string,
	call Call,
	fn func(*opContext) error,
) error {
	ctx, span := ls.tracer.Start(
		ctx,
		"ledger."+op,
		trace.WithAttributes(
			attribute.String("caller", call.Caller.String()),
			attribute.Int64("value", int64(call.Value)), //nolint:gosec // attribute only
		),
	)
	defer span.End()
	oc := &opContext{
		ctx:  ctx,
		ls:   ls,
		op:   op,
		call: call,
	}
	var gaugeErr error
	err := func() error {
		ls.Lock()
		defer ls.Unlock()
		txn := ls.db.Transaction(true)
		err := txn.Do(func(txn *database.Txn) error {
			oc.txn = txn
			if err := fn(oc); err != nil {
				return err
			}
			if oc.settingsDirty {
				return ls.db.SetSettings(oc.settings, txn)
			}
			return nil
		})
		if err == nil {
			gaugeErr = ls.updateGauges()
		}
		return err
	}()
	if err != nil {
		kind := "internal"
		if k, ok := KindOf(err); ok {
			kind = k.String()
		} else {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			ls.config.Logger.Error(
				"ledger operation failed",
				"component", "ledger",
				"operation", op,
				"error", err,
			)
		}
		ls.metrics.rejectionsTotal.WithLabelValues(op, kind).Inc()
		span.SetAttributes(attribute.String("rejection", kind))
		return err
	}
	if gaugeErr != nil {
		ls.config.Logger.Warn(
			"failed to update ledger metrics",
			"component", "ledger",
			"error", gaugeErr,
		)
	}
	ls.metrics.operationsTotal.WithLabelValues(op).Inc()
	ls.config.Logger.Debug(
		"ledger operation committed",
		"component", "ledger",
		"operation", op,
		"caller", call.Caller.String(),
		"events", len(oc.events),
	)
	ls.publish(oc.events)
	return nil
}

func (ls *LedgerState) publish(events []pendingEvent) {
	if ls.config.EventBus == nil {
		return
	}
	for _, pe := range events {
		evt := event.NewEvent(pe.eventType, pe.data)
		evt.Seq = pe.seq
		ls.config.EventBus.Publish(pe.eventType, evt)
	}
}

func (ls *LedgerState) updateGauges() error {
	txn := ls.db.Transaction(false)
	defer txn.Release()
	settings, err := ls.db.GetSettings(txn)
	if err != nil {
		return err
	}
	if settings != nil {
		ls.metrics.poolBalance.Set(float64(settings.Pool))
	}
	funded, err := ls.db.CountAirlinesByState(uint8(common.AirlineFunded), txn)
	if err != nil {
		return err
	}
	ls.metrics.fundedAirlines.Set(float64(funded))
	open, err := ls.db.CountOracleRequestsByState(uint8(common.RequestOpen), txn)
	if err != nil {
		return err
	}
	ls.metrics.openRequests.Set(float64(open))
	return nil
}

func (o *opContext) errorf(kind ErrorKind, format string, args ...any) error {
	return newLedgerError(kind, o.op, format, args...)
}

// loadSettings returns the settings row of the ledger, cached for the
// operation
func (o *opContext) loadSettings() (*models.LedgerSettings, error) {
	if o.settings != nil {
		return o.settings, nil
	}
	settings, err := o.ls.db.GetSettings(o.txn)
	if err != nil {
		return nil, err
	}
	if settings == nil {
		return nil, o.errorf(KindGuardViolation, "ledger has no genesis")
	}
	o.settings = settings
	return settings, nil
}

// requireGate checks that the ledger is operational and that this logic
// deployment is authorized to mutate it
func (o *opContext) requireGate() error {
	settings, err := o.loadSettings()
	if err != nil {
		return err
	}
	if !settings.Operational {
		return o.errorf(KindGuardViolation, "ledger is not operational")
	}
	authorized, err := o.ls.db.IsAuthorizedCaller(o.ls.config.LogicID, o.txn)
	if err != nil {
		return err
	}
	if !authorized {
		return o.errorf(
			KindGuardViolation,
			"logic %q is not authorized",
			o.ls.config.LogicID,
		)
	}
	return nil
}

// requireOwner checks that the caller is the ledger owner
func (o *opContext) requireOwner() error {
	settings, err := o.loadSettings()
	if err != nil {
		return err
	}
	if common.NewAddress(settings.Owner) != o.call.Caller {
		return o.errorf(KindGuardViolation, "caller is not the owner")
	}
	return nil
}

func (o *opContext) creditPool(amount common.Amount) error {
	settings, err := o.loadSettings()
	if err != nil {
		return err
	}
	next := settings.Pool + types.Uint64(amount)
	if next < settings.Pool {
		return fmt.Errorf("pool balance overflow")
	}
	settings.Pool = next
	o.settingsDirty = true
	return nil
}

func (o *opContext) debitPool(amount common.Amount) error {
	settings, err := o.loadSettings()
	if err != nil {
		return err
	}
	if types.Uint64(amount) > settings.Pool {
		return o.errorf(
			KindStateConflict,
			"pool balance %s cannot cover %s",
			common.Amount(settings.Pool),
			amount,
		)
	}
	settings.Pool -= types.Uint64(amount)
	o.settingsDirty = true
	return nil
}

// transfer pays out of the pool through the configured Transferer
func (o *opContext) transfer(payout Payout) error {
	if payout.Amount == 0 {
		return nil
	}
	if err := o.debitPool(payout.Amount); err != nil {
		return err
	}
	if err := o.ls.config.Transferer.Transfer(o.ctx, payout, o.txn); err != nil {
		return fmt.Errorf("transfer to %s: %w", payout.Recipient, err)
	}
	o.ls.metrics.payoutsTotal.Add(float64(payout.Amount))
	return o.emit(PayoutEventType, &PayoutEvent{
		Recipient: payout.Recipient,
		Reason:    payout.Reason,
		Reference: payout.Reference,
		Amount:    payout.Amount,
	})
}

// emit journals an event in the operation transaction and queues it for
// publication after commit
func (o *opContext) emit(eventType event.EventType, data any) error {
	entry, err := o.ls.db.AppendJournal(
		string(eventType),
		data,
		o.ls.config.Now().UnixMilli(),
		o.txn,
	)
	if err != nil {
		return fmt.Errorf("journal %s: %w", eventType, err)
	}
	o.events = append(o.events, pendingEvent{
		eventType: eventType,
		data:      data,
		seq:       entry.Seq,
	})
	return nil
}

// drawIndex returns a shard index in [0, OracleIndexRange). Each draw
// consumes a nonce so repeated draws in one operation differ.
func (o *opContext) drawIndex() (uint8, error) {
	settings, err := o.loadSettings()
	if err != nil {
		return 0, err
	}
	tip, err := o.ls.db.JournalTip(o.txn)
	if err != nil {
		return 0, err
	}
	settings.Nonce++
	o.settingsDirty = true
	entropy := make([]byte, 0, len(o.call.Caller)+8+len(tip.TipHash()))
	entropy = append(entropy, o.call.Caller.String()...)
	entropy = binary.BigEndian.AppendUint64(entropy, settings.Nonce)
	entropy = append(entropy, tip.TipHash()...)
	return o.ls.config.Random.Index(entropy, OracleIndexRange), nil
}

// requireFundedCaller returns the caller airline if it is Funded
func (o *opContext) requireFundedCaller() (*models.Airline, error) {
	airline, err := o.ls.db.GetAirline(o.call.Caller.String(), o.txn)
	if err != nil {
		return nil, err
	}
	if airline == nil || !airline.IsFunded() {
		return nil, o.errorf(
			KindGuardViolation,
			"caller %s is not a funded airline",
			o.call.Caller,
		)
	}
	return airline, nil
}
