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

// Package event provides the in-process bus that fans committed ledger
// events out to subscribers such as the API stream and the dev relay
package event

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// EventQueueSize is the buffer of each channel subscriber
const EventQueueSize = 64

// AllEvents subscribes to every event type
const AllEvents EventType = "*"

var ErrSubscriberFull = errors.New("subscriber queue full")

type EventType string

type EventSubscriberId int

type EventHandlerFunc func(Event)

type Event struct {
	Timestamp time.Time
	Data      any
	Type      EventType
	// Seq is the journal sequence number of the event, or 0 if the event was
	// not journaled
	Seq uint64
}

func NewEvent(eventType EventType, eventData any) Event {
	return Event{
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      eventData,
	}
}

// Subscriber receives events from the bus. Close must be idempotent.
type Subscriber interface {
	Deliver(Event) error
	Close()
}

// channelSubscriber hands events to a buffered channel. Deliver never blocks;
// a full buffer is reported as ErrSubscriberFull.
type channelSubscriber struct {
	ch     chan Event
	mu     sync.RWMutex
	closed bool
}

func (c *channelSubscriber) Deliver(evt Event) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return nil
	}
	select {
	case c.ch <- evt:
		return nil
	default:
		return ErrSubscriberFull
	}
}

func (c *channelSubscriber) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.ch)
	}
}

type subscription struct {
	sub       Subscriber
	eventType EventType
}

// matches reports whether the subscription wants events of type t
func (s subscription) matches(t EventType) bool {
	return s.eventType == AllEvents || s.eventType == t
}

// EventBus delivers events synchronously on the publisher's goroutine.
// Subscribers must not block in Deliver.
type EventBus struct {
	subs    map[EventSubscriberId]subscription
	metrics *eventMetrics
	logger  *slog.Logger
	nextId  EventSubscriberId
	mu      sync.RWMutex
	stopped bool
}

// NewEventBus creates an EventBus. Metrics are registered when promRegistry
// is not nil.
func NewEventBus(
	promRegistry prometheus.Registerer,
	logger *slog.Logger,
) *EventBus {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	e := &EventBus{
		subs:   make(map[EventSubscriberId]subscription),
		logger: logger,
	}
	if promRegistry != nil {
		e.initMetrics(promRegistry)
	}
	return e
}

// RegisterSubscriber adds a subscriber for eventType and returns its id. A
// subscriber registered on a stopped bus is closed right away.
func (e *EventBus) RegisterSubscriber(
	eventType EventType,
	sub Subscriber,
) EventSubscriberId {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.nextId++
	if e.stopped {
		sub.Close()
		return e.nextId
	}
	e.subs[e.nextId] = subscription{sub: sub, eventType: eventType}
	if e.metrics != nil {
		e.metrics.subscribers.WithLabelValues(string(eventType)).Inc()
	}
	return e.nextId
}

// Subscribe returns a channel that receives events of eventType. The channel
// is closed on Unsubscribe, on Stop, or when the subscriber falls behind.
func (e *EventBus) Subscribe(
	eventType EventType,
) (EventSubscriberId, <-chan Event) {
	sub := &channelSubscriber{ch: make(chan Event, EventQueueSize)}
	return e.RegisterSubscriber(eventType, sub), sub.ch
}

// SubscribeFunc runs handlerFunc on its own goroutine for each event of
// eventType until the subscription ends
func (e *EventBus) SubscribeFunc(
	eventType EventType,
	handlerFunc EventHandlerFunc,
) EventSubscriberId {
	subId, evtCh := e.Subscribe(eventType)
	go func() {
		for evt := range evtCh {
			handlerFunc(evt)
		}
	}()
	return subId
}

// Unsubscribe removes a subscriber and closes it. Ids registered for a
// different event type are left alone.
func (e *EventBus) Unsubscribe(eventType EventType, subId EventSubscriberId) {
	e.mu.Lock()
	s, ok := e.subs[subId]
	if ok && s.eventType == eventType {
		delete(e.subs, subId)
	} else {
		ok = false
	}
	e.mu.Unlock()
	if !ok {
		return
	}
	if e.metrics != nil {
		e.metrics.subscribers.WithLabelValues(string(eventType)).Dec()
	}
	s.sub.Close()
}

// Publish delivers evt to the subscribers of eventType and of AllEvents.
// Subscribers that fail delivery are dropped.
func (e *EventBus) Publish(eventType EventType, evt Event) {
	e.mu.RLock()
	var failed []EventSubscriberId
	var failedTypes []EventType
	for id, s := range e.subs {
		if !s.matches(eventType) {
			continue
		}
		if err := deliver(s.sub, evt); err != nil {
			failed = append(failed, id)
			failedTypes = append(failedTypes, s.eventType)
			e.logger.Debug(
				"dropping event subscriber",
				"component", "event",
				"type", eventType,
				"subscriber", id,
				"error", err,
			)
		}
	}
	e.mu.RUnlock()
	for i, id := range failed {
		e.Unsubscribe(failedTypes[i], id)
	}
	if e.metrics != nil {
		e.metrics.eventsTotal.WithLabelValues(string(eventType)).Inc()
		e.metrics.deliveryErrors.WithLabelValues(string(eventType)).Add(float64(len(failed)))
	}
}

func deliver(sub Subscriber, evt Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("subscriber panic: %v", r)
		}
	}()
	return sub.Deliver(evt)
}

// Stop closes every subscriber, which ends the SubscribeFunc goroutines.
// Later subscriptions are closed immediately. Stop is idempotent.
func (e *EventBus) Stop() {
	e.mu.Lock()
	if e.stopped {
		e.mu.Unlock()
		return
	}
	e.stopped = true
	subs := e.subs
	e.subs = make(map[EventSubscriberId]subscription)
	e.mu.Unlock()
	for _, s := range subs {
		s.sub.Close()
	}
	if e.metrics != nil {
		e.metrics.subscribers.Reset()
	}
}
