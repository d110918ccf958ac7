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

package event_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/blinklabs-io/surety/event"
	"github.com/blinklabs-io/surety/internal/test/testutil"
	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestEventBusSubscribers(t *testing.T) {
	const testEvtType event.EventType = "test.event"
	eb := event.NewEventBus(nil, nil)
	defer eb.Stop()
	_, sub1Ch := eb.Subscribe(testEvtType)
	_, sub2Ch := eb.Subscribe(testEvtType)
	_, allCh := eb.Subscribe(event.AllEvents)
	_, otherCh := eb.Subscribe("other.event")
	eb.Publish(testEvtType, event.NewEvent(testEvtType, 999))
	for _, ch := range []<-chan event.Event{sub1Ch, sub2Ch, allCh} {
		evt := testutil.RequireReceive(t, ch, time.Second, "event")
		assert.Equal(t, testEvtType, evt.Type)
		assert.Equal(t, 999, evt.Data)
	}
	testutil.RequireNoReceive(t, otherCh, 20*time.Millisecond, "other event type")
}

func TestEventBusUnsubscribe(t *testing.T) {
	const testEvtType event.EventType = "test.event"
	eb := event.NewEventBus(nil, nil)
	defer eb.Stop()
	subId, subCh := eb.Subscribe(testEvtType)
	eb.Unsubscribe(testEvtType, subId)
	eb.Publish(testEvtType, event.NewEvent(testEvtType, 1))
	_, ok := <-subCh
	assert.False(t, ok, "channel should be closed after unsubscribe")
}

func TestEventBusSubscribeFunc(t *testing.T) {
	const testEvtType event.EventType = "test.event"
	eb := event.NewEventBus(nil, nil)
	var count atomic.Int32
	eb.SubscribeFunc(testEvtType, func(evt event.Event) {
		count.Add(1)
	})
	for i := range 5 {
		eb.Publish(testEvtType, event.NewEvent(testEvtType, i))
	}
	require.Eventually(t, func() bool {
		return count.Load() == 5
	}, 2*time.Second, 10*time.Millisecond)
	// Stop ends the handler goroutine
	eb.Stop()
	eb.Stop()
}

func TestEventBusSubscribeAfterStop(t *testing.T) {
	eb := event.NewEventBus(nil, nil)
	eb.Stop()
	_, ch := eb.Subscribe(event.AllEvents)
	_, ok := <-ch
	assert.False(t, ok, "subscription on a stopped bus should be closed")
	eb.Publish("test.event", event.NewEvent("test.event", 1))
}

func TestEventBusUnsubscribeWrongType(t *testing.T) {
	eb := event.NewEventBus(nil, nil)
	defer eb.Stop()
	subId, ch := eb.Subscribe("test.event")
	eb.Unsubscribe("other.event", subId)
	eb.Publish("test.event", event.NewEvent("test.event", 7))
	assert.Equal(t, 7, testutil.RequireReceive(t, ch, time.Second, "event").Data)
}

func TestEventBusFullSubscriberDropped(t *testing.T) {
	const testEvtType event.EventType = "test.event"
	reg := prometheus.NewRegistry()
	eb := event.NewEventBus(reg, nil)
	defer eb.Stop()
	_, subCh := eb.Subscribe(testEvtType)
	// Overflow the subscriber buffer without reading
	for i := range event.EventQueueSize + 1 {
		eb.Publish(testEvtType, event.NewEvent(testEvtType, i))
	}
	received := 0
	for range subCh {
		received++
	}
	assert.Equal(t, event.EventQueueSize, received)
	count, err := promtestutil.GatherAndCount(reg, "event_delivery_errors_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

type panicSubscriber struct {
	closed atomic.Bool
}

func (p *panicSubscriber) Deliver(event.Event) error {
	panic("boom")
}

func (p *panicSubscriber) Close() {
	p.closed.Store(true)
}

func TestEventBusPanickingSubscriber(t *testing.T) {
	eb := event.NewEventBus(nil, nil)
	defer eb.Stop()
	sub := &panicSubscriber{}
	eb.RegisterSubscriber("test.panic", sub)
	eb.Publish("test.panic", event.NewEvent("test.panic", nil))
	assert.True(t, sub.closed.Load())
}
