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

package api

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/blinklabs-io/surety/event"
	"github.com/fxamacker/cbor/v2"
)

const (
	defaultJournalLimit = 100
	maxJournalLimit     = 1000

	keepaliveInterval = 15 * time.Second
)

type JournalEntryResponse struct {
	Seq       uint64 `json:"seq"`
	Timestamp int64  `json:"timestamp"`
	Type      string `json:"type"`
	Payload   any    `json:"payload"`
	PrevHash  string `json:"prevHash"`
	Hash      string `json:"hash"`
}

// Journal payloads decode to string-keyed maps so they render as JSON
var payloadDecMode, _ = cbor.DecOptions{
	DefaultMapType: reflect.TypeOf(map[string]any(nil)),
}.DecMode()

// handleJournal lists committed journal entries starting at ?from (default
// 1), up to ?limit entries
func (a *Api) handleJournal(w http.ResponseWriter, r *http.Request) {
	if a.config.Database == nil {
		writeError(w, http.StatusServiceUnavailable, "", "journal is not available")
		return
	}
	from, err := queryUint(r, "from", 1)
	if err != nil {
		a.writeLedgerError(w, r, err)
		return
	}
	limit, err := queryUint(r, "limit", defaultJournalLimit)
	if err != nil {
		a.writeLedgerError(w, r, err)
		return
	}
	limit = min(limit, maxJournalLimit)
	iter := a.config.Database.JournalFrom(from)
	defer iter.Close()
	ret := make([]JournalEntryResponse, 0)
	for uint64(len(ret)) < limit {
		entry, err := iter.Next()
		if err != nil {
			a.writeLedgerError(w, r, err)
			return
		}
		if entry == nil {
			break
		}
		var payload any
		if err := payloadDecMode.Unmarshal(entry.Payload, &payload); err != nil {
			a.writeLedgerError(w, r, fmt.Errorf("decode journal entry %d: %w", entry.Seq, err))
			return
		}
		ret = append(ret, JournalEntryResponse{
			Seq:       entry.Seq,
			Timestamp: entry.Timestamp,
			Type:      entry.Type,
			Payload:   payload,
			PrevHash:  hex.EncodeToString(entry.PrevHash),
			Hash:      hex.EncodeToString(entry.Hash),
		})
	}
	writeJSON(w, http.StatusOK, ret)
}

func queryUint(r *http.Request, name string, def uint64) (uint64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	ret, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid %s: %w", errBadRequest, name, err)
	}
	return ret, nil
}

// handleEvents streams ledger events as server-sent events. The optional
// ?type parameter takes a comma-separated list of event types.
func (a *Api) handleEvents(w http.ResponseWriter, r *http.Request) {
	if a.config.EventBus == nil {
		writeError(w, http.StatusServiceUnavailable, "", "event stream is not available")
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "", "streaming is not supported")
		return
	}
	types := []event.EventType{event.AllEvents}
	if raw := r.URL.Query().Get("type"); raw != "" {
		types = types[:0]
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				types = append(types, event.EventType(t))
			}
		}
	}
	// merged closes once every subscription has been closed by the bus
	merged := make(chan event.Event, event.EventQueueSize)
	var wg sync.WaitGroup
	for _, eventType := range types {
		subId, ch := a.config.EventBus.Subscribe(eventType)
		defer a.config.EventBus.Unsubscribe(eventType, subId)
		wg.Add(1)
		go func() {
			defer wg.Done()
			for evt := range ch {
				select {
				case merged <- evt:
				case <-r.Context().Done():
				}
			}
		}()
	}
	go func() {
		wg.Wait()
		close(merged)
	}()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	keepalive := time.NewTicker(keepaliveInterval)
	defer keepalive.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case <-keepalive.C:
			if _, err := fmt.Fprint(w, ": keepalive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case evt, ok := <-merged:
			if !ok {
				a.logger.Debug("event stream closed by the event bus")
				return
			}
			data, err := json.Marshal(evt.Data)
			if err != nil {
				a.logger.Error("failed to encode event", "type", evt.Type, "error", err)
				continue
			}
			if _, err := fmt.Fprintf(w, "id: %d\nevent: %s\ndata: %s\n\n", evt.Seq, evt.Type, data); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
