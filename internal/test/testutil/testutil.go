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

// Package testutil provides synchronization helpers for tests that observe
// asynchronous event delivery
package testutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// DefaultTimeout bounds waits for asynchronous ledger activity. Helpers use
// it when passed a zero timeout.
const DefaultTimeout = 5 * time.Second

const pollInterval = 10 * time.Millisecond

func orDefault(timeout time.Duration) time.Duration {
	if timeout <= 0 {
		return DefaultTimeout
	}
	return timeout
}

// WaitForCondition polls condition until it returns true, failing the test
// with msg when the timeout expires first
func WaitForCondition(
	t *testing.T,
	condition func() bool,
	timeout time.Duration,
	msg string,
) {
	t.Helper()
	require.Eventually(t, condition, orDefault(timeout), pollInterval, msg)
}

// RequireReceive returns the next value from ch. The test fails if ch is
// closed or nothing arrives before the timeout.
func RequireReceive[T any](
	t *testing.T,
	ch <-chan T,
	timeout time.Duration,
	msg string,
) T {
	t.Helper()
	timer := time.NewTimer(orDefault(timeout))
	defer timer.Stop()
	select {
	case v, ok := <-ch:
		require.True(t, ok, "channel closed: %s", msg)
		return v
	case <-timer.C:
		require.FailNow(t, "timeout waiting for channel receive", msg)
	}
	var zero T
	return zero
}

// RequireNoReceive fails the test if a value arrives on ch within duration.
// A closed channel counts as no value.
func RequireNoReceive[T any](
	t *testing.T,
	ch <-chan T,
	duration time.Duration,
	msg string,
) {
	t.Helper()
	timer := time.NewTimer(duration)
	defer timer.Stop()
	select {
	case v, ok := <-ch:
		if ok {
			require.FailNow(t, "unexpected value received on channel", "%v: %s", v, msg)
		}
	case <-timer.C:
	}
}
