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

package ledger

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why the ledger rejected an operation
type ErrorKind int

const (
	KindGuardViolation ErrorKind = iota + 1
	KindStateConflict
	KindBoundsViolation
	KindRequestMismatch
	KindNotFound
)

func (k ErrorKind) String() string {
	switch k {
	case KindGuardViolation:
		return "GuardViolation"
	case KindStateConflict:
		return "StateConflict"
	case KindBoundsViolation:
		return "BoundsViolation"
	case KindRequestMismatch:
		return "RequestMismatch"
	case KindNotFound:
		return "NotFound"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// Sentinels for use with errors.Is
var (
	ErrGuardViolation  = &LedgerError{Kind: KindGuardViolation}
	ErrStateConflict   = &LedgerError{Kind: KindStateConflict}
	ErrBoundsViolation = &LedgerError{Kind: KindBoundsViolation}
	ErrRequestMismatch = &LedgerError{Kind: KindRequestMismatch}
	ErrNotFound        = &LedgerError{Kind: KindNotFound}
)

// LedgerError is returned when an operation is rejected. A rejected
// operation leaves no state change and emits no event.
type LedgerError struct {
	Op   string
	Msg  string
	Kind ErrorKind
}

func (e *LedgerError) Error() string {
	if e.Op == "" {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, e.Msg)
}

// Is matches any LedgerError of the same kind
func (e *LedgerError) Is(target error) bool {
	t, ok := target.(*LedgerError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func newLedgerError(kind ErrorKind, op string, format string, args ...any) error {
	return &LedgerError{
		Kind: kind,
		Op:   op,
		Msg:  fmt.Sprintf(format, args...),
	}
}

// KindOf returns the kind of a ledger rejection anywhere in err's chain
func KindOf(err error) (ErrorKind, bool) {
	var lerr *LedgerError
	if errors.As(err, &lerr) {
		return lerr.Kind, true
	}
	return 0, false
}
