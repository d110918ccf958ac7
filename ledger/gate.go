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
	"context"
	"strings"
)

// Authorize adds a logic-layer identity to the set allowed to mutate the
// ledger. Owner only, while operational.
func (ls *LedgerState) Authorize(ctx context.Context, call Call, logicID string) error {
	return ls.execute(ctx, "authorize", call, func(o *opContext) error {
		if err := o.requireOwnerOperational(); err != nil {
			return err
		}
		logicID = strings.TrimSpace(logicID)
		if logicID == "" {
			return o.errorf(KindBoundsViolation, "empty logic ID")
		}
		if err := ls.db.AddAuthorizedCaller(logicID, o.txn); err != nil {
			return err
		}
		return o.emit(CallerAuthorizedEventType, &CallerAuthorizationEvent{LogicID: logicID})
	})
}

// Deauthorize removes a logic-layer identity from the authorized set. Owner
// only, while operational.
func (ls *LedgerState) Deauthorize(ctx context.Context, call Call, logicID string) error {
	return ls.execute(ctx, "deauthorize", call, func(o *opContext) error {
		if err := o.requireOwnerOperational(); err != nil {
			return err
		}
		authorized, err := ls.db.IsAuthorizedCaller(logicID, o.txn)
		if err != nil {
			return err
		}
		if !authorized {
			return o.errorf(KindNotFound, "logic %q is not authorized", logicID)
		}
		if err := ls.db.DeleteAuthorizedCaller(logicID, o.txn); err != nil {
			return err
		}
		return o.emit(CallerDeauthorizedEventType, &CallerAuthorizationEvent{LogicID: logicID})
	})
}

// ToggleOperational flips the operational flag. Owner only, and allowed
// while paused so the ledger can be resumed.
func (ls *LedgerState) ToggleOperational(ctx context.Context, call Call) error {
	return ls.execute(ctx, "toggleOperational", call, func(o *opContext) error {
		if err := o.requireOwner(); err != nil {
			return err
		}
		o.settings.Operational = !o.settings.Operational
		o.settingsDirty = true
		return o.emit(OperationalEventType, &OperationalEvent{Operational: o.settings.Operational})
	})
}

func (o *opContext) requireOwnerOperational() error {
	if err := o.requireOwner(); err != nil {
		return err
	}
	if !o.settings.Operational {
		return o.errorf(KindGuardViolation, "ledger is not operational")
	}
	return nil
}
