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
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/blinklabs-io/surety/database/models"
	"github.com/blinklabs-io/surety/database/sops"
	"github.com/blinklabs-io/surety/ledger/common"
	"gopkg.in/yaml.v3"
)

// Genesis provisions an empty ledger: the owner, the first airline, which
// starts Funded, and the first authorized logic deployment
type Genesis struct {
	Owner        string         `yaml:"owner"`
	LogicID      string         `yaml:"logicId"`
	FirstAirline GenesisAirline `yaml:"firstAirline"`
}

type GenesisAirline struct {
	Address string `yaml:"address"`
	Name    string `yaml:"name"`
}

// LoadGenesisFile reads a genesis YAML file, decrypting it first if it is
// SOPS-encrypted
func LoadGenesisFile(path string) (*Genesis, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read genesis file: %w", err)
	}
	return ParseGenesis(data)
}

func ParseGenesis(data []byte) (*Genesis, error) {
	if sops.IsEncrypted(data) {
		plain, err := sops.Decrypt(data)
		if err != nil {
			return nil, fmt.Errorf("decrypt genesis: %w", err)
		}
		data = plain
	}
	g := &Genesis{}
	if err := yaml.Unmarshal(data, g); err != nil {
		return nil, fmt.Errorf("parse genesis: %w", err)
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *Genesis) Validate() error {
	if strings.TrimSpace(g.Owner) == "" {
		return errors.New("genesis: owner is required")
	}
	if strings.TrimSpace(g.FirstAirline.Address) == "" {
		return errors.New("genesis: first airline address is required")
	}
	if strings.TrimSpace(g.FirstAirline.Name) == "" {
		return errors.New("genesis: first airline name is required")
	}
	return nil
}

// ApplyGenesis provisions the ledger. Applying the same genesis again is a
// no-op and returns false; a genesis with a different owner is rejected.
func (ls *LedgerState) ApplyGenesis(ctx context.Context, g *Genesis) (bool, error) {
	if g == nil {
		return false, errors.New("nil genesis")
	}
	if err := g.Validate(); err != nil {
		return false, err
	}
	owner := common.NewAddress(g.Owner)
	logicID := strings.TrimSpace(g.LogicID)
	if logicID == "" {
		logicID = ls.config.LogicID
	}
	applied := false
	err := ls.execute(ctx, "genesis", Call{Caller: owner}, func(o *opContext) error {
		existing, err := ls.db.GetSettings(o.txn)
		if err != nil {
			return err
		}
		if existing != nil {
			if common.NewAddress(existing.Owner) != owner {
				return o.errorf(
					KindStateConflict,
					"ledger already provisioned for owner %s",
					existing.Owner,
				)
			}
			return nil
		}
		o.settings = &models.LedgerSettings{
			ID:          models.LedgerSettingsID,
			Owner:       owner.String(),
			Operational: true,
		}
		o.settingsDirty = true
		if err := ls.db.AddAuthorizedCaller(logicID, o.txn); err != nil {
			return err
		}
		firstAirline := common.NewAddress(g.FirstAirline.Address)
		if err := ls.db.SetAirline(
			&models.Airline{
				Address: firstAirline.String(),
				Name:    strings.TrimSpace(g.FirstAirline.Name),
				State:   uint8(common.AirlineFunded),
			},
			o.txn,
		); err != nil {
			return err
		}
		applied = true
		return o.emit(GenesisEventType, &GenesisEvent{
			Owner:        owner,
			FirstAirline: firstAirline,
			LogicID:      logicID,
		})
	})
	if err != nil {
		return false, err
	}
	if applied {
		ls.config.Logger.Info(
			"applied ledger genesis",
			"component", "ledger",
			"owner", owner.String(),
			"first_airline", g.FirstAirline.Address,
		)
	}
	return applied, nil
}
