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

package metadata

import (
	"fmt"
	"log/slog"

	"github.com/blinklabs-io/surety/database/models"
	"github.com/blinklabs-io/surety/database/plugin"
	"github.com/blinklabs-io/surety/database/types"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

type MetadataStore interface {
	// Database
	Close() error
	DB() *gorm.DB
	GetCommitTimestamp() (int64, error)
	SetCommitTimestamp(int64, types.Txn) error
	Transaction() types.Txn

	// Settings and authorization
	GetSettings(types.Txn) (*models.LedgerSettings, error)
	SetSettings(*models.LedgerSettings, types.Txn) error
	AddAuthorizedCaller(string, types.Txn) error
	DeleteAuthorizedCaller(string, types.Txn) error
	IsAuthorizedCaller(string, types.Txn) (bool, error)
	GetAuthorizedCallers(types.Txn) ([]string, error)
	AddPayout(*models.Payout, types.Txn) error
	GetPayouts(
		string, // recipient
		types.Txn,
	) ([]models.Payout, error)

	// Airlines
	GetAirline(
		string, // address
		types.Txn,
	) (*models.Airline, error)
	GetAirlines(types.Txn) ([]models.Airline, error)
	SetAirline(*models.Airline, types.Txn) error
	CountAirlinesByState(uint8, types.Txn) (int64, error)
	AddAirlineVote(
		uint, // airline ID
		string, // voter
		types.Txn,
	) error
	HasAirlineVote(
		uint, // airline ID
		string, // voter
		types.Txn,
	) (bool, error)
	GetAirlineVoters(
		uint, // airline ID
		types.Txn,
	) ([]string, error)

	// Flights and insurance
	GetFlight(
		string, // airline
		string, // name
		uint64, // departure
		types.Txn,
	) (*models.Flight, error)
	GetFlightsByAirline(string, types.Txn) ([]models.Flight, error)
	SetFlight(*models.Flight, types.Txn) error
	GetInsurance(
		uint, // flight ID
		string, // ticket
		types.Txn,
	) (*models.Insurance, error)
	AddInsurances([]models.Insurance, types.Txn) error
	SetInsurance(*models.Insurance, types.Txn) error
	GetInsurancesByBuyer(string, types.Txn) ([]models.Insurance, error)

	// Oracles
	GetOracleAccount(string, types.Txn) (*models.OracleAccount, error)
	SetOracleAccount(*models.OracleAccount, types.Txn) error
	CountOracleAccounts(types.Txn) (int64, error)
	GetOracleRequest(
		uint8, // shard index
		string, // airline
		string, // flight name
		uint64, // departure
		types.Txn,
	) (*models.OracleRequest, error)
	GetOracleRequestsByFlight(uint, types.Txn) ([]models.OracleRequest, error)
	SetOracleRequest(*models.OracleRequest, types.Txn) error
	AddOracleResponse(*models.OracleResponse, types.Txn) error
	CountOracleRequestsByState(uint8, types.Txn) (int64, error)
}

// New returns the started metadata plugin selected by name
func New(
	pluginName string,
	logger *slog.Logger,
	promRegistry prometheus.Registerer,
) (MetadataStore, error) {
	p, err := plugin.StartConfiguredPlugin(
		plugin.PluginTypeMetadata,
		pluginName,
		logger,
		promRegistry,
	)
	if err != nil {
		return nil, err
	}
	metadataStore, ok := p.(MetadataStore)
	if !ok {
		return nil, fmt.Errorf(
			"plugin '%s' does not implement MetadataStore interface",
			pluginName,
		)
	}
	return metadataStore, nil
}
