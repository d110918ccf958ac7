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
	"github.com/blinklabs-io/surety/database"
	"github.com/blinklabs-io/surety/database/models"
)

// Store is the record interface the engines operate on. Every method takes
// the transaction of the current operation as its last argument.
type Store interface {
	Transaction(readWrite bool) *database.Txn

	GetSettings(*database.Txn) (*models.LedgerSettings, error)
	SetSettings(*models.LedgerSettings, *database.Txn) error
	AddAuthorizedCaller(string, *database.Txn) error
	DeleteAuthorizedCaller(string, *database.Txn) error
	IsAuthorizedCaller(string, *database.Txn) (bool, error)
	GetAuthorizedCallers(*database.Txn) ([]string, error)
	AddPayout(*models.Payout, *database.Txn) error
	GetPayouts(string, *database.Txn) ([]models.Payout, error)

	GetAirline(string, *database.Txn) (*models.Airline, error)
	GetAirlines(*database.Txn) ([]models.Airline, error)
	SetAirline(*models.Airline, *database.Txn) error
	CountAirlinesByState(uint8, *database.Txn) (int64, error)
	AddAirlineVote(uint, string, *database.Txn) error
	HasAirlineVote(uint, string, *database.Txn) (bool, error)
	GetAirlineVoters(uint, *database.Txn) ([]string, error)

	GetFlight(string, string, uint64, *database.Txn) (*models.Flight, error)
	GetFlightsByAirline(string, *database.Txn) ([]models.Flight, error)
	SetFlight(*models.Flight, *database.Txn) error
	GetInsurance(uint, string, *database.Txn) (*models.Insurance, error)
	AddInsurances([]models.Insurance, *database.Txn) error
	SetInsurance(*models.Insurance, *database.Txn) error
	GetInsurancesByBuyer(string, *database.Txn) ([]models.Insurance, error)

	GetOracleAccount(string, *database.Txn) (*models.OracleAccount, error)
	SetOracleAccount(*models.OracleAccount, *database.Txn) error
	CountOracleAccounts(*database.Txn) (int64, error)
	GetOracleRequest(uint8, string, string, uint64, *database.Txn) (*models.OracleRequest, error)
	GetOracleRequestsByFlight(uint, *database.Txn) ([]models.OracleRequest, error)
	SetOracleRequest(*models.OracleRequest, *database.Txn) error
	AddOracleResponse(*models.OracleResponse, *database.Txn) error
	CountOracleRequestsByState(uint8, *database.Txn) (int64, error)

	AppendJournal(string, any, int64, *database.Txn) (*database.JournalEntry, error)
	JournalTip(*database.Txn) (database.JournalTip, error)
}

var _ Store = (*database.Database)(nil)
