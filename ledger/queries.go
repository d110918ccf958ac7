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
	"slices"

	"github.com/blinklabs-io/surety/database"
	"github.com/blinklabs-io/surety/database/models"
	"github.com/blinklabs-io/surety/ledger/common"
)

type AirlineInfo struct {
	Address     common.Address      `json:"address"`
	Name        string              `json:"name"`
	Voters      []common.Address    `json:"voters,omitempty"`
	FundedValue common.Amount       `json:"fundedValue"`
	Votes       uint32              `json:"votes"`
	State       common.AirlineState `json:"state"`
}

type FlightInfo struct {
	common.FlightKey
	Tickets    []string          `json:"tickets"`
	Status     common.StatusCode `json:"status"`
	Registered bool              `json:"registered"`
	Finalized  bool              `json:"finalized"`
}

type InsuranceInfo struct {
	common.InsuranceKey
	Buyer    common.Address        `json:"buyer,omitempty"`
	Paid     common.Amount         `json:"paid"`
	Credited common.Amount         `json:"credited"`
	State    common.InsuranceState `json:"state"`
}

type OracleRequestInfo struct {
	common.RequestKey
	Requester common.Address                         `json:"requester"`
	Tally     map[common.StatusCode][]common.Address `json:"tally"`
	State     common.RequestState                    `json:"state"`
}

type PayoutInfo struct {
	Recipient common.Address `json:"recipient"`
	Reason    string         `json:"reason"`
	Reference string         `json:"reference"`
	Amount    common.Amount  `json:"amount"`
}

type SettingsInfo struct {
	Owner             common.Address `json:"owner"`
	AuthorizedCallers []string       `json:"authorizedCallers"`
	Pool              common.Amount  `json:"pool"`
	Operational       bool           `json:"operational"`
}

// query runs fn in a read-only transaction
func (ls *LedgerState) query(fn func(*database.Txn) error) error {
	txn := ls.db.Transaction(false)
	defer txn.Release()
	return fn(txn)
}

func notFound(op string, format string, args ...any) error {
	return newLedgerError(KindNotFound, op, format, args...)
}

func airlineInfo(airline *models.Airline, voters []string) *AirlineInfo {
	ret := &AirlineInfo{
		Address:     common.Address(airline.Address),
		Name:        airline.Name,
		FundedValue: common.Amount(airline.FundedValue),
		Votes:       airline.Votes,
		State:       airline.AirlineState(),
	}
	for _, voter := range voters {
		ret.Voters = append(ret.Voters, common.Address(voter))
	}
	return ret
}

func flightInfo(flight *models.Flight) *FlightInfo {
	return &FlightInfo{
		FlightKey:  flight.Key(),
		Tickets:    flight.Tickets(),
		Status:     common.StatusCode(flight.StatusCode),
		Registered: flight.Registered,
		Finalized:  flight.Finalized,
	}
}

func insuranceInfo(flightKey common.FlightKey, insurance *models.Insurance) *InsuranceInfo {
	return &InsuranceInfo{
		InsuranceKey: common.InsuranceKey{FlightKey: flightKey, Ticket: insurance.Ticket},
		Buyer:        common.Address(insurance.Buyer),
		Paid:         common.Amount(insurance.PaidValue),
		Credited:     common.Amount(insurance.CreditedValue),
		State:        insurance.InsuranceState(),
	}
}

// Settings returns the owner, operational flag, pool and authorized set
func (ls *LedgerState) Settings() (*SettingsInfo, error) {
	var ret *SettingsInfo
	err := ls.query(func(txn *database.Txn) error {
		settings, err := ls.db.GetSettings(txn)
		if err != nil {
			return err
		}
		if settings == nil {
			return notFound("settings", "ledger has no genesis")
		}
		callers, err := ls.db.GetAuthorizedCallers(txn)
		if err != nil {
			return err
		}
		ret = &SettingsInfo{
			Owner:             common.Address(settings.Owner),
			AuthorizedCallers: callers,
			Pool:              common.Amount(settings.Pool),
			Operational:       settings.Operational,
		}
		return nil
	})
	return ret, err
}

func (ls *LedgerState) IsOperational() (bool, error) {
	settings, err := ls.Settings()
	if err != nil {
		return false, err
	}
	return settings.Operational, nil
}

func (ls *LedgerState) IsAuthorized(logicID string) (bool, error) {
	var ret bool
	err := ls.query(func(txn *database.Txn) error {
		var err error
		ret, err = ls.db.IsAuthorizedCaller(logicID, txn)
		return err
	})
	return ret, err
}

// PoolBalance returns the value held by the ledger
func (ls *LedgerState) PoolBalance() (common.Amount, error) {
	settings, err := ls.Settings()
	if err != nil {
		return 0, err
	}
	return settings.Pool, nil
}

func (ls *LedgerState) Airline(address common.Address) (*AirlineInfo, error) {
	var ret *AirlineInfo
	err := ls.query(func(txn *database.Txn) error {
		airline, err := ls.db.GetAirline(address.String(), txn)
		if err != nil {
			return err
		}
		if airline == nil {
			return notFound("airline", "airline %s does not exist", address)
		}
		voters, err := ls.db.GetAirlineVoters(airline.ID, txn)
		if err != nil {
			return err
		}
		ret = airlineInfo(airline, voters)
		return nil
	})
	return ret, err
}

func (ls *LedgerState) Airlines() ([]AirlineInfo, error) {
	var ret []AirlineInfo
	err := ls.query(func(txn *database.Txn) error {
		airlines, err := ls.db.GetAirlines(txn)
		if err != nil {
			return err
		}
		ret = make([]AirlineInfo, 0, len(airlines))
		for i := range airlines {
			ret = append(ret, *airlineInfo(&airlines[i], nil))
		}
		return nil
	})
	return ret, err
}

func (ls *LedgerState) IsAirlineFunded(address common.Address) (bool, error) {
	var ret bool
	err := ls.query(func(txn *database.Txn) error {
		airline, err := ls.db.GetAirline(address.String(), txn)
		if err != nil {
			return err
		}
		ret = airline != nil && airline.IsFunded()
		return nil
	})
	return ret, err
}

// RegistrationMode returns the current admission mode
func (ls *LedgerState) RegistrationMode() (common.RegistrationMode, error) {
	var ret common.RegistrationMode
	err := ls.query(func(txn *database.Txn) error {
		count, err := ls.db.CountAirlinesByState(uint8(common.AirlineFunded), txn)
		if err != nil {
			return err
		}
		ret = RegistrationModeFor(count)
		return nil
	})
	return ret, err
}

func (ls *LedgerState) Flight(key common.FlightKey) (*FlightInfo, error) {
	var ret *FlightInfo
	err := ls.query(func(txn *database.Txn) error {
		flight, err := ls.db.GetFlight(key.Airline.String(), key.Name, key.Departure, txn)
		if err != nil {
			return err
		}
		if flight == nil {
			return notFound("flight", "flight %s is not registered", key)
		}
		ret = flightInfo(flight)
		return nil
	})
	return ret, err
}

func (ls *LedgerState) FlightsByAirline(airline common.Address) ([]FlightInfo, error) {
	var ret []FlightInfo
	err := ls.query(func(txn *database.Txn) error {
		flights, err := ls.db.GetFlightsByAirline(airline.String(), txn)
		if err != nil {
			return err
		}
		ret = make([]FlightInfo, 0, len(flights))
		for i := range flights {
			info := flightInfo(&flights[i])
			// Tickets are not loaded for listings
			info.Tickets = nil
			ret = append(ret, *info)
		}
		return nil
	})
	return ret, err
}

func (ls *LedgerState) Insurance(key common.InsuranceKey) (*InsuranceInfo, error) {
	var ret *InsuranceInfo
	err := ls.query(func(txn *database.Txn) error {
		flight, err := ls.db.GetFlight(key.Airline.String(), key.Name, key.Departure, txn)
		if err != nil {
			return err
		}
		if flight == nil {
			return notFound("insurance", "flight %s is not registered", key.FlightKey)
		}
		insurance, err := ls.db.GetInsurance(flight.ID, key.Ticket, txn)
		if err != nil {
			return err
		}
		if insurance == nil {
			return notFound("insurance", "ticket %s is not on flight %s", key.Ticket, key.FlightKey)
		}
		ret = insuranceInfo(flight.Key(), insurance)
		return nil
	})
	return ret, err
}

// InsuranceKeysOfFlight returns the insurance key of every ticket on the
// flight
func (ls *LedgerState) InsuranceKeysOfFlight(key common.FlightKey) ([]common.InsuranceKey, error) {
	flight, err := ls.Flight(key)
	if err != nil {
		return nil, err
	}
	ret := make([]common.InsuranceKey, 0, len(flight.Tickets))
	for _, ticket := range flight.Tickets {
		ret = append(ret, common.InsuranceKey{FlightKey: flight.FlightKey, Ticket: ticket})
	}
	return ret, nil
}

// InsuranceKeysOfPassenger returns the keys of the insurances bought by the
// passenger
func (ls *LedgerState) InsuranceKeysOfPassenger(passenger common.Address) ([]common.InsuranceKey, error) {
	var ret []common.InsuranceKey
	err := ls.query(func(txn *database.Txn) error {
		insurances, err := ls.db.GetInsurancesByBuyer(passenger.String(), txn)
		if err != nil {
			return err
		}
		ret = make([]common.InsuranceKey, 0, len(insurances))
		for _, insurance := range insurances {
			if insurance.Flight == nil {
				continue
			}
			ret = append(ret, common.InsuranceKey{
				FlightKey: insurance.Flight.Key(),
				Ticket:    insurance.Ticket,
			})
		}
		return nil
	})
	return ret, err
}

// OracleIndexes returns the shard indexes assigned to a registered oracle
func (ls *LedgerState) OracleIndexes(oracle common.Address) ([]uint8, error) {
	var ret []uint8
	err := ls.query(func(txn *database.Txn) error {
		account, err := ls.db.GetOracleAccount(oracle.String(), txn)
		if err != nil {
			return err
		}
		if account == nil {
			return notFound("oracleIndexes", "oracle %s is not registered", oracle)
		}
		indexes := account.Indexes()
		ret = indexes[:]
		return nil
	})
	return ret, err
}

// OracleRequest returns a status request with its report tally
func (ls *LedgerState) OracleRequest(key common.RequestKey) (*OracleRequestInfo, error) {
	var ret *OracleRequestInfo
	err := ls.query(func(txn *database.Txn) error {
		request, err := ls.db.GetOracleRequest(
			key.Index,
			key.Airline.String(),
			key.Name,
			key.Departure,
			txn,
		)
		if err != nil {
			return err
		}
		if request == nil {
			return notFound("oracleRequest", "no request for %s", key)
		}
		ret = &OracleRequestInfo{
			RequestKey: request.Key(),
			Requester:  common.Address(request.Requester),
			State:      request.RequestState(),
			Tally:      make(map[common.StatusCode][]common.Address),
		}
		for status, oracles := range request.Tally() {
			for _, oracle := range oracles {
				ret.Tally[status] = append(ret.Tally[status], common.Address(oracle))
			}
		}
		return nil
	})
	return ret, err
}

// Payouts returns the transfers made by the ledger, optionally only those to
// recipient
func (ls *LedgerState) Payouts(recipient common.Address) ([]PayoutInfo, error) {
	var ret []PayoutInfo
	err := ls.query(func(txn *database.Txn) error {
		payouts, err := ls.db.GetPayouts(recipient.String(), txn)
		if err != nil {
			return err
		}
		ret = make([]PayoutInfo, 0, len(payouts))
		for _, payout := range payouts {
			ret = append(ret, PayoutInfo{
				Recipient: common.Address(payout.Recipient),
				Reason:    payout.Reason,
				Reference: payout.Reference,
				Amount:    common.Amount(payout.Amount),
			})
		}
		return nil
	})
	return ret, err
}

// AuthorizedCallers returns the sorted authorized logic identities
func (ls *LedgerState) AuthorizedCallers() ([]string, error) {
	settings, err := ls.Settings()
	if err != nil {
		return nil, err
	}
	ret := slices.Clone(settings.AuthorizedCallers)
	slices.Sort(ret)
	return ret, nil
}
