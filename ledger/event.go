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
	"github.com/blinklabs-io/surety/event"
	"github.com/blinklabs-io/surety/ledger/common"
)

const (
	GenesisEventType            event.EventType = "ledger.genesis"
	CallerAuthorizedEventType   event.EventType = "gate.authorized"
	CallerDeauthorizedEventType event.EventType = "gate.deauthorized"
	OperationalEventType        event.EventType = "gate.operational"
	AirlineAdmittedEventType    event.EventType = "airline.admitted"
	AirlineVotedEventType       event.EventType = "airline.voted"
	AirlineFundedEventType      event.EventType = "airline.funded"
	FlightRegisteredEventType   event.EventType = "flight.registered"
	FlightTicketsEventType      event.EventType = "flight.tickets"
	FlightFinalizedEventType    event.EventType = "flight.finalized"
	InsuranceBoughtEventType    event.EventType = "insurance.bought"
	CreditWithdrawnEventType    event.EventType = "insurance.withdrawn"
	OracleRegisteredEventType   event.EventType = "oracle.registered"
	OracleRequestEventType      event.EventType = "oracle.request"
	OracleReportEventType       event.EventType = "oracle.report"
	PayoutEventType             event.EventType = "pool.payout"
)

type GenesisEvent struct {
	Owner        common.Address `json:"owner"`
	FirstAirline common.Address `json:"firstAirline"`
	LogicID      string         `json:"logicId"`
}

type CallerAuthorizationEvent struct {
	LogicID string `json:"logicId"`
}

type OperationalEvent struct {
	Operational bool `json:"operational"`
}

type AirlineAdmittedEvent struct {
	Airline      common.Address          `json:"airline"`
	Name         string                  `json:"name"`
	RegisteredBy common.Address          `json:"registeredBy"`
	State        common.AirlineState     `json:"state"`
	Mode         common.RegistrationMode `json:"mode"`
}

type AirlineVotedEvent struct {
	Airline    common.Address `json:"airline"`
	Voter      common.Address `json:"voter"`
	Votes      uint32         `json:"votes"`
	Registered bool           `json:"registered"`
}

type AirlineFundedEvent struct {
	Airline common.Address `json:"airline"`
	Value   common.Amount  `json:"value"`
	Refund  common.Amount  `json:"refund"`
}

type FlightRegisteredEvent struct {
	Flight  common.FlightKey `json:"flight"`
	Tickets []string         `json:"tickets"`
}

// FlightFinalizedEvent reports the status decided by oracle consensus and
// its effect on the insurances of the flight
type FlightFinalizedEvent struct {
	Flight        common.FlightKey  `json:"flight"`
	Status        common.StatusCode `json:"status"`
	Credited      int               `json:"credited"`
	Expired       int               `json:"expired"`
	TotalCredited common.Amount     `json:"totalCredited"`
}

type InsuranceBoughtEvent struct {
	Insurance common.InsuranceKey `json:"insurance"`
	Buyer     common.Address      `json:"buyer"`
	Value     common.Amount       `json:"value"`
}

type CreditWithdrawnEvent struct {
	Insurance common.InsuranceKey `json:"insurance"`
	Buyer     common.Address      `json:"buyer"`
	Amount    common.Amount       `json:"amount"`
}

type OracleRegisteredEvent struct {
	Oracle  common.Address `json:"oracle"`
	Indexes []int          `json:"indexes"`
	Fee     common.Amount  `json:"fee"`
}

// OracleRequestEvent asks the oracles holding Index to report the status of
// the flight
type OracleRequestEvent struct {
	Request   common.RequestKey `json:"request"`
	Requester common.Address    `json:"requester"`
}

type OracleReportEvent struct {
	Request common.RequestKey `json:"request"`
	Oracle  common.Address    `json:"oracle"`
	Status  common.StatusCode `json:"status"`
	Count   int               `json:"count"`
}

type PayoutEvent struct {
	Recipient common.Address `json:"recipient"`
	Reason    string         `json:"reason"`
	Reference string         `json:"reference"`
	Amount    common.Amount  `json:"amount"`
}
