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
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/blinklabs-io/surety/ledger"
	"github.com/blinklabs-io/surety/ledger/common"
	"github.com/go-chi/chi/v5"
)

const maxBodyBytes = 1 << 20

type LogicIDRequest struct {
	LogicID string `json:"logicId"`
}

type RegisterAirlineRequest struct {
	Address string `json:"address"`
	Name    string `json:"name"`
}

type RegisterFlightRequest struct {
	Name      string   `json:"name"`
	Departure uint64   `json:"departure"`
	Tickets   []string `json:"tickets"`
}

type TicketsRequest struct {
	Tickets []string `json:"tickets"`
}

type OracleResponseRequest struct {
	Status uint8 `json:"status"`
}

type IndexResponse struct {
	Index uint8 `json:"index"`
}

type IndexesResponse struct {
	Indexes []int `json:"indexes"`
}

type BoolResponse struct {
	Value bool `json:"value"`
}

type ModeResponse struct {
	Mode common.RegistrationMode `json:"mode"`
}

type AmountResponse struct {
	Amount     common.Amount `json:"amount"`
	AmountText string        `json:"amountText"`
}

func (a *Api) routes(r chi.Router) {
	r.Get("/settings", a.handleSettings)
	r.Get("/pool", a.handlePool)
	r.Get("/registration-mode", a.handleRegistrationMode)
	r.Get("/payouts", a.handlePayouts)
	r.Get("/journal", a.handleJournal)

	r.Route("/gate", func(r chi.Router) {
		r.Get("/authorized/{logicID}", a.handleIsAuthorized)
		r.Post("/authorize", a.handleAuthorize)
		r.Post("/deauthorize", a.handleDeauthorize)
		r.Post("/toggle-operational", a.handleToggleOperational)
	})

	r.Route("/airlines", func(r chi.Router) {
		r.Get("/", a.handleAirlines)
		r.Post("/", a.handleRegisterAirline)
		r.Post("/fund", a.handleFundAirline)
		r.Get("/{airline}", a.handleAirline)
		r.Get("/{airline}/funded", a.handleAirlineFunded)
		r.Post("/{airline}/votes", a.handleVote)
	})

	r.Route("/flights", func(r chi.Router) {
		r.Post("/", a.handleRegisterFlight)
		r.Get("/{airline}", a.handleFlightsByAirline)
		r.Route("/{airline}/{name}/{departure}", func(r chi.Router) {
			r.Get("/", a.handleFlight)
			r.Post("/tickets", a.handleAddTickets)
			r.Post("/status", a.handleFetchStatus)
			r.Get("/insurances", a.handleFlightInsurances)
			r.Get("/insurances/{ticket}", a.handleInsurance)
			r.Post("/insurances/{ticket}", a.handleBuyInsurance)
			r.Post("/insurances/{ticket}/withdraw", a.handleWithdraw)
		})
	})

	r.Get("/passengers/{passenger}/insurances", a.handlePassengerInsurances)

	r.Route("/oracles", func(r chi.Router) {
		r.Post("/", a.handleRegisterOracle)
		r.Get("/{oracle}/indexes", a.handleOracleIndexes)
	})
	r.Route("/oracle-requests/{index}/{airline}/{name}/{departure}", func(r chi.Router) {
		r.Get("/", a.handleOracleRequest)
		r.Post("/responses", a.handleOracleResponse)
	})
}

func decodeBody(w http.ResponseWriter, r *http.Request, dest any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dest); err != nil {
		return fmt.Errorf("%w: invalid request body: %w", errBadRequest, err)
	}
	return nil
}

func flightKeyFrom(r *http.Request) (common.FlightKey, error) {
	departure, err := strconv.ParseUint(chi.URLParam(r, "departure"), 10, 64)
	if err != nil {
		return common.FlightKey{}, fmt.Errorf("%w: invalid departure: %w", errBadRequest, err)
	}
	return common.FlightKey{
		Airline:   common.NewAddress(chi.URLParam(r, "airline")),
		Name:      chi.URLParam(r, "name"),
		Departure: departure,
	}, nil
}

func insuranceKeyFrom(r *http.Request) (common.InsuranceKey, error) {
	flightKey, err := flightKeyFrom(r)
	if err != nil {
		return common.InsuranceKey{}, err
	}
	return common.InsuranceKey{FlightKey: flightKey, Ticket: chi.URLParam(r, "ticket")}, nil
}

func requestKeyFrom(r *http.Request) (common.RequestKey, error) {
	flightKey, err := flightKeyFrom(r)
	if err != nil {
		return common.RequestKey{}, err
	}
	index, err := strconv.ParseUint(chi.URLParam(r, "index"), 10, 8)
	if err != nil {
		return common.RequestKey{}, fmt.Errorf("%w: invalid index: %w", errBadRequest, err)
	}
	return common.RequestKey{FlightKey: flightKey, Index: uint8(index)}, nil
}

// respond writes v, or the error if err is set
func (a *Api) respond(w http.ResponseWriter, r *http.Request, status int, v any, err error) {
	if err != nil {
		a.writeLedgerError(w, r, err)
		return
	}
	if v == nil {
		w.WriteHeader(status)
		return
	}
	writeJSON(w, status, v)
}

func (a *Api) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *Api) handleSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := a.config.LedgerState.Settings()
	a.respond(w, r, http.StatusOK, settings, err)
}

func (a *Api) handlePool(w http.ResponseWriter, r *http.Request) {
	pool, err := a.config.LedgerState.PoolBalance()
	a.respond(w, r, http.StatusOK, AmountResponse{Amount: pool, AmountText: pool.String()}, err)
}

func (a *Api) handleRegistrationMode(w http.ResponseWriter, r *http.Request) {
	mode, err := a.config.LedgerState.RegistrationMode()
	a.respond(w, r, http.StatusOK, ModeResponse{Mode: mode}, err)
}

func (a *Api) handlePayouts(w http.ResponseWriter, r *http.Request) {
	recipient := common.NewAddress(r.URL.Query().Get("recipient"))
	payouts, err := a.config.LedgerState.Payouts(recipient)
	a.respond(w, r, http.StatusOK, payouts, err)
}

func (a *Api) handleIsAuthorized(w http.ResponseWriter, r *http.Request) {
	authorized, err := a.config.LedgerState.IsAuthorized(chi.URLParam(r, "logicID"))
	a.respond(w, r, http.StatusOK, BoolResponse{Value: authorized}, err)
}

func (a *Api) handleAuthorize(w http.ResponseWriter, r *http.Request) {
	a.handleGateChange(w, r, a.config.LedgerState.Authorize)
}

func (a *Api) handleDeauthorize(w http.ResponseWriter, r *http.Request) {
	a.handleGateChange(w, r, a.config.LedgerState.Deauthorize)
}

func (a *Api) handleGateChange(
	w http.ResponseWriter,
	r *http.Request,
	fn func(ctx context.Context, call ledger.Call, logicID string) error,
) {
	call, ok := requireCaller(w, r)
	if !ok {
		return
	}
	var req LogicIDRequest
	if err := decodeBody(w, r, &req); err != nil {
		a.writeLedgerError(w, r, err)
		return
	}
	err := fn(r.Context(), call, req.LogicID)
	a.respond(w, r, http.StatusNoContent, nil, err)
}

func (a *Api) handleToggleOperational(w http.ResponseWriter, r *http.Request) {
	call, ok := requireCaller(w, r)
	if !ok {
		return
	}
	err := a.config.LedgerState.ToggleOperational(r.Context(), call)
	if err != nil {
		a.writeLedgerError(w, r, err)
		return
	}
	operational, err := a.config.LedgerState.IsOperational()
	a.respond(w, r, http.StatusOK, BoolResponse{Value: operational}, err)
}

func (a *Api) handleAirlines(w http.ResponseWriter, r *http.Request) {
	airlines, err := a.config.LedgerState.Airlines()
	a.respond(w, r, http.StatusOK, airlines, err)
}

func (a *Api) handleAirline(w http.ResponseWriter, r *http.Request) {
	airline, err := a.config.LedgerState.Airline(common.NewAddress(chi.URLParam(r, "airline")))
	a.respond(w, r, http.StatusOK, airline, err)
}

func (a *Api) handleAirlineFunded(w http.ResponseWriter, r *http.Request) {
	funded, err := a.config.LedgerState.IsAirlineFunded(common.NewAddress(chi.URLParam(r, "airline")))
	a.respond(w, r, http.StatusOK, BoolResponse{Value: funded}, err)
}

func (a *Api) handleRegisterAirline(w http.ResponseWriter, r *http.Request) {
	call, ok := requireCaller(w, r)
	if !ok {
		return
	}
	var req RegisterAirlineRequest
	if err := decodeBody(w, r, &req); err != nil {
		a.writeLedgerError(w, r, err)
		return
	}
	candidate := common.NewAddress(req.Address)
	if err := a.config.LedgerState.RegisterAirline(r.Context(), call, candidate, req.Name); err != nil {
		a.writeLedgerError(w, r, err)
		return
	}
	airline, err := a.config.LedgerState.Airline(candidate)
	a.respond(w, r, http.StatusCreated, airline, err)
}

func (a *Api) handleVote(w http.ResponseWriter, r *http.Request) {
	call, ok := requireCaller(w, r)
	if !ok {
		return
	}
	candidate := common.NewAddress(chi.URLParam(r, "airline"))
	if err := a.config.LedgerState.VoteForAirline(r.Context(), call, candidate); err != nil {
		a.writeLedgerError(w, r, err)
		return
	}
	airline, err := a.config.LedgerState.Airline(candidate)
	a.respond(w, r, http.StatusOK, airline, err)
}

func (a *Api) handleFundAirline(w http.ResponseWriter, r *http.Request) {
	call, ok := requireCaller(w, r)
	if !ok {
		return
	}
	if err := a.config.LedgerState.FundMyAirline(r.Context(), call); err != nil {
		a.writeLedgerError(w, r, err)
		return
	}
	airline, err := a.config.LedgerState.Airline(call.Caller)
	a.respond(w, r, http.StatusOK, airline, err)
}

func (a *Api) handleRegisterFlight(w http.ResponseWriter, r *http.Request) {
	call, ok := requireCaller(w, r)
	if !ok {
		return
	}
	var req RegisterFlightRequest
	if err := decodeBody(w, r, &req); err != nil {
		a.writeLedgerError(w, r, err)
		return
	}
	if err := a.config.LedgerState.RegisterFlight(r.Context(), call, req.Name, req.Departure, req.Tickets); err != nil {
		a.writeLedgerError(w, r, err)
		return
	}
	flight, err := a.config.LedgerState.Flight(common.FlightKey{
		Airline:   call.Caller,
		Name:      req.Name,
		Departure: req.Departure,
	})
	a.respond(w, r, http.StatusCreated, flight, err)
}

func (a *Api) handleFlightsByAirline(w http.ResponseWriter, r *http.Request) {
	flights, err := a.config.LedgerState.FlightsByAirline(common.NewAddress(chi.URLParam(r, "airline")))
	a.respond(w, r, http.StatusOK, flights, err)
}

func (a *Api) handleFlight(w http.ResponseWriter, r *http.Request) {
	key, err := flightKeyFrom(r)
	if err != nil {
		a.writeLedgerError(w, r, err)
		return
	}
	flight, err := a.config.LedgerState.Flight(key)
	a.respond(w, r, http.StatusOK, flight, err)
}

func (a *Api) handleAddTickets(w http.ResponseWriter, r *http.Request) {
	call, ok := requireCaller(w, r)
	if !ok {
		return
	}
	key, err := flightKeyFrom(r)
	if err != nil {
		a.writeLedgerError(w, r, err)
		return
	}
	if key.Airline != call.Caller {
		writeError(w, http.StatusForbidden, ledger.KindGuardViolation.String(), "tickets can only be added by the flight's airline")
		return
	}
	var req TicketsRequest
	if err := decodeBody(w, r, &req); err != nil {
		a.writeLedgerError(w, r, err)
		return
	}
	if err := a.config.LedgerState.AddFlightTickets(r.Context(), call, key.Name, key.Departure, req.Tickets); err != nil {
		a.writeLedgerError(w, r, err)
		return
	}
	flight, err := a.config.LedgerState.Flight(key)
	a.respond(w, r, http.StatusOK, flight, err)
}

func (a *Api) handleFetchStatus(w http.ResponseWriter, r *http.Request) {
	call, ok := requireCaller(w, r)
	if !ok {
		return
	}
	key, err := flightKeyFrom(r)
	if err != nil {
		a.writeLedgerError(w, r, err)
		return
	}
	index, err := a.config.LedgerState.FetchFlightStatus(r.Context(), call, key)
	a.respond(w, r, http.StatusAccepted, IndexResponse{Index: index}, err)
}

func (a *Api) handleFlightInsurances(w http.ResponseWriter, r *http.Request) {
	key, err := flightKeyFrom(r)
	if err != nil {
		a.writeLedgerError(w, r, err)
		return
	}
	keys, err := a.config.LedgerState.InsuranceKeysOfFlight(key)
	a.respond(w, r, http.StatusOK, keys, err)
}

func (a *Api) handleInsurance(w http.ResponseWriter, r *http.Request) {
	key, err := insuranceKeyFrom(r)
	if err != nil {
		a.writeLedgerError(w, r, err)
		return
	}
	insurance, err := a.config.LedgerState.Insurance(key)
	a.respond(w, r, http.StatusOK, insurance, err)
}

func (a *Api) handleBuyInsurance(w http.ResponseWriter, r *http.Request) {
	a.handleInsuranceChange(w, r, http.StatusCreated, a.config.LedgerState.BuyInsurance)
}

func (a *Api) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	a.handleInsuranceChange(w, r, http.StatusOK, a.config.LedgerState.WithdrawCredit)
}

func (a *Api) handleInsuranceChange(
	w http.ResponseWriter,
	r *http.Request,
	status int,
	fn func(ctx context.Context, call ledger.Call, key common.InsuranceKey) error,
) {
	call, ok := requireCaller(w, r)
	if !ok {
		return
	}
	key, err := insuranceKeyFrom(r)
	if err != nil {
		a.writeLedgerError(w, r, err)
		return
	}
	if err := fn(r.Context(), call, key); err != nil {
		a.writeLedgerError(w, r, err)
		return
	}
	insurance, err := a.config.LedgerState.Insurance(key)
	a.respond(w, r, status, insurance, err)
}

func (a *Api) handlePassengerInsurances(w http.ResponseWriter, r *http.Request) {
	keys, err := a.config.LedgerState.InsuranceKeysOfPassenger(common.NewAddress(chi.URLParam(r, "passenger")))
	a.respond(w, r, http.StatusOK, keys, err)
}

func indexesResponse(indexes []uint8) IndexesResponse {
	ret := IndexesResponse{Indexes: make([]int, 0, len(indexes))}
	for _, idx := range indexes {
		ret.Indexes = append(ret.Indexes, int(idx))
	}
	return ret
}

func (a *Api) handleRegisterOracle(w http.ResponseWriter, r *http.Request) {
	call, ok := requireCaller(w, r)
	if !ok {
		return
	}
	indexes, err := a.config.LedgerState.RegisterOracle(r.Context(), call)
	a.respond(w, r, http.StatusCreated, indexesResponse(indexes), err)
}

func (a *Api) handleOracleIndexes(w http.ResponseWriter, r *http.Request) {
	indexes, err := a.config.LedgerState.OracleIndexes(common.NewAddress(chi.URLParam(r, "oracle")))
	a.respond(w, r, http.StatusOK, indexesResponse(indexes), err)
}

func (a *Api) handleOracleRequest(w http.ResponseWriter, r *http.Request) {
	key, err := requestKeyFrom(r)
	if err != nil {
		a.writeLedgerError(w, r, err)
		return
	}
	request, err := a.config.LedgerState.OracleRequest(key)
	a.respond(w, r, http.StatusOK, request, err)
}

func (a *Api) handleOracleResponse(w http.ResponseWriter, r *http.Request) {
	call, ok := requireCaller(w, r)
	if !ok {
		return
	}
	key, err := requestKeyFrom(r)
	if err != nil {
		a.writeLedgerError(w, r, err)
		return
	}
	var req OracleResponseRequest
	if err := decodeBody(w, r, &req); err != nil {
		a.writeLedgerError(w, r, err)
		return
	}
	err = a.config.LedgerState.SubmitOracleResponse(r.Context(), call, key, common.StatusCode(req.Status))
	a.respond(w, r, http.StatusNoContent, nil, err)
}
