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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type stateMetrics struct {
	operationsTotal  *prometheus.CounterVec
	rejectionsTotal  *prometheus.CounterVec
	poolBalance      prometheus.Gauge
	fundedAirlines   prometheus.Gauge
	openRequests     prometheus.Gauge
	finalizedFlights prometheus.Counter
	payoutsTotal     prometheus.Counter
}

func (m *stateMetrics) init(promRegistry prometheus.Registerer) {
	promautoFactory := promauto.With(promRegistry)
	m.operationsTotal = promautoFactory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "surety_ledger_operations_total",
			Help: "committed ledger operations",
		},
		[]string{"operation"},
	)
	m.rejectionsTotal = promautoFactory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "surety_ledger_rejections_total",
			Help: "rejected ledger operations by error kind",
		},
		[]string{"operation", "kind"},
	)
	m.poolBalance = promautoFactory.NewGauge(prometheus.GaugeOpts{
		Name: "surety_ledger_pool_balance",
		Help: "pool balance in base units",
	})
	m.fundedAirlines = promautoFactory.NewGauge(prometheus.GaugeOpts{
		Name: "surety_ledger_funded_airlines",
		Help: "number of Funded airlines",
	})
	m.openRequests = promautoFactory.NewGauge(prometheus.GaugeOpts{
		Name: "surety_ledger_open_oracle_requests",
		Help: "number of open oracle status requests",
	})
	m.finalizedFlights = promautoFactory.NewCounter(prometheus.CounterOpts{
		Name: "surety_ledger_finalized_flights_total",
		Help: "flights finalized by oracle consensus",
	})
	m.payoutsTotal = promautoFactory.NewCounter(prometheus.CounterOpts{
		Name: "surety_ledger_payouts_base_units_total",
		Help: "value transferred out of the pool in base units",
	})
}
