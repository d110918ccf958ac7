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

package records

import (
	"github.com/prometheus/client_golang/prometheus"
)

const metadataMetricNamePrefix = "database_metadata_"

// RegisterMetrics registers connection pool gauges for the store
func (s *Store) RegisterMetrics(promRegistry prometheus.Registerer) error {
	sqlDb, err := s.db.DB()
	if err != nil {
		return err
	}
	openConns := prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: metadataMetricNamePrefix + "open_connections",
			Help: "Number of open connections to the metadata database",
		},
		func() float64 {
			return float64(sqlDb.Stats().OpenConnections)
		},
	)
	waitCount := prometheus.NewCounterFunc(
		prometheus.CounterOpts{
			Name: metadataMetricNamePrefix + "connection_waits_total",
			Help: "Total number of times a metadata query waited for a connection",
		},
		func() float64 {
			return float64(sqlDb.Stats().WaitCount)
		},
	)
	promRegistry.MustRegister(openConns, waitCount)
	return nil
}
