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

package postgres

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/blinklabs-io/surety/database/plugin/metadata/internal/records"
	"gorm.io/driver/postgres"
)

var defaultConnection = records.Connection{
	Host:     "localhost",
	Port:     5432,
	User:     "postgres",
	Database: "surety",
	TLS:      "disable",
	TimeZone: "UTC",
}

// MetadataStorePostgres stores ledger records in Postgres
type MetadataStorePostgres struct {
	records.Store
	conn records.Connection
}

// New returns a Postgres metadata store. The connection is opened by Start.
func New(
	conn records.Connection,
	opts ...records.Option,
) *MetadataStorePostgres {
	d := &MetadataStorePostgres{
		conn: conn.WithDefaults(defaultConnection),
	}
	d.Apply(opts...)
	return d
}

// DSN returns the connection string used to open the database
func (d *MetadataStorePostgres) DSN() string {
	if dsn := strings.TrimSpace(d.conn.DSN); dsn != "" {
		return dsn
	}
	parts := []string{
		"host=" + d.conn.Host,
		"user=" + d.conn.User,
		"password=" + d.conn.Password,
		"dbname=" + d.conn.Database,
		"port=" + strconv.FormatUint(d.conn.Port, 10),
		"sslmode=" + d.conn.TLS,
	}
	if d.conn.TimeZone != "" {
		parts = append(parts, "TimeZone="+d.conn.TimeZone)
	}
	return strings.Join(parts, " ")
}

// Start implements the plugin.Plugin interface
func (d *MetadataStorePostgres) Start() error {
	db, err := records.OpenServer(postgres.Open(d.DSN()))
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	d.Logger().Info(
		"connected to postgres metadata store",
		"component", "database",
		"address", d.conn.Address(),
		"database", d.conn.Database,
	)
	// The instance stays usable for recovery when schema setup fails
	return d.Init(db)
}

// Stop implements the plugin.Plugin interface
func (d *MetadataStorePostgres) Stop() error {
	return d.Close()
}
