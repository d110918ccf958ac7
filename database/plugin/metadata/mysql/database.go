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

package mysql

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/blinklabs-io/surety/database/plugin/metadata/internal/records"
	"github.com/go-sql-driver/mysql"
	gormmysql "gorm.io/driver/mysql"
)

// MySQL error returned when connecting to a database that doesn't exist
const mysqlErrUnknownDatabase = 1049

var defaultConnection = records.Connection{
	Host:     "localhost",
	Port:     3306,
	User:     "root",
	Database: "surety",
	TimeZone: "UTC",
}

// MetadataStoreMysql stores ledger records in MySQL
type MetadataStoreMysql struct {
	records.Store
	conn records.Connection
}

// New returns a MySQL metadata store. The connection is opened by Start.
func New(
	conn records.Connection,
	opts ...records.Option,
) *MetadataStoreMysql {
	d := &MetadataStoreMysql{
		conn: conn.WithDefaults(defaultConnection),
	}
	d.Apply(opts...)
	return d
}

// DSN returns the connection string used to open the database
func (d *MetadataStoreMysql) DSN() string {
	if dsn := strings.TrimSpace(d.conn.DSN); dsn != "" {
		return dsn
	}
	cfg := mysql.NewConfig()
	cfg.User = d.conn.User
	cfg.Passwd = d.conn.Password
	cfg.Net = "tcp"
	cfg.Addr = d.conn.Address()
	cfg.DBName = d.conn.Database
	cfg.ParseTime = true
	cfg.AllowNativePasswords = true
	if d.conn.TimeZone != "" {
		if loc, err := time.LoadLocation(d.conn.TimeZone); err == nil {
			cfg.Loc = loc
		}
	}
	cfg.TLSConfig = d.conn.TLS
	return cfg.FormatDSN()
}

// Start implements the plugin.Plugin interface. A missing database is
// created on first connect.
func (d *MetadataStoreMysql) Start() error {
	dsn := d.DSN()
	dbName := d.conn.Database
	if parsed, ok := parseMysqlDatabaseFromDSN(dsn); ok {
		dbName = parsed
	}
	db, err := records.OpenServer(gormmysql.Open(dsn))
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if !errors.As(err, &mysqlErr) || mysqlErr.Number != mysqlErrUnknownDatabase {
			return fmt.Errorf("connect to mysql: %w", err)
		}
		if err := ensureDatabaseExists(dsn, dbName); err != nil {
			return fmt.Errorf("create database %s: %w", dbName, err)
		}
		if db, err = records.OpenServer(gormmysql.Open(dsn)); err != nil {
			return fmt.Errorf("connect to mysql: %w", err)
		}
	}
	d.Logger().Info(
		"connected to mysql metadata store",
		"component", "database",
		"address", d.conn.Address(),
		"database", dbName,
	)
	// The instance stays usable for recovery when schema setup fails
	return d.Init(db)
}

// Stop implements the plugin.Plugin interface
func (d *MetadataStoreMysql) Stop() error {
	return d.Close()
}

func ensureDatabaseExists(dsn string, dbName string) error {
	if dbName == "" {
		return errors.New("no database name in DSN")
	}
	adminDsn, ok := stripDatabaseFromDSN(dsn)
	if !ok {
		return errors.New("could not derive server DSN")
	}
	adminDb, err := records.OpenServer(gormmysql.Open(adminDsn))
	if err != nil {
		return err
	}
	sqlAdminDb, err := adminDb.DB()
	if err != nil {
		return err
	}
	defer sqlAdminDb.Close()
	return adminDb.Exec(
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS `%s`", dbName),
	).Error
}

func parseMysqlDatabaseFromDSN(dsn string) (string, bool) {
	base, _, _ := strings.Cut(dsn, "?")
	slash := strings.LastIndex(base, "/")
	if slash < 0 || slash == len(base)-1 {
		return "", false
	}
	return base[slash+1:], true
}

func stripDatabaseFromDSN(dsn string) (string, bool) {
	base, params, hasParams := strings.Cut(dsn, "?")
	slash := strings.LastIndex(base, "/")
	if slash < 0 {
		return "", false
	}
	base = base[:slash+1]
	if !hasParams || params == "" {
		return base, true
	}
	return base + "?" + params, true
}
