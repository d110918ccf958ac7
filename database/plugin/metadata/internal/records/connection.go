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
	"net"
	"strconv"
	"time"

	"github.com/blinklabs-io/surety/database/plugin"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Connection describes how to reach a networked SQL server
type Connection struct {
	Host     string
	User     string
	Password string
	Database string
	// TLS is passed through to the driver (sslmode for Postgres, tls for MySQL)
	TLS      string
	TimeZone string
	// DSN replaces all of the above when set
	DSN      string
	Port     uint64
}

// WithDefaults returns a copy of c with empty fields filled from defaults.
// Password and DSN are never defaulted.
func (c Connection) WithDefaults(defaults Connection) Connection {
	if c.Host == "" {
		c.Host = defaults.Host
	}
	if c.Port == 0 {
		c.Port = defaults.Port
	}
	if c.User == "" {
		c.User = defaults.User
	}
	if c.Database == "" {
		c.Database = defaults.Database
	}
	if c.TLS == "" {
		c.TLS = defaults.TLS
	}
	if c.TimeZone == "" {
		c.TimeZone = defaults.TimeZone
	}
	return c
}

// Address returns the host:port pair
func (c Connection) Address() string {
	return net.JoinHostPort(c.Host, strconv.FormatUint(c.Port, 10))
}

// PluginOptions exposes each connection field as a plugin option that
// writes into c. The server name prefixes the option descriptions and
// tlsOption names the TLS setting the way the driver calls it.
func (c *Connection) PluginOptions(
	server string,
	tlsOption string,
	defaults Connection,
) []plugin.PluginOption {
	str := func(name, desc string, def string, dest *string) plugin.PluginOption {
		return plugin.PluginOption{
			Name:         name,
			Type:         plugin.PluginOptionTypeString,
			Description:  server + " " + desc,
			DefaultValue: def,
			Dest:         dest,
		}
	}
	return []plugin.PluginOption{
		str("host", "host", defaults.Host, &c.Host),
		{
			Name:         "port",
			Type:         plugin.PluginOptionTypeUint,
			Description:  server + " port",
			DefaultValue: defaults.Port,
			Dest:         &c.Port,
		},
		str("user", "user", defaults.User, &c.User),
		str("password", "password", "", &c.Password),
		str("database", "database name", defaults.Database, &c.Database),
		str(tlsOption, tlsOption+" setting", defaults.TLS, &c.TLS),
		str("timezone", "connection time zone", defaults.TimeZone, &c.TimeZone),
		str("dsn", "DSN (overrides other options when set)", "", &c.DSN),
	}
}

// OpenServer opens a gorm handle on a networked server and sizes its pool
func OpenServer(dialector gorm.Dialector) (*gorm.DB, error) {
	db, err := gorm.Open(
		dialector,
		&gorm.Config{
			Logger:                 gormlogger.Discard,
			SkipDefaultTransaction: true,
			PrepareStmt:            true,
		},
	)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)
	return db, nil
}
