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
	"testing"

	"github.com/blinklabs-io/surety/database/plugin/metadata/internal/records"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDSN(t *testing.T) {
	db := New(records.Connection{
		Host:     "db.internal",
		User:     "surety",
		Password: "secret",
		TLS:      "skip-verify",
	})
	dsn := db.DSN()
	assert.Contains(t, dsn, "surety:secret@tcp(db.internal:3306)/surety")
	assert.Contains(t, dsn, "parseTime=true")
	assert.Contains(t, dsn, "tls=skip-verify")
	name, ok := parseMysqlDatabaseFromDSN(dsn)
	require.True(t, ok)
	assert.Equal(t, "surety", name)
}

func TestDSNHelpers(t *testing.T) {
	testDefs := []struct {
		dsn      string
		dbName   string
		stripped string
		ok       bool
	}{
		{
			dsn:      "u:p@tcp(h:3306)/ledger?parseTime=true",
			dbName:   "ledger",
			stripped: "u:p@tcp(h:3306)/?parseTime=true",
			ok:       true,
		},
		{
			dsn:      "u:p@tcp(h:3306)/ledger",
			dbName:   "ledger",
			stripped: "u:p@tcp(h:3306)/",
			ok:       true,
		},
		{
			dsn:      "u:p@tcp(h:3306)/",
			stripped: "u:p@tcp(h:3306)/",
		},
	}
	for _, testDef := range testDefs {
		name, ok := parseMysqlDatabaseFromDSN(testDef.dsn)
		assert.Equal(t, testDef.ok, ok, testDef.dsn)
		assert.Equal(t, testDef.dbName, name, testDef.dsn)
		stripped, ok := stripDatabaseFromDSN(testDef.dsn)
		require.True(t, ok)
		assert.Equal(t, testDef.stripped, stripped)
	}
}
