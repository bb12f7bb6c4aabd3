/*
 * Copyright 2026 anchorage-db.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package anchorage

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	"github.com/anchorage-db/anchorage/database"
)

// Ship and Manifest are the two entity types the session tests stage
// together, so cross-type atomicity is exercised on every save.
type Ship struct {
	bun.BaseModel `bun:"table:ships,alias:s"`

	ID   int64  `bun:"id,pk,autoincrement"`
	Name string `bun:"name,notnull,unique"`
	Crew int    `bun:"crew"`
}

type Manifest struct {
	bun.BaseModel `bun:"table:manifests,alias:m"`

	ID     int64  `bun:"id,pk,autoincrement"`
	ShipID int64  `bun:"ship_id"`
	Label  string `bun:"label,notnull"`
}

// openTestDB connects a manager to a per-test shared-cache in-memory
// SQLite database. Shared cache keeps every pooled connection on the
// same data, which matters because each unit of work pins its own.
func openTestDB(t *testing.T) *bun.DB {
	t.Helper()

	cfg := database.DefaultConnectionConfig()
	cfg.Type = "sqlite"
	cfg.DSN = fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())

	mgr := database.NewManager(cfg)
	require.NoError(t, mgr.Connect(context.Background()))
	t.Cleanup(func() { _ = mgr.Disconnect() })

	db := mgr.DB()
	ctx := context.Background()
	_, err := db.NewCreateTable().Model((*Ship)(nil)).Exec(ctx)
	require.NoError(t, err)
	_, err = db.NewCreateTable().Model((*Manifest)(nil)).Exec(ctx)
	require.NoError(t, err)
	return db
}

func openTestUnitOfWork(t *testing.T, db *bun.DB) *UnitOfWork {
	t.Helper()
	u, err := NewUnitOfWork(context.Background(), db)
	require.NoError(t, err)
	t.Cleanup(func() { _ = u.Close() })
	return u
}

// countShips reads through a throwaway session so the assertion sees
// only durable state, never anything staged by the session under test.
func countShips(t *testing.T, db *bun.DB) int {
	t.Helper()
	n, err := db.NewSelect().Model((*Ship)(nil)).Count(context.Background())
	require.NoError(t, err)
	return n
}
