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
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anchorage-db/anchorage/database"
	"github.com/anchorage-db/anchorage/health"
	"github.com/anchorage-db/anchorage/tenant"
)

func memoryDSN() string {
	return fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
}

func newTestFactory(t *testing.T, cfg *tenant.Config) *Factory {
	t.Helper()
	strategy, err := tenant.NewStaticStrategy(cfg)
	require.NoError(t, err)

	base := database.DefaultConnectionConfig()
	base.Type = "sqlite"

	f, err := NewFactory(base, tenant.ContextAccessor{}, strategy)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func TestFactoryIsolatesTenantsByDSN(t *testing.T) {
	f := newTestFactory(t, &tenant.Config{
		DefaultDSN: memoryDSN(),
		Tenants: map[string]tenant.Entry{
			"acme": {DSN: memoryDSN()},
		},
	})

	acme := tenant.NewContext(context.Background(), tenant.NewID("acme"))
	other := context.Background()

	ua, err := f.UnitOfWork(acme)
	require.NoError(t, err)
	defer ua.Close()
	_, err = ua.Exec(acme, "CREATE TABLE ships (id INTEGER PRIMARY KEY, name TEXT)")
	require.NoError(t, err)
	_, err = ua.Exec(acme, "INSERT INTO ships (name) VALUES (?)", "acme-only")
	require.NoError(t, err)

	ub, err := f.UnitOfWork(other)
	require.NoError(t, err)
	defer ub.Close()
	_, err = ub.Exec(other, "CREATE TABLE ships (id INTEGER PRIMARY KEY, name TEXT)")
	require.NoError(t, err)

	// The default tenant's database never saw acme's row.
	rows, err := RepositoryFor[Ship](ub).Count(other, nil)
	require.NoError(t, err)
	assert.Zero(t, rows)

	rows, err = RepositoryFor[Ship](ua).Count(acme, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, rows)
}

func TestFactoryReusesPoolPerDSN(t *testing.T) {
	f := newTestFactory(t, &tenant.Config{DefaultDSN: memoryDSN()})
	ctx := context.Background()

	u1, err := f.UnitOfWork(ctx)
	require.NoError(t, err)
	defer u1.Close()
	u2, err := f.UnitOfWork(ctx)
	require.NoError(t, err)
	defer u2.Close()

	// One DSN, one pool, one health probe.
	assert.Len(t, f.HealthContributors(), 1)
}

func TestFactoryHealthContributorsReportPerPool(t *testing.T) {
	f := newTestFactory(t, &tenant.Config{
		DefaultDSN: memoryDSN(),
		Tenants: map[string]tenant.Entry{
			"acme": {DSN: memoryDSN()},
		},
	})
	ctx := context.Background()

	u1, err := f.UnitOfWork(ctx)
	require.NoError(t, err)
	defer u1.Close()
	u2, err := f.UnitOfWork(tenant.NewContext(ctx, tenant.NewID("acme")))
	require.NoError(t, err)
	defer u2.Close()

	probes := f.HealthContributors()
	require.Len(t, probes, 2)
	names := map[string]bool{}
	for _, p := range probes {
		res := p.CheckHealth(ctx)
		assert.Equal(t, health.Healthy, res.Status)
		assert.Contains(t, res.Data, "response_time")
		names[p.Name()] = true
	}
	assert.Len(t, names, 2)
}

func TestFactoryFailsForUnresolvableTenant(t *testing.T) {
	f := newTestFactory(t, &tenant.Config{
		Tenants: map[string]tenant.Entry{
			"known": {DSN: memoryDSN()},
		},
	})

	_, err := f.UnitOfWork(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no connection target configured")
}

func TestFactoryCloseStopsMintingUnitsOfWork(t *testing.T) {
	f := newTestFactory(t, &tenant.Config{DefaultDSN: memoryDSN()})
	ctx := context.Background()

	u, err := f.UnitOfWork(ctx)
	require.NoError(t, err)
	require.NoError(t, u.Close())

	require.NoError(t, f.Close())
	_, err = f.UnitOfWork(ctx)
	assert.ErrorIs(t, err, ErrClosed)
	assert.NoError(t, f.Close())
}
