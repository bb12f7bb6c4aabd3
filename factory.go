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
	"errors"
	"fmt"
	"sync"

	"github.com/anchorage-db/anchorage/database"
	"github.com/anchorage-db/anchorage/health"
	"github.com/anchorage-db/anchorage/tenant"
)

// Factory mints a fresh UnitOfWork per logical operation. It resolves
// the current tenant through the configured accessor and strategy, keeps
// one connection pool per resolved DSN, and hands out units of work
// pinned to a dedicated connection with the tenant's schema applied.
//
// The factory itself is safe for concurrent use; the units of work it
// produces are not, by contract.
type Factory struct {
	mu       sync.Mutex
	base     *database.ConnectionConfig
	accessor tenant.Accessor
	strategy tenant.Strategy
	logger   database.Logger
	managers map[string]database.Manager
	probes   []health.Contributor
	closed   bool
}

// NewFactory builds a factory. base carries engine type, pool tuning,
// and logging knobs shared by every tenant pool; accessor and strategy
// decide which DSN and schema an operation lands on.
func NewFactory(base *database.ConnectionConfig, accessor tenant.Accessor, strategy tenant.Strategy) (*Factory, error) {
	if strategy == nil {
		return nil, errors.New("anchorage: tenant resolution strategy cannot be nil")
	}
	if base == nil {
		base = database.DefaultConnectionConfig()
	}
	if accessor == nil {
		accessor = tenant.ContextAccessor{}
	}
	return &Factory{
		base:     base,
		accessor: accessor,
		strategy: strategy,
		logger:   database.GetLogger(),
		managers: make(map[string]database.Manager),
	}, nil
}

// UnitOfWork resolves the tenant bound to ctx and returns a fresh unit
// of work against that tenant's storage location. Callers that require
// tenancy must check the accessor themselves: an empty tenant falls
// through to the strategy's default mapping.
func (f *Factory) UnitOfWork(ctx context.Context) (*UnitOfWork, error) {
	id := f.accessor.CurrentTenant(ctx)
	dsn, err := f.strategy.ResolveDSN(ctx, id)
	if err != nil {
		return nil, err
	}

	mgr, err := f.manager(ctx, dsn)
	if err != nil {
		return nil, err
	}

	u, err := NewUnitOfWork(ctx, mgr.DB())
	if err != nil {
		return nil, err
	}
	if schema := f.strategy.ResolveSchema(id); schema != "" {
		if err := u.useSchema(ctx, schema); err != nil {
			_ = u.Close()
			return nil, err
		}
	}
	return u, nil
}

// manager returns the pool for dsn, creating and connecting it on first use.
func (f *Factory) manager(ctx context.Context, dsn string) (database.Manager, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return nil, ErrClosed
	}
	if mgr, ok := f.managers[dsn]; ok {
		return mgr, nil
	}

	mgr := database.NewManager(f.base.WithDSN(dsn))
	mgr.SetLogger(f.logger)
	if err := mgr.Connect(ctx); err != nil {
		return nil, err
	}
	f.managers[dsn] = mgr
	// Probe names stay stable and carry no connection details.
	f.probes = append(f.probes, database.NewHealthContributor(
		fmt.Sprintf("storage-pool-%d", len(f.probes)), mgr))
	return mgr, nil
}

// HealthContributors returns one passive probe per connection pool the
// factory has opened so far. The host aggregates them on demand.
func (f *Factory) HealthContributors() []health.Contributor {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]health.Contributor, len(f.probes))
	copy(out, f.probes)
	return out
}

// Close disconnects every pool the factory opened. Units of work already
// handed out must be closed by their owners.
func (f *Factory) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return nil
	}
	f.closed = true

	var firstErr error
	for _, mgr := range f.managers {
		if err := mgr.Disconnect(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	f.managers = nil
	return firstErr
}
