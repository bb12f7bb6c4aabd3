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
	"database/sql"
	"errors"
	"reflect"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"

	"github.com/anchorage-db/anchorage/database"
	"github.com/anchorage-db/anchorage/repository"
)

// UnitOfWork owns one change-tracking session over one dedicated
// database connection. Repositories obtained from it share that session,
// so mutations staged across different entity types commit together on
// SaveChanges.
//
// A UnitOfWork is a single logical unit: operations are asynchronous but
// never internally parallel, and sharing one instance across concurrent
// goroutines is a caller error. Independent instances, each minted by a
// Factory with its own connection, may run concurrently without any
// coordination.
type UnitOfWork struct {
	db          *bun.DB
	conn        bun.Conn
	interceptor database.CorrelationInterceptor
	logger      database.Logger
	repos       map[reflect.Type]any
	pending     []*pendingChange
	scope       *TransactionScope
	closed      bool
}

// NewUnitOfWork pins a dedicated connection from db and wraps it in a
// fresh unit of work. The caller must Close it to release the connection.
func NewUnitOfWork(ctx context.Context, db *bun.DB) (*UnitOfWork, error) {
	if db == nil {
		return nil, errors.New("anchorage: database cannot be nil")
	}
	conn, err := db.Conn(ctx)
	if err != nil {
		return nil, err
	}
	return &UnitOfWork{
		db:     db,
		conn:   conn,
		logger: database.GetLogger(),
		repos:  make(map[reflect.Type]any),
	}, nil
}

// RepositoryFor returns the repository for entity type T, creating it on
// first request. Within one UnitOfWork the same T always yields the same
// instance: the cache is keyed by entity type and populated lazily, so
// repository identity is stable for the life of the unit of work.
//
// This is a package-level generic function rather than a method because
// Go methods cannot introduce type parameters.
func RepositoryFor[T any](u *UnitOfWork) repository.Repository[T] {
	typ := reflect.TypeOf((*T)(nil)).Elem()
	if r, ok := u.repos[typ]; ok {
		return r.(repository.Repository[T])
	}
	r := &entityRepository[T]{uow: u}
	if u.repos != nil {
		u.repos[typ] = r
	}
	return r
}

// HasPendingChanges reports whether staged mutations await a SaveChanges.
func (u *UnitOfWork) HasPendingChanges() bool {
	return len(u.pending) > 0
}

// executor returns where commands run right now: the active explicit
// transaction when one is open, the dedicated connection otherwise.
func (u *UnitOfWork) executor() (bun.IDB, error) {
	if u.closed {
		return nil, ErrClosed
	}
	if u.scope != nil && u.scope.open() {
		return u.scope.tx, nil
	}
	return u.conn, nil
}

// stage appends a change to the pending list.
func (u *UnitOfWork) stage(ch *pendingChange) error {
	if u.closed {
		return ErrClosed
	}
	u.pending = append(u.pending, ch)
	return nil
}

// SaveChanges flushes all staged mutations from every repository of this
// unit of work in one atomic operation and returns the number of
// affected records. Without an explicit transaction scope the flush runs
// in its own transaction on the session connection; inside a scope it
// runs on the scope's transaction and becomes durable only on Commit.
//
// On failure nothing from this call is durable and the staged changes
// are kept, so the caller may retry or dispose. Atomicity covers this
// one session and connection only.
func (u *UnitOfWork) SaveChanges(ctx context.Context) (int, error) {
	if u.closed {
		return 0, ErrClosed
	}
	if len(u.pending) == 0 {
		return 0, nil
	}

	if u.scope != nil && u.scope.open() {
		affected, err := u.flush(ctx, u.scope.tx)
		if err != nil {
			return 0, err
		}
		u.pending = nil
		return affected, nil
	}

	tx, err := u.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	affected, err := u.flush(ctx, tx)
	if err != nil {
		_ = tx.Rollback()
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	u.pending = nil
	return affected, nil
}

func (u *UnitOfWork) flush(ctx context.Context, idb bun.IDB) (int, error) {
	var total int64
	for _, ch := range u.pending {
		n, err := ch.apply(ctx, idb)
		if err != nil {
			// Propagated verbatim: constraint violations and connectivity
			// failures carry the driver's own error.
			return 0, err
		}
		total += n
	}
	return int(total), nil
}

// BeginTransaction opens an explicit atomic boundary on the session
// connection, allowing several SaveChanges calls to commit or roll back
// together. Only one scope may be open at a time.
func (u *UnitOfWork) BeginTransaction(ctx context.Context) (*TransactionScope, error) {
	if u.closed {
		return nil, ErrClosed
	}
	if u.scope != nil && u.scope.open() {
		return nil, ErrTransactionActive
	}
	tx, err := u.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	scope := newTransactionScope(u, tx)
	u.scope = scope
	return scope, nil
}

// Exec runs a raw command on the session, rewriting it through the
// correlation interceptor first.
func (u *UnitOfWork) Exec(ctx context.Context, command string, args ...interface{}) (sql.Result, error) {
	idb, err := u.executor()
	if err != nil {
		return nil, err
	}
	return idb.ExecContext(ctx, u.interceptor.Rewrite(ctx, command), args...)
}

// useSchema points the session connection at a tenant's schema. SQLite
// has no schema support and is skipped.
func (u *UnitOfWork) useSchema(ctx context.Context, schema string) error {
	if u.closed {
		return ErrClosed
	}
	switch u.db.Dialect().Name() {
	case dialect.PG:
		_, err := u.conn.ExecContext(ctx, "SET search_path TO ?", bun.Ident(schema))
		return err
	case dialect.MySQL:
		_, err := u.conn.ExecContext(ctx, "USE ?", bun.Ident(schema))
		return err
	default:
		return nil
	}
}

// Close disposes the session: an open transaction scope is rolled back,
// the dedicated connection is released, and every later call on this
// unit of work or its repositories fails with ErrClosed.
func (u *UnitOfWork) Close() error {
	if u.closed {
		return nil
	}
	u.closed = true

	var scopeErr error
	if u.scope != nil && u.scope.open() {
		scopeErr = u.scope.closeLocked()
	}
	u.pending = nil
	u.repos = nil

	if err := u.conn.Close(); err != nil {
		return err
	}
	return scopeErr
}
