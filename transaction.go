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

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type txState int

const (
	txOpen txState = iota
	txCommitted
	txRolledBack
)

// TransactionScope is an explicit atomic boundary nested inside a unit
// of work's connection. It is connection-local: it has no visibility or
// effect on any other connection or unit of work.
//
// The scope is a state machine {Open -> Committed | RolledBack}. Closing
// an open scope behaves as a rollback, so a scope that is merely
// disposed never leaves partial state durable; closing a finished scope
// is a no-op.
type TransactionScope struct {
	id    string
	tx    bun.Tx
	uow   *UnitOfWork
	state txState
}

func newTransactionScope(u *UnitOfWork, tx bun.Tx) *TransactionScope {
	return &TransactionScope{
		id:    uuid.NewString(),
		tx:    tx,
		uow:   u,
		state: txOpen,
	}
}

// TransactionID is a stable opaque identifier for logging and telemetry.
func (s *TransactionScope) TransactionID() string {
	return s.id
}

func (s *TransactionScope) open() bool {
	return s.state == txOpen
}

// Commit durably applies everything saved since the scope began.
func (s *TransactionScope) Commit(ctx context.Context) error {
	if s.uow != nil && s.uow.closed {
		return ErrClosed
	}
	if s.state != txOpen {
		return ErrTransactionFinished
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.tx.Commit(); err != nil {
		return err
	}
	s.state = txCommitted
	s.detach()
	return nil
}

// Rollback discards everything saved since the scope began.
func (s *TransactionScope) Rollback(ctx context.Context) error {
	if s.uow != nil && s.uow.closed {
		return ErrClosed
	}
	if s.state != txOpen {
		return ErrTransactionFinished
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.tx.Rollback(); err != nil {
		return err
	}
	s.state = txRolledBack
	s.detach()
	return nil
}

// Close disposes the scope. From the Open state it rolls the
// transaction back; from a terminal state it does nothing.
func (s *TransactionScope) Close() error {
	if s.state != txOpen {
		return nil
	}
	return s.closeLocked()
}

func (s *TransactionScope) closeLocked() error {
	err := s.tx.Rollback()
	s.state = txRolledBack
	s.detach()
	if err != nil && !errors.Is(err, sql.ErrTxDone) {
		return err
	}
	return nil
}

func (s *TransactionScope) detach() {
	if s.uow != nil && s.uow.scope == s {
		s.uow.scope = nil
	}
}
