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

import "errors"

// Local validation errors. They are detected before any I/O happens;
// everything that depends on the external store propagates verbatim
// from the driver instead.
var (
	// ErrClosed is returned by every operation on a disposed unit of work
	// or on a repository obtained from one.
	ErrClosed = errors.New("anchorage: unit of work is closed")

	// ErrTransactionFinished is returned when committing or rolling back
	// a transaction scope that already reached a terminal state.
	ErrTransactionFinished = errors.New("anchorage: transaction scope already finished")

	// ErrTransactionActive is returned by BeginTransaction while another
	// scope is still open on the same unit of work.
	ErrTransactionActive = errors.New("anchorage: a transaction scope is already active")

	// ErrNilEntity rejects nil entity arguments before staging.
	ErrNilEntity = errors.New("anchorage: entity cannot be nil")

	// ErrNilPredicate rejects nil predicate arguments on reads that require one.
	ErrNilPredicate = errors.New("anchorage: predicate cannot be nil")

	// ErrNilID rejects nil primary key lookups.
	ErrNilID = errors.New("anchorage: id cannot be nil")
)
