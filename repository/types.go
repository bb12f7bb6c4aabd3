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

package repository

import (
	"context"

	"github.com/anchorage-db/anchorage/types"
)

// ReadRepository is the read-only capability over one entity's durable
// collection. Callers that depend on it get a compile-time guarantee
// that they cannot stage mutations.
//
// Predicates (types.QueryFilter) are opaque here: they are evaluated by
// the storage driver, never interpreted locally. Lookups return absent
// (nil entity, nil error) rather than erroring when nothing matches.
type ReadRepository[T any] interface {
	// FindByID returns the entity with the given primary key, or nil when
	// absent. Entities staged on the same unit of work are visible:
	// a pending insert is returned, a pending removal yields absent.
	FindByID(ctx context.Context, id any) (*T, error)

	// Find returns all entities matching the predicate.
	Find(ctx context.Context, filter *types.QueryFilter) ([]*T, error)

	// FindOne returns the first entity matching the predicate, or nil.
	FindOne(ctx context.Context, filter *types.QueryFilter) (*T, error)

	// Exists reports whether any entity matches the predicate.
	Exists(ctx context.Context, filter *types.QueryFilter) (bool, error)

	// Count returns the number of matching entities; a nil filter counts
	// the whole collection.
	Count(ctx context.Context, filter *types.QueryFilter) (int, error)

	// Query runs a raw WHERE expression against the collection.
	Query(ctx context.Context, query string, args ...interface{}) ([]*T, error)

	// Page returns one page of entities with pagination metadata.
	Page(ctx context.Context, page *types.PageRequest) (*types.Pagination[T], error)
}

// Repository extends the read capability with staged mutations.
//
// Mutations are staged, not executed: they become durable only when the
// owning unit of work saves, and staged state is visible to FindByID on
// the same session before that. Repositories are coordination wrappers,
// not policy enforcers - they apply no tenant filtering and no
// validation beyond rejecting nil arguments.
type Repository[T any] interface {
	ReadRepository[T]

	// Add stages an insertion.
	Add(entity *T) error

	// AddRange stages the insertion of several entities as one statement.
	AddRange(entities ...*T) error

	// Update stages an update of the entity identified by its primary key.
	Update(entity *T) error

	// Remove stages the removal of the entity identified by its primary key.
	Remove(entity *T) error

	// RemoveRange stages the removal of several entities.
	RemoveRange(entities ...*T) error
}
