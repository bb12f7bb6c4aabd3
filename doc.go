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

// Package anchorage coordinates node-local persistence: typed
// repositories, a unit of work that stages changes until an atomic
// save, and explicit transaction scopes on top of uptrace/bun.
//
// A Factory resolves the tenant on each call and mints a UnitOfWork
// pinned to one connection from that tenant's pool. Repositories are
// obtained per entity type through RepositoryFor and share the unit of
// work's connection and staged state. SaveChanges flushes everything
// staged in one transaction; BeginTransaction widens the boundary
// across several saves.
//
// Units of work and scopes are single-task objects and are not safe
// for concurrent use. The Factory and the database managers behind it
// are.
package anchorage
