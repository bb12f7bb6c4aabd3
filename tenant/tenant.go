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

// Package tenant identifies the tenant bound to an operation and resolves
// it to a physical storage location. Identification and resolution are the
// only responsibilities here: nothing in this package filters rows by
// tenant, and callers that need row-level isolation must shape their own
// predicates.
package tenant

import (
	"context"
	"strings"
)

// ID is an opaque tenant identifier. Two IDs are equal iff their
// underlying values are equal; the zero value is empty.
type ID struct {
	value string
}

// NewID wraps a raw tenant identifier value.
func NewID(value string) ID {
	return ID{value: value}
}

// IsEmpty reports whether the identifier carries no usable value.
func (id ID) IsEmpty() bool {
	return strings.TrimSpace(id.value) == ""
}

// String returns the underlying identifier value.
func (id ID) String() string {
	return id.value
}

// Equal reports value equality with another ID.
func (id ID) Equal(other ID) bool {
	return id.value == other.value
}

// Accessor reports the tenant bound to the current logical operation.
// Implementations never fail; when no tenant is bound they return an
// empty ID. Enforcing that a tenant is present is the caller's job.
type Accessor interface {
	CurrentTenant(ctx context.Context) ID
}

type ctxKey struct{}

// NewContext binds a tenant id to ctx.
func NewContext(ctx context.Context, id ID) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the tenant id bound to ctx, or the empty ID.
func FromContext(ctx context.Context) ID {
	if ctx == nil {
		return ID{}
	}
	if id, ok := ctx.Value(ctxKey{}).(ID); ok {
		return id
	}
	return ID{}
}

// ContextAccessor is the default Accessor: it reads the tenant id that
// was explicitly threaded through the call chain with NewContext.
type ContextAccessor struct{}

var _ Accessor = ContextAccessor{}

func (ContextAccessor) CurrentTenant(ctx context.Context) ID {
	return FromContext(ctx)
}

// FixedAccessor always reports the same tenant. Useful for background
// jobs that operate on behalf of one known tenant.
type FixedAccessor struct {
	Tenant ID
}

var _ Accessor = FixedAccessor{}

func (a FixedAccessor) CurrentTenant(context.Context) ID {
	return a.Tenant
}
