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

// Package diagnostics carries per-operation correlation metadata through
// context.Context. The metadata is optional and absent by default: code
// that never binds a Context observes empty values everywhere.
package diagnostics

import (
	"context"

	"github.com/google/uuid"
)

type ctxKey struct{}

// Context is a read-only snapshot of the correlation metadata bound to
// the current logical operation. It is computed fresh on each read and
// never persisted.
type Context struct {
	CorrelationID string
	OperationID   string
	NodeID        string
	Tags          map[string]string
}

// IsEmpty reports whether no diagnostic value is set at all.
func (c Context) IsEmpty() bool {
	return c.CorrelationID == "" && c.OperationID == "" && c.NodeID == "" && len(c.Tags) == 0
}

// Tag returns the named free-form tag, or "" when unset.
func (c Context) Tag(name string) string {
	return c.Tags[name]
}

func (c Context) clone() Context {
	out := c
	if c.Tags != nil {
		out.Tags = make(map[string]string, len(c.Tags))
		for k, v := range c.Tags {
			out.Tags[k] = v
		}
	}
	return out
}

// NewContext binds the diagnostic snapshot to ctx. The snapshot is copied
// so later mutations of dc.Tags by the caller are not observable.
func NewContext(ctx context.Context, dc Context) context.Context {
	return context.WithValue(ctx, ctxKey{}, dc.clone())
}

// FromContext returns a copy of the diagnostic snapshot bound to ctx.
// It never fails: a context without diagnostics yields the zero Context.
func FromContext(ctx context.Context) Context {
	if ctx == nil {
		return Context{}
	}
	if dc, ok := ctx.Value(ctxKey{}).(Context); ok {
		return dc.clone()
	}
	return Context{}
}

// CorrelationID returns the correlation id bound to ctx, or "" when absent.
func CorrelationID(ctx context.Context) string {
	return FromContext(ctx).CorrelationID
}

// WithCorrelationID binds a correlation id, preserving other diagnostics.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	dc := FromContext(ctx)
	dc.CorrelationID = id
	return NewContext(ctx, dc)
}

// WithOperationID binds an operation id, preserving other diagnostics.
// An empty id is replaced by a freshly generated one.
func WithOperationID(ctx context.Context, id string) context.Context {
	if id == "" {
		id = uuid.NewString()
	}
	dc := FromContext(ctx)
	dc.OperationID = id
	return NewContext(ctx, dc)
}

// WithNodeID binds a node id, preserving other diagnostics.
func WithNodeID(ctx context.Context, id string) context.Context {
	dc := FromContext(ctx)
	dc.NodeID = id
	return NewContext(ctx, dc)
}

// WithTag binds a free-form tag, preserving other diagnostics.
func WithTag(ctx context.Context, name, value string) context.Context {
	dc := FromContext(ctx)
	if dc.Tags == nil {
		dc.Tags = make(map[string]string, 1)
	}
	dc.Tags[name] = value
	return NewContext(ctx, dc)
}
