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

package tenant

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIDValueSemantics(t *testing.T) {
	assert.True(t, ID{}.IsEmpty())
	assert.True(t, NewID("").IsEmpty())
	assert.False(t, NewID("acme").IsEmpty())

	assert.Equal(t, "acme", NewID("acme").String())
	assert.True(t, NewID("acme").Equal(NewID("acme")))
	assert.False(t, NewID("acme").Equal(NewID("globex")))
}

func TestContextRoundTrip(t *testing.T) {
	ctx := NewContext(context.Background(), NewID("acme"))
	assert.Equal(t, NewID("acme"), FromContext(ctx))

	// Absence never fails, it yields the empty id.
	assert.True(t, FromContext(context.Background()).IsEmpty())
	assert.True(t, FromContext(nil).IsEmpty())
}

func TestContextAccessor(t *testing.T) {
	var a ContextAccessor

	ctx := NewContext(context.Background(), NewID("acme"))
	assert.Equal(t, NewID("acme"), a.CurrentTenant(ctx))
	assert.True(t, a.CurrentTenant(context.Background()).IsEmpty())
}

func TestFixedAccessor(t *testing.T) {
	a := FixedAccessor{Tenant: NewID("batch-job")}

	assert.Equal(t, NewID("batch-job"), a.CurrentTenant(context.Background()))
	// The bound tenant wins even when the context carries another.
	ctx := NewContext(context.Background(), NewID("acme"))
	assert.Equal(t, NewID("batch-job"), a.CurrentTenant(ctx))
}
