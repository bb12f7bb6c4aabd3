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

package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQueryFilterCarriesSchemaAndArgs(t *testing.T) {
	f := NewQueryFilter("name = ? AND crew > ?", "alpha", 3)
	assert.Equal(t, "name = ? AND crew > ?", f.Schema)
	assert.Equal(t, []interface{}{"alpha", 3}, f.Args)
}

func TestPageRequestDefaults(t *testing.T) {
	p := NewDefaultPageRequest(0, 0)
	assert.Equal(t, 1, p.GetPage())
	assert.Positive(t, p.GetPageSize())
	assert.Zero(t, p.GetOffset())
	assert.Nil(t, p.GetFilter())
}

func TestPageRequestOffset(t *testing.T) {
	p := NewDefaultPageRequest(3, 20)
	assert.Equal(t, 40, p.GetOffset())
}
