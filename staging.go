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
	"reflect"

	"github.com/uptrace/bun"
)

type changeKind int

const (
	changeInsert changeKind = iota
	changeUpdate
	changeDelete
)

// pendingChange is one staged mutation. The generic repository that
// staged it captures a typed apply closure, so flushing needs no
// knowledge of the entity type; typ and models remain visible for the
// session-local read overlay.
type pendingChange struct {
	kind   changeKind
	typ    reflect.Type
	models []any
	apply  func(ctx context.Context, idb bun.IDB) (int64, error)
}

// stagedLookup scans the pending changes of one entity type, newest
// first, for an entity whose primary key matches id. It only applies to
// single-column primary keys; composite keys fall through to the driver.
func (u *UnitOfWork) stagedLookup(typ reflect.Type, id any) (model any, kind changeKind, ok bool) {
	table := u.db.Dialect().Tables().Get(typ)
	if table == nil || len(table.PKs) != 1 {
		return nil, 0, false
	}
	pk := table.PKs[0]

	for i := len(u.pending) - 1; i >= 0; i-- {
		ch := u.pending[i]
		if ch.typ != typ {
			continue
		}
		for _, m := range ch.models {
			strct := reflect.Indirect(reflect.ValueOf(m))
			if pkMatches(pk.Value(strct), id) {
				return m, ch.kind, true
			}
		}
	}
	return nil, 0, false
}

// pkMatches compares a primary key field value with a caller-supplied
// id, converting between numeric widths (int vs int64 and friends) but
// never across kind families, since reflect would happily turn an int
// into a garbage string.
func pkMatches(field reflect.Value, id any) bool {
	if id == nil || !field.IsValid() {
		return false
	}
	idv := reflect.ValueOf(id)
	if idv.Type() != field.Type() {
		if !sameKindFamily(idv.Kind(), field.Kind()) || !idv.Type().ConvertibleTo(field.Type()) {
			return false
		}
		idv = idv.Convert(field.Type())
	}
	return reflect.DeepEqual(field.Interface(), idv.Interface())
}

func sameKindFamily(a, b reflect.Kind) bool {
	return kindFamily(a) != 0 && kindFamily(a) == kindFamily(b)
}

func kindFamily(k reflect.Kind) int {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return 1
	case reflect.Float32, reflect.Float64:
		return 2
	case reflect.String:
		return 3
	default:
		return 0
	}
}
