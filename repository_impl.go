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

	"github.com/anchorage-db/anchorage/repository"
	"github.com/anchorage-db/anchorage/types"
)

// entityRepository is the single concrete adapter behind both the read
// and the write capability for one entity type. It owns no storage:
// reads run on the unit of work's executor and mutations are staged on
// the unit of work's pending list.
type entityRepository[T any] struct {
	uow *UnitOfWork
}

var _ repository.Repository[struct{}] = (*entityRepository[struct{}])(nil)

func entityType[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// pkColumn returns the primary key column for T, defaulting to "id"
// when schema metadata is unavailable or the key is composite.
func (r *entityRepository[T]) pkColumn() string {
	table := r.uow.db.Dialect().Tables().Get(entityType[T]())
	if table != nil && len(table.PKs) == 1 {
		return table.PKs[0].Name
	}
	return "id"
}

func (r *entityRepository[T]) FindByID(ctx context.Context, id any) (*T, error) {
	if id == nil {
		return nil, ErrNilID
	}
	idb, err := r.uow.executor()
	if err != nil {
		return nil, err
	}

	// Session-local visibility: staged work wins over durable state.
	if m, kind, ok := r.uow.stagedLookup(entityType[T](), id); ok {
		if kind == changeDelete {
			return nil, nil
		}
		return m.(*T), nil
	}

	var entity T
	q := idb.NewSelect().Model(&entity).Where("? = ?", bun.Ident(r.pkColumn()), id).Limit(1)
	if tag := r.uow.interceptor.CommentTag(ctx); tag != "" {
		q = q.Comment(tag)
	}
	if err := q.Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &entity, nil
}

func (r *entityRepository[T]) Find(ctx context.Context, filter *types.QueryFilter) ([]*T, error) {
	if filter == nil {
		return nil, ErrNilPredicate
	}
	idb, err := r.uow.executor()
	if err != nil {
		return nil, err
	}
	var entities []*T
	q := idb.NewSelect().Model(&entities).Where(filter.Schema, filter.Args...)
	if tag := r.uow.interceptor.CommentTag(ctx); tag != "" {
		q = q.Comment(tag)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, err
	}
	return entities, nil
}

func (r *entityRepository[T]) FindOne(ctx context.Context, filter *types.QueryFilter) (*T, error) {
	if filter == nil {
		return nil, ErrNilPredicate
	}
	idb, err := r.uow.executor()
	if err != nil {
		return nil, err
	}
	var entity T
	q := idb.NewSelect().Model(&entity).Where(filter.Schema, filter.Args...).Limit(1)
	if tag := r.uow.interceptor.CommentTag(ctx); tag != "" {
		q = q.Comment(tag)
	}
	if err := q.Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &entity, nil
}

func (r *entityRepository[T]) Exists(ctx context.Context, filter *types.QueryFilter) (bool, error) {
	if filter == nil {
		return false, ErrNilPredicate
	}
	idb, err := r.uow.executor()
	if err != nil {
		return false, err
	}
	q := idb.NewSelect().Model((*T)(nil)).Where(filter.Schema, filter.Args...)
	if tag := r.uow.interceptor.CommentTag(ctx); tag != "" {
		q = q.Comment(tag)
	}
	return q.Exists(ctx)
}

func (r *entityRepository[T]) Count(ctx context.Context, filter *types.QueryFilter) (int, error) {
	idb, err := r.uow.executor()
	if err != nil {
		return 0, err
	}
	q := idb.NewSelect().Model((*T)(nil))
	if filter != nil {
		q = q.Where(filter.Schema, filter.Args...)
	}
	if tag := r.uow.interceptor.CommentTag(ctx); tag != "" {
		q = q.Comment(tag)
	}
	return q.Count(ctx)
}

func (r *entityRepository[T]) Query(ctx context.Context, query string, args ...interface{}) ([]*T, error) {
	idb, err := r.uow.executor()
	if err != nil {
		return nil, err
	}
	var entities []*T
	q := idb.NewSelect().Model(&entities).Where(query, args...)
	if tag := r.uow.interceptor.CommentTag(ctx); tag != "" {
		q = q.Comment(tag)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, err
	}
	return entities, nil
}

func (r *entityRepository[T]) Page(ctx context.Context, pageRequest *types.PageRequest) (*types.Pagination[T], error) {
	if pageRequest == nil {
		return nil, ErrNilPredicate
	}
	idb, err := r.uow.executor()
	if err != nil {
		return nil, err
	}

	var entities []*T
	q := idb.NewSelect().Model(&entities)
	if pageRequest.GetFilter() != nil {
		q = q.Where(pageRequest.GetFilter().Schema, pageRequest.GetFilter().Args...)
	}
	if tag := r.uow.interceptor.CommentTag(ctx); tag != "" {
		q = q.Comment(tag)
	}

	pagination := types.NewDefaultPagination[T](pageRequest.GetPage(), pageRequest.GetPageSize())
	total, err := q.Count(ctx)
	if err != nil || total == 0 {
		return pagination, err
	}
	err = q.
		Offset(pageRequest.GetOffset()).
		Limit(pageRequest.GetPageSize()).
		Order(pageRequest.GetOrders()...).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	pagination.Total = total
	pagination.Items = entities
	return pagination, nil
}

func (r *entityRepository[T]) Add(entity *T) error {
	if entity == nil {
		return ErrNilEntity
	}
	return r.stageInsert([]*T{entity})
}

func (r *entityRepository[T]) AddRange(entities ...*T) error {
	if len(entities) == 0 {
		return ErrNilEntity
	}
	for _, e := range entities {
		if e == nil {
			return ErrNilEntity
		}
	}
	staged := make([]*T, len(entities))
	copy(staged, entities)
	return r.stageInsert(staged)
}

func (r *entityRepository[T]) stageInsert(entities []*T) error {
	u := r.uow
	return u.stage(&pendingChange{
		kind:   changeInsert,
		typ:    entityType[T](),
		models: modelsOf(entities),
		apply: func(ctx context.Context, idb bun.IDB) (int64, error) {
			q := idb.NewInsert().Model(&entities)
			if tag := u.interceptor.CommentTag(ctx); tag != "" {
				q = q.Comment(tag)
			}
			res, err := q.Exec(ctx)
			if err != nil {
				return 0, err
			}
			return res.RowsAffected()
		},
	})
}

func (r *entityRepository[T]) Update(entity *T) error {
	if entity == nil {
		return ErrNilEntity
	}
	u := r.uow
	return u.stage(&pendingChange{
		kind:   changeUpdate,
		typ:    entityType[T](),
		models: []any{entity},
		apply: func(ctx context.Context, idb bun.IDB) (int64, error) {
			q := idb.NewUpdate().Model(entity).WherePK()
			if tag := u.interceptor.CommentTag(ctx); tag != "" {
				q = q.Comment(tag)
			}
			res, err := q.Exec(ctx)
			if err != nil {
				return 0, err
			}
			return res.RowsAffected()
		},
	})
}

func (r *entityRepository[T]) Remove(entity *T) error {
	if entity == nil {
		return ErrNilEntity
	}
	return r.stageDelete([]*T{entity})
}

func (r *entityRepository[T]) RemoveRange(entities ...*T) error {
	if len(entities) == 0 {
		return ErrNilEntity
	}
	for _, e := range entities {
		if e == nil {
			return ErrNilEntity
		}
	}
	staged := make([]*T, len(entities))
	copy(staged, entities)
	return r.stageDelete(staged)
}

func (r *entityRepository[T]) stageDelete(entities []*T) error {
	u := r.uow
	return u.stage(&pendingChange{
		kind:   changeDelete,
		typ:    entityType[T](),
		models: modelsOf(entities),
		apply: func(ctx context.Context, idb bun.IDB) (int64, error) {
			q := idb.NewDelete().Model(&entities).WherePK()
			if tag := u.interceptor.CommentTag(ctx); tag != "" {
				q = q.Comment(tag)
			}
			res, err := q.Exec(ctx)
			if err != nil {
				return 0, err
			}
			return res.RowsAffected()
		},
	})
}

func modelsOf[T any](entities []*T) []any {
	models := make([]any, len(entities))
	for i, e := range entities {
		models[i] = e
	}
	return models
}
