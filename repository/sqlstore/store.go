// Package sqlstore is a Repository over a SQL database through bun. It is not
// one of the default selector sources; containers register it under the
// "database" tag to show that the factory table is open to new stores.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/goliatone/go-repository-switch/domain"
	"github.com/goliatone/go-repository-switch/repository"
)

// SelectCriteria narrows a select query.
type SelectCriteria func(*bun.SelectQuery) *bun.SelectQuery

// DeleteCriteria narrows a delete query.
type DeleteCriteria func(*bun.DeleteQuery) *bun.DeleteQuery

// Open connects to driver ("sqlite3" or "postgres") and wraps the pool with
// the matching bun dialect.
func Open(driver, dsn string) (*bun.DB, error) {
	sqldb, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	switch driver {
	case "sqlite3":
		// sqlite serializes writers anyway; one connection keeps :memory: databases shared
		sqldb.SetMaxOpenConns(1)
		return bun.NewDB(sqldb, sqlitedialect.New()), nil
	case "postgres":
		return bun.NewDB(sqldb, pgdialect.New()), nil
	default:
		_ = sqldb.Close()
		return nil, fmt.Errorf("unsupported sql driver %q", driver)
	}
}

// Mapper converts between a domain record and its bun row model.
type Mapper[T any, R any] struct {
	ToRow   func(T) *R
	FromRow func(*R) T
}

var _ repository.Repository[domain.Post] = (*Store[domain.Post, postRow])(nil)

// Store persists T through the row model R.
type Store[T any, R any] struct {
	db       bun.IDB
	handlers repository.Handlers[T]
	mapper   Mapper[T, R]
}

// New creates a store. Call Migrate once before use.
func New[T any, R any](db bun.IDB, handlers repository.Handlers[T], mapper Mapper[T, R]) *Store[T, R] {
	return &Store[T, R]{db: db, handlers: handlers, mapper: mapper}
}

// Migrate creates the backing table when it does not exist.
func (s *Store[T, R]) Migrate(ctx context.Context) error {
	_, err := s.db.NewCreateTable().Model((*R)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return domain.NewRepositoryError("create "+string(s.handlers.Domain)+" table", err)
	}
	return nil
}

func (s *Store[T, R]) scopeSelect(scope domain.Scope) SelectCriteria {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		if scope.Scoped() && s.handlers.AccountID != nil {
			q = q.Where("account_id = ?", scope.AccountID)
		}
		return q.Order("id ASC")
	}
}

func (s *Store[T, R]) scopeDelete(scope domain.Scope) DeleteCriteria {
	return func(q *bun.DeleteQuery) *bun.DeleteQuery {
		if scope.Scoped() && s.handlers.AccountID != nil {
			return q.Where("account_id = ?", scope.AccountID)
		}
		return q.Where("1 = 1")
	}
}

func (s *Store[T, R]) FindAll(ctx context.Context, scope domain.Scope) ([]T, error) {
	var rows []R
	q := s.db.NewSelect().Model(&rows)
	q = s.scopeSelect(scope)(q)
	if err := q.Scan(ctx); err != nil {
		return nil, domain.NewRepositoryError("select "+string(s.handlers.Domain), err)
	}
	out := make([]T, 0, len(rows))
	for i := range rows {
		out = append(out, s.mapper.FromRow(&rows[i]))
	}
	return out, nil
}

func (s *Store[T, R]) FindByID(ctx context.Context, id int64) (*T, error) {
	row := new(R)
	err := s.db.NewSelect().Model(row).Where("id = ?", id).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.NewRepositoryError("select "+string(s.handlers.Domain), err)
	}
	record := s.mapper.FromRow(row)
	return &record, nil
}

func (s *Store[T, R]) Create(ctx context.Context, record T) (T, error) {
	s.handlers.SetID(&record, 0)
	row := s.mapper.ToRow(record)
	if _, err := s.db.NewInsert().Model(row).Exec(ctx); err != nil {
		var zero T
		return zero, domain.NewRepositoryError("insert "+string(s.handlers.Domain), err)
	}
	return s.mapper.FromRow(row), nil
}

func (s *Store[T, R]) Update(ctx context.Context, record T) (T, error) {
	var zero T
	row := s.mapper.ToRow(record)
	res, err := s.db.NewUpdate().Model(row).WherePK().Exec(ctx)
	if err != nil {
		return zero, domain.NewRepositoryError("update "+string(s.handlers.Domain), err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return zero, domain.NewNotFoundError(s.handlers.Domain, s.handlers.GetID(record))
	}
	return s.mapper.FromRow(row), nil
}

func (s *Store[T, R]) Delete(ctx context.Context, id int64) error {
	res, err := s.db.NewDelete().Model((*R)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return domain.NewRepositoryError("delete "+string(s.handlers.Domain), err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.NewNotFoundError(s.handlers.Domain, id)
	}
	return nil
}

func (s *Store[T, R]) ClearAll(ctx context.Context, scope domain.Scope) error {
	q := s.db.NewDelete().Model((*R)(nil))
	q = s.scopeDelete(scope)(q)
	if _, err := q.Exec(ctx); err != nil {
		return domain.NewRepositoryError("clear "+string(s.handlers.Domain), err)
	}
	return nil
}
