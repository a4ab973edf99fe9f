// Package memory provides the ephemeral in-memory repository used as a mock
// data source. Data lives only as long as the store value.
package memory

import (
	"context"
	"sync"

	"github.com/goliatone/go-repository-switch/domain"
	"github.com/goliatone/go-repository-switch/repository"
)

var _ repository.Repository[domain.Post] = (*Store[domain.Post])(nil)

// Store is a mutex guarded map keyed by id.
type Store[T any] struct {
	mu       sync.RWMutex
	handlers repository.Handlers[T]
	records  map[int64]T
	nextID   int64
}

// New creates a store seeded with records. Seed ids are kept; records without
// an id get the next sequential one.
func New[T any](handlers repository.Handlers[T], seed ...T) *Store[T] {
	s := &Store[T]{
		handlers: handlers,
		records:  make(map[int64]T, len(seed)),
	}
	for _, r := range seed {
		id := handlers.GetID(r)
		if id <= 0 {
			s.nextID++
			id = s.nextID
			handlers.SetID(&r, id)
		}
		if id > s.nextID {
			s.nextID = id
		}
		s.records[id] = r
	}
	return s
}

func (s *Store[T]) FindAll(ctx context.Context, scope domain.Scope) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]T, 0, len(s.records))
	for _, r := range s.records {
		if s.handlers.InScope(r, scope) {
			out = append(out, r)
		}
	}
	s.handlers.SortByID(out)
	return out, nil
}

func (s *Store[T]) FindByID(ctx context.Context, id int64) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.records[id]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (s *Store[T]) Create(ctx context.Context, record T) (T, error) {
	if err := ctx.Err(); err != nil {
		var zero T
		return zero, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	s.handlers.SetID(&record, s.nextID)
	s.records[s.nextID] = record
	return record, nil
}

func (s *Store[T]) Update(ctx context.Context, record T) (T, error) {
	if err := ctx.Err(); err != nil {
		var zero T
		return zero, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.handlers.GetID(record)
	if _, ok := s.records[id]; !ok {
		var zero T
		return zero, domain.NewNotFoundError(s.handlers.Domain, id)
	}
	s.records[id] = record
	return record, nil
}

func (s *Store[T]) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return domain.NewNotFoundError(s.handlers.Domain, id)
	}
	delete(s.records, id)
	return nil
}

func (s *Store[T]) ClearAll(ctx context.Context, scope domain.Scope) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, r := range s.records {
		if s.handlers.InScope(r, scope) {
			delete(s.records, id)
		}
	}
	return nil
}

// Len returns the number of stored records.
func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
