// Package local implements the persistent-local repository: the full
// collection of a domain is serialized as one JSON blob under a fixed key.
//
// Reads parse the blob and fall back to an empty collection when it is
// missing or corrupt. Writes replace the whole blob. Read-modify-write cycles
// are not locked, so two concurrent mutations race and the last write wins.
package local

import (
	"context"
	"encoding/json"

	"github.com/goliatone/go-repository-switch/domain"
	"github.com/goliatone/go-repository-switch/repository"
)

// KeyPrefix namespaces entity blobs. Preference data never uses this prefix.
const KeyPrefix = "repository-switch:"

// StorageKey returns the blob key of a domain collection.
func StorageKey(d domain.Domain) string {
	return KeyPrefix + string(d)
}

var _ repository.Repository[domain.User] = (*Store[domain.User])(nil)

// Store is a Repository over a BlobStore.
type Store[T any] struct {
	blobs    BlobStore
	key      string
	handlers repository.Handlers[T]
}

// New binds a store to the blob key of its domain.
func New[T any](blobs BlobStore, handlers repository.Handlers[T]) *Store[T] {
	return &Store[T]{
		blobs:    blobs,
		key:      StorageKey(handlers.Domain),
		handlers: handlers,
	}
}

func (s *Store[T]) load(ctx context.Context) ([]T, error) {
	data, ok, err := s.blobs.Get(ctx, s.key)
	if err != nil {
		return nil, domain.NewRepositoryError("read "+s.key, err)
	}
	if !ok || len(data) == 0 {
		return []T{}, nil
	}
	var records []T
	if err := json.Unmarshal(data, &records); err != nil {
		return []T{}, nil
	}
	return records, nil
}

func (s *Store[T]) save(ctx context.Context, records []T) error {
	data, err := json.Marshal(records)
	if err != nil {
		return domain.NewRepositoryError("encode "+s.key, err)
	}
	if err := s.blobs.Put(ctx, s.key, data); err != nil {
		return domain.NewRepositoryError("write "+s.key, err)
	}
	return nil
}

func (s *Store[T]) FindAll(ctx context.Context, scope domain.Scope) ([]T, error) {
	records, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	out := records[:0]
	for _, r := range records {
		if s.handlers.InScope(r, scope) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *Store[T]) FindByID(ctx context.Context, id int64) (*T, error) {
	records, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range records {
		if s.handlers.GetID(records[i]) == id {
			return &records[i], nil
		}
	}
	return nil, nil
}

func (s *Store[T]) Create(ctx context.Context, record T) (T, error) {
	var zero T
	records, err := s.load(ctx)
	if err != nil {
		return zero, err
	}
	var maxID int64
	for _, r := range records {
		if id := s.handlers.GetID(r); id > maxID {
			maxID = id
		}
	}
	s.handlers.SetID(&record, maxID+1)
	if err := s.save(ctx, append(records, record)); err != nil {
		return zero, err
	}
	return record, nil
}

func (s *Store[T]) Update(ctx context.Context, record T) (T, error) {
	var zero T
	records, err := s.load(ctx)
	if err != nil {
		return zero, err
	}
	id := s.handlers.GetID(record)
	for i := range records {
		if s.handlers.GetID(records[i]) == id {
			records[i] = record
			if err := s.save(ctx, records); err != nil {
				return zero, err
			}
			return record, nil
		}
	}
	return zero, domain.NewNotFoundError(s.handlers.Domain, id)
}

func (s *Store[T]) Delete(ctx context.Context, id int64) error {
	records, err := s.load(ctx)
	if err != nil {
		return err
	}
	for i := range records {
		if s.handlers.GetID(records[i]) == id {
			return s.save(ctx, append(records[:i], records[i+1:]...))
		}
	}
	return domain.NewNotFoundError(s.handlers.Domain, id)
}

func (s *Store[T]) ClearAll(ctx context.Context, scope domain.Scope) error {
	records, err := s.load(ctx)
	if err != nil {
		return err
	}
	kept := records[:0]
	for _, r := range records {
		if !s.handlers.InScope(r, scope) {
			kept = append(kept, r)
		}
	}
	return s.save(ctx, kept)
}

// Seed writes records only when the collection blob does not exist yet.
func (s *Store[T]) Seed(ctx context.Context, records []T) error {
	_, ok, err := s.blobs.Get(ctx, s.key)
	if err != nil {
		return domain.NewRepositoryError("read "+s.key, err)
	}
	if ok {
		return nil
	}
	return s.save(ctx, records)
}
