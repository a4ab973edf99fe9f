package repositorytest

import (
	"context"
	"sync/atomic"

	"github.com/goliatone/go-repository-switch/domain"
	"github.com/goliatone/go-repository-switch/repository"
)

// Spy wraps a repository, counts calls and can inject failures.
type Spy[T any] struct {
	Next repository.Repository[T]
	// Err, when set, is returned by every call instead of delegating.
	Err error

	calls atomic.Int32
}

// NewSpy wraps next.
func NewSpy[T any](next repository.Repository[T]) *Spy[T] {
	return &Spy[T]{Next: next}
}

// Calls returns how many repository calls were made.
func (s *Spy[T]) Calls() int {
	return int(s.calls.Load())
}

func (s *Spy[T]) FindAll(ctx context.Context, scope domain.Scope) ([]T, error) {
	s.calls.Add(1)
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Next.FindAll(ctx, scope)
}

func (s *Spy[T]) FindByID(ctx context.Context, id int64) (*T, error) {
	s.calls.Add(1)
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Next.FindByID(ctx, id)
}

func (s *Spy[T]) Create(ctx context.Context, record T) (T, error) {
	s.calls.Add(1)
	if s.Err != nil {
		var zero T
		return zero, s.Err
	}
	return s.Next.Create(ctx, record)
}

func (s *Spy[T]) Update(ctx context.Context, record T) (T, error) {
	s.calls.Add(1)
	if s.Err != nil {
		var zero T
		return zero, s.Err
	}
	return s.Next.Update(ctx, record)
}

func (s *Spy[T]) Delete(ctx context.Context, id int64) error {
	s.calls.Add(1)
	if s.Err != nil {
		return s.Err
	}
	return s.Next.Delete(ctx, id)
}

func (s *Spy[T]) ClearAll(ctx context.Context, scope domain.Scope) error {
	s.calls.Add(1)
	if s.Err != nil {
		return s.Err
	}
	return s.Next.ClearAll(ctx, scope)
}
