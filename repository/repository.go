// Package repository defines the uniform CRUD contract every backing store
// satisfies, independent of whether the data lives behind a REST API, in a
// local blob, in memory or in a SQL database.
package repository

import (
	"context"
	"slices"

	"github.com/goliatone/go-repository-switch/domain"
)

// Repository is the per-domain CRUD contract.
//
// FindByID returns (nil, nil) when the record does not exist. Update and
// Delete return a domain.ErrNotFound classified error instead.
type Repository[T any] interface {
	FindAll(ctx context.Context, scope domain.Scope) ([]T, error)
	FindByID(ctx context.Context, id int64) (*T, error)
	Create(ctx context.Context, record T) (T, error)
	Update(ctx context.Context, record T) (T, error)
	Delete(ctx context.Context, id int64) error
	ClearAll(ctx context.Context, scope domain.Scope) error
}

// Handlers gives generic stores access to the identity and owner fields of a
// record without reflection.
type Handlers[T any] struct {
	Domain    domain.Domain
	GetID     func(T) int64
	SetID     func(*T, int64)
	AccountID func(T) int64
}

// InScope reports whether record belongs to scope.
func (h Handlers[T]) InScope(record T, scope domain.Scope) bool {
	if !scope.Scoped() || h.AccountID == nil {
		return true
	}
	return h.AccountID(record) == scope.AccountID
}

// SortByID orders records by ascending id in place.
func (h Handlers[T]) SortByID(records []T) {
	slices.SortFunc(records, func(a, b T) int {
		ai, bi := h.GetID(a), h.GetID(b)
		switch {
		case ai < bi:
			return -1
		case ai > bi:
			return 1
		}
		return 0
	})
}

// PostHandlers wires domain.Post into generic stores.
func PostHandlers() Handlers[domain.Post] {
	return Handlers[domain.Post]{
		Domain:    domain.Posts,
		GetID:     func(p domain.Post) int64 { return p.ID },
		SetID:     func(p *domain.Post, id int64) { p.ID = id },
		AccountID: func(p domain.Post) int64 { return p.AccountID },
	}
}

// UserHandlers wires domain.User into generic stores.
func UserHandlers() Handlers[domain.User] {
	return Handlers[domain.User]{
		Domain:    domain.Users,
		GetID:     func(u domain.User) int64 { return u.ID },
		SetID:     func(u *domain.User, id int64) { u.ID = id },
		AccountID: func(u domain.User) int64 { return u.AccountID },
	}
}

// AccountHandlers wires domain.Account into generic stores. Accounts are not
// owner scoped.
func AccountHandlers() Handlers[domain.Account] {
	return Handlers[domain.Account]{
		Domain: domain.Accounts,
		GetID:  func(a domain.Account) int64 { return a.ID },
		SetID:  func(a *domain.Account, id int64) { a.ID = id },
	}
}
