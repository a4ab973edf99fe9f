// Package usecase holds the operations shared by every domain (list, get,
// delete, clear-all) and the helpers the per-domain packages build on.
// Input is validated before any repository call; repository failures are
// reclassified into the domain error taxonomy.
package usecase

import (
	"context"
	"errors"
	"sort"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-repository-switch/domain"
	"github.com/goliatone/go-repository-switch/repository"
)

// FromValidation converts ozzo validation errors into a *domain.Error. The
// first failing field (alphabetically) becomes Field, all of them land in
// Fields.
func FromValidation(err error) error {
	if err == nil {
		return nil
	}
	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		var one validation.Error
		if errors.As(err, &one) {
			return domain.NewValidationError("", one.Error())
		}
		return domain.NewValidationError("", err.Error())
	}

	fields := make(map[string]string, len(verrs))
	names := make([]string, 0, len(verrs))
	for name, fe := range verrs {
		fields[name] = fe.Error()
		names = append(names, name)
	}
	sort.Strings(names)

	out := domain.NewValidationError(names[0], fields[names[0]])
	out.Fields = fields
	return out
}

// ValidateID checks an entity id.
func ValidateID(id int64) error {
	return FromValidation(validation.Errors{
		"id": validation.Validate(id, validation.Required, validation.Min(int64(1))),
	}.Filter())
}

// ValidateScope checks an optional owner scope. Zero means unscoped.
func ValidateScope(scope domain.Scope) error {
	return FromValidation(validation.Errors{
		"accountId": validation.Validate(scope.AccountID, validation.Min(int64(0))),
	}.Filter())
}

// ListUseCase returns every record in a scope.
type ListUseCase[T any] struct {
	repo repository.Repository[T]
}

func NewListUseCase[T any](repo repository.Repository[T]) *ListUseCase[T] {
	return &ListUseCase[T]{repo: repo}
}

func (uc *ListUseCase[T]) Execute(ctx context.Context, scope domain.Scope) ([]T, error) {
	if err := ValidateScope(scope); err != nil {
		return nil, err
	}
	records, err := uc.repo.FindAll(ctx, scope)
	if err != nil {
		return nil, domain.Classify("list", err)
	}
	return records, nil
}

// GetUseCase returns one record or a not-found error.
type GetUseCase[T any] struct {
	repo repository.Repository[T]
	d    domain.Domain
}

func NewGetUseCase[T any](d domain.Domain, repo repository.Repository[T]) *GetUseCase[T] {
	return &GetUseCase[T]{repo: repo, d: d}
}

func (uc *GetUseCase[T]) Execute(ctx context.Context, id int64) (*T, error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}
	record, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, domain.Classify("get", err)
	}
	if record == nil {
		return nil, domain.NewNotFoundError(uc.d, id)
	}
	return record, nil
}

// DeleteUseCase removes a record by id.
type DeleteUseCase[T any] struct {
	repo repository.Repository[T]
}

func NewDeleteUseCase[T any](repo repository.Repository[T]) *DeleteUseCase[T] {
	return &DeleteUseCase[T]{repo: repo}
}

func (uc *DeleteUseCase[T]) Execute(ctx context.Context, id int64) error {
	if err := ValidateID(id); err != nil {
		return err
	}
	return domain.Classify("delete", uc.repo.Delete(ctx, id))
}

// ClearAllUseCase removes every record in a scope.
type ClearAllUseCase[T any] struct {
	repo repository.Repository[T]
}

func NewClearAllUseCase[T any](repo repository.Repository[T]) *ClearAllUseCase[T] {
	return &ClearAllUseCase[T]{repo: repo}
}

func (uc *ClearAllUseCase[T]) Execute(ctx context.Context, scope domain.Scope) error {
	if err := ValidateScope(scope); err != nil {
		return err
	}
	return domain.Classify("clear", uc.repo.ClearAll(ctx, scope))
}

// Load fetches the record a patch applies to, turning absence into a
// not-found error.
func Load[T any](ctx context.Context, d domain.Domain, repo repository.Repository[T], id int64) (T, error) {
	var zero T
	record, err := repo.FindByID(ctx, id)
	if err != nil {
		return zero, domain.Classify("load", err)
	}
	if record == nil {
		return zero, domain.NewNotFoundError(d, id)
	}
	return *record, nil
}
