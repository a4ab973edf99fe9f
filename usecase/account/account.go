// Package account holds the account specific use-cases.
package account

import (
	"context"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/goliatone/go-repository-switch/domain"
	"github.com/goliatone/go-repository-switch/repository"
	"github.com/goliatone/go-repository-switch/usecase"
)

// ValidateCreate checks a create account input.
func ValidateCreate(dto domain.CreateAccountDTO) error {
	return usecase.FromValidation(validation.ValidateStruct(&dto,
		validation.Field(&dto.Name, validation.Required.Error("name is required"), validation.Length(1, 100)),
		validation.Field(&dto.Email, validation.Required.Error("email is required"), is.EmailFormat),
	))
}

// ValidateUpdate checks an account patch.
func ValidateUpdate(dto domain.UpdateAccountDTO) error {
	return usecase.FromValidation(validation.ValidateStruct(&dto,
		validation.Field(&dto.ID, validation.Required, validation.Min(int64(1))),
		validation.Field(&dto.Name, validation.NilOrNotEmpty.Error("name is required"), validation.Length(1, 100)),
		validation.Field(&dto.Email, validation.NilOrNotEmpty.Error("email is required"), is.EmailFormat),
	))
}

// CreateUseCase creates an account.
type CreateUseCase struct {
	repo repository.Repository[domain.Account]
	now  func() time.Time
}

func NewCreateUseCase(repo repository.Repository[domain.Account]) *CreateUseCase {
	return &CreateUseCase{repo: repo, now: time.Now}
}

func (uc *CreateUseCase) Execute(ctx context.Context, dto domain.CreateAccountDTO) (domain.Account, error) {
	if err := ValidateCreate(dto); err != nil {
		return domain.Account{}, err
	}
	created, err := uc.repo.Create(ctx, domain.Account{
		Name:      dto.Name,
		Email:     dto.Email,
		CreatedAt: uc.now().UTC(),
	})
	if err != nil {
		return domain.Account{}, domain.Classify("create account", err)
	}
	return created, nil
}

// UpdateUseCase loads an account, merges the patch and stores the result.
type UpdateUseCase struct {
	repo repository.Repository[domain.Account]
}

func NewUpdateUseCase(repo repository.Repository[domain.Account]) *UpdateUseCase {
	return &UpdateUseCase{repo: repo}
}

func (uc *UpdateUseCase) Execute(ctx context.Context, dto domain.UpdateAccountDTO) (domain.Account, error) {
	if err := ValidateUpdate(dto); err != nil {
		return domain.Account{}, err
	}
	current, err := usecase.Load(ctx, domain.Accounts, uc.repo, dto.ID)
	if err != nil {
		return domain.Account{}, err
	}
	updated, err := uc.repo.Update(ctx, dto.Apply(current))
	if err != nil {
		return domain.Account{}, domain.Classify("update account", err)
	}
	return updated, nil
}
