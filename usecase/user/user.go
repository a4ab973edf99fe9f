// Package user holds the user specific use-cases.
package user

import (
	"context"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/goliatone/go-repository-switch/domain"
	"github.com/goliatone/go-repository-switch/repository"
	"github.com/goliatone/go-repository-switch/usecase"
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

func usernameRules() []validation.Rule {
	return []validation.Rule{
		validation.Length(3, 32),
		validation.Match(usernamePattern).Error("may only contain letters, digits, dots, dashes and underscores"),
	}
}

// ValidateCreate checks a create user input.
func ValidateCreate(dto domain.CreateUserDTO) error {
	return usecase.FromValidation(validation.ValidateStruct(&dto,
		validation.Field(&dto.AccountID, validation.Required, validation.Min(int64(1))),
		validation.Field(&dto.Name, validation.Required.Error("name is required"), validation.Length(1, 100)),
		validation.Field(&dto.Username, append([]validation.Rule{validation.Required.Error("username is required")}, usernameRules()...)...),
		validation.Field(&dto.Email, validation.Required.Error("email is required"), is.EmailFormat),
	))
}

// ValidateUpdate checks a user patch.
func ValidateUpdate(dto domain.UpdateUserDTO) error {
	return usecase.FromValidation(validation.ValidateStruct(&dto,
		validation.Field(&dto.ID, validation.Required, validation.Min(int64(1))),
		validation.Field(&dto.Name, validation.NilOrNotEmpty.Error("name is required"), validation.Length(1, 100)),
		validation.Field(&dto.Username, append([]validation.Rule{validation.NilOrNotEmpty.Error("username is required")}, usernameRules()...)...),
		validation.Field(&dto.Email, validation.NilOrNotEmpty.Error("email is required"), is.EmailFormat),
	))
}

// CreateUseCase creates a user.
type CreateUseCase struct {
	repo repository.Repository[domain.User]
}

func NewCreateUseCase(repo repository.Repository[domain.User]) *CreateUseCase {
	return &CreateUseCase{repo: repo}
}

func (uc *CreateUseCase) Execute(ctx context.Context, dto domain.CreateUserDTO) (domain.User, error) {
	if err := ValidateCreate(dto); err != nil {
		return domain.User{}, err
	}
	created, err := uc.repo.Create(ctx, domain.User{
		AccountID: dto.AccountID,
		Name:      dto.Name,
		Username:  dto.Username,
		Email:     dto.Email,
	})
	if err != nil {
		return domain.User{}, domain.Classify("create user", err)
	}
	return created, nil
}

// UpdateUseCase loads a user, merges the patch and stores the result.
type UpdateUseCase struct {
	repo repository.Repository[domain.User]
}

func NewUpdateUseCase(repo repository.Repository[domain.User]) *UpdateUseCase {
	return &UpdateUseCase{repo: repo}
}

func (uc *UpdateUseCase) Execute(ctx context.Context, dto domain.UpdateUserDTO) (domain.User, error) {
	if err := ValidateUpdate(dto); err != nil {
		return domain.User{}, err
	}
	current, err := usecase.Load(ctx, domain.Users, uc.repo, dto.ID)
	if err != nil {
		return domain.User{}, err
	}
	updated, err := uc.repo.Update(ctx, dto.Apply(current))
	if err != nil {
		return domain.User{}, domain.Classify("update user", err)
	}
	return updated, nil
}
