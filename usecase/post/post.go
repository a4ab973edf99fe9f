// Package post holds the post specific use-cases. Listing, lookup, delete and
// clear-all are the generic ones from package usecase.
package post

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-repository-switch/domain"
	"github.com/goliatone/go-repository-switch/repository"
	"github.com/goliatone/go-repository-switch/usecase"
)

const maxTitleLength = 200

func titleRules() []validation.Rule {
	return []validation.Rule{
		validation.Required.Error("title is required"),
		validation.Length(1, maxTitleLength),
	}
}

// ValidateCreate checks a create post input.
func ValidateCreate(dto domain.CreatePostDTO) error {
	return usecase.FromValidation(validation.ValidateStruct(&dto,
		validation.Field(&dto.AccountID, validation.Required, validation.Min(int64(1))),
		validation.Field(&dto.Title, titleRules()...),
		validation.Field(&dto.Body, validation.Required.Error("body is required")),
	))
}

// ValidateUpdate checks a post patch.
func ValidateUpdate(dto domain.UpdatePostDTO) error {
	return usecase.FromValidation(validation.ValidateStruct(&dto,
		validation.Field(&dto.ID, validation.Required, validation.Min(int64(1))),
		validation.Field(&dto.Title, validation.NilOrNotEmpty.Error("title is required"), validation.Length(1, maxTitleLength)),
		validation.Field(&dto.Body, validation.NilOrNotEmpty.Error("body is required")),
	))
}

// CreateUseCase creates a post.
type CreateUseCase struct {
	repo repository.Repository[domain.Post]
}

func NewCreateUseCase(repo repository.Repository[domain.Post]) *CreateUseCase {
	return &CreateUseCase{repo: repo}
}

func (uc *CreateUseCase) Execute(ctx context.Context, dto domain.CreatePostDTO) (domain.Post, error) {
	if err := ValidateCreate(dto); err != nil {
		return domain.Post{}, err
	}
	created, err := uc.repo.Create(ctx, domain.Post{
		AccountID: dto.AccountID,
		Title:     dto.Title,
		Body:      dto.Body,
	})
	if err != nil {
		return domain.Post{}, domain.Classify("create post", err)
	}
	return created, nil
}

// UpdateUseCase loads a post, merges the patch and stores the result.
type UpdateUseCase struct {
	repo repository.Repository[domain.Post]
}

func NewUpdateUseCase(repo repository.Repository[domain.Post]) *UpdateUseCase {
	return &UpdateUseCase{repo: repo}
}

func (uc *UpdateUseCase) Execute(ctx context.Context, dto domain.UpdatePostDTO) (domain.Post, error) {
	if err := ValidateUpdate(dto); err != nil {
		return domain.Post{}, err
	}
	current, err := usecase.Load(ctx, domain.Posts, uc.repo, dto.ID)
	if err != nil {
		return domain.Post{}, err
	}
	updated, err := uc.repo.Update(ctx, dto.Apply(current))
	if err != nil {
		return domain.Post{}, domain.Classify("update post", err)
	}
	return updated, nil
}
