package post

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-repository-switch/domain"
	"github.com/goliatone/go-repository-switch/repository/memory"
	"github.com/goliatone/go-repository-switch/repository/repositorytest"
)

func strPtr(s string) *string { return &s }

func TestCreateRejectsEmptyTitleBeforeRepositoryCall(t *testing.T) {
	spy := repositorytest.NewSpy[domain.Post](memory.NewPosts())
	uc := NewCreateUseCase(spy)

	_, err := uc.Execute(context.Background(), domain.CreatePostDTO{AccountID: 1, Title: "", Body: "text"})

	var derr *domain.Error
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, domain.CategoryValidation, derr.Category)
	assert.Equal(t, "title", derr.Field)
	assert.Zero(t, spy.Calls())
}

func TestValidateCreate(t *testing.T) {
	tests := []struct {
		name  string
		dto   domain.CreatePostDTO
		field string
	}{
		{name: "valid", dto: domain.CreatePostDTO{AccountID: 1, Title: "t", Body: "b"}},
		{name: "missing account", dto: domain.CreatePostDTO{Title: "t", Body: "b"}, field: "accountId"},
		{name: "missing body", dto: domain.CreatePostDTO{AccountID: 1, Title: "t"}, field: "body"},
		{name: "title too long", dto: domain.CreatePostDTO{AccountID: 1, Title: strings.Repeat("x", 201), Body: "b"}, field: "title"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCreate(tt.dto)
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			var derr *domain.Error
			require.ErrorAs(t, err, &derr)
			assert.Contains(t, derr.Fields, tt.field)
		})
	}
}

func TestCreate(t *testing.T) {
	uc := NewCreateUseCase(memory.NewPosts())

	created, err := uc.Execute(context.Background(), domain.CreatePostDTO{AccountID: 2, Title: "hello", Body: "world"})
	require.NoError(t, err)
	assert.Equal(t, int64(4), created.ID)
	assert.Equal(t, "hello", created.Title)
}

func TestCreateClassifiesRepositoryFailure(t *testing.T) {
	spy := repositorytest.NewSpy[domain.Post](memory.NewPosts())
	spy.Err = errors.New("quota exceeded")

	_, err := NewCreateUseCase(spy).Execute(context.Background(), domain.CreatePostDTO{AccountID: 1, Title: "t", Body: "b"})
	assert.ErrorIs(t, err, domain.ErrRepository)
}

func TestUpdatePatchesOnlyGivenFields(t *testing.T) {
	ctx := context.Background()
	store := memory.NewPosts()
	uc := NewUpdateUseCase(store)

	updated, err := uc.Execute(ctx, domain.UpdatePostDTO{ID: 1, Title: strPtr("Renamed")})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
	assert.Equal(t, "Served from the in-memory store.", updated.Body)

	_, err = uc.Execute(ctx, domain.UpdatePostDTO{ID: 1, Title: strPtr("")})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = uc.Execute(ctx, domain.UpdatePostDTO{ID: 77, Body: strPtr("x")})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
