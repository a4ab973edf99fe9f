package usecase

import (
	"context"
	"errors"
	"testing"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-repository-switch/domain"
	"github.com/goliatone/go-repository-switch/repository/memory"
	"github.com/goliatone/go-repository-switch/repository/repositorytest"
)

func TestFromValidation(t *testing.T) {
	assert.NoError(t, FromValidation(nil))

	err := FromValidation(validation.Errors{
		"title": errors.New("title is required"),
		"body":  errors.New("body is required"),
	})
	var derr *domain.Error
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, domain.CategoryValidation, derr.Category)
	assert.Equal(t, "body", derr.Field)
	assert.Len(t, derr.Fields, 2)

	err = FromValidation(errors.New("plain"))
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestValidateID(t *testing.T) {
	assert.NoError(t, ValidateID(1))
	for _, id := range []int64{0, -4} {
		err := ValidateID(id)
		var derr *domain.Error
		require.ErrorAs(t, err, &derr, "id %d", id)
		assert.Equal(t, "id", derr.Field)
	}
}

func TestValidateScope(t *testing.T) {
	assert.NoError(t, ValidateScope(domain.Scope{}))
	assert.NoError(t, ValidateScope(domain.ForAccount(2)))
	assert.ErrorIs(t, ValidateScope(domain.ForAccount(-1)), domain.ErrValidation)
}

func TestListUseCase(t *testing.T) {
	ctx := context.Background()
	spy := repositorytest.NewSpy[domain.Post](memory.NewPosts())
	uc := NewListUseCase[domain.Post](spy)

	posts, err := uc.Execute(ctx, domain.ForAccount(1))
	require.NoError(t, err)
	assert.Len(t, posts, 2)

	_, err = uc.Execute(ctx, domain.ForAccount(-1))
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, 1, spy.Calls())

	spy.Err = errors.New("disk on fire")
	_, err = uc.Execute(ctx, domain.Scope{})
	assert.ErrorIs(t, err, domain.ErrRepository)
}

func TestGetUseCase(t *testing.T) {
	ctx := context.Background()
	uc := NewGetUseCase[domain.Post](domain.Posts, memory.NewPosts())

	post, err := uc.Execute(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), post.ID)

	_, err = uc.Execute(ctx, 404)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = uc.Execute(ctx, 0)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestDeleteAndClearUseCases(t *testing.T) {
	ctx := context.Background()
	store := memory.NewUsers()

	del := NewDeleteUseCase[domain.User](store)
	require.NoError(t, del.Execute(ctx, 1))
	assert.ErrorIs(t, del.Execute(ctx, 1), domain.ErrNotFound)
	assert.ErrorIs(t, del.Execute(ctx, 0), domain.ErrValidation)

	clearAll := NewClearAllUseCase[domain.User](store)
	require.NoError(t, clearAll.Execute(ctx, domain.ForAccount(2)))
	left, err := store.FindAll(ctx, domain.Scope{})
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, int64(1), left[0].AccountID)
}

func TestLoad(t *testing.T) {
	ctx := context.Background()
	store := memory.NewAccounts()

	acc, err := Load[domain.Account](ctx, domain.Accounts, store, 2)
	require.NoError(t, err)
	assert.Equal(t, "Globex", acc.Name)

	_, err = Load[domain.Account](ctx, domain.Accounts, store, 9)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
