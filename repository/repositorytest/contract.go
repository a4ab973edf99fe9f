// Package repositorytest holds the behavior every repository implementation
// must share, as a reusable test suite.
package repositorytest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-repository-switch/domain"
	"github.com/goliatone/go-repository-switch/repository"
)

// PostContract runs the CRUD contract against repositories built by factory.
// Every call to factory must return an empty repository.
func PostContract(t *testing.T, factory func(t *testing.T) repository.Repository[domain.Post]) {
	t.Helper()
	ctx := context.Background()

	t.Run("empty collection", func(t *testing.T) {
		repo := factory(t)
		posts, err := repo.FindAll(ctx, domain.Scope{})
		require.NoError(t, err)
		assert.Empty(t, posts)
	})

	t.Run("create assigns ids", func(t *testing.T) {
		repo := factory(t)
		first, err := repo.Create(ctx, domain.Post{AccountID: 1, Title: "first", Body: "a"})
		require.NoError(t, err)
		second, err := repo.Create(ctx, domain.Post{AccountID: 2, Title: "second", Body: "b"})
		require.NoError(t, err)

		assert.Positive(t, first.ID)
		assert.Greater(t, second.ID, first.ID)
		assert.Equal(t, "second", second.Title)
	})

	t.Run("find by id", func(t *testing.T) {
		repo := factory(t)
		created, err := repo.Create(ctx, domain.Post{AccountID: 1, Title: "find me", Body: "x"})
		require.NoError(t, err)

		found, err := repo.FindByID(ctx, created.ID)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, created, *found)

		missing, err := repo.FindByID(ctx, created.ID+1000)
		require.NoError(t, err)
		assert.Nil(t, missing)
	})

	t.Run("find all scoped", func(t *testing.T) {
		repo := factory(t)
		for _, p := range []domain.Post{
			{AccountID: 1, Title: "a1", Body: "x"},
			{AccountID: 2, Title: "b1", Body: "x"},
			{AccountID: 1, Title: "a2", Body: "x"},
		} {
			_, err := repo.Create(ctx, p)
			require.NoError(t, err)
		}

		all, err := repo.FindAll(ctx, domain.Scope{})
		require.NoError(t, err)
		assert.Len(t, all, 3)

		scoped, err := repo.FindAll(ctx, domain.ForAccount(1))
		require.NoError(t, err)
		require.Len(t, scoped, 2)
		for _, p := range scoped {
			assert.Equal(t, int64(1), p.AccountID)
		}
	})

	t.Run("update", func(t *testing.T) {
		repo := factory(t)
		created, err := repo.Create(ctx, domain.Post{AccountID: 1, Title: "old", Body: "x"})
		require.NoError(t, err)

		created.Title = "new"
		updated, err := repo.Update(ctx, created)
		require.NoError(t, err)
		assert.Equal(t, "new", updated.Title)

		found, err := repo.FindByID(ctx, created.ID)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, "new", found.Title)
	})

	t.Run("update missing is not found", func(t *testing.T) {
		repo := factory(t)
		_, err := repo.Update(ctx, domain.Post{ID: 999, AccountID: 1, Title: "ghost", Body: "x"})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		repo := factory(t)
		created, err := repo.Create(ctx, domain.Post{AccountID: 1, Title: "bye", Body: "x"})
		require.NoError(t, err)

		require.NoError(t, repo.Delete(ctx, created.ID))
		found, err := repo.FindByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Nil(t, found)
	})

	t.Run("delete missing is not found", func(t *testing.T) {
		repo := factory(t)
		assert.ErrorIs(t, repo.Delete(ctx, 999), domain.ErrNotFound)
	})

	t.Run("clear all scoped", func(t *testing.T) {
		repo := factory(t)
		for _, p := range []domain.Post{
			{AccountID: 1, Title: "a", Body: "x"},
			{AccountID: 2, Title: "b", Body: "x"},
		} {
			_, err := repo.Create(ctx, p)
			require.NoError(t, err)
		}

		require.NoError(t, repo.ClearAll(ctx, domain.ForAccount(1)))
		left, err := repo.FindAll(ctx, domain.Scope{})
		require.NoError(t, err)
		require.Len(t, left, 1)
		assert.Equal(t, int64(2), left[0].AccountID)

		require.NoError(t, repo.ClearAll(ctx, domain.Scope{}))
		left, err = repo.FindAll(ctx, domain.Scope{})
		require.NoError(t, err)
		assert.Empty(t, left)
	})
}
