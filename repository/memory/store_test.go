package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-repository-switch/domain"
	"github.com/goliatone/go-repository-switch/repository"
	"github.com/goliatone/go-repository-switch/repository/repositorytest"
)

func TestStoreContract(t *testing.T) {
	repositorytest.PostContract(t, func(*testing.T) repository.Repository[domain.Post] {
		return New(repository.PostHandlers())
	})
}

func TestSeededStores(t *testing.T) {
	ctx := context.Background()

	posts := NewPosts()
	assert.Equal(t, len(SeedPosts()), posts.Len())

	created, err := posts.Create(ctx, domain.Post{AccountID: 1, Title: "next", Body: "x"})
	require.NoError(t, err)
	assert.Equal(t, int64(len(SeedPosts())+1), created.ID)

	users, err := NewUsers().FindAll(ctx, domain.ForAccount(1))
	require.NoError(t, err)
	assert.Len(t, users, 2)

	accounts, err := NewAccounts().FindAll(ctx, domain.Scope{})
	require.NoError(t, err)
	assert.Len(t, accounts, 2)
}

func TestFindAllReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewPosts()

	list, err := store.FindAll(ctx, domain.Scope{})
	require.NoError(t, err)
	list[0].Title = "mutated"

	found, err := store.FindByID(ctx, list[0].ID)
	require.NoError(t, err)
	assert.NotEqual(t, "mutated", found.Title)
}

func TestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewPosts().FindAll(ctx, domain.Scope{})
	assert.ErrorIs(t, err, context.Canceled)
}
