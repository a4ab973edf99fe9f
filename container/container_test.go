package container

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-repository-switch/domain"
	"github.com/goliatone/go-repository-switch/repository"
	"github.com/goliatone/go-repository-switch/repository/local"
	"github.com/goliatone/go-repository-switch/repository/memory"
)

func newPostsContainer(initial domain.RepositoryType) (*Posts, *int) {
	builds := new(int)
	c := NewPosts(initial)
	c.Register(domain.Memory, func(context.Context) (repository.Repository[domain.Post], error) {
		*builds++
		return memory.NewPosts(), nil
	})
	c.Register(domain.Local, func(context.Context) (repository.Repository[domain.Post], error) {
		*builds++
		return local.New(local.NewMapBlobs(), repository.PostHandlers()), nil
	})
	return c, builds
}

func TestSetRepositoryTypeOnlyResetsOnChange(t *testing.T) {
	ctx := context.Background()
	c, builds := newPostsContainer(domain.Memory)

	first, err := c.ListPostsUseCase(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, *builds)

	changed, err := c.SetRepositoryType(domain.Memory)
	require.NoError(t, err)
	assert.False(t, changed)

	again, err := c.ListPostsUseCase(ctx)
	require.NoError(t, err)
	assert.Same(t, first, again)
	assert.Equal(t, 1, *builds)

	changed, err = c.SetRepositoryType(domain.Local)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, domain.Local, c.RepositoryType())

	switched, err := c.ListPostsUseCase(ctx)
	require.NoError(t, err)
	assert.NotSame(t, first, switched)
	assert.Equal(t, 2, *builds)

	posts, err := switched.Execute(ctx, domain.Scope{})
	require.NoError(t, err)
	assert.Empty(t, posts, "local store starts empty, memory seed must not leak")
}

func TestUseCasesShareOneRepository(t *testing.T) {
	ctx := context.Background()
	c, builds := newPostsContainer(domain.Memory)

	_, err := c.ListPostsUseCase(ctx)
	require.NoError(t, err)
	_, err = c.CreatePostUseCase(ctx)
	require.NoError(t, err)
	_, err = c.ClearPostsUseCase(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, *builds)
}

func TestSetUnknownTypeIsValidationError(t *testing.T) {
	c, _ := newPostsContainer(domain.Memory)

	changed, err := c.SetRepositoryType("carrier_pigeon")
	assert.False(t, changed)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, domain.Memory, c.RepositoryType())
}

func TestFactoryErrorIsRepositoryError(t *testing.T) {
	c := NewUsers(domain.Remote)
	boom := errors.New("dial tcp: refused")
	c.Register(domain.Remote, func(context.Context) (repository.Repository[domain.User], error) {
		return nil, boom
	})

	_, err := c.ListUsersUseCase(context.Background())
	assert.ErrorIs(t, err, domain.ErrRepository)
	assert.ErrorIs(t, err, boom)
}

func TestMissingFactory(t *testing.T) {
	c := NewAccounts(domain.Database)

	_, err := c.Repository(context.Background())
	assert.ErrorIs(t, err, domain.ErrRepository)
}

func TestRegisterActiveTagResets(t *testing.T) {
	ctx := context.Background()
	c, builds := newPostsContainer(domain.Memory)

	_, err := c.Repository(ctx)
	require.NoError(t, err)
	c.Register(domain.Memory, func(context.Context) (repository.Repository[domain.Post], error) {
		*builds++
		return memory.New(repository.PostHandlers()), nil
	})
	_, err = c.Repository(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, *builds)
}

func TestTypesAndSupports(t *testing.T) {
	c, _ := newPostsContainer(domain.Memory)

	assert.Equal(t, []domain.RepositoryType{domain.Local, domain.Memory}, c.Types())
	assert.True(t, c.Supports(domain.Local))
	assert.False(t, c.Supports(domain.Remote))
	assert.Equal(t, domain.Posts, c.Domain())
}
