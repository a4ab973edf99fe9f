package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-repository-switch/cache"
	"github.com/goliatone/go-repository-switch/container"
	"github.com/goliatone/go-repository-switch/coordinator"
	"github.com/goliatone/go-repository-switch/domain"
	"github.com/goliatone/go-repository-switch/notify"
	"github.com/goliatone/go-repository-switch/repository"
	"github.com/goliatone/go-repository-switch/repository/local"
	"github.com/goliatone/go-repository-switch/repository/memory"
	"github.com/goliatone/go-repository-switch/repository/repositorytest"
)

// gatedPosts blocks Create until released so tests can observe the cache
// while the write is in flight.
type gatedPosts struct {
	*memory.Store[domain.Post]
	entered chan struct{}
	release chan struct{}
}

func (g *gatedPosts) Create(ctx context.Context, p domain.Post) (domain.Post, error) {
	close(g.entered)
	<-g.release
	return g.Store.Create(ctx, p)
}

type fixture struct {
	coord    *coordinator.Coordinator
	recorder *notify.Recorder
	posts    *Posts
	users    *Users
	accounts *Accounts
	postRepo *repositorytest.Spy[domain.Post]
}

func newFixture(t *testing.T, postRepo repository.Repository[domain.Post]) *fixture {
	t.Helper()
	svc, err := cache.NewCacheService(cache.DefaultConfig())
	require.NoError(t, err)
	rec := notify.NewRecorder(20)
	coord := coordinator.New(svc, coordinator.Options{Notifier: rec})

	spy := repositorytest.NewSpy(postRepo)
	pc := container.NewPosts(domain.Memory)
	pc.Register(domain.Memory, func(context.Context) (repository.Repository[domain.Post], error) {
		return spy, nil
	})
	pc.Register(domain.Local, func(context.Context) (repository.Repository[domain.Post], error) {
		return local.New(local.NewMapBlobs(), repository.PostHandlers()), nil
	})

	uc := container.NewUsers(domain.Memory)
	users := memory.NewUsers()
	uc.Register(domain.Memory, func(context.Context) (repository.Repository[domain.User], error) {
		return users, nil
	})

	ac := container.NewAccounts(domain.Memory)
	accounts := memory.NewAccounts()
	ac.Register(domain.Memory, func(context.Context) (repository.Repository[domain.Account], error) {
		return accounts, nil
	})

	return &fixture{
		coord:    coord,
		recorder: rec,
		posts:    NewPosts(pc, coord, Options{}),
		users:    NewUsers(uc, coord, Options{}),
		accounts: NewAccounts(ac, coord, Options{}),
		postRepo: spy,
	}
}

func cachedPosts(t *testing.T, f *fixture, accountID int64) []domain.Post {
	t.Helper()
	list, ok := coordinator.Peek[[]domain.Post](context.Background(), f.coord,
		coordinator.ListKey(domain.Posts, domain.ForAccount(accountID)))
	require.True(t, ok)
	return list
}

func TestCreateIsVisibleBeforeTheWriteResolves(t *testing.T) {
	ctx := context.Background()
	gate := &gatedPosts{Store: memory.NewPosts(), entered: make(chan struct{}), release: make(chan struct{})}
	f := newFixture(t, gate)

	before, err := f.posts.List(ctx, 0)
	require.NoError(t, err)
	n := len(before)

	done := make(chan error, 1)
	go func() {
		_, err := f.posts.Create(ctx, domain.CreatePostDTO{AccountID: 1, Title: "draft", Body: "text"})
		done <- err
	}()

	<-gate.entered
	during := cachedPosts(t, f, 0)
	require.Len(t, during, n+1)
	assert.Negative(t, during[n].ID)
	assert.Equal(t, "draft", during[n].Title)

	close(gate.release)
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("create did not settle")
	}

	after, err := f.posts.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, after, n+1)
	assert.Positive(t, after[n].ID)

	last, ok := f.recorder.Last()
	require.True(t, ok)
	assert.Equal(t, notify.LevelSuccess, last.Level)
}

func TestFailedCreateLeavesExactlyN(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, memory.NewPosts())

	before, err := f.posts.List(ctx, 0)
	require.NoError(t, err)

	f.postRepo.Err = errors.New("remote unavailable")
	_, err = f.posts.Create(ctx, domain.CreatePostDTO{AccountID: 1, Title: "draft", Body: "text"})
	assert.ErrorIs(t, err, domain.ErrRepository)

	assert.Len(t, cachedPosts(t, f, 0), len(before))
	last, ok := f.recorder.Last()
	require.True(t, ok)
	assert.Equal(t, notify.LevelError, last.Level)
}

func TestInvalidCreateNeverTouchesCacheOrRepository(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, memory.NewPosts())

	before, err := f.posts.List(ctx, 0)
	require.NoError(t, err)
	calls := f.postRepo.Calls()

	_, err = f.posts.Create(ctx, domain.CreatePostDTO{AccountID: 1, Title: "", Body: "text"})
	var derr *domain.Error
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, "title", derr.Field)
	assert.Equal(t, calls, f.postRepo.Calls())
	assert.Equal(t, before, cachedPosts(t, f, 0))

	last, ok := f.recorder.Last()
	require.True(t, ok)
	assert.Equal(t, notify.LevelError, last.Level)
}

func TestFailedDeleteRestoresItem(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, memory.NewPosts())

	before, err := f.posts.List(ctx, 0)
	require.NoError(t, err)

	f.postRepo.Err = errors.New("timeout")
	require.Error(t, f.posts.Delete(ctx, before[0].ID))
	assert.Equal(t, before, cachedPosts(t, f, 0))
}

func TestDeleteMissingIsNotFound(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, memory.NewPosts())

	_, err := f.posts.List(ctx, 0)
	require.NoError(t, err)
	assert.ErrorIs(t, f.posts.Delete(ctx, 999), domain.ErrNotFound)
}

func TestUpdatePatchesScopedAndUnscopedLists(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, memory.NewPosts())

	_, err := f.posts.List(ctx, 0)
	require.NoError(t, err)
	_, err = f.posts.List(ctx, 1)
	require.NoError(t, err)

	title := "patched"
	updated, err := f.posts.Update(ctx, domain.UpdatePostDTO{ID: 1, Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "patched", updated.Title)

	// confirm invalidated both lists, the refetch returns server state
	scoped, err := f.posts.List(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "patched", scoped[0].Title)
	all, err := f.posts.List(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, "patched", all[0].Title)
}

func TestGet(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, memory.NewPosts())

	p, err := f.posts.Get(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), p.ID)

	_, err = f.posts.Get(ctx, 404)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestClearAllInvalidates(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, memory.NewPosts())

	_, err := f.posts.List(ctx, 0)
	require.NoError(t, err)
	require.NoError(t, f.posts.ClearAll(ctx, 1))
	assert.Equal(t, coordinator.Stale, f.coord.State(ctx, coordinator.ListKey(domain.Posts, domain.Scope{})))

	left, err := f.posts.List(ctx, 0)
	require.NoError(t, err)
	for _, p := range left {
		assert.NotEqual(t, int64(1), p.AccountID)
	}
}

func TestUsersAndAccounts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, memory.NewPosts())

	users, err := f.users.List(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, users, 2)

	created, err := f.users.Create(ctx, domain.CreateUserDTO{AccountID: 2, Name: "Kurtis", Username: "kurtis", Email: "kurtis@globex.test"})
	require.NoError(t, err)
	assert.Positive(t, created.ID)

	accounts, err := f.accounts.List(ctx)
	require.NoError(t, err)
	assert.Len(t, accounts, 2)

	_, err = f.accounts.Create(ctx, domain.CreateAccountDTO{Name: "", Email: "x@y.test"})
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, domain.Memory, f.accounts.RepositoryType())
}

func TestListAfterSwitchNeverReturnsOldSource(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, memory.NewPosts())

	before, err := f.posts.List(ctx, 0)
	require.NoError(t, err)
	require.NotEmpty(t, before)

	changed, err := f.posts.c.SetRepositoryType(domain.Local)
	require.NoError(t, err)
	require.True(t, changed)
	require.NoError(t, f.coord.OnRepositoryTypeChanged(ctx, domain.Posts, domain.Local))

	after, err := f.posts.List(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, after)
	assert.Equal(t, domain.Local, f.posts.RepositoryType())
}
