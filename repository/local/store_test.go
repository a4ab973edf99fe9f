package local

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-repository-switch/domain"
	"github.com/goliatone/go-repository-switch/repository"
	"github.com/goliatone/go-repository-switch/repository/repositorytest"
)

func TestStoreContract_MapBlobs(t *testing.T) {
	repositorytest.PostContract(t, func(*testing.T) repository.Repository[domain.Post] {
		return New(NewMapBlobs(), repository.PostHandlers())
	})
}

func TestStoreContract_FileBlobs(t *testing.T) {
	repositorytest.PostContract(t, func(t *testing.T) repository.Repository[domain.Post] {
		blobs, err := NewFileBlobs(t.TempDir())
		require.NoError(t, err)
		return New(blobs, repository.PostHandlers())
	})
}

func seededUsers(t *testing.T, blobs BlobStore) *Store[domain.User] {
	t.Helper()
	store := New(blobs, repository.UserHandlers())
	require.NoError(t, store.Seed(context.Background(), []domain.User{
		{ID: 1, AccountID: 1, Name: "One", Username: "one", Email: "one@test.dev"},
		{ID: 2, AccountID: 1, Name: "Two", Username: "two", Email: "two@test.dev"},
		{ID: 3, AccountID: 2, Name: "Three", Username: "three", Email: "three@test.dev"},
		{ID: 4, AccountID: 2, Name: "Four", Username: "four", Email: "four@test.dev"},
		{ID: 5, AccountID: 2, Name: "Five", Username: "five", Email: "five@test.dev"},
	}))
	return store
}

func TestDeleteMissingUser(t *testing.T) {
	ctx := context.Background()
	store := seededUsers(t, NewMapBlobs())

	err := store.Delete(ctx, 999)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	users, err := store.FindAll(ctx, domain.Scope{})
	require.NoError(t, err)
	assert.Len(t, users, 5)
}

func TestCreateUsesMaxPlusOne(t *testing.T) {
	ctx := context.Background()
	store := seededUsers(t, NewMapBlobs())

	require.NoError(t, store.Delete(ctx, 2))
	created, err := store.Create(ctx, domain.User{AccountID: 1, Name: "Six", Username: "six", Email: "six@test.dev"})
	require.NoError(t, err)
	assert.Equal(t, int64(6), created.ID)
}

func TestCorruptBlobReadsAsEmpty(t *testing.T) {
	ctx := context.Background()
	blobs := NewMapBlobs()
	require.NoError(t, blobs.Put(ctx, StorageKey(domain.Users), []byte("{not json")))

	store := New(blobs, repository.UserHandlers())
	users, err := store.FindAll(ctx, domain.Scope{})
	require.NoError(t, err)
	assert.Empty(t, users)

	// the next write replaces the corrupt blob
	_, err = store.Create(ctx, domain.User{AccountID: 1, Name: "A", Username: "a", Email: "a@test.dev"})
	require.NoError(t, err)
	users, err = store.FindAll(ctx, domain.Scope{})
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestSeedKeepsExistingData(t *testing.T) {
	ctx := context.Background()
	blobs := NewMapBlobs()
	store := seededUsers(t, blobs)
	require.NoError(t, store.ClearAll(ctx, domain.Scope{}))

	// an empty but present collection is not reseeded
	require.NoError(t, store.Seed(ctx, []domain.User{{ID: 1, AccountID: 1, Name: "x", Username: "x", Email: "x@test.dev"}}))
	users, err := store.FindAll(ctx, domain.Scope{})
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestFileBlobsLayout(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	blobs, err := NewFileBlobs(dir)
	require.NoError(t, err)

	_, ok, err := blobs.Get(ctx, StorageKey(domain.Posts))
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, blobs.Put(ctx, StorageKey(domain.Posts), []byte(`[]`)))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "repository-switch_posts.json", entries[0].Name())

	data, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}
