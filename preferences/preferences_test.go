package preferences

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-repository-switch/domain"
)

func defaults() Preferences {
	return Preferences{
		Repositories: map[domain.Domain]domain.RepositoryType{
			domain.Posts: domain.Memory,
			domain.Users: domain.Memory,
		},
		SelectorVisible: true,
	}
}

func TestMissingFileYieldsDefaults(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "prefs.yaml"), defaults())

	prefs, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, defaults(), prefs)
}

func TestRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "prefs.yaml")
	store := NewStore(path, defaults())

	require.NoError(t, store.SetRepositoryType(domain.Posts, domain.Local))
	require.NoError(t, store.SetSelectorVisible(false))

	reopened := NewStore(path, defaults())
	prefs, err := reopened.Load()
	require.NoError(t, err)
	assert.Equal(t, domain.Local, prefs.RepositoryType(domain.Posts, domain.Remote))
	assert.Equal(t, domain.Memory, prefs.RepositoryType(domain.Users, domain.Remote))
	assert.Equal(t, domain.Remote, prefs.RepositoryType(domain.Accounts, domain.Remote))
	assert.False(t, prefs.SelectorVisible)
}

func TestFileFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.yaml")
	store := NewStore(path, Preferences{})

	require.NoError(t, store.SetRepositoryType(domain.Accounts, domain.Remote))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "accounts: remote")
	assert.Contains(t, string(data), "selector_visible: false")
}

func TestCorruptFileIsReported(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.yaml")
	require.NoError(t, os.WriteFile(path, []byte("repositories: [oops"), 0o644))

	_, err := NewStore(path, defaults()).Load()
	assert.Error(t, err)
}

func TestLoadReturnsCopies(t *testing.T) {
	store := NewStore("", defaults())

	prefs, err := store.Load()
	require.NoError(t, err)
	prefs.Repositories[domain.Posts] = domain.Remote

	again, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, domain.Memory, again.Repositories[domain.Posts])
}
