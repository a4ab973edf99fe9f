package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-repository-switch/domain"
	"github.com/goliatone/go-repository-switch/repository"
	"github.com/goliatone/go-repository-switch/repository/memory"
	"github.com/goliatone/go-repository-switch/repository/repositorytest"
)

// fakeAPI serves the posts collection from an in-memory store.
func fakeAPI(t *testing.T) *httptest.Server {
	t.Helper()
	store := memory.New(repository.PostHandlers())
	scope := func(r *http.Request) domain.Scope {
		id, _ := strconv.ParseInt(r.URL.Query().Get("accountId"), 10, 64)
		return domain.ForAccount(id)
	}
	pathID := func(r *http.Request) int64 {
		id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
		return id
	}
	reply := func(w http.ResponseWriter, status int, v any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(v)
	}
	fail := func(w http.ResponseWriter, err error) {
		if domain.CategoryOf(err) == domain.CategoryNotFound {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /posts", func(w http.ResponseWriter, r *http.Request) {
		posts, err := store.FindAll(r.Context(), scope(r))
		if err != nil {
			fail(w, err)
			return
		}
		reply(w, http.StatusOK, posts)
	})
	mux.HandleFunc("GET /posts/{id}", func(w http.ResponseWriter, r *http.Request) {
		post, err := store.FindByID(r.Context(), pathID(r))
		if err != nil || post == nil {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		reply(w, http.StatusOK, post)
	})
	mux.HandleFunc("POST /posts", func(w http.ResponseWriter, r *http.Request) {
		var in domain.Post
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		created, err := store.Create(r.Context(), in)
		if err != nil {
			fail(w, err)
			return
		}
		reply(w, http.StatusCreated, created)
	})
	mux.HandleFunc("PUT /posts/{id}", func(w http.ResponseWriter, r *http.Request) {
		var in domain.Post
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		in.ID = pathID(r)
		updated, err := store.Update(r.Context(), in)
		if err != nil {
			fail(w, err)
			return
		}
		reply(w, http.StatusOK, updated)
	})
	mux.HandleFunc("DELETE /posts/{id}", func(w http.ResponseWriter, r *http.Request) {
		if err := store.Delete(r.Context(), pathID(r)); err != nil {
			fail(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("DELETE /posts", func(w http.ResponseWriter, r *http.Request) {
		if err := store.ClearAll(r.Context(), scope(r)); err != nil {
			fail(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestStoreContract(t *testing.T) {
	repositorytest.PostContract(t, func(t *testing.T) repository.Repository[domain.Post] {
		srv := fakeAPI(t)
		return New(Config{BaseURL: srv.URL + "/", Timeout: time.Second}, srv.Client(), repository.PostHandlers())
	})
}

func TestUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	store := New(Config{BaseURL: srv.URL}, srv.Client(), repository.UserHandlers())
	_, err := store.FindAll(context.Background(), domain.Scope{})
	require.Error(t, err)
	assert.Equal(t, domain.CategoryUnauthorized, domain.CategoryOf(err))
}

func TestServerErrorCarriesStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	store := New(Config{BaseURL: srv.URL}, srv.Client(), repository.PostHandlers())
	_, err := store.FindAll(context.Background(), domain.ForAccount(3))
	require.Error(t, err)
	assert.Equal(t, domain.CategoryRepository, domain.CategoryOf(err))

	var status *StatusError
	require.ErrorAs(t, err, &status)
	assert.Equal(t, http.StatusInternalServerError, status.Status)
	assert.Equal(t, "boom", status.Body)
	assert.Contains(t, status.URL, "/posts?accountId=3")
}

func TestCollectionNotFoundIsAnError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	store := New(Config{BaseURL: srv.URL}, srv.Client(), repository.PostHandlers())
	_, err := store.FindAll(context.Background(), domain.Scope{})
	require.Error(t, err)

	post, err := store.FindByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Nil(t, post)
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	store := New(Config{BaseURL: srv.URL, FailureThreshold: 2, OpenTimeout: time.Minute}, srv.Client(), repository.PostHandlers())
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		_, err := store.FindAll(ctx, domain.Scope{})
		require.Error(t, err)
	}

	_, err := store.FindAll(ctx, domain.Scope{})
	require.Error(t, err)
	assert.Equal(t, domain.CategoryNetwork, domain.CategoryOf(err))
	assert.Equal(t, int32(2), hits.Load())
}

func TestNotFoundDoesNotTripBreaker(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	store := New(Config{BaseURL: srv.URL, FailureThreshold: 1}, srv.Client(), repository.PostHandlers())
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		err := store.Delete(ctx, 42)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	}
}
