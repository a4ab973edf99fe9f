package cache

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/goliatone/go-repository-switch/domain"
)

// mockCacheService is a map backed CacheService with an injectable
// GetOrFetch result.
type mockCacheService struct {
	result  any
	err     error
	entries map[string]any
}

func newMockCacheService() *mockCacheService {
	return &mockCacheService{entries: make(map[string]any)}
}

func (m *mockCacheService) GetOrFetch(ctx context.Context, key string, fetchFn any) (any, error) {
	return m.result, m.err
}

func (m *mockCacheService) Peek(ctx context.Context, key string) (any, bool) {
	v, ok := m.entries[key]
	return v, ok
}

func (m *mockCacheService) Set(ctx context.Context, key string, value any) error {
	m.entries[key] = value
	return nil
}

func (m *mockCacheService) Delete(ctx context.Context, key string) error {
	delete(m.entries, key)
	return nil
}

func (m *mockCacheService) DeleteByPrefix(ctx context.Context, prefix string) error {
	for k := range m.entries {
		if strings.HasPrefix(k, prefix) {
			delete(m.entries, k)
		}
	}
	return nil
}

func (m *mockCacheService) Keys(ctx context.Context) []string {
	keys := make([]string, 0, len(m.entries))
	for k := range m.entries {
		keys = append(keys, k)
	}
	return keys
}

func TestGetOrFetch_NilInterfaceResult(t *testing.T) {
	mock := newMockCacheService()

	type SomeInterface interface {
		DoSomething() string
	}

	// a nil interface result must become the zero value, not panic
	result, err := GetOrFetch[SomeInterface](context.Background(), mock, "test-key", func(ctx context.Context) (SomeInterface, error) {
		return nil, nil
	})

	if err != nil {
		t.Errorf("expected no error but got: %v", err)
	}

	if result != nil {
		t.Errorf("expected nil result but got: %v", result)
	}
}

func TestGetOrFetch_NilPointerNoPanic(t *testing.T) {
	mock := newMockCacheService()
	mock.result = (*domain.Post)(nil)

	result, err := GetOrFetch[*domain.Post](context.Background(), mock, "test-key", func(ctx context.Context) (*domain.Post, error) {
		return nil, nil
	})

	if err != nil {
		t.Errorf("expected no error but got: %v", err)
	}

	if result != nil {
		t.Errorf("expected nil result but got: %v", result)
	}
}

func TestGetOrFetch_TypeAssertionFailure(t *testing.T) {
	mock := newMockCacheService()
	mock.result = "wrong-type"

	result, err := GetOrFetch[[]domain.Post](context.Background(), mock, "test-key", func(ctx context.Context) ([]domain.Post, error) {
		return nil, nil
	})

	if !errors.Is(err, ErrInvalidResultType) {
		t.Errorf("expected ErrInvalidResultType but got: %v", err)
	}

	if result != nil {
		t.Errorf("expected nil slice but got: %v", result)
	}
}

func TestGetOrFetch_ValidResult(t *testing.T) {
	expected := []domain.Post{{ID: 1, AccountID: 1, Title: "hello"}}
	mock := newMockCacheService()
	mock.result = expected

	result, err := GetOrFetch[[]domain.Post](context.Background(), mock, "test-key", func(ctx context.Context) ([]domain.Post, error) {
		return expected, nil
	})

	if err != nil {
		t.Errorf("expected no error but got: %v", err)
	}

	if len(result) != 1 || result[0].Title != "hello" {
		t.Errorf("expected %v but got: %v", expected, result)
	}
}

func TestGetOrFetch_PropagatesError(t *testing.T) {
	fetchErr := domain.NewNetworkError("boom", nil)
	mock := newMockCacheService()
	mock.err = fetchErr

	_, err := GetOrFetch[[]domain.Post](context.Background(), mock, "test-key", func(ctx context.Context) ([]domain.Post, error) {
		return nil, fetchErr
	})

	if !errors.Is(err, domain.ErrNetwork) {
		t.Errorf("expected network error but got: %v", err)
	}
}

func TestPeek(t *testing.T) {
	ctx := context.Background()
	mock := newMockCacheService()

	if _, ok, err := Peek[[]domain.Post](ctx, mock, "posts::0::list::0"); ok || err != nil {
		t.Fatalf("expected miss without error, got ok=%v err=%v", ok, err)
	}

	_ = mock.Set(ctx, "posts::0::list::0", []domain.Post{{ID: 7}})
	got, ok, err := Peek[[]domain.Post](ctx, mock, "posts::0::list::0")
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if len(got) != 1 || got[0].ID != 7 {
		t.Errorf("unexpected peek result: %v", got)
	}

	_ = mock.Set(ctx, "posts::0::detail::7", "not a post")
	if _, ok, err := Peek[*domain.Post](ctx, mock, "posts::0::detail::7"); ok || !errors.Is(err, ErrInvalidResultType) {
		t.Errorf("expected type error, got ok=%v err=%v", ok, err)
	}
}
