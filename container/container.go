// Package container provides the per-domain dependency containers. A
// container owns the repository-type tag of its domain, a factory table that
// maps tags to repository constructors, and the lazily built repository and
// use-case instances derived from the active tag.
//
// Switching to a different tag drops every memoized instance so the next
// access rebuilds them against the new repository. Switching to the tag that
// is already active is a no-op.
package container

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/goliatone/go-repository-switch/domain"
	"github.com/goliatone/go-repository-switch/repository"
)

// Factory builds the repository for one tag. Factories may open files or
// connections, so they can fail.
type Factory[T any] func(ctx context.Context) (repository.Repository[T], error)

// Container manages the repository and use-cases of a single domain.
type Container[T any] struct {
	domain domain.Domain

	mu        sync.Mutex
	factories map[domain.RepositoryType]Factory[T]
	current   domain.RepositoryType
	repo      repository.Repository[T]
	useCases  map[string]any
}

// New creates a container for d whose active tag is initial. The tag is not
// checked against the factory table until the repository is first built, so
// factories may be registered after construction.
func New[T any](d domain.Domain, initial domain.RepositoryType) *Container[T] {
	return &Container[T]{
		domain:    d,
		factories: make(map[domain.RepositoryType]Factory[T]),
		current:   initial,
		useCases:  make(map[string]any),
	}
}

// Domain returns the domain served by the container.
func (c *Container[T]) Domain() domain.Domain {
	return c.domain
}

// Register adds or replaces the factory for tag. Replacing the factory of the
// active tag drops the memoized instances.
func (c *Container[T]) Register(tag domain.RepositoryType, factory Factory[T]) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.factories[tag] = factory
	if tag == c.current {
		c.reset()
	}
}

// Types lists the registered tags in a stable order.
func (c *Container[T]) Types() []domain.RepositoryType {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]domain.RepositoryType, 0, len(c.factories))
	for tag := range c.factories {
		out = append(out, tag)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Supports reports whether a factory is registered for tag.
func (c *Container[T]) Supports(tag domain.RepositoryType) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.factories[tag]
	return ok
}

// RepositoryType returns the active tag.
func (c *Container[T]) RepositoryType() domain.RepositoryType {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.current
}

// SetRepositoryType selects the repository backing the domain. It reports
// whether the active tag changed; only a change discards the memoized
// repository and use-cases.
func (c *Container[T]) SetRepositoryType(tag domain.RepositoryType) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.factories[tag]; !ok {
		return false, domain.NewValidationError("type",
			fmt.Sprintf("repository type %q is not available for %s", tag, c.domain))
	}
	if tag == c.current {
		return false, nil
	}

	c.current = tag
	c.reset()
	return true, nil
}

// Reset drops the memoized repository and use-cases without changing the
// active tag.
func (c *Container[T]) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.reset()
}

func (c *Container[T]) reset() {
	c.repo = nil
	clear(c.useCases)
}

// Repository returns the repository for the active tag, building it on first
// access.
func (c *Container[T]) Repository(ctx context.Context) (repository.Repository[T], error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.repository(ctx)
}

func (c *Container[T]) repository(ctx context.Context) (repository.Repository[T], error) {
	if c.repo != nil {
		return c.repo, nil
	}

	factory, ok := c.factories[c.current]
	if !ok {
		return nil, domain.NewRepositoryError(
			fmt.Sprintf("no factory registered for %s repository %q", c.domain, c.current), nil)
	}

	repo, err := factory(ctx)
	if err != nil {
		return nil, domain.NewRepositoryError(
			fmt.Sprintf("build %s repository %q", c.domain, c.current), err)
	}

	c.repo = repo
	return repo, nil
}

// Memo returns the use-case memoized under name, building it from the active
// repository when absent. The memo is dropped on the next reset.
func Memo[U any, T any](ctx context.Context, c *Container[T], name string, build func(repository.Repository[T]) U) (U, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero U
	if uc, ok := c.useCases[name]; ok {
		if typed, ok := uc.(U); ok {
			return typed, nil
		}
	}

	repo, err := c.repository(ctx)
	if err != nil {
		return zero, err
	}

	uc := build(repo)
	c.useCases[name] = uc
	return uc, nil
}
