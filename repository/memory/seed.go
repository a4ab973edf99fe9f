package memory

import (
	"time"

	"github.com/goliatone/go-repository-switch/domain"
	"github.com/goliatone/go-repository-switch/repository"
)

var seededAt = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// SeedAccounts returns the mock accounts every in-memory store starts with.
func SeedAccounts() []domain.Account {
	return []domain.Account{
		{ID: 1, Name: "Acme", Email: "ops@acme.test", CreatedAt: seededAt},
		{ID: 2, Name: "Globex", Email: "admin@globex.test", CreatedAt: seededAt},
	}
}

// SeedUsers returns the mock users every in-memory store starts with.
func SeedUsers() []domain.User {
	return []domain.User{
		{ID: 1, AccountID: 1, Name: "Leanne Graham", Username: "bret", Email: "leanne@acme.test"},
		{ID: 2, AccountID: 1, Name: "Ervin Howell", Username: "antonette", Email: "ervin@acme.test"},
		{ID: 3, AccountID: 2, Name: "Clementine Bauch", Username: "samantha", Email: "clementine@globex.test"},
	}
}

// SeedPosts returns the mock posts every in-memory store starts with.
func SeedPosts() []domain.Post {
	return []domain.Post{
		{ID: 1, AccountID: 1, Title: "Mock post", Body: "Served from the in-memory store."},
		{ID: 2, AccountID: 1, Title: "Second mock post", Body: "Still in memory."},
		{ID: 3, AccountID: 2, Title: "Globex update", Body: "Quarterly numbers."},
	}
}

// NewPosts returns a seeded post store.
func NewPosts() *Store[domain.Post] {
	return New(repository.PostHandlers(), SeedPosts()...)
}

// NewUsers returns a seeded user store.
func NewUsers() *Store[domain.User] {
	return New(repository.UserHandlers(), SeedUsers()...)
}

// NewAccounts returns a seeded account store.
func NewAccounts() *Store[domain.Account] {
	return New(repository.AccountHandlers(), SeedAccounts()...)
}
