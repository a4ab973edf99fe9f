package sqlstore

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/goliatone/go-repository-switch/domain"
	"github.com/goliatone/go-repository-switch/repository"
)

type postRow struct {
	bun.BaseModel `bun:"table:posts,alias:p"`

	ID        int64  `bun:"id,pk,autoincrement"`
	AccountID int64  `bun:"account_id,notnull"`
	Title     string `bun:"title,notnull"`
	Body      string `bun:"body"`
}

type userRow struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID        int64  `bun:"id,pk,autoincrement"`
	AccountID int64  `bun:"account_id,notnull"`
	Name      string `bun:"name,notnull"`
	Username  string `bun:"username"`
	Email     string `bun:"email"`
}

type accountRow struct {
	bun.BaseModel `bun:"table:accounts,alias:a"`

	ID        int64     `bun:"id,pk,autoincrement"`
	Name      string    `bun:"name,notnull"`
	Email     string    `bun:"email"`
	CreatedAt time.Time `bun:"created_at,notnull"`
}

// NewPosts returns a post store over db.
func NewPosts(db bun.IDB) *Store[domain.Post, postRow] {
	return New(db, repository.PostHandlers(), Mapper[domain.Post, postRow]{
		ToRow: func(p domain.Post) *postRow {
			return &postRow{ID: p.ID, AccountID: p.AccountID, Title: p.Title, Body: p.Body}
		},
		FromRow: func(r *postRow) domain.Post {
			return domain.Post{ID: r.ID, AccountID: r.AccountID, Title: r.Title, Body: r.Body}
		},
	})
}

// NewUsers returns a user store over db.
func NewUsers(db bun.IDB) *Store[domain.User, userRow] {
	return New(db, repository.UserHandlers(), Mapper[domain.User, userRow]{
		ToRow: func(u domain.User) *userRow {
			return &userRow{ID: u.ID, AccountID: u.AccountID, Name: u.Name, Username: u.Username, Email: u.Email}
		},
		FromRow: func(r *userRow) domain.User {
			return domain.User{ID: r.ID, AccountID: r.AccountID, Name: r.Name, Username: r.Username, Email: r.Email}
		},
	})
}

// NewAccounts returns an account store over db.
func NewAccounts(db bun.IDB) *Store[domain.Account, accountRow] {
	return New(db, repository.AccountHandlers(), Mapper[domain.Account, accountRow]{
		ToRow: func(a domain.Account) *accountRow {
			if a.CreatedAt.IsZero() {
				a.CreatedAt = time.Now().UTC()
			}
			return &accountRow{ID: a.ID, Name: a.Name, Email: a.Email, CreatedAt: a.CreatedAt}
		},
		FromRow: func(r *accountRow) domain.Account {
			return domain.Account{ID: r.ID, Name: r.Name, Email: r.Email, CreatedAt: r.CreatedAt}
		},
	})
}
