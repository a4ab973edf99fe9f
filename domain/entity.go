package domain

import "time"

// Account is the owner scope for posts and users.
type Account struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// User belongs to an account.
type User struct {
	ID        int64  `json:"id"`
	AccountID int64  `json:"accountId"`
	Name      string `json:"name"`
	Username  string `json:"username"`
	Email     string `json:"email"`
}

// Post belongs to an account.
type Post struct {
	ID        int64  `json:"id"`
	AccountID int64  `json:"accountId"`
	Title     string `json:"title"`
	Body      string `json:"body"`
}

// Scope narrows a collection query. A zero AccountID means "all accounts".
type Scope struct {
	AccountID int64
}

// Scoped reports whether the scope restricts results to a single account.
func (s Scope) Scoped() bool {
	return s.AccountID > 0
}

// ForAccount is a shorthand for an account scoped query.
func ForAccount(accountID int64) Scope {
	return Scope{AccountID: accountID}
}
