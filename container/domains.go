package container

import (
	"context"

	"github.com/goliatone/go-repository-switch/domain"
	"github.com/goliatone/go-repository-switch/repository"
	"github.com/goliatone/go-repository-switch/usecase"
	"github.com/goliatone/go-repository-switch/usecase/account"
	"github.com/goliatone/go-repository-switch/usecase/post"
	"github.com/goliatone/go-repository-switch/usecase/user"
)

// Posts is the container of the posts domain.
type Posts struct {
	*Container[domain.Post]
}

// NewPosts creates the posts container.
func NewPosts(initial domain.RepositoryType) *Posts {
	return &Posts{Container: New[domain.Post](domain.Posts, initial)}
}

func (p *Posts) ListPostsUseCase(ctx context.Context) (*usecase.ListUseCase[domain.Post], error) {
	return Memo(ctx, p.Container, "list", usecase.NewListUseCase[domain.Post])
}

func (p *Posts) GetPostUseCase(ctx context.Context) (*usecase.GetUseCase[domain.Post], error) {
	return Memo(ctx, p.Container, "get", func(r repository.Repository[domain.Post]) *usecase.GetUseCase[domain.Post] {
		return usecase.NewGetUseCase(domain.Posts, r)
	})
}

func (p *Posts) CreatePostUseCase(ctx context.Context) (*post.CreateUseCase, error) {
	return Memo(ctx, p.Container, "create", post.NewCreateUseCase)
}

func (p *Posts) UpdatePostUseCase(ctx context.Context) (*post.UpdateUseCase, error) {
	return Memo(ctx, p.Container, "update", post.NewUpdateUseCase)
}

func (p *Posts) DeletePostUseCase(ctx context.Context) (*usecase.DeleteUseCase[domain.Post], error) {
	return Memo(ctx, p.Container, "delete", usecase.NewDeleteUseCase[domain.Post])
}

func (p *Posts) ClearPostsUseCase(ctx context.Context) (*usecase.ClearAllUseCase[domain.Post], error) {
	return Memo(ctx, p.Container, "clear", usecase.NewClearAllUseCase[domain.Post])
}

// Users is the container of the users domain.
type Users struct {
	*Container[domain.User]
}

// NewUsers creates the users container.
func NewUsers(initial domain.RepositoryType) *Users {
	return &Users{Container: New[domain.User](domain.Users, initial)}
}

func (u *Users) ListUsersUseCase(ctx context.Context) (*usecase.ListUseCase[domain.User], error) {
	return Memo(ctx, u.Container, "list", usecase.NewListUseCase[domain.User])
}

func (u *Users) GetUserUseCase(ctx context.Context) (*usecase.GetUseCase[domain.User], error) {
	return Memo(ctx, u.Container, "get", func(r repository.Repository[domain.User]) *usecase.GetUseCase[domain.User] {
		return usecase.NewGetUseCase(domain.Users, r)
	})
}

func (u *Users) CreateUserUseCase(ctx context.Context) (*user.CreateUseCase, error) {
	return Memo(ctx, u.Container, "create", user.NewCreateUseCase)
}

func (u *Users) UpdateUserUseCase(ctx context.Context) (*user.UpdateUseCase, error) {
	return Memo(ctx, u.Container, "update", user.NewUpdateUseCase)
}

func (u *Users) DeleteUserUseCase(ctx context.Context) (*usecase.DeleteUseCase[domain.User], error) {
	return Memo(ctx, u.Container, "delete", usecase.NewDeleteUseCase[domain.User])
}

func (u *Users) ClearUsersUseCase(ctx context.Context) (*usecase.ClearAllUseCase[domain.User], error) {
	return Memo(ctx, u.Container, "clear", usecase.NewClearAllUseCase[domain.User])
}

// Accounts is the container of the accounts domain. Accounts have no
// clear-all operation.
type Accounts struct {
	*Container[domain.Account]
}

// NewAccounts creates the accounts container.
func NewAccounts(initial domain.RepositoryType) *Accounts {
	return &Accounts{Container: New[domain.Account](domain.Accounts, initial)}
}

func (a *Accounts) ListAccountsUseCase(ctx context.Context) (*usecase.ListUseCase[domain.Account], error) {
	return Memo(ctx, a.Container, "list", usecase.NewListUseCase[domain.Account])
}

func (a *Accounts) GetAccountUseCase(ctx context.Context) (*usecase.GetUseCase[domain.Account], error) {
	return Memo(ctx, a.Container, "get", func(r repository.Repository[domain.Account]) *usecase.GetUseCase[domain.Account] {
		return usecase.NewGetUseCase(domain.Accounts, r)
	})
}

func (a *Accounts) CreateAccountUseCase(ctx context.Context) (*account.CreateUseCase, error) {
	return Memo(ctx, a.Container, "create", account.NewCreateUseCase)
}

func (a *Accounts) UpdateAccountUseCase(ctx context.Context) (*account.UpdateUseCase, error) {
	return Memo(ctx, a.Container, "update", account.NewUpdateUseCase)
}

func (a *Accounts) DeleteAccountUseCase(ctx context.Context) (*usecase.DeleteUseCase[domain.Account], error) {
	return Memo(ctx, a.Container, "delete", usecase.NewDeleteUseCase[domain.Account])
}
