package service

import (
	"context"
	"fmt"

	"github.com/goliatone/go-repository-switch/container"
	"github.com/goliatone/go-repository-switch/coordinator"
	"github.com/goliatone/go-repository-switch/domain"
	"github.com/goliatone/go-repository-switch/usecase/user"
)

// Users is the presentation service of the users domain.
type Users struct {
	resource[domain.User]
	c *container.Users
}

func NewUsers(c *container.Users, coord *coordinator.Coordinator, opts Options) *Users {
	return &Users{
		resource: newResource(domain.Users, coord, opts,
			func(u domain.User) int64 { return u.ID },
			func(u domain.User) int64 { return u.AccountID },
		),
		c: c,
	}
}

// List returns the users of accountID, or every user when accountID is 0.
func (s *Users) List(ctx context.Context, accountID int64) ([]domain.User, error) {
	scope := domain.ForAccount(accountID)
	return s.list(ctx, scope, func(ctx context.Context) ([]domain.User, error) {
		uc, err := s.c.ListUsersUseCase(ctx)
		if err != nil {
			return nil, err
		}
		return uc.Execute(ctx, scope)
	})
}

func (s *Users) Get(ctx context.Context, id int64) (domain.User, error) {
	return s.get(ctx, id, func(ctx context.Context) (*domain.User, error) {
		uc, err := s.c.GetUserUseCase(ctx)
		if err != nil {
			return nil, err
		}
		return uc.Execute(ctx, id)
	})
}

func (s *Users) Create(ctx context.Context, dto domain.CreateUserDTO) (domain.User, error) {
	if err := user.ValidateCreate(dto); err != nil {
		return domain.User{}, s.fail(ctx, "create", err)
	}

	tentative := domain.User{
		ID:        coordinator.TentativeID(),
		AccountID: dto.AccountID,
		Name:      dto.Name,
		Username:  dto.Username,
		Email:     dto.Email,
	}
	m := coordinator.BeginCreate(s.coord, s.domain, tentative, s.getID, s.listKeys(dto.AccountID)...)

	var created domain.User
	err := s.mutate(ctx, m, func(ctx context.Context) error {
		uc, err := s.c.CreateUserUseCase(ctx)
		if err != nil {
			return err
		}
		created, err = uc.Execute(ctx, dto)
		return err
	}, func() string { return fmt.Sprintf("User %q created", created.Username) })
	return created, err
}

func (s *Users) Update(ctx context.Context, dto domain.UpdateUserDTO) (domain.User, error) {
	if err := user.ValidateUpdate(dto); err != nil {
		return domain.User{}, s.fail(ctx, "update", err)
	}

	m := coordinator.BeginUpdate(s.coord, s.domain, dto.ID, s.getID, dto.Apply, s.listKeys(s.ownerOf(ctx, dto.ID))...)

	var updated domain.User
	err := s.mutate(ctx, m, func(ctx context.Context) error {
		uc, err := s.c.UpdateUserUseCase(ctx)
		if err != nil {
			return err
		}
		updated, err = uc.Execute(ctx, dto)
		return err
	}, func() string { return fmt.Sprintf("User %d updated", updated.ID) })
	return updated, err
}

func (s *Users) Delete(ctx context.Context, id int64) error {
	m := coordinator.BeginDelete(s.coord, s.domain, id, s.getID, s.listKeys(s.ownerOf(ctx, id))...)
	return s.mutate(ctx, m, func(ctx context.Context) error {
		uc, err := s.c.DeleteUserUseCase(ctx)
		if err != nil {
			return err
		}
		return uc.Execute(ctx, id)
	}, func() string { return fmt.Sprintf("User %d deleted", id) })
}

// ClearAll removes the users of accountID, or every user when accountID is 0.
// The cache is invalidated rather than patched optimistically.
func (s *Users) ClearAll(ctx context.Context, accountID int64) error {
	scope := domain.ForAccount(accountID)
	uc, err := s.c.ClearUsersUseCase(ctx)
	if err == nil {
		err = observe(s.resource, "clear", func(ctx context.Context) error {
			return uc.Execute(ctx, scope)
		})(ctx)
	}
	return s.settleClear(ctx, err, "Users cleared")
}

// RepositoryType returns the active source of the users domain.
func (s *Users) RepositoryType() domain.RepositoryType {
	return s.c.RepositoryType()
}
