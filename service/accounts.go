package service

import (
	"context"
	"fmt"
	"time"

	"github.com/goliatone/go-repository-switch/container"
	"github.com/goliatone/go-repository-switch/coordinator"
	"github.com/goliatone/go-repository-switch/domain"
	"github.com/goliatone/go-repository-switch/usecase/account"
)

// Accounts is the presentation service of the accounts domain. Accounts are
// not owner scoped and can not be cleared in bulk.
type Accounts struct {
	resource[domain.Account]
	c *container.Accounts
}

func NewAccounts(c *container.Accounts, coord *coordinator.Coordinator, opts Options) *Accounts {
	return &Accounts{
		resource: newResource(domain.Accounts, coord, opts,
			func(a domain.Account) int64 { return a.ID },
			nil,
		),
		c: c,
	}
}

func (s *Accounts) List(ctx context.Context) ([]domain.Account, error) {
	return s.list(ctx, domain.Scope{}, func(ctx context.Context) ([]domain.Account, error) {
		uc, err := s.c.ListAccountsUseCase(ctx)
		if err != nil {
			return nil, err
		}
		return uc.Execute(ctx, domain.Scope{})
	})
}

func (s *Accounts) Get(ctx context.Context, id int64) (domain.Account, error) {
	return s.get(ctx, id, func(ctx context.Context) (*domain.Account, error) {
		uc, err := s.c.GetAccountUseCase(ctx)
		if err != nil {
			return nil, err
		}
		return uc.Execute(ctx, id)
	})
}

func (s *Accounts) Create(ctx context.Context, dto domain.CreateAccountDTO) (domain.Account, error) {
	if err := account.ValidateCreate(dto); err != nil {
		return domain.Account{}, s.fail(ctx, "create", err)
	}

	tentative := domain.Account{
		ID:        coordinator.TentativeID(),
		Name:      dto.Name,
		Email:     dto.Email,
		CreatedAt: time.Now().UTC(),
	}
	m := coordinator.BeginCreate(s.coord, s.domain, tentative, s.getID, s.listKeys(0)...)

	var created domain.Account
	err := s.mutate(ctx, m, func(ctx context.Context) error {
		uc, err := s.c.CreateAccountUseCase(ctx)
		if err != nil {
			return err
		}
		created, err = uc.Execute(ctx, dto)
		return err
	}, func() string { return fmt.Sprintf("Account %q created", created.Name) })
	return created, err
}

func (s *Accounts) Update(ctx context.Context, dto domain.UpdateAccountDTO) (domain.Account, error) {
	if err := account.ValidateUpdate(dto); err != nil {
		return domain.Account{}, s.fail(ctx, "update", err)
	}

	m := coordinator.BeginUpdate(s.coord, s.domain, dto.ID, s.getID, dto.Apply, s.listKeys(0)...)

	var updated domain.Account
	err := s.mutate(ctx, m, func(ctx context.Context) error {
		uc, err := s.c.UpdateAccountUseCase(ctx)
		if err != nil {
			return err
		}
		updated, err = uc.Execute(ctx, dto)
		return err
	}, func() string { return fmt.Sprintf("Account %d updated", updated.ID) })
	return updated, err
}

func (s *Accounts) Delete(ctx context.Context, id int64) error {
	m := coordinator.BeginDelete(s.coord, s.domain, id, s.getID, s.listKeys(0)...)
	return s.mutate(ctx, m, func(ctx context.Context) error {
		uc, err := s.c.DeleteAccountUseCase(ctx)
		if err != nil {
			return err
		}
		return uc.Execute(ctx, id)
	}, func() string { return fmt.Sprintf("Account %d deleted", id) })
}

// RepositoryType returns the active source of the accounts domain.
func (s *Accounts) RepositoryType() domain.RepositoryType {
	return s.c.RepositoryType()
}
