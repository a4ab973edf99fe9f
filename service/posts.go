package service

import (
	"context"
	"fmt"

	"github.com/goliatone/go-repository-switch/container"
	"github.com/goliatone/go-repository-switch/coordinator"
	"github.com/goliatone/go-repository-switch/domain"
	"github.com/goliatone/go-repository-switch/usecase/post"
)

// Posts is the presentation service of the posts domain.
type Posts struct {
	resource[domain.Post]
	c *container.Posts
}

func NewPosts(c *container.Posts, coord *coordinator.Coordinator, opts Options) *Posts {
	return &Posts{
		resource: newResource(domain.Posts, coord, opts,
			func(p domain.Post) int64 { return p.ID },
			func(p domain.Post) int64 { return p.AccountID },
		),
		c: c,
	}
}

// List returns the posts of accountID, or every post when accountID is 0.
func (s *Posts) List(ctx context.Context, accountID int64) ([]domain.Post, error) {
	scope := domain.ForAccount(accountID)
	return s.list(ctx, scope, func(ctx context.Context) ([]domain.Post, error) {
		uc, err := s.c.ListPostsUseCase(ctx)
		if err != nil {
			return nil, err
		}
		return uc.Execute(ctx, scope)
	})
}

func (s *Posts) Get(ctx context.Context, id int64) (domain.Post, error) {
	return s.get(ctx, id, func(ctx context.Context) (*domain.Post, error) {
		uc, err := s.c.GetPostUseCase(ctx)
		if err != nil {
			return nil, err
		}
		return uc.Execute(ctx, id)
	})
}

func (s *Posts) Create(ctx context.Context, dto domain.CreatePostDTO) (domain.Post, error) {
	if err := post.ValidateCreate(dto); err != nil {
		return domain.Post{}, s.fail(ctx, "create", err)
	}

	tentative := domain.Post{
		ID:        coordinator.TentativeID(),
		AccountID: dto.AccountID,
		Title:     dto.Title,
		Body:      dto.Body,
	}
	m := coordinator.BeginCreate(s.coord, s.domain, tentative, s.getID, s.listKeys(dto.AccountID)...)

	var created domain.Post
	err := s.mutate(ctx, m, func(ctx context.Context) error {
		uc, err := s.c.CreatePostUseCase(ctx)
		if err != nil {
			return err
		}
		created, err = uc.Execute(ctx, dto)
		return err
	}, func() string { return fmt.Sprintf("Post %q created", created.Title) })
	return created, err
}

func (s *Posts) Update(ctx context.Context, dto domain.UpdatePostDTO) (domain.Post, error) {
	if err := post.ValidateUpdate(dto); err != nil {
		return domain.Post{}, s.fail(ctx, "update", err)
	}

	m := coordinator.BeginUpdate(s.coord, s.domain, dto.ID, s.getID, dto.Apply, s.listKeys(s.ownerOf(ctx, dto.ID))...)

	var updated domain.Post
	err := s.mutate(ctx, m, func(ctx context.Context) error {
		uc, err := s.c.UpdatePostUseCase(ctx)
		if err != nil {
			return err
		}
		updated, err = uc.Execute(ctx, dto)
		return err
	}, func() string { return fmt.Sprintf("Post %d updated", updated.ID) })
	return updated, err
}

func (s *Posts) Delete(ctx context.Context, id int64) error {
	m := coordinator.BeginDelete(s.coord, s.domain, id, s.getID, s.listKeys(s.ownerOf(ctx, id))...)
	return s.mutate(ctx, m, func(ctx context.Context) error {
		uc, err := s.c.DeletePostUseCase(ctx)
		if err != nil {
			return err
		}
		return uc.Execute(ctx, id)
	}, func() string { return fmt.Sprintf("Post %d deleted", id) })
}

// ClearAll removes the posts of accountID, or every post when accountID is 0.
// The cache is invalidated rather than patched optimistically.
func (s *Posts) ClearAll(ctx context.Context, accountID int64) error {
	scope := domain.ForAccount(accountID)
	uc, err := s.c.ClearPostsUseCase(ctx)
	if err == nil {
		err = observe(s.resource, "clear", func(ctx context.Context) error {
			return uc.Execute(ctx, scope)
		})(ctx)
	}
	return s.settleClear(ctx, err, "Posts cleared")
}

// RepositoryType returns the active source of the posts domain.
func (s *Posts) RepositoryType() domain.RepositoryType {
	return s.c.RepositoryType()
}
