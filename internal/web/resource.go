package web

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/goliatone/go-repository-switch/domain"
	"github.com/goliatone/go-repository-switch/service"
)

// entityService is the part of a presentation service every resource
// exposes. T is the entity, C the create DTO and U the update DTO.
type entityService[T, C, U any] interface {
	Get(ctx context.Context, id int64) (T, error)
	Create(ctx context.Context, dto C) (T, error)
	Update(ctx context.Context, dto U) (T, error)
	Delete(ctx context.Context, id int64) error
}

// Resource serves the CRUD endpoints of one domain.
type Resource[T, C, U any] struct {
	svc   entityService[T, C, U]
	list  func(ctx context.Context, accountID int64) ([]T, error)
	clear func(ctx context.Context, accountID int64) error
	setID func(dto *U, id int64)
}

// PostsResource serves /posts.
func PostsResource(svc *service.Posts) *Resource[domain.Post, domain.CreatePostDTO, domain.UpdatePostDTO] {
	return &Resource[domain.Post, domain.CreatePostDTO, domain.UpdatePostDTO]{
		svc:   svc,
		list:  svc.List,
		clear: svc.ClearAll,
		setID: func(dto *domain.UpdatePostDTO, id int64) { dto.ID = id },
	}
}

// UsersResource serves /users.
func UsersResource(svc *service.Users) *Resource[domain.User, domain.CreateUserDTO, domain.UpdateUserDTO] {
	return &Resource[domain.User, domain.CreateUserDTO, domain.UpdateUserDTO]{
		svc:   svc,
		list:  svc.List,
		clear: svc.ClearAll,
		setID: func(dto *domain.UpdateUserDTO, id int64) { dto.ID = id },
	}
}

// AccountsResource serves /accounts. Accounts are not owner scoped and have
// no clear-all endpoint.
func AccountsResource(svc *service.Accounts) *Resource[domain.Account, domain.CreateAccountDTO, domain.UpdateAccountDTO] {
	return &Resource[domain.Account, domain.CreateAccountDTO, domain.UpdateAccountDTO]{
		svc: svc,
		list: func(ctx context.Context, _ int64) ([]domain.Account, error) {
			return svc.List(ctx)
		},
		setID: func(dto *domain.UpdateAccountDTO, id int64) { dto.ID = id },
	}
}

// Routes mounts the resource endpoints on r.
func (h *Resource[T, C, U]) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	if h.clear != nil {
		r.Delete("/", h.Clear)
	}
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

func (h *Resource[T, C, U]) List(w http.ResponseWriter, r *http.Request) {
	accountID, err := accountID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	records, err := h.list(r.Context(), accountID)
	if err != nil {
		writeError(w, err)
		return
	}
	if records == nil {
		records = []T{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (h *Resource[T, C, U]) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	record, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (h *Resource[T, C, U]) Create(w http.ResponseWriter, r *http.Request) {
	var dto C
	if err := decode(r, &dto); err != nil {
		writeError(w, err)
		return
	}
	created, err := h.svc.Create(r.Context(), dto)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Resource[T, C, U]) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var dto U
	if err := decode(r, &dto); err != nil {
		writeError(w, err)
		return
	}
	h.setID(&dto, id)

	updated, err := h.svc.Update(r.Context(), dto)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Resource[T, C, U]) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Clear removes every record, or those of ?accountId= when given.
func (h *Resource[T, C, U]) Clear(w http.ResponseWriter, r *http.Request) {
	accountID, err := accountID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.clear(r.Context(), accountID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
