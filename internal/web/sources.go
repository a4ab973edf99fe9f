package web

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/goliatone/go-repository-switch/domain"
	"github.com/goliatone/go-repository-switch/notify"
	"github.com/goliatone/go-repository-switch/pkg/di"
)

// Switcher is the selector backend.
type Switcher interface {
	Sources() (di.Sources, error)
	SwitchRepository(ctx context.Context, d domain.Domain, t domain.RepositoryType) (bool, error)
	SetSelectorVisible(visible bool) error
}

// Sources serves the repository selector endpoints.
type Sources struct {
	switcher Switcher
}

func NewSources(s Switcher) *Sources {
	return &Sources{switcher: s}
}

func (h *Sources) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Put("/visibility", h.SetVisibility)
	r.Put("/{domain}", h.Switch)
}

func (h *Sources) List(w http.ResponseWriter, r *http.Request) {
	sources, err := h.switcher.Sources()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sources)
}

type switchRequest struct {
	Type string `json:"type"`
}

type switchResponse struct {
	Domain  domain.Domain         `json:"domain"`
	Type    domain.RepositoryType `json:"type"`
	Changed bool                  `json:"changed"`
}

func (h *Sources) Switch(w http.ResponseWriter, r *http.Request) {
	d, err := domain.ParseDomain(chi.URLParam(r, "domain"))
	if err != nil {
		writeError(w, err)
		return
	}
	var req switchRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	t, err := domain.ParseRepositoryType(req.Type)
	if err != nil {
		writeError(w, err)
		return
	}

	changed, err := h.switcher.SwitchRepository(r.Context(), d, t)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, switchResponse{Domain: d, Type: t, Changed: changed})
}

type visibilityRequest struct {
	Visible bool `json:"visible"`
}

func (h *Sources) SetVisibility(w http.ResponseWriter, r *http.Request) {
	var req visibilityRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := h.switcher.SetSelectorVisible(req.Visible); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

// Notifications serves the recent notification feed.
type Notifications struct {
	recorder *notify.Recorder
}

func NewNotifications(rec *notify.Recorder) *Notifications {
	return &Notifications{recorder: rec}
}

func (h *Notifications) List(w http.ResponseWriter, _ *http.Request) {
	items := h.recorder.All()
	if items == nil {
		items = []notify.Notification{}
	}
	writeJSON(w, http.StatusOK, items)
}
