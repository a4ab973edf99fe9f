package di

import (
	"context"

	"github.com/goliatone/go-repository-switch/domain"
	"github.com/goliatone/go-repository-switch/pkg/logger"
)

// switchable is the tag management part of a domain container.
type switchable interface {
	Domain() domain.Domain
	RepositoryType() domain.RepositoryType
	SetRepositoryType(domain.RepositoryType) (bool, error)
	Types() []domain.RepositoryType
}

func (c *Container) switchables() []switchable {
	return []switchable{c.posts, c.users, c.accounts}
}

func (c *Container) switchable(d domain.Domain) (switchable, error) {
	for _, sw := range c.switchables() {
		if sw.Domain() == d {
			return sw, nil
		}
	}
	return nil, domain.NewValidationError("domain", "unknown domain "+string(d))
}

// Source describes the active repository of one domain.
type Source struct {
	Domain    domain.Domain           `json:"domain" yaml:"domain"`
	Type      domain.RepositoryType   `json:"type" yaml:"type"`
	Label     string                  `json:"label" yaml:"label"`
	Available []domain.RepositoryType `json:"available" yaml:"available"`
}

// Sources is the selector state.
type Sources struct {
	SelectorVisible bool     `json:"selectorVisible" yaml:"selector_visible"`
	Domains         []Source `json:"domains" yaml:"domains"`
}

// Sources reports the active repository of every domain.
func (c *Container) Sources() (Sources, error) {
	prefs, err := c.preferences.Load()
	if err != nil {
		return Sources{}, err
	}
	out := Sources{SelectorVisible: prefs.SelectorVisible}
	for _, sw := range c.switchables() {
		t := sw.RepositoryType()
		out.Domains = append(out.Domains, Source{
			Domain:    sw.Domain(),
			Type:      t,
			Label:     t.Label(),
			Available: sw.Types(),
		})
	}
	return out, nil
}

// SwitchRepository makes t the active repository type of d. When the type
// actually changes, in-flight reads of d are canceled, its cached queries are
// reset and the selection is persisted. Selecting the active type is a no-op
// that keeps the cache. It reports whether the type changed.
func (c *Container) SwitchRepository(ctx context.Context, d domain.Domain, t domain.RepositoryType) (bool, error) {
	sw, err := c.switchable(d)
	if err != nil {
		return false, err
	}

	changed, err := sw.SetRepositoryType(t)
	if err != nil {
		return false, err
	}
	if !changed {
		c.logger.Debug(ctx, "repository type unchanged",
			logger.String("domain", string(d)),
			logger.String("type", string(t)),
		)
		return false, nil
	}

	if err := c.coordinator.OnRepositoryTypeChanged(ctx, d, t); err != nil {
		return true, err
	}
	if err := c.preferences.SetRepositoryType(d, t); err != nil {
		c.logger.Error(ctx, "persist repository type failed",
			logger.String("domain", string(d)),
			logger.WithError(err),
		)
		return true, err
	}
	return true, nil
}

// SetSelectorVisible shows or hides the repository selector.
func (c *Container) SetSelectorVisible(visible bool) error {
	return c.preferences.SetSelectorVisible(visible)
}
