// Package preferences persists the selector state that outlives a process:
// the repository type chosen for every domain and whether the selector is
// shown. The file lives under its own path, separate from any entity data.
package preferences

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-repository-switch/domain"
	"github.com/goliatone/go-repository-switch/internal/atomicfile"
)

// Preferences is the persisted selector state.
type Preferences struct {
	Repositories    map[domain.Domain]domain.RepositoryType `yaml:"repositories"`
	SelectorVisible bool                                    `yaml:"selector_visible"`
}

// RepositoryType returns the stored tag for d, or fallback when none is
// stored.
func (p Preferences) RepositoryType(d domain.Domain, fallback domain.RepositoryType) domain.RepositoryType {
	if t, ok := p.Repositories[d]; ok && t != "" {
		return t
	}
	return fallback
}

func (p Preferences) clone() Preferences {
	out := Preferences{
		Repositories:    make(map[domain.Domain]domain.RepositoryType, len(p.Repositories)),
		SelectorVisible: p.SelectorVisible,
	}
	for d, t := range p.Repositories {
		out.Repositories[d] = t
	}
	return out
}

// Store reads and writes preferences as YAML at a fixed path. An empty path
// keeps preferences in memory only.
type Store struct {
	path     string
	defaults Preferences

	mu      sync.Mutex
	current *Preferences
}

// NewStore creates a store backed by path. defaults are used for every value
// the file does not hold.
func NewStore(path string, defaults Preferences) *Store {
	return &Store{path: path, defaults: defaults.clone()}
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Load returns the stored preferences merged over the defaults. A missing
// file yields the defaults.
func (s *Store) Load() (Preferences, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.load()
}

func (s *Store) load() (Preferences, error) {
	if s.current != nil {
		return s.current.clone(), nil
	}

	prefs := s.defaults.clone()
	if s.path != "" {
		data, err := os.ReadFile(s.path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return Preferences{}, fmt.Errorf("read preferences %s: %w", s.path, err)
		default:
			var stored Preferences
			if err := yaml.Unmarshal(data, &stored); err != nil {
				return Preferences{}, fmt.Errorf("parse preferences %s: %w", s.path, err)
			}
			for d, t := range stored.Repositories {
				prefs.Repositories[d] = t
			}
			prefs.SelectorVisible = stored.SelectorVisible
		}
	}

	s.current = &prefs
	return prefs.clone(), nil
}

// Save persists prefs.
func (s *Store) Save(prefs Preferences) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.save(prefs.clone())
}

func (s *Store) save(prefs Preferences) error {
	if s.path != "" {
		data, err := yaml.Marshal(prefs)
		if err != nil {
			return fmt.Errorf("encode preferences: %w", err)
		}
		if err := atomicfile.Write(s.path, data, 0o644); err != nil {
			return fmt.Errorf("write preferences %s: %w", s.path, err)
		}
	}
	s.current = &prefs
	return nil
}

// Update loads the current preferences, applies fn and saves the result.
func (s *Store) Update(fn func(*Preferences)) (Preferences, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prefs, err := s.load()
	if err != nil {
		return Preferences{}, err
	}
	fn(&prefs)
	if err := s.save(prefs); err != nil {
		return Preferences{}, err
	}
	return prefs.clone(), nil
}

// SetRepositoryType records the tag selected for d.
func (s *Store) SetRepositoryType(d domain.Domain, t domain.RepositoryType) error {
	_, err := s.Update(func(p *Preferences) {
		p.Repositories[d] = t
	})
	return err
}

// SetSelectorVisible records whether the selector is shown.
func (s *Store) SetSelectorVisible(visible bool) error {
	_, err := s.Update(func(p *Preferences) {
		p.SelectorVisible = visible
	})
	return err
}
