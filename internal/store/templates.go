package store

import (
	"errors"
	"fmt"

	"github.com/okuznetsov/gumshoe/server/internal/domain/game"
	"github.com/okuznetsov/gumshoe/server/internal/platform/metrics"
)

// TemplateStore is the content store: CRUD over authored game templates.
type TemplateStore struct {
	docs  *DocStore
	locks *keyedMutex
}

// NewTemplateStore opens the template store rooted at dir.
func NewTemplateStore(dir string) (*TemplateStore, error) {
	docs, err := NewDocStore(dir)
	if err != nil {
		return nil, err
	}
	return &TemplateStore{docs: docs, locks: newKeyedMutex()}, nil
}

// Create initializes an empty template under id.
func (s *TemplateStore) Create(id string) (*game.Template, error) {
	unlock := s.locks.Acquire(id)
	defer unlock()

	t := game.NewTemplate(id)
	if err := s.docs.Create(id, t); err != nil {
		if errors.Is(err, ErrExists) {
			return nil, fmt.Errorf("%w: %s", game.ErrExists, id)
		}
		metrics.Get().RecordDocWrite(err)
		return nil, err
	}
	metrics.Get().RecordDocWrite(nil)
	return t, nil
}

// Get loads a template by id.
func (s *TemplateStore) Get(id string) (*game.Template, error) {
	var t game.Template
	if err := s.docs.Get(id, &t); err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrBadID) {
			return nil, fmt.Errorf("%w: %s", game.ErrNotFound, id)
		}
		return nil, err
	}
	t.EnsureDefaults()
	return &t, nil
}

// Exists reports whether a template is stored under id.
func (s *TemplateStore) Exists(id string) bool {
	return s.docs.Exists(id)
}

// Update applies mutate to the stored template and persists the whole
// document atomically. The per-template lock covers the read-modify-write.
func (s *TemplateStore) Update(id string, mutate func(*game.Template) error) (*game.Template, error) {
	unlock := s.locks.Acquire(id)
	defer unlock()

	t, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if err := mutate(t); err != nil {
		return nil, err
	}
	if err := s.docs.Put(id, t); err != nil {
		metrics.Get().RecordDocWrite(err)
		return nil, err
	}
	metrics.Get().RecordDocWrite(nil)
	return t, nil
}

// Import stores a fully authored template, replacing any previous version.
func (s *TemplateStore) Import(t *game.Template) error {
	if t.ID == "" {
		return fmt.Errorf("%w: template id is required", game.ErrValidation)
	}
	unlock := s.locks.Acquire(t.ID)
	defer unlock()

	t.EnsureDefaults()
	err := s.docs.Put(t.ID, t)
	metrics.Get().RecordDocWrite(err)
	return err
}

// Delete removes a template. Callers are responsible for rooms that still
// reference it; there is no cascading integrity enforcement.
func (s *TemplateStore) Delete(id string) error {
	unlock := s.locks.Acquire(id)
	defer unlock()

	if err := s.docs.Delete(id); err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrBadID) {
			return fmt.Errorf("%w: %s", game.ErrNotFound, id)
		}
		return err
	}
	return nil
}

// List returns the ids of all stored templates.
func (s *TemplateStore) List() ([]string, error) {
	return s.docs.List()
}
