// Package store provides the persistence layer for the game server.
// Templates and rooms live as one JSON document per entity; the activity
// log lives in SQLite. The domain packages stay pure and never import this.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrNotFound means no document exists under the requested id.
	ErrNotFound = errors.New("document not found")
	// ErrExists means a document with the requested id already exists.
	ErrExists = errors.New("document already exists")
	// ErrBadID means the id cannot be used as a document name.
	ErrBadID = errors.New("invalid document id")
)

// DocStore keeps one JSON file per document under a single directory.
// Writes go through a temp file and an atomic rename, so a crash mid-write
// never leaves a document truncated.
type DocStore struct {
	dir string
}

// NewDocStore creates the directory if needed and returns a store over it.
func NewDocStore(dir string) (*DocStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	return &DocStore{dir: dir}, nil
}

func validID(id string) bool {
	if id == "" || id == "." || id == ".." {
		return false
	}
	return !strings.ContainsAny(id, "/\\")
}

func (s *DocStore) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}

// Exists reports whether a document is stored under id.
func (s *DocStore) Exists(id string) bool {
	if !validID(id) {
		return false
	}
	_, err := os.Stat(s.path(id))
	return err == nil
}

// Get decodes the document stored under id into v.
func (s *DocStore) Get(id string, v any) error {
	if !validID(id) {
		return fmt.Errorf("%w: %q", ErrBadID, id)
	}
	raw, err := os.ReadFile(s.path(id))
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return fmt.Errorf("failed to read document %s: %w", id, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("failed to decode document %s: %w", id, err)
	}
	return nil
}

// Put writes the document under id, replacing any previous version.
func (s *DocStore) Put(id string, v any) error {
	if !validID(id) {
		return fmt.Errorf("%w: %q", ErrBadID, id)
	}
	raw, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode document %s: %w", id, err)
	}

	// Temp file in the same directory so the rename stays on one filesystem.
	tmp, err := os.CreateTemp(s.dir, id+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", id, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write document %s: %w", id, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to flush document %s: %w", id, err)
	}
	if err := os.Rename(tmpName, s.path(id)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to commit document %s: %w", id, err)
	}
	return nil
}

// Create writes the document only if id is not yet taken.
func (s *DocStore) Create(id string, v any) error {
	if !validID(id) {
		return fmt.Errorf("%w: %q", ErrBadID, id)
	}
	if s.Exists(id) {
		return fmt.Errorf("%w: %s", ErrExists, id)
	}
	return s.Put(id, v)
}

// Delete removes the document. Deleting a missing document is ErrNotFound.
func (s *DocStore) Delete(id string) error {
	if !validID(id) {
		return fmt.Errorf("%w: %q", ErrBadID, id)
	}
	err := os.Remove(s.path(id))
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return fmt.Errorf("failed to delete document %s: %w", id, err)
	}
	return nil
}

// List returns the ids of all stored documents in directory order.
func (s *DocStore) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	var ids []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".json"))
	}
	return ids, nil
}
