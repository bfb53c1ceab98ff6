package lifecycle

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"

	"github.com/okuznetsov/gumshoe/server/internal/domain/game"
	"github.com/okuznetsov/gumshoe/server/internal/events"
	"github.com/okuznetsov/gumshoe/server/internal/platform/logger"
	"github.com/okuznetsov/gumshoe/server/internal/store"
)

// Migrator imports scenarios from the old single-file game state into the
// per-template document store. It is safe to run on every boot: templates
// that already exist are skipped and the monolith file is never modified.
type Migrator struct {
	templates *store.TemplateStore
	activity  *events.Log
	logger    *logger.Logger
}

// NewMigrator wires the migration to the template store and the activity log.
func NewMigrator(templates *store.TemplateStore, activity *events.Log, log *logger.Logger) *Migrator {
	return &Migrator{templates: templates, activity: activity, logger: log}
}

// Run migrates every game found in the legacy file at path and returns the
// number of templates actually imported. A missing file means there is
// nothing to migrate and is not an error.
func (m *Migrator) Run(path string) (int, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read legacy state: %w", err)
	}

	games, err := store.DecodeLegacyState(raw)
	if err != nil {
		return 0, fmt.Errorf("decode legacy state: %w", err)
	}
	if len(games) == 0 {
		return 0, nil
	}

	if err := m.backup(path, raw); err != nil {
		return 0, err
	}

	// Deterministic order so repeated runs log identically.
	ids := make([]string, 0, len(games))
	for id := range games {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	migrated := 0
	for _, id := range ids {
		if m.templates.Exists(id) {
			continue
		}
		t := games[id].Template(id)
		if err := m.templates.Import(t); err != nil {
			if errors.Is(err, game.ErrExists) {
				continue
			}
			return migrated, fmt.Errorf("import template %s: %w", id, err)
		}
		m.logger.Info("migrated legacy game: " + id)
		migrated++
	}

	if migrated > 0 {
		m.activity.Append(events.Activity{
			Action:  events.ActionMigration,
			Message: fmt.Sprintf("migrated %d legacy game(s) from %s", migrated, path),
			Metadata: map[string]any{
				"path":  path,
				"count": migrated,
			},
		})
	}
	return migrated, nil
}

// backup writes a one-time copy of the monolith next to the original before
// the first import touches the document store. An existing backup is left
// alone so the pristine pre-migration snapshot survives repeated runs.
func (m *Migrator) backup(path string, raw []byte) error {
	bak := path + ".bak"
	if _, err := os.Stat(bak); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat backup: %w", err)
	}
	if err := os.WriteFile(bak, raw, 0o644); err != nil {
		return fmt.Errorf("write backup: %w", err)
	}
	m.logger.Info("legacy state backed up to " + bak)
	return nil
}
