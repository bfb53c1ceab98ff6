package lifecycle

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okuznetsov/gumshoe/server/internal/domain/game"
	"github.com/okuznetsov/gumshoe/server/internal/events"
	"github.com/okuznetsov/gumshoe/server/internal/platform/logger"
	"github.com/okuznetsov/gumshoe/server/internal/store"
)

const legacyState = `{
  "classic": {
    "beginText": "A body was found near the docks.",
    "gazeta": "EVENING HERALD",
    "spravochnik": {
      "people": {"111111": "The butler."},
      "gosplace": {},
      "obplace": {}
    },
    "112102": {"text": "Police station.", "delo": "Case file #7."},
    "440321": {"text": "The morgue.", "vskrytie": "Autopsy."},
    "220123": {"text": "The registry.", "otchet": "Report."},
    "place": {},
    "isCulprit": {"id": "111111", "name": "The Butler", "endText": "Case closed."},
    "tooltip": {"3": "hint-alley"}
  },
  "sequel": {
    "gazeta": "MORNING POST"
  }
}`

func newTestMigrator(t *testing.T) (*Migrator, *store.TemplateStore, *events.Log) {
	t.Helper()

	templates, err := store.NewTemplateStore(t.TempDir())
	require.NoError(t, err)
	activity := events.NewLog(nil)
	return NewMigrator(templates, activity, logger.NewLogger()), templates, activity
}

func writeState(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gameState.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestMigrateImportsTemplates(t *testing.T) {
	m, templates, activity := newTestMigrator(t)
	path := writeState(t, legacyState)

	migrated, err := m.Run(path)
	require.NoError(t, err)
	assert.Equal(t, 2, migrated)

	tpl, err := templates.Get("classic")
	require.NoError(t, err)
	assert.Equal(t, "A body was found near the docks.", tpl.StartText)
	assert.Equal(t, "The butler.", tpl.People["111111"])
	require.NotNil(t, tpl.Culprit)
	assert.Equal(t, []string{"111111"}, tpl.Culprit.IDs)
	assert.Equal(t, "hint-alley", tpl.Tooltips[3])

	sequel, err := templates.Get("sequel")
	require.NoError(t, err)
	assert.Equal(t, "MORNING POST", sequel.Newspaper)

	entries := activity.Replay()
	require.Len(t, entries, 1)
	assert.Equal(t, events.ActionMigration, entries[0].Action)
}

func TestMigrateIsIdempotent(t *testing.T) {
	m, templates, _ := newTestMigrator(t)
	path := writeState(t, legacyState)

	_, err := m.Run(path)
	require.NoError(t, err)

	// Mutate a migrated template, then re-run.
	_, err = templates.Update("classic", func(tpl *game.Template) error {
		tpl.Newspaper = "EDITED"
		return nil
	})
	require.NoError(t, err)

	migrated, err := m.Run(path)
	require.NoError(t, err)
	assert.Zero(t, migrated, "existing templates are skipped")

	tpl, err := templates.Get("classic")
	require.NoError(t, err)
	assert.Equal(t, "EDITED", tpl.Newspaper, "re-running must not clobber edits")
}

func TestMigrateLeavesMonolithUntouchedAndBacksUp(t *testing.T) {
	m, _, _ := newTestMigrator(t)
	path := writeState(t, legacyState)

	_, err := m.Run(path)
	require.NoError(t, err)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, legacyState, string(after), "the monolith is read-only")

	bak, err := os.ReadFile(path + ".bak")
	require.NoError(t, err)
	assert.Equal(t, legacyState, string(bak))
}

func TestMigrateKeepsFirstBackup(t *testing.T) {
	m, _, _ := newTestMigrator(t)
	path := writeState(t, legacyState)

	_, err := m.Run(path)
	require.NoError(t, err)

	// The monolith changes after the first migration; the pristine backup
	// must survive the second run.
	require.NoError(t, os.WriteFile(path, []byte(`{"extra": {"gazeta": "X"}}`), 0o644))
	_, err = m.Run(path)
	require.NoError(t, err)

	bak, err := os.ReadFile(path + ".bak")
	require.NoError(t, err)
	assert.Equal(t, legacyState, string(bak))
}

func TestMigrateMissingFileIsNoOp(t *testing.T) {
	m, _, activity := newTestMigrator(t)

	migrated, err := m.Run(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)
	assert.Zero(t, migrated)
	assert.Zero(t, activity.Len())
}

func TestMigrateRejectsGarbage(t *testing.T) {
	m, _, _ := newTestMigrator(t)
	path := writeState(t, "not json")

	_, err := m.Run(path)
	assert.Error(t, err)
	_, statErr := os.Stat(path + ".bak")
	assert.True(t, os.IsNotExist(statErr), "no backup before a successful decode")
}
