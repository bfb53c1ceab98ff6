package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okuznetsov/gumshoe/server/internal/domain/game"
)

func TestTemplateStoreCreateAndGet(t *testing.T) {
	s, err := NewTemplateStore(t.TempDir())
	require.NoError(t, err)

	created, err := s.Create("classic")
	require.NoError(t, err)
	assert.Equal(t, "classic", created.ID)

	got, err := s.Get("classic")
	require.NoError(t, err)
	assert.NotNil(t, got.People)
	assert.NotNil(t, got.Tooltips)
}

func TestTemplateStoreCreateDuplicate(t *testing.T) {
	s, err := NewTemplateStore(t.TempDir())
	require.NoError(t, err)

	_, err = s.Create("classic")
	require.NoError(t, err)
	_, err = s.Create("classic")
	assert.ErrorIs(t, err, game.ErrExists)
}

func TestTemplateStoreGetMissing(t *testing.T) {
	s, err := NewTemplateStore(t.TempDir())
	require.NoError(t, err)

	_, err = s.Get("ghost")
	assert.ErrorIs(t, err, game.ErrNotFound)
}

func TestTemplateStoreUpdatePersists(t *testing.T) {
	s, err := NewTemplateStore(t.TempDir())
	require.NoError(t, err)
	_, err = s.Create("classic")
	require.NoError(t, err)

	_, err = s.Update("classic", func(tpl *game.Template) error {
		tpl.Newspaper = "MURDER AT THE MILL"
		tpl.People["111111"] = "The butler."
		tpl.Tooltips[4] = "hint-alley"
		return nil
	})
	require.NoError(t, err)

	got, err := s.Get("classic")
	require.NoError(t, err)
	assert.Equal(t, "MURDER AT THE MILL", got.Newspaper)
	assert.Equal(t, "The butler.", got.People["111111"])
	assert.Equal(t, "hint-alley", got.Tooltips[4])
}

func TestTemplateStoreUpdateErrorDiscardsChanges(t *testing.T) {
	s, err := NewTemplateStore(t.TempDir())
	require.NoError(t, err)
	_, err = s.Create("classic")
	require.NoError(t, err)

	_, err = s.Update("classic", func(tpl *game.Template) error {
		tpl.Newspaper = "should not persist"
		return game.ErrValidation
	})
	assert.ErrorIs(t, err, game.ErrValidation)

	got, err := s.Get("classic")
	require.NoError(t, err)
	assert.Empty(t, got.Newspaper)
}

func TestTemplateStoreImportRoundTrip(t *testing.T) {
	s, err := NewTemplateStore(t.TempDir())
	require.NoError(t, err)

	tpl := game.NewTemplate("imported")
	tpl.StartText = "It was a dark night."
	tpl.Culprit = &game.Culprit{IDs: []string{"111111", "222222"}, Name: "The Pair", EndText: "Done."}
	tpl.Tooltips[7] = "hint"
	require.NoError(t, s.Import(tpl))

	got, err := s.Get("imported")
	require.NoError(t, err)
	assert.Equal(t, tpl.StartText, got.StartText)
	require.NotNil(t, got.Culprit)
	assert.ElementsMatch(t, []string{"111111", "222222"}, got.Culprit.IDs)
	assert.Equal(t, "hint", got.Tooltips[7])
}

func TestTemplateStoreImportRequiresID(t *testing.T) {
	s, err := NewTemplateStore(t.TempDir())
	require.NoError(t, err)

	assert.ErrorIs(t, s.Import(&game.Template{}), game.ErrValidation)
}

func TestTemplateStoreDelete(t *testing.T) {
	s, err := NewTemplateStore(t.TempDir())
	require.NoError(t, err)
	_, err = s.Create("classic")
	require.NoError(t, err)

	require.NoError(t, s.Delete("classic"))
	assert.False(t, s.Exists("classic"))
	assert.ErrorIs(t, s.Delete("classic"), game.ErrNotFound)
}
