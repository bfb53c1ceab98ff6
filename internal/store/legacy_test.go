package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const legacyFixture = `{
  "classic": {
    "beginText": "A body was found near the docks.",
    "gazeta": "EVENING HERALD",
    "spravochnik": {
      "people": {"111111": "The butler.", "222222": "The maid."},
      "gosplace": {"555000": "City hall."},
      "obplace": ["The tavern.", "The market."]
    },
    "112102": {"text": "Police station.", "delo": "Case file #7."},
    "440321": {"text": "The morgue.", "vskrytie": "Autopsy: drowning."},
    "220123": {"text": "The registry.", "otchet": "Residence report."},
    "place": {"old-mill": "The abandoned mill."},
    "isCulprit": {"id": "111111 222222", "name": "The Pair", "endText": "Both arrested."},
    "tooltip": {"3": "hint-alley", "bogus": "ignored"}
  }
}`

func TestDecodeLegacyState(t *testing.T) {
	games, err := DecodeLegacyState([]byte(legacyFixture))
	require.NoError(t, err)
	require.Contains(t, games, "classic")

	tpl := games["classic"].Template("classic")

	assert.Equal(t, "A body was found near the docks.", tpl.StartText)
	assert.Equal(t, "EVENING HERALD", tpl.Newspaper)

	assert.Equal(t, "The butler.", tpl.People["111111"])
	assert.Equal(t, "City hall.", tpl.GovPlaces["555000"])

	// List-shaped directories get positional keys.
	assert.Equal(t, "The tavern.", tpl.PublicPlaces["1"])
	assert.Equal(t, "The market.", tpl.PublicPlaces["2"])

	assert.Equal(t, "Police station.", tpl.Police.Text)
	assert.Equal(t, "Case file #7.", tpl.Police.Supplement)
	assert.Equal(t, "Autopsy: drowning.", tpl.Morgue.Supplement)
	assert.Equal(t, "Residence report.", tpl.Registry.Supplement)

	assert.Equal(t, "The abandoned mill.", tpl.Places["old-mill"])

	require.NotNil(t, tpl.Culprit)
	assert.ElementsMatch(t, []string{"111111", "222222"}, tpl.Culprit.IDs)
	assert.Equal(t, "The Pair", tpl.Culprit.Name)

	assert.Equal(t, "hint-alley", tpl.Tooltips[3])
	assert.Len(t, tpl.Tooltips, 1, "malformed schedule keys are skipped")
}

func TestDecodeLegacyStateMissingFields(t *testing.T) {
	games, err := DecodeLegacyState([]byte(`{"bare": {"gazeta": "HERALD"}}`))
	require.NoError(t, err)

	tpl := games["bare"].Template("bare")
	assert.Empty(t, tpl.StartText)
	assert.Equal(t, "HERALD", tpl.Newspaper)
	assert.Nil(t, tpl.Culprit)
	assert.NotNil(t, tpl.People, "collections stay initialized")
	assert.NotNil(t, tpl.Tooltips)
}

func TestDecodeLegacyStateEmptyCulpritID(t *testing.T) {
	games, err := DecodeLegacyState([]byte(`{"g": {"isCulprit": {"id": "  ", "name": "x", "endText": "y"}}}`))
	require.NoError(t, err)

	tpl := games["g"].Template("g")
	assert.Nil(t, tpl.Culprit, "a culprit without ids is not a win condition")
}

func TestDecodeLegacyStateRejectsGarbage(t *testing.T) {
	_, err := DecodeLegacyState([]byte("not json"))
	assert.Error(t, err)
}
