package store

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/okuznetsov/gumshoe/server/internal/domain/game"
)

// The first deployments kept every template inside one monolithic
// gameState.json keyed by game id, with the original field names. This file
// keeps that shape loadable for the one-time migration.

// legacyDirectory tolerates both historic encodings of a directory: early
// documents stored a plain list of entry texts, later ones a code->text map.
// List entries get positional keys ("1", "2", ...).
type legacyDirectory map[string]string

func (d *legacyDirectory) UnmarshalJSON(raw []byte) error {
	*d = make(legacyDirectory)

	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "null" {
		return nil
	}
	if strings.HasPrefix(trimmed, "[") {
		var list []string
		if err := json.Unmarshal(raw, &list); err != nil {
			return err
		}
		for i, text := range list {
			(*d)[strconv.Itoa(i+1)] = text
		}
		return nil
	}

	var m map[string]string
	if err := json.Unmarshal(raw, &m); err != nil {
		return err
	}
	for k, v := range m {
		(*d)[k] = v
	}
	return nil
}

// legacyCulprit mirrors the isCulprit blob. The id field held one or two
// suspect ids separated by whitespace.
type legacyCulprit struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	EndText string `json:"endText"`
}

// legacyGame is one template inside the monolithic document.
type legacyGame struct {
	BeginText *string `json:"beginText"`
	Gazeta    string  `json:"gazeta"`

	Spravochnik struct {
		People   legacyDirectory `json:"people"`
		GosPlace legacyDirectory `json:"gosplace"`
		ObPlace  legacyDirectory `json:"obplace"`
	} `json:"spravochnik"`

	// The special locations were keyed by their in-world codes, each with a
	// "text" plus its own supplement key.
	Police   map[string]string `json:"112102"`
	Morgue   map[string]string `json:"440321"`
	Registry map[string]string `json:"220123"`

	Place     map[string]string `json:"place"`
	IsCulprit *legacyCulprit    `json:"isCulprit"`
	Tooltip   map[string]string `json:"tooltip"`
}

// DecodeLegacyState parses a monolithic game-state document.
func DecodeLegacyState(raw []byte) (map[string]legacyGame, error) {
	var doc map[string]legacyGame
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode legacy game state: %w", err)
	}
	return doc, nil
}

// Template converts a legacy game blob into a typed template.
func (lg legacyGame) Template(id string) *game.Template {
	t := game.NewTemplate(id)

	if lg.BeginText != nil {
		t.StartText = *lg.BeginText
	}
	t.Newspaper = lg.Gazeta

	for k, v := range lg.Spravochnik.People {
		t.People[k] = v
	}
	for k, v := range lg.Spravochnik.GosPlace {
		t.GovPlaces[k] = v
	}
	for k, v := range lg.Spravochnik.ObPlace {
		t.PublicPlaces[k] = v
	}

	t.Police = game.SpecialLocation{Text: lg.Police["text"], Supplement: lg.Police["delo"]}
	t.Morgue = game.SpecialLocation{Text: lg.Morgue["text"], Supplement: lg.Morgue["vskrytie"]}
	t.Registry = game.SpecialLocation{Text: lg.Registry["text"], Supplement: lg.Registry["otchet"]}

	for k, v := range lg.Place {
		t.Places[k] = v
	}

	if lg.IsCulprit != nil && strings.TrimSpace(lg.IsCulprit.ID) != "" {
		t.Culprit = &game.Culprit{
			IDs:     strings.Fields(lg.IsCulprit.ID),
			Name:    lg.IsCulprit.Name,
			EndText: lg.IsCulprit.EndText,
		}
	}

	for moveStr, target := range lg.Tooltip {
		move, err := strconv.Atoi(moveStr)
		if err != nil {
			continue // malformed schedule key, nothing to anchor it to
		}
		t.Tooltips[move] = target
	}

	return t
}
