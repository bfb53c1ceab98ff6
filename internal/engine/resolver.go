package engine

import "github.com/okuznetsov/gumshoe/server/internal/domain/game"

// ResolutionKind tags which bucket a location id resolved into.
type ResolutionKind int

const (
	// KindUnknown means the id matched nothing; it is the only kind that
	// makes Travel reject the move.
	KindUnknown ResolutionKind = iota
	// KindStart is the sentinel opening entry.
	KindStart
	// KindSpecial is one of the three fixed investigative locations.
	KindSpecial
	// KindDirectory is an entry of one of the three authored directories.
	KindDirectory
	// KindFreePlace is a free-form authored location.
	KindFreePlace
	// KindTooltip is a scheduled hint target defined nowhere else.
	KindTooltip
)

// Resolution is the outcome of dispatching a location id against a template.
type Resolution struct {
	Kind       ResolutionKind
	Code       game.SpecialCode // set for KindSpecial
	Bucket     game.Bucket      // set for KindDirectory
	Text       string
	Supplement string // set for KindSpecial
}

// Resolve dispatches a location id into its bucket. Precedence when an id
// appears in several buckets: start marker, special codes, people,
// government places, public places, free places, tooltip targets. The first
// match wins.
func Resolve(t *game.Template, locationID string) Resolution {
	if locationID == game.StartMarker {
		return Resolution{Kind: KindStart, Text: t.StartText}
	}

	if loc, ok := t.Special(game.SpecialCode(locationID)); ok {
		return Resolution{
			Kind:       KindSpecial,
			Code:       game.SpecialCode(locationID),
			Text:       loc.Text,
			Supplement: loc.Supplement,
		}
	}

	for _, bucket := range []game.Bucket{game.BucketPeople, game.BucketGovPlaces, game.BucketPublicPlaces} {
		if text, ok := t.Directory(bucket)[locationID]; ok {
			return Resolution{Kind: KindDirectory, Bucket: bucket, Text: text}
		}
	}

	if text, ok := t.Places[locationID]; ok {
		return Resolution{Kind: KindFreePlace, Text: text}
	}

	if t.TooltipTarget(locationID) {
		return Resolution{Kind: KindTooltip}
	}

	return Resolution{Kind: KindUnknown}
}
