// Package game defines the authored content for one detective case.
// This package is PURE and must NOT import any infrastructure packages (network, events, platform).
package game

// SpecialCode identifies one of the three fixed investigative locations.
// The numeric codes are part of the authored world (players dial them like
// phone numbers) and are shared by every template.
type SpecialCode string

const (
	CodePolice   SpecialCode = "112102"
	CodeMorgue   SpecialCode = "440321"
	CodeRegistry SpecialCode = "220123"
)

// StartMarker is the sentinel location id for the seeded opening entry.
const StartMarker = "start"

// Bucket names one of the three authored directories.
type Bucket string

const (
	BucketPeople       Bucket = "people"
	BucketGovPlaces    Bucket = "gov_places"
	BucketPublicPlaces Bucket = "public_places"
)

// SpecialLocation holds the main text of a fixed location plus its
// supplementary document (case file, autopsy report, registry report).
type SpecialLocation struct {
	Text       string `json:"text"`
	Supplement string `json:"supplement,omitempty"`
}

// Culprit is the win condition: one or two suspect ids, a display name and
// the ending text shown when the accusation lands.
type Culprit struct {
	IDs     []string `json:"ids"`
	Name    string   `json:"name"`
	EndText string   `json:"end_text"`
}

// Template is the immutable authored content for one case. Rooms reference a
// template by id and never mutate it during play.
type Template struct {
	ID        string `json:"id"`
	StartText string `json:"start_text,omitempty"`
	Newspaper string `json:"newspaper"`

	People       map[string]string `json:"people"`
	GovPlaces    map[string]string `json:"gov_places"`
	PublicPlaces map[string]string `json:"public_places"`

	Police   SpecialLocation `json:"police"`
	Morgue   SpecialLocation `json:"morgue"`
	Registry SpecialLocation `json:"registry"`

	// Places holds free-form authored locations outside the directories.
	Places map[string]string `json:"places"`

	Culprit *Culprit `json:"culprit,omitempty"`

	// Tooltips maps a move count to the hint location unlocked at that count.
	Tooltips map[int]string `json:"tooltips"`
}

// NewTemplate returns a template with every collection initialized and the
// culprit and tooltip schedule in their empty initial state. All default
// handling for missing fields lives here and in EnsureDefaults; nothing else
// may invent defaults.
func NewTemplate(id string) *Template {
	t := &Template{ID: id}
	t.EnsureDefaults()
	return t
}

// EnsureDefaults initializes nil collections. Called after decoding stored
// documents so older documents with missing keys stay usable.
func (t *Template) EnsureDefaults() {
	if t.People == nil {
		t.People = make(map[string]string)
	}
	if t.GovPlaces == nil {
		t.GovPlaces = make(map[string]string)
	}
	if t.PublicPlaces == nil {
		t.PublicPlaces = make(map[string]string)
	}
	if t.Places == nil {
		t.Places = make(map[string]string)
	}
	if t.Tooltips == nil {
		t.Tooltips = make(map[int]string)
	}
}

// Directory returns the named directory bucket, or nil for an unknown bucket.
func (t *Template) Directory(b Bucket) map[string]string {
	switch b {
	case BucketPeople:
		return t.People
	case BucketGovPlaces:
		return t.GovPlaces
	case BucketPublicPlaces:
		return t.PublicPlaces
	}
	return nil
}

// Special returns the fixed location for a special code.
func (t *Template) Special(code SpecialCode) (SpecialLocation, bool) {
	switch code {
	case CodePolice:
		return t.Police, true
	case CodeMorgue:
		return t.Morgue, true
	case CodeRegistry:
		return t.Registry, true
	}
	return SpecialLocation{}, false
}

// TooltipTarget reports whether id is the target of any scheduled tooltip.
func (t *Template) TooltipTarget(id string) bool {
	for _, target := range t.Tooltips {
		if target == id {
			return true
		}
	}
	return false
}
