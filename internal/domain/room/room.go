// Package room defines the mutable play state of one live session.
// Several users may share a room; several rooms may share a game template.
// This package is PURE and must NOT import any infrastructure packages.
package room

import "time"

// Status is the lifecycle state of a room. Finished is terminal.
type Status string

const (
	StatusPlaying  Status = "playing"
	StatusFinished Status = "finished"
)

// HistoryEntry is one visited location. Entries are append-only; they are
// cleared only by an explicit admin reset.
type HistoryEntry struct {
	LocationID string `json:"id"`
	VisitedAt  int64  `json:"visited_at"`
	IsTooltip  bool   `json:"is_tooltip,omitempty"`
}

// Room is the live play state bound to a game template.
type Room struct {
	ID         string `json:"id"`
	TemplateID string `json:"game_id"`
	Status     Status `json:"status"`

	// Move counts successful travels and accusation attempts. Tooltip
	// injections and the seeded start entry do not count.
	Move            int            `json:"move"`
	History         []HistoryEntry `json:"location_history"`
	CurrentLocation string         `json:"current_location,omitempty"`

	Users          []string `json:"users"`
	LastActivityAt int64    `json:"last_visited_at"`
}

// New returns a fresh room in the playing state bound to templateID.
func New(id, templateID string, at time.Time) *Room {
	r := &Room{
		ID:         id,
		TemplateID: templateID,
		Status:     StatusPlaying,
	}
	r.EnsureDefaults()
	r.LastActivityAt = at.Unix()
	return r
}

// EnsureDefaults initializes nil collections after decoding a stored document.
func (r *Room) EnsureDefaults() {
	if r.Status == "" {
		r.Status = StatusPlaying
	}
	if r.History == nil {
		r.History = []HistoryEntry{}
	}
	if r.Users == nil {
		r.Users = []string{}
	}
}

// Finished reports whether the room reached its terminal state.
func (r *Room) Finished() bool {
	return r.Status == StatusFinished
}

// HasVisited reports whether any history entry names the location.
func (r *Room) HasVisited(locationID string) bool {
	for _, e := range r.History {
		if e.LocationID == locationID {
			return true
		}
	}
	return false
}

// TooltipInjected reports whether the location was already injected as a
// tooltip. A plain visit to the same location does not count.
func (r *Room) TooltipInjected(locationID string) bool {
	for _, e := range r.History {
		if e.IsTooltip && e.LocationID == locationID {
			return true
		}
	}
	return false
}

// AppendVisit records a visited location, moves the current-location pointer
// and touches the activity timestamp. Tooltip entries do not advance Move.
func (r *Room) AppendVisit(locationID string, tooltip bool, at time.Time) {
	r.History = append(r.History, HistoryEntry{
		LocationID: locationID,
		VisitedAt:  at.Unix(),
		IsTooltip:  tooltip,
	})
	r.CurrentLocation = locationID
	if !tooltip {
		r.Move++
	}
	r.LastActivityAt = at.Unix()
}

// SeedStart plants the opening narrative entry without advancing Move.
// Only valid on an empty history.
func (r *Room) SeedStart(at time.Time) {
	if len(r.History) > 0 {
		return
	}
	r.History = append(r.History, HistoryEntry{
		LocationID: "start",
		VisitedAt:  at.Unix(),
	})
	r.CurrentLocation = "start"
	r.LastActivityAt = at.Unix()
}

// RecordAccusation advances Move for an accusation attempt, correct or not.
func (r *Room) RecordAccusation(at time.Time) {
	r.Move++
	r.LastActivityAt = at.Unix()
}

// Finish flips the room to its terminal state.
func (r *Room) Finish(at time.Time) {
	r.Status = StatusFinished
	r.LastActivityAt = at.Unix()
}

// AddUser adds a user to the membership set. Adding twice is a no-op.
func (r *Room) AddUser(userID string, at time.Time) {
	for _, u := range r.Users {
		if u == userID {
			return
		}
	}
	r.Users = append(r.Users, userID)
	r.LastActivityAt = at.Unix()
}

// RemoveUser drops a user from the membership set.
func (r *Room) RemoveUser(userID string, at time.Time) {
	for i, u := range r.Users {
		if u == userID {
			r.Users = append(r.Users[:i], r.Users[i+1:]...)
			r.LastActivityAt = at.Unix()
			return
		}
	}
}

// HasUser reports membership.
func (r *Room) HasUser(userID string) bool {
	for _, u := range r.Users {
		if u == userID {
			return true
		}
	}
	return false
}

// Reset restores the room to a pristine playing state. The template binding
// survives the reset.
func (r *Room) Reset(at time.Time) {
	r.Status = StatusPlaying
	r.Move = 0
	r.History = []HistoryEntry{}
	r.CurrentLocation = ""
	r.Users = []string{}
	r.LastActivityAt = at.Unix()
}
