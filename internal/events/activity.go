// Package events provides the activity log of the game server: an
// append-only record of every room and template mutation, used by the admin
// audit views and streamed to connected watchers.
package events

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Action categorizes an activity entry.
type Action string

const (
	ActionTravel          Action = "TRAVEL"
	ActionTooltip         Action = "TOOLTIP_UNLOCKED"
	ActionAccuseCorrect   Action = "ACCUSE_CORRECT"
	ActionAccuseIncorrect Action = "ACCUSE_INCORRECT"

	ActionRoomCreate Action = "ROOM_CREATE"
	ActionRoomJoin   Action = "ROOM_JOIN"
	ActionRoomLeave  Action = "ROOM_LEAVE"
	ActionRoomReset  Action = "ROOM_RESET"
	ActionRoomFinish Action = "ROOM_FINISH"
	ActionRoomRebind Action = "ROOM_REBIND"
	ActionRoomDelete Action = "ROOM_DELETE"

	ActionTemplateCreate Action = "TEMPLATE_CREATE"
	ActionTemplateUpdate Action = "TEMPLATE_UPDATE"
	ActionTemplateDelete Action = "TEMPLATE_DELETE"

	ActionMigration Action = "LEGACY_MIGRATION"
)

// Activity is one immutable entry in the log.
type Activity struct {
	ID        string         `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	Action    Action         `json:"action"`
	RoomID    string         `json:"room_id,omitempty"`
	UserID    string         `json:"user_id,omitempty"`
	Message   string         `json:"message"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// Persister defines how an activity entry is durably stored.
type Persister interface {
	Append(a Activity) error
}

// Log is the in-memory append-only activity log with an optional
// write-through persister (SQLite in production).
type Log struct {
	mu        sync.RWMutex
	entries   []Activity
	persister Persister
}

// NewLog creates an activity log with an optional persister.
func NewLog(persister Persister) *Log {
	return &Log{
		entries:   make([]Activity, 0),
		persister: persister,
	}
}

// Append records an activity entry, assigning its id and timestamp.
// Entries are immutable once appended.
func (l *Log) Append(a Activity) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.Timestamp.IsZero() {
		a.Timestamp = time.Now()
	}

	l.mu.Lock()
	l.entries = append(l.entries, a)
	l.mu.Unlock()

	if l.persister != nil {
		// Write through to persistent storage off the request path.
		go func(a Activity) {
			_ = l.persister.Append(a)
		}(a)
	}
}

// Replay returns the full in-memory history.
func (l *Log) Replay() []Activity {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.entries
}

// ByRoom returns all entries touching a specific room.
func (l *Log) ByRoom(roomID string) []Activity {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var result []Activity
	for _, a := range l.entries {
		if a.RoomID == roomID {
			result = append(result, a)
		}
	}
	return result
}

// Len returns the number of in-memory entries.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}
