// Package engine contains the session state machine of the detective game:
// it validates travels against the authored world, keeps the visit history
// and move counter honest, unlocks scheduled hints and settles accusations.
package engine

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/okuznetsov/gumshoe/server/internal/domain/game"
	"github.com/okuznetsov/gumshoe/server/internal/domain/room"
	"github.com/okuznetsov/gumshoe/server/internal/events"
	"github.com/okuznetsov/gumshoe/server/internal/platform/logger"
	"github.com/okuznetsov/gumshoe/server/internal/platform/metrics"
	"github.com/okuznetsov/gumshoe/server/internal/store"
)

// ErrLocationNotFound means a travel target matched no bucket of the
// template. The room is left untouched.
var ErrLocationNotFound = errors.New("location not found")

// TravelOutcome tells the caller what a travel attempt did.
type TravelOutcome string

const (
	// TravelMoved means a new history entry was appended.
	TravelMoved TravelOutcome = "moved"
	// TravelAlreadyVisited means the location was in the history already;
	// nothing changed and the UI should re-open the existing entry.
	TravelAlreadyVisited TravelOutcome = "already_visited"
	// TravelTooltipInjected means the travel also unlocked a scheduled hint.
	TravelTooltipInjected TravelOutcome = "tooltip_injected"
)

// AccuseOutcome tells the caller how an accusation settled.
type AccuseOutcome string

const (
	AccuseCorrect   AccuseOutcome = "correct"
	AccuseIncorrect AccuseOutcome = "incorrect"
)

// Engine is the session state machine. All mutating operations serialize
// per room through the room store's single-writer lock.
type Engine struct {
	templates *store.TemplateStore
	rooms     *store.RoomStore
	activity  *events.Log
	logger    *logger.Logger

	// now is swappable for tests.
	now func() time.Time
}

// New wires the engine to its stores and the activity log.
func New(templates *store.TemplateStore, rooms *store.RoomStore, activity *events.Log, log *logger.Logger) *Engine {
	return &Engine{
		templates: templates,
		rooms:     rooms,
		activity:  activity,
		logger:    log,
		now:       time.Now,
	}
}

// loadSession fetches a room together with its template. Callers hold the
// room lock when they intend to mutate.
func (e *Engine) loadSession(roomID string) (*room.Room, *game.Template, error) {
	r, err := e.rooms.Get(roomID)
	if err != nil {
		return nil, nil, err
	}
	t, err := e.templates.Get(r.TemplateID)
	if err != nil {
		return nil, nil, err
	}
	return r, t, nil
}

// Travel moves the room to a location. Re-opening an already visited
// location is a no-op signalled as TravelAlreadyVisited. A successful move
// bumps the move counter and may unlock the hint scheduled for the new
// counter value.
func (e *Engine) Travel(roomID, userID, locationID string) (TravelOutcome, error) {
	locationID = strings.TrimSpace(locationID)
	if locationID == "" {
		return "", fmt.Errorf("%w: empty location id", ErrLocationNotFound)
	}

	unlock := e.rooms.Acquire(roomID)
	defer unlock()

	r, t, err := e.loadSession(roomID)
	if err != nil {
		return "", err
	}
	if r.Finished() {
		return "", fmt.Errorf("%w: %s", room.ErrFinished, roomID)
	}

	res := Resolve(t, locationID)
	if res.Kind == KindUnknown {
		metrics.Get().RecordTravelRejected()
		return "", fmt.Errorf("%w: %s", ErrLocationNotFound, locationID)
	}

	if r.HasVisited(locationID) {
		metrics.Get().RecordTravel(true)
		return TravelAlreadyVisited, nil
	}

	now := e.now()
	r.AppendVisit(locationID, false, now)
	outcome := TravelMoved

	// A hint scheduled for the new move count unlocks as a second history
	// entry; it does not advance the counter and never fires twice.
	if target, ok := t.Tooltips[r.Move]; ok && !r.TooltipInjected(target) {
		r.AppendVisit(target, true, now)
		outcome = TravelTooltipInjected
		metrics.Get().RecordTooltip()
	}

	if err := e.rooms.Save(r); err != nil {
		return "", err
	}

	metrics.Get().RecordTravel(false)
	e.activity.Append(events.Activity{
		Action:  events.ActionTravel,
		RoomID:  roomID,
		UserID:  userID,
		Message: "traveled to " + locationID,
		Metadata: map[string]any{
			"location_id": locationID,
			"move":        r.Move,
		},
	})
	if outcome == TravelTooltipInjected {
		e.activity.Append(events.Activity{
			Action:  events.ActionTooltip,
			RoomID:  roomID,
			Message: fmt.Sprintf("hint unlocked at move %d", r.Move),
		})
	}
	e.logger.Action(string(events.ActionTravel), roomID, locationID)

	return outcome, nil
}

// Accuse settles an accusation. Every attempt costs a move, correct or not.
// The input is split on whitespace into one or more suspect ids; an input
// yielding zero candidates is simply incorrect, never an error.
func (e *Engine) Accuse(roomID, userID, suspectInput string) (AccuseOutcome, error) {
	unlock := e.rooms.Acquire(roomID)
	defer unlock()

	r, t, err := e.loadSession(roomID)
	if err != nil {
		return "", err
	}
	if r.Finished() {
		return "", fmt.Errorf("%w: %s", room.ErrFinished, roomID)
	}

	now := e.now()
	r.RecordAccusation(now)

	correct := accusationMatches(t.Culprit, strings.Fields(suspectInput))
	if correct {
		r.Finish(now)
	}

	if err := e.rooms.Save(r); err != nil {
		return "", err
	}

	metrics.Get().RecordAccusation(correct)
	action := events.ActionAccuseIncorrect
	outcome := AccuseIncorrect
	if correct {
		action = events.ActionAccuseCorrect
		outcome = AccuseCorrect
	}
	e.activity.Append(events.Activity{
		Action:  action,
		RoomID:  roomID,
		UserID:  userID,
		Message: "accusation: " + strings.TrimSpace(suspectInput),
		Metadata: map[string]any{
			"move": r.Move,
		},
	})
	e.logger.Action(string(action), roomID, suspectInput)

	return outcome, nil
}

// accusationMatches compares submitted suspect ids against the authored
// culprit. A single-id culprit requires exactly that one id. A two-id
// culprit requires the submitted set to equal the culprit set, in any
// order, with no partial credit.
func accusationMatches(c *game.Culprit, submitted []string) bool {
	if c == nil || len(c.IDs) == 0 || len(submitted) == 0 {
		return false
	}

	switch len(c.IDs) {
	case 1:
		return len(submitted) == 1 && submitted[0] == c.IDs[0]
	case 2:
		want := map[string]bool{c.IDs[0]: true, c.IDs[1]: true}
		got := make(map[string]bool, len(submitted))
		for _, id := range submitted {
			got[id] = true
		}
		if len(got) != len(want) {
			return false
		}
		for id := range want {
			if !got[id] {
				return false
			}
		}
		return true
	}
	return false
}
