// Package lifecycle holds the administrative operations on templates and
// rooms: creation, authoring updates, reset, forced completion, deletion and
// the one-time legacy storage migration. Player-facing play goes through the
// engine package instead.
package lifecycle

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/okuznetsov/gumshoe/server/internal/domain/game"
	"github.com/okuznetsov/gumshoe/server/internal/domain/room"
	"github.com/okuznetsov/gumshoe/server/internal/events"
	"github.com/okuznetsov/gumshoe/server/internal/platform/logger"
	"github.com/okuznetsov/gumshoe/server/internal/store"
)

// Admin performs privileged template and room operations.
type Admin struct {
	templates *store.TemplateStore
	rooms     *store.RoomStore
	activity  *events.Log
	logger    *logger.Logger

	now func() time.Time
}

// NewAdmin wires the admin operations to the stores and the activity log.
func NewAdmin(templates *store.TemplateStore, rooms *store.RoomStore, activity *events.Log, log *logger.Logger) *Admin {
	return &Admin{
		templates: templates,
		rooms:     rooms,
		activity:  activity,
		logger:    log,
		now:       time.Now,
	}
}

func (a *Admin) record(action events.Action, roomID, userID, message string, meta map[string]any) {
	a.activity.Append(events.Activity{
		Action:   action,
		RoomID:   roomID,
		UserID:   userID,
		Message:  message,
		Metadata: meta,
	})
	a.logger.Action(string(action), roomID, message)
}

// --- Templates -----------------------------------------------------------

// CreateTemplate initializes an empty template.
func (a *Admin) CreateTemplate(id, userID string) (*game.Template, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: template id is required", game.ErrValidation)
	}
	t, err := a.templates.Create(id)
	if err != nil {
		return nil, err
	}
	a.record(events.ActionTemplateCreate, "", userID, "template created: "+id, map[string]any{"template_id": id})
	return t, nil
}

// GetTemplate loads a template.
func (a *Admin) GetTemplate(id string) (*game.Template, error) {
	return a.templates.Get(id)
}

// EnsureTemplate returns the stored template, creating an empty one when it
// does not exist yet. Authoring flows call this before their first field
// update; plain updates on a missing template stay NotFound.
func (a *Admin) EnsureTemplate(id, userID string) (*game.Template, error) {
	t, err := a.templates.Get(id)
	if err == nil {
		return t, nil
	}
	if !errors.Is(err, game.ErrNotFound) {
		return nil, err
	}
	return a.CreateTemplate(id, userID)
}

// ListTemplates returns all template ids.
func (a *Admin) ListTemplates() ([]string, error) {
	return a.templates.List()
}

// DeleteTemplate hard-deletes a template. Rooms still referencing it will
// surface TemplateNotFound on their next operation; there is no cascade.
func (a *Admin) DeleteTemplate(id, userID string) error {
	if err := a.templates.Delete(id); err != nil {
		return err
	}
	a.record(events.ActionTemplateDelete, "", userID, "template deleted: "+id, map[string]any{"template_id": id})
	return nil
}

func (a *Admin) updateTemplate(id, userID, what string, mutate func(*game.Template) error) error {
	if _, err := a.templates.Update(id, mutate); err != nil {
		return err
	}
	a.record(events.ActionTemplateUpdate, "", userID, "template updated: "+id+" ("+what+")",
		map[string]any{"template_id": id, "field": what})
	return nil
}

// SetStartText sets the opening narrative.
func (a *Admin) SetStartText(id, userID, text string) error {
	return a.updateTemplate(id, userID, "start_text", func(t *game.Template) error {
		t.StartText = text
		return nil
	})
}

// SetNewspaper replaces the newspaper text.
func (a *Admin) SetNewspaper(id, userID, text string) error {
	return a.updateTemplate(id, userID, "newspaper", func(t *game.Template) error {
		t.Newspaper = text
		return nil
	})
}

// AddDirectoryEntry adds one entry to a directory bucket.
func (a *Admin) AddDirectoryEntry(id, userID string, bucket game.Bucket, entryID, text string) error {
	entryID = strings.TrimSpace(entryID)
	if entryID == "" || strings.TrimSpace(text) == "" {
		return fmt.Errorf("%w: directory entry id and text are required", game.ErrValidation)
	}
	return a.updateTemplate(id, userID, string(bucket), func(t *game.Template) error {
		dir := t.Directory(bucket)
		if dir == nil {
			return fmt.Errorf("%w: unknown directory %q", game.ErrValidation, bucket)
		}
		dir[entryID] = text
		return nil
	})
}

// SetSpecial sets the main text and supplement of a fixed location. Empty
// arguments leave the existing value in place, matching the old authoring
// forms which submitted only the edited field.
func (a *Admin) SetSpecial(id, userID string, code game.SpecialCode, text, supplement string) error {
	return a.updateTemplate(id, userID, string(code), func(t *game.Template) error {
		var loc *game.SpecialLocation
		switch code {
		case game.CodePolice:
			loc = &t.Police
		case game.CodeMorgue:
			loc = &t.Morgue
		case game.CodeRegistry:
			loc = &t.Registry
		default:
			return fmt.Errorf("%w: unknown special code %q", game.ErrValidation, code)
		}
		if text != "" {
			loc.Text = text
		}
		if supplement != "" {
			loc.Supplement = supplement
		}
		return nil
	})
}

// AddPlace adds a free-form location.
func (a *Admin) AddPlace(id, userID, placeID, text string) error {
	placeID = strings.TrimSpace(placeID)
	if placeID == "" || strings.TrimSpace(text) == "" {
		return fmt.Errorf("%w: place id and text are required", game.ErrValidation)
	}
	return a.updateTemplate(id, userID, "place", func(t *game.Template) error {
		t.Places[placeID] = text
		return nil
	})
}

// SetCulprit defines the win condition: one or two suspect ids, the display
// name and the ending text.
func (a *Admin) SetCulprit(id, userID string, ids []string, name, endText string) error {
	cleaned := make([]string, 0, len(ids))
	for _, s := range ids {
		if s = strings.TrimSpace(s); s != "" {
			cleaned = append(cleaned, s)
		}
	}
	if len(cleaned) < 1 || len(cleaned) > 2 {
		return fmt.Errorf("%w: culprit needs one or two suspect ids", game.ErrValidation)
	}
	if strings.TrimSpace(name) == "" || strings.TrimSpace(endText) == "" {
		return fmt.Errorf("%w: culprit name and ending text are required", game.ErrValidation)
	}
	return a.updateTemplate(id, userID, "culprit", func(t *game.Template) error {
		t.Culprit = &game.Culprit{IDs: cleaned, Name: name, EndText: endText}
		return nil
	})
}

// SetTooltip schedules a hint location for a move count.
func (a *Admin) SetTooltip(id, userID string, move int, target string) error {
	target = strings.TrimSpace(target)
	if move <= 0 || target == "" {
		return fmt.Errorf("%w: tooltip needs a positive move count and a target", game.ErrValidation)
	}
	return a.updateTemplate(id, userID, "tooltip", func(t *game.Template) error {
		t.Tooltips[move] = target
		return nil
	})
}

// --- Rooms ---------------------------------------------------------------

// CreateRoom binds a new room to an existing template. An empty room id gets
// a generated one.
func (a *Admin) CreateRoom(roomID, templateID, userID string) (*room.Room, error) {
	roomID = strings.TrimSpace(roomID)
	if roomID == "" {
		roomID = uuid.NewString()
	}
	if !a.templates.Exists(templateID) {
		return nil, fmt.Errorf("%w: %s", game.ErrNotFound, templateID)
	}

	r := room.New(roomID, templateID, a.now())
	if err := a.rooms.Create(r); err != nil {
		return nil, err
	}
	a.record(events.ActionRoomCreate, roomID, userID, "room created on template "+templateID,
		map[string]any{"template_id": templateID})
	return r, nil
}

// GetRoom loads a room.
func (a *Admin) GetRoom(id string) (*room.Room, error) {
	return a.rooms.Get(id)
}

// ListRooms loads every room for the dashboard.
func (a *Admin) ListRooms() ([]*room.Room, error) {
	return a.rooms.List()
}

func (a *Admin) mutateRoom(roomID string, fn func(*room.Room) error) (*room.Room, error) {
	unlock := a.rooms.Acquire(roomID)
	defer unlock()

	r, err := a.rooms.Get(roomID)
	if err != nil {
		return nil, err
	}
	if err := fn(r); err != nil {
		return nil, err
	}
	if err := a.rooms.Save(r); err != nil {
		return nil, err
	}
	return r, nil
}

// JoinRoom adds a user to the room membership.
func (a *Admin) JoinRoom(roomID, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return fmt.Errorf("%w: user id is required", game.ErrValidation)
	}
	if _, err := a.mutateRoom(roomID, func(r *room.Room) error {
		r.AddUser(userID, a.now())
		return nil
	}); err != nil {
		return err
	}
	a.record(events.ActionRoomJoin, roomID, userID, "user joined", nil)
	return nil
}

// LeaveRoom removes a user from the room membership. The caller clears its
// own active-room pointer; the room keeps playing for everyone else.
func (a *Admin) LeaveRoom(roomID, userID string) error {
	if _, err := a.mutateRoom(roomID, func(r *room.Room) error {
		r.RemoveUser(userID, a.now())
		return nil
	}); err != nil {
		return err
	}
	a.record(events.ActionRoomLeave, roomID, userID, "user left", nil)
	return nil
}

// ResetRoom restores a room to a pristine playing state. The template
// binding survives.
func (a *Admin) ResetRoom(roomID, userID string) error {
	if _, err := a.mutateRoom(roomID, func(r *room.Room) error {
		r.Reset(a.now())
		return nil
	}); err != nil {
		return err
	}
	a.record(events.ActionRoomReset, roomID, userID, "room reset", nil)
	return nil
}

// FinishRoom forces a room into its terminal state without an accusation.
func (a *Admin) FinishRoom(roomID, userID string) error {
	if _, err := a.mutateRoom(roomID, func(r *room.Room) error {
		r.Finish(a.now())
		return nil
	}); err != nil {
		return err
	}
	a.record(events.ActionRoomFinish, roomID, userID, "room finished by admin", nil)
	return nil
}

// RebindRoom points a room at another existing template. Play state is kept;
// resets are a separate decision.
func (a *Admin) RebindRoom(roomID, templateID, userID string) error {
	if !a.templates.Exists(templateID) {
		return fmt.Errorf("%w: %s", game.ErrNotFound, templateID)
	}
	if _, err := a.mutateRoom(roomID, func(r *room.Room) error {
		r.TemplateID = templateID
		r.LastActivityAt = a.now().Unix()
		return nil
	}); err != nil {
		return err
	}
	a.record(events.ActionRoomRebind, roomID, userID, "room rebound to template "+templateID,
		map[string]any{"template_id": templateID})
	return nil
}

// DeleteRoom hard-deletes a room. Callers must clear any user session
// pointers referencing this id themselves.
func (a *Admin) DeleteRoom(roomID, userID string) error {
	if err := a.rooms.Delete(roomID); err != nil {
		return err
	}
	a.record(events.ActionRoomDelete, roomID, userID, "room deleted", nil)
	return nil
}
