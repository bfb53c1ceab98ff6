package engine

import (
	"github.com/okuznetsov/gumshoe/server/internal/domain/room"
)

// ViewEntry is one rendered history entry: the raw visit plus the text
// resolved from the template at read time.
type ViewEntry struct {
	Step       int    `json:"step"`
	LocationID string `json:"location_id"`
	VisitedAt  int64  `json:"visited_at"`
	IsTooltip  bool   `json:"is_tooltip,omitempty"`
	Text       string `json:"text"`
	Supplement string `json:"supplement,omitempty"`
}

// Finale is shown once the room is finished.
type Finale struct {
	CulpritName string `json:"culprit_name"`
	EndText     string `json:"end_text"`
	Moves       int    `json:"moves"`
}

// RoomView is the render model for one room: everything a client needs to
// draw the session without touching the template itself.
type RoomView struct {
	RoomID         string      `json:"room_id"`
	TemplateID     string      `json:"template_id"`
	Status         room.Status `json:"status"`
	Move           int         `json:"move"`
	LastActivityAt int64       `json:"last_activity_at"`
	Newspaper      string      `json:"newspaper"`
	Entries        []ViewEntry `json:"entries"`
	Finale         *Finale     `json:"finale,omitempty"`
}

// View derives the render model for a room. The only mutation is lazily
// seeding the opening entry the first time an empty room with an authored
// start text is viewed.
func (e *Engine) View(roomID string) (*RoomView, error) {
	unlock := e.rooms.Acquire(roomID)
	defer unlock()

	r, t, err := e.loadSession(roomID)
	if err != nil {
		return nil, err
	}

	if len(r.History) == 0 && t.StartText != "" {
		r.SeedStart(e.now())
		if err := e.rooms.Save(r); err != nil {
			return nil, err
		}
	}

	view := &RoomView{
		RoomID:         r.ID,
		TemplateID:     r.TemplateID,
		Status:         r.Status,
		Move:           r.Move,
		LastActivityAt: r.LastActivityAt,
		Newspaper:      t.Newspaper,
		Entries:        make([]ViewEntry, 0, len(r.History)),
	}

	for i, h := range r.History {
		res := Resolve(t, h.LocationID)
		view.Entries = append(view.Entries, ViewEntry{
			Step:       i + 1,
			LocationID: h.LocationID,
			VisitedAt:  h.VisitedAt,
			IsTooltip:  h.IsTooltip,
			Text:       res.Text,
			Supplement: res.Supplement,
		})
	}

	if r.Finished() && t.Culprit != nil {
		view.Finale = &Finale{
			CulpritName: t.Culprit.Name,
			EndText:     t.Culprit.EndText,
			Moves:       r.Move,
		}
	}

	return view, nil
}
