package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/okuznetsov/gumshoe/server/internal/domain/game"
	"github.com/okuznetsov/gumshoe/server/internal/domain/room"
	"github.com/okuznetsov/gumshoe/server/internal/events"
	"github.com/okuznetsov/gumshoe/server/internal/platform/logger"
	"github.com/okuznetsov/gumshoe/server/internal/store"
)

func newTestEngine(t *testing.T, tpl *game.Template) (*Engine, *store.RoomStore) {
	t.Helper()

	templates, err := store.NewTemplateStore(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to open template store: %v", err)
	}
	rooms, err := store.NewRoomStore(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to open room store: %v", err)
	}
	if err := templates.Import(tpl); err != nil {
		t.Fatalf("Failed to import template: %v", err)
	}

	eng := New(templates, rooms, events.NewLog(nil), logger.NewLogger())
	eng.now = func() time.Time { return time.Unix(1700000000, 0) }
	return eng, rooms
}

func createRoom(t *testing.T, rooms *store.RoomStore, id, templateID string) {
	t.Helper()
	if err := rooms.Create(room.New(id, templateID, time.Unix(1700000000, 0))); err != nil {
		t.Fatalf("Failed to create room: %v", err)
	}
}

func TestTravelAppendsHistoryAndBumpsMove(t *testing.T) {
	eng, rooms := newTestEngine(t, buildTemplate())
	createRoom(t, rooms, "r1", "classic")

	outcome, err := eng.Travel("r1", "alice", "111111")
	if err != nil {
		t.Fatalf("Travel failed: %v", err)
	}
	if outcome != TravelMoved {
		t.Errorf("Expected outcome moved, got %s", outcome)
	}

	r, err := rooms.Get("r1")
	if err != nil {
		t.Fatalf("Failed to reload room: %v", err)
	}
	if r.Move != 1 {
		t.Errorf("Expected Move=1, got %d", r.Move)
	}
	if r.CurrentLocation != "111111" {
		t.Errorf("Expected current location 111111, got %s", r.CurrentLocation)
	}
}

func TestTravelAlreadyVisitedIsNoOp(t *testing.T) {
	eng, rooms := newTestEngine(t, buildTemplate())
	createRoom(t, rooms, "r1", "classic")

	if _, err := eng.Travel("r1", "alice", "111111"); err != nil {
		t.Fatalf("First travel failed: %v", err)
	}
	outcome, err := eng.Travel("r1", "alice", "111111")
	if err != nil {
		t.Fatalf("Second travel failed: %v", err)
	}
	if outcome != TravelAlreadyVisited {
		t.Errorf("Expected outcome already_visited, got %s", outcome)
	}

	r, _ := rooms.Get("r1")
	if r.Move != 1 {
		t.Errorf("Revisit must not advance Move, got %d", r.Move)
	}
	if len(r.History) != 1 {
		t.Errorf("Revisit must not append history, got %d entries", len(r.History))
	}
}

func TestTravelUnknownLocationRejected(t *testing.T) {
	eng, rooms := newTestEngine(t, buildTemplate())
	createRoom(t, rooms, "r1", "classic")

	_, err := eng.Travel("r1", "alice", "nowhere")
	if !errors.Is(err, ErrLocationNotFound) {
		t.Fatalf("Expected ErrLocationNotFound, got %v", err)
	}

	r, _ := rooms.Get("r1")
	if r.Move != 0 || len(r.History) != 0 {
		t.Errorf("Rejected travel must leave the room untouched, got %+v", r)
	}
}

func TestTravelInjectsScheduledTooltipOnce(t *testing.T) {
	tpl := buildTemplate()
	tpl.Tooltips = map[int]string{2: "hint-alley"}
	eng, rooms := newTestEngine(t, tpl)
	createRoom(t, rooms, "r1", "classic")

	if _, err := eng.Travel("r1", "alice", "111111"); err != nil {
		t.Fatalf("Travel 1 failed: %v", err)
	}
	outcome, err := eng.Travel("r1", "alice", "555000")
	if err != nil {
		t.Fatalf("Travel 2 failed: %v", err)
	}
	if outcome != TravelTooltipInjected {
		t.Errorf("Expected tooltip injection at move 2, got %s", outcome)
	}

	r, _ := rooms.Get("r1")
	if r.Move != 2 {
		t.Errorf("Tooltip entry must not advance Move, got %d", r.Move)
	}
	if len(r.History) != 3 {
		t.Fatalf("Expected 3 history entries (2 visits + tooltip), got %d", len(r.History))
	}
	last := r.History[2]
	if !last.IsTooltip || last.LocationID != "hint-alley" {
		t.Errorf("Expected the tooltip entry last, got %+v", last)
	}
}

func TestTooltipNeverFiresTwice(t *testing.T) {
	tpl := buildTemplate()
	// Scheduled at two move counts pointing at the same target.
	tpl.Tooltips = map[int]string{1: "hint-alley", 2: "hint-alley"}
	eng, rooms := newTestEngine(t, tpl)
	createRoom(t, rooms, "r1", "classic")

	if out, _ := eng.Travel("r1", "alice", "111111"); out != TravelTooltipInjected {
		t.Fatalf("Expected the first travel to inject, got %s", out)
	}
	out, err := eng.Travel("r1", "alice", "555000")
	if err != nil {
		t.Fatalf("Travel 2 failed: %v", err)
	}
	if out != TravelMoved {
		t.Errorf("Expected no second injection, got %s", out)
	}

	r, _ := rooms.Get("r1")
	injected := 0
	for _, e := range r.History {
		if e.IsTooltip {
			injected++
		}
	}
	if injected != 1 {
		t.Errorf("Expected exactly one injected tooltip entry, got %d", injected)
	}
}

func TestAccuseSingleCulprit(t *testing.T) {
	tpl := buildTemplate()
	tpl.Culprit = &game.Culprit{IDs: []string{"111111"}, Name: "The Butler", EndText: "Case closed."}
	eng, rooms := newTestEngine(t, tpl)
	createRoom(t, rooms, "r1", "classic")

	out, err := eng.Accuse("r1", "alice", "111111")
	if err != nil {
		t.Fatalf("Accuse failed: %v", err)
	}
	if out != AccuseCorrect {
		t.Errorf("Expected correct, got %s", out)
	}

	r, _ := rooms.Get("r1")
	if !r.Finished() {
		t.Error("Expected the room to be finished after a correct accusation")
	}
	if r.Move != 1 {
		t.Errorf("Expected the accusation to cost a move, got %d", r.Move)
	}
}

func TestAccuseSingleCulpritRejectsExtraIDs(t *testing.T) {
	tpl := buildTemplate()
	tpl.Culprit = &game.Culprit{IDs: []string{"111111"}, Name: "The Butler", EndText: "Case closed."}
	eng, rooms := newTestEngine(t, tpl)
	createRoom(t, rooms, "r1", "classic")

	out, err := eng.Accuse("r1", "alice", "111111 555000")
	if err != nil {
		t.Fatalf("Accuse failed: %v", err)
	}
	if out != AccuseIncorrect {
		t.Errorf("Naming the culprit plus a bystander must be incorrect, got %s", out)
	}

	r, _ := rooms.Get("r1")
	if r.Finished() {
		t.Error("Room must keep playing after an incorrect accusation")
	}
	if r.Move != 1 {
		t.Errorf("Incorrect accusations still cost a move, got %d", r.Move)
	}
}

func TestAccusePairCulpritOrderIndependent(t *testing.T) {
	tpl := buildTemplate()
	tpl.Culprit = &game.Culprit{IDs: []string{"111111", "555000"}, Name: "The Pair", EndText: "Both arrested."}
	eng, rooms := newTestEngine(t, tpl)
	createRoom(t, rooms, "r1", "classic")

	out, err := eng.Accuse("r1", "alice", "555000 111111")
	if err != nil {
		t.Fatalf("Accuse failed: %v", err)
	}
	if out != AccuseCorrect {
		t.Errorf("Expected order-independent match, got %s", out)
	}
}

func TestAccusePairCulpritRejectsPartial(t *testing.T) {
	tpl := buildTemplate()
	tpl.Culprit = &game.Culprit{IDs: []string{"111111", "555000"}, Name: "The Pair", EndText: "Both arrested."}
	eng, rooms := newTestEngine(t, tpl)
	createRoom(t, rooms, "r1", "classic")

	out, err := eng.Accuse("r1", "alice", "111111")
	if err != nil {
		t.Fatalf("Accuse failed: %v", err)
	}
	if out != AccuseIncorrect {
		t.Errorf("Naming only one of two culprits must be incorrect, got %s", out)
	}
}

func TestAccuseWithoutCulpritIsIncorrect(t *testing.T) {
	eng, rooms := newTestEngine(t, buildTemplate())
	createRoom(t, rooms, "r1", "classic")

	out, err := eng.Accuse("r1", "alice", "111111")
	if err != nil {
		t.Fatalf("Accuse failed: %v", err)
	}
	if out != AccuseIncorrect {
		t.Errorf("A template without a culprit can never be solved, got %s", out)
	}
}

func TestFinishedRoomRejectsPlay(t *testing.T) {
	tpl := buildTemplate()
	tpl.Culprit = &game.Culprit{IDs: []string{"111111"}, Name: "The Butler", EndText: "Case closed."}
	eng, rooms := newTestEngine(t, tpl)
	createRoom(t, rooms, "r1", "classic")

	if _, err := eng.Accuse("r1", "alice", "111111"); err != nil {
		t.Fatalf("Accuse failed: %v", err)
	}

	if _, err := eng.Travel("r1", "alice", "555000"); !errors.Is(err, room.ErrFinished) {
		t.Errorf("Expected ErrFinished on travel, got %v", err)
	}
	if _, err := eng.Accuse("r1", "alice", "111111"); !errors.Is(err, room.ErrFinished) {
		t.Errorf("Expected ErrFinished on accuse, got %v", err)
	}
}

func TestTravelMissingRoom(t *testing.T) {
	eng, _ := newTestEngine(t, buildTemplate())

	if _, err := eng.Travel("ghost", "alice", "111111"); !errors.Is(err, room.ErrNotFound) {
		t.Errorf("Expected room.ErrNotFound, got %v", err)
	}
}

func TestViewSeedsStartEntryOnce(t *testing.T) {
	eng, rooms := newTestEngine(t, buildTemplate())
	createRoom(t, rooms, "r1", "classic")

	view, err := eng.View("r1")
	if err != nil {
		t.Fatalf("View failed: %v", err)
	}
	if len(view.Entries) != 1 {
		t.Fatalf("Expected the seeded start entry, got %d entries", len(view.Entries))
	}
	if view.Entries[0].LocationID != game.StartMarker {
		t.Errorf("Expected the start marker, got %s", view.Entries[0].LocationID)
	}
	if view.Entries[0].Text != "A body was found." {
		t.Errorf("Expected the start text resolved, got %q", view.Entries[0].Text)
	}
	if view.Move != 0 {
		t.Errorf("Seeding must not advance Move, got %d", view.Move)
	}

	// A second view must not duplicate the entry.
	view, err = eng.View("r1")
	if err != nil {
		t.Fatalf("Second view failed: %v", err)
	}
	if len(view.Entries) != 1 {
		t.Errorf("Expected a single start entry after reviewing, got %d", len(view.Entries))
	}
}

func TestViewRendersFinale(t *testing.T) {
	tpl := buildTemplate()
	tpl.Culprit = &game.Culprit{IDs: []string{"111111"}, Name: "The Butler", EndText: "Case closed."}
	eng, rooms := newTestEngine(t, tpl)
	createRoom(t, rooms, "r1", "classic")

	if _, err := eng.Travel("r1", "alice", "555000"); err != nil {
		t.Fatalf("Travel failed: %v", err)
	}
	if _, err := eng.Accuse("r1", "alice", "111111"); err != nil {
		t.Fatalf("Accuse failed: %v", err)
	}

	view, err := eng.View("r1")
	if err != nil {
		t.Fatalf("View failed: %v", err)
	}
	if view.Status != room.StatusFinished {
		t.Errorf("Expected finished status, got %s", view.Status)
	}
	if view.Finale == nil {
		t.Fatal("Expected a finale on the finished room")
	}
	if view.Finale.CulpritName != "The Butler" || view.Finale.EndText != "Case closed." {
		t.Errorf("Unexpected finale: %+v", view.Finale)
	}
	if view.Finale.Moves != 2 {
		t.Errorf("Expected 2 moves in the finale, got %d", view.Finale.Moves)
	}
}
