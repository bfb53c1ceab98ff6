// Package api exposes the game over HTTP. Handlers translate between JSON
// requests and the engine/lifecycle operations; no game rules live here.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/okuznetsov/gumshoe/server/internal/domain/game"
	"github.com/okuznetsov/gumshoe/server/internal/domain/room"
	"github.com/okuznetsov/gumshoe/server/internal/engine"
	"github.com/okuznetsov/gumshoe/server/internal/lifecycle"
	"github.com/okuznetsov/gumshoe/server/internal/network"
	"github.com/okuznetsov/gumshoe/server/internal/platform/logger"
	"github.com/okuznetsov/gumshoe/server/internal/platform/metrics"
)

// Server bundles the handlers' dependencies.
type Server struct {
	engine *engine.Engine
	admin  *lifecycle.Admin
	hub    *network.Hub
	logger *logger.Logger
}

// NewServer wires the HTTP layer to the engine and the admin operations.
func NewServer(eng *engine.Engine, admin *lifecycle.Admin, hub *network.Hub, log *logger.Logger) *Server {
	return &Server{engine: eng, admin: admin, hub: hub, logger: log}
}

// Routes builds the request mux.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/templates", s.handleCreateTemplate)
	mux.HandleFunc("GET /api/templates", s.handleListTemplates)
	mux.HandleFunc("GET /api/templates/{id}", s.handleGetTemplate)
	mux.HandleFunc("PATCH /api/templates/{id}", s.handleUpdateTemplate)
	mux.HandleFunc("DELETE /api/templates/{id}", s.handleDeleteTemplate)

	mux.HandleFunc("POST /api/rooms", s.handleCreateRoom)
	mux.HandleFunc("GET /api/rooms", s.handleListRooms)
	mux.HandleFunc("GET /api/rooms/{id}", s.handleGetRoom)
	mux.HandleFunc("GET /api/rooms/{id}/view", s.handleView)
	mux.HandleFunc("POST /api/rooms/{id}/travel", s.handleTravel)
	mux.HandleFunc("POST /api/rooms/{id}/accuse", s.handleAccuse)
	mux.HandleFunc("POST /api/rooms/{id}/join", s.handleJoin)
	mux.HandleFunc("POST /api/rooms/{id}/leave", s.handleLeave)
	mux.HandleFunc("POST /api/rooms/{id}/reset", s.handleReset)
	mux.HandleFunc("POST /api/rooms/{id}/finish", s.handleFinish)
	mux.HandleFunc("POST /api/rooms/{id}/rebind", s.handleRebind)
	mux.HandleFunc("DELETE /api/rooms/{id}", s.handleDeleteRoom)

	mux.Handle("GET /api/metrics", metrics.Handler())
	mux.Handle("GET /metrics", metrics.PrometheusHandler())
	mux.HandleFunc("GET /ws", s.handleWS)

	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// fail maps domain errors onto HTTP statuses.
func (s *Server) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, game.ErrNotFound) || errors.Is(err, room.ErrNotFound):
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, game.ErrExists) || errors.Is(err, room.ErrExists):
		writeError(w, http.StatusConflict, err)
	case errors.Is(err, room.ErrFinished):
		writeError(w, http.StatusConflict, err)
	case errors.Is(err, game.ErrValidation):
		writeError(w, http.StatusBadRequest, err)
	default:
		s.logger.Error("request failed: " + err.Error())
		writeError(w, http.StatusInternalServerError, err)
	}
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return game.ErrValidation
	}
	return nil
}

// --- Templates -----------------------------------------------------------

func (s *Server) handleCreateTemplate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID     string `json:"id"`
		UserID string `json:"user_id"`
	}
	if err := decode(r, &req); err != nil {
		s.fail(w, err)
		return
	}
	t, err := s.admin.CreateTemplate(req.ID, req.UserID)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	ids, err := s.admin.ListTemplates()
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"templates": ids})
}

func (s *Server) handleGetTemplate(w http.ResponseWriter, r *http.Request) {
	t, err := s.admin.GetTemplate(r.PathValue("id"))
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// templateFieldRequest is the single authoring payload. Field selects the
// operation; the remaining members carry its arguments.
type templateFieldRequest struct {
	Field  string `json:"field"`
	UserID string `json:"user_id"`

	Text       string   `json:"text,omitempty"`
	Supplement string   `json:"supplement,omitempty"`
	Bucket     string   `json:"bucket,omitempty"`
	EntryID    string   `json:"entry_id,omitempty"`
	Code       string   `json:"code,omitempty"`
	PlaceID    string   `json:"place_id,omitempty"`
	IDs        []string `json:"ids,omitempty"`
	Name       string   `json:"name,omitempty"`
	EndText    string   `json:"end_text,omitempty"`
	Move       int      `json:"move,omitempty"`
	Target     string   `json:"target,omitempty"`
}

func (s *Server) handleUpdateTemplate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var req templateFieldRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, err)
		return
	}

	var err error
	switch req.Field {
	case "start_text":
		err = s.admin.SetStartText(id, req.UserID, req.Text)
	case "newspaper":
		err = s.admin.SetNewspaper(id, req.UserID, req.Text)
	case "directory":
		err = s.admin.AddDirectoryEntry(id, req.UserID, game.Bucket(req.Bucket), req.EntryID, req.Text)
	case "special":
		err = s.admin.SetSpecial(id, req.UserID, game.SpecialCode(req.Code), req.Text, req.Supplement)
	case "place":
		err = s.admin.AddPlace(id, req.UserID, req.PlaceID, req.Text)
	case "culprit":
		err = s.admin.SetCulprit(id, req.UserID, req.IDs, req.Name, req.EndText)
	case "tooltip":
		err = s.admin.SetTooltip(id, req.UserID, req.Move, req.Target)
	default:
		s.fail(w, game.ErrValidation)
		return
	}
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleDeleteTemplate(w http.ResponseWriter, r *http.Request) {
	if err := s.admin.DeleteTemplate(r.PathValue("id"), r.URL.Query().Get("user_id")); err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// --- Rooms ---------------------------------------------------------------

func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID         string `json:"id"`
		TemplateID string `json:"template_id"`
		UserID     string `json:"user_id"`
	}
	if err := decode(r, &req); err != nil {
		s.fail(w, err)
		return
	}
	rm, err := s.admin.CreateRoom(req.ID, req.TemplateID, req.UserID)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rm)
}

func (s *Server) handleListRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := s.admin.ListRooms()
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"rooms": rooms})
}

func (s *Server) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	rm, err := s.admin.GetRoom(r.PathValue("id"))
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rm)
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	view, err := s.engine.View(r.PathValue("id"))
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleTravel(w http.ResponseWriter, r *http.Request) {
	var req struct {
		LocationID string `json:"location_id"`
		UserID     string `json:"user_id"`
	}
	if err := decode(r, &req); err != nil {
		s.fail(w, err)
		return
	}
	outcome, err := s.engine.Travel(r.PathValue("id"), req.UserID, req.LocationID)
	if errors.Is(err, engine.ErrLocationNotFound) {
		// Unknown ids are an expected player mistake; the outcome payload
		// lets the client render it without parsing an error string.
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"outcome": "location_not_found",
			"error":   err.Error(),
		})
		return
	}
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"outcome": string(outcome)})
}

func (s *Server) handleAccuse(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Suspects string `json:"suspects"`
		UserID   string `json:"user_id"`
	}
	if err := decode(r, &req); err != nil {
		s.fail(w, err)
		return
	}
	if strings.TrimSpace(req.Suspects) == "" {
		s.fail(w, game.ErrValidation)
		return
	}
	outcome, err := s.engine.Accuse(r.PathValue("id"), req.UserID, req.Suspects)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"outcome": string(outcome)})
}

func (s *Server) handleJoin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"user_id"`
	}
	if err := decode(r, &req); err != nil {
		s.fail(w, err)
		return
	}
	if err := s.admin.JoinRoom(r.PathValue("id"), req.UserID); err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleLeave(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"user_id"`
	}
	if err := decode(r, &req); err != nil {
		s.fail(w, err)
		return
	}
	if err := s.admin.LeaveRoom(r.PathValue("id"), req.UserID); err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := s.admin.ResetRoom(r.PathValue("id"), r.URL.Query().Get("user_id")); err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleFinish(w http.ResponseWriter, r *http.Request) {
	if err := s.admin.FinishRoom(r.PathValue("id"), r.URL.Query().Get("user_id")); err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRebind(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TemplateID string `json:"template_id"`
		UserID     string `json:"user_id"`
	}
	if err := decode(r, &req); err != nil {
		s.fail(w, err)
		return
	}
	if err := s.admin.RebindRoom(r.PathValue("id"), req.TemplateID, req.UserID); err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleDeleteRoom(w http.ResponseWriter, r *http.Request) {
	if err := s.admin.DeleteRoom(r.PathValue("id"), r.URL.Query().Get("user_id")); err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// --- WebSocket -----------------------------------------------------------

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // the dashboard runs on a different origin in dev
	},
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade websocket connection")
		return
	}

	client := network.NewClient(s.hub, conn, r.URL.Query().Get("room"))
	client.Register()

	go client.WritePump()
	go client.ReadPump()
}
