package store

import (
	"errors"
	"fmt"

	"github.com/okuznetsov/gumshoe/server/internal/domain/room"
	"github.com/okuznetsov/gumshoe/server/internal/platform/metrics"
)

// RoomStore holds the live play state of every room, one document per room.
type RoomStore struct {
	docs  *DocStore
	locks *keyedMutex
}

// NewRoomStore opens the room store rooted at dir.
func NewRoomStore(dir string) (*RoomStore, error) {
	docs, err := NewDocStore(dir)
	if err != nil {
		return nil, err
	}
	return &RoomStore{docs: docs, locks: newKeyedMutex()}, nil
}

// Create stores a fresh room document.
func (s *RoomStore) Create(r *room.Room) error {
	unlock := s.locks.Acquire(r.ID)
	defer unlock()

	if err := s.docs.Create(r.ID, r); err != nil {
		if errors.Is(err, ErrExists) {
			return fmt.Errorf("%w: %s", room.ErrExists, r.ID)
		}
		metrics.Get().RecordDocWrite(err)
		return err
	}
	metrics.Get().RecordDocWrite(nil)
	return nil
}

// Get loads a room by id.
func (s *RoomStore) Get(id string) (*room.Room, error) {
	var r room.Room
	if err := s.docs.Get(id, &r); err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrBadID) {
			return nil, fmt.Errorf("%w: %s", room.ErrNotFound, id)
		}
		return nil, err
	}
	r.ID = id
	r.EnsureDefaults()
	return &r, nil
}

// Exists reports whether a room is stored under id.
func (s *RoomStore) Exists(id string) bool {
	return s.docs.Exists(id)
}

// Save persists the room document atomically. Callers must hold the room's
// lock (Acquire) for the whole read-modify-write.
func (s *RoomStore) Save(r *room.Room) error {
	err := s.docs.Put(r.ID, r)
	metrics.Get().RecordDocWrite(err)
	return err
}

// Acquire takes the single-writer lock for a room id and returns its
// release function. Every mutating path on a room goes through this, so two
// concurrent travels cannot both read and write the same move count.
func (s *RoomStore) Acquire(id string) func() {
	return s.locks.Acquire(id)
}

// Delete removes a room document.
func (s *RoomStore) Delete(id string) error {
	unlock := s.locks.Acquire(id)
	defer unlock()

	if err := s.docs.Delete(id); err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrBadID) {
			return fmt.Errorf("%w: %s", room.ErrNotFound, id)
		}
		return err
	}
	return nil
}

// List loads every stored room. Used by the admin dashboard.
func (s *RoomStore) List() ([]*room.Room, error) {
	ids, err := s.docs.List()
	if err != nil {
		return nil, err
	}
	rooms := make([]*room.Room, 0, len(ids))
	for _, id := range ids {
		r, err := s.Get(id)
		if err != nil {
			// A room deleted between the listing and the read is not fatal.
			if errors.Is(err, room.ErrNotFound) {
				continue
			}
			return nil, err
		}
		rooms = append(rooms, r)
	}
	return rooms, nil
}
