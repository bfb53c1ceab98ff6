package room

import "errors"

var (
	// ErrNotFound means no room exists under the requested id.
	ErrNotFound = errors.New("room not found")
	// ErrExists means a room with the requested id already exists.
	ErrExists = errors.New("room already exists")
	// ErrFinished means the room reached its terminal state and rejects
	// further travel and accusations.
	ErrFinished = errors.New("room is finished")
)
