package game

import "errors"

var (
	// ErrNotFound means no template exists under the requested id.
	ErrNotFound = errors.New("game template not found")
	// ErrExists means a template with the requested id already exists.
	ErrExists = errors.New("game template already exists")
	// ErrValidation means an authoring action carried an empty required field.
	ErrValidation = errors.New("validation failed")
)
