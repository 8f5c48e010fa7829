package room

import "errors"

var (
	// ErrRoomNotFound is returned when a room ID does not exist.
	ErrRoomNotFound = errors.New("room not found")

	// ErrInvalidName is returned when a room name fails validation.
	ErrInvalidName = errors.New("invalid room name")
)
