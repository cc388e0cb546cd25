package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound    = errors.New("room not found")
	ErrEmptyRoomID = errors.New("room id must not be empty")
)
