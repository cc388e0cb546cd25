package service

import "errors"

// Sentinel errors for the service facade.
var (
	ErrNotStarted  = errors.New("service not started")
	ErrEmptyRoomID = errors.New("room id must not be empty")
	ErrEmptyPlayer = errors.New("player id must not be empty")
	ErrBadRating   = errors.New("rating must be positive")
)
