package domain

import "errors"

var (
	ErrEventNotFound = errors.New("cleanup event not found")
	ErrAlreadyJoined = errors.New("user already joined")
	ErrNotCreator    = errors.New("only the creator can delete this event")
)
