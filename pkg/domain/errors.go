package domain

import "errors"

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrTemplateNotFound is returned by template loaders for unknown template ids.
var ErrTemplateNotFound = errors.New("template not found")

// ErrNilState is returned when a transition is requested without a state.
var ErrNilState = errors.New("nil state")

// ErrUnknownMode is returned for states carrying a mode the engine does not know.
var ErrUnknownMode = errors.New("unknown mode")
