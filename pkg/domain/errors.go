package domain

import "errors"

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrSessionBusy is returned when a turn is already in flight for a session
// and the caller asked to reject rather than wait.
var ErrSessionBusy = errors.New("session has a turn in flight")
