package session

import "errors"

// Sentinel errors for session operations.
var (
	// ErrSessionClosed is returned by Enqueue after Close.
	ErrSessionClosed = errors.New("session: closed")

	// ErrSessionNotFound is returned when a session ID is not registered.
	ErrSessionNotFound = errors.New("session: not found")

	// ErrDuplicateSession is returned when registering an ID twice.
	ErrDuplicateSession = errors.New("session: duplicate id")
)
