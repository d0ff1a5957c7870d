package chathub

import "errors"

// Sentinel errors for queue and session operations. Callers map these to
// friendly transport replies; none of them escalate.
var (
	// ErrAlreadyQueued: the user is already waiting for a partner.
	ErrAlreadyQueued = errors.New("already in waiting queue")
	// ErrAlreadyInSession: the user has an active session.
	ErrAlreadyInSession = errors.New("already in an active session")
	// ErrNotQueued: cancel was called for a user who is not waiting.
	ErrNotQueued = errors.New("not in waiting queue")
	// ErrNotInSession: a session operation was called for a user without one.
	ErrNotInSession = errors.New("not in an active session")
	// ErrNoPartner: the queue head was the requester itself; the user was
	// re-enqueued and pairing should be retried later.
	ErrNoPartner = errors.New("no partner found")
)
