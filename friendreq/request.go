// Package friendreq manages the friend-request workflow: pending incoming
// requests, outgoing submissions, and their resolution.
//
// Requests arrive either live on the user's request topic or as a bulk
// snapshot attached to the profile at login. Each pending request is
// identified by a locally generated opaque ID and resolved exactly once.
package friendreq

import (
	"errors"
	"time"
)

// Status is the lifecycle state of a friend request.
type Status uint8

const (
	// StatusPending means the request awaits a local decision.
	StatusPending Status = iota
	// StatusAccepted is terminal: the local user accepted.
	StatusAccepted
	// StatusDeclined is terminal: the local user declined.
	StatusDeclined
)

// String returns the wire spelling of a status, matching the response
// payload the broker expects.
func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusAccepted:
		return "accepted"
	case StatusDeclined:
		return "declined"
	default:
		return "unknown"
	}
}

// Request is a pending incoming friend request.
type Request struct {
	// ID is opaque and locally generated; it never crosses the wire.
	ID         string
	Requester  string
	Status     Status
	ReceivedAt time.Time
}

// Validation errors for outgoing submissions.
var (
	ErrEmptyTarget = errors.New("friendreq: target username is empty")
	ErrSelfRequest = errors.New("friendreq: cannot send a request to yourself")

	// ErrUnknownRequest is returned when resolving an ID that is not in
	// the pending list (already resolved, or never existed).
	ErrUnknownRequest = errors.New("friendreq: unknown request id")
)

// ValidateTarget checks an outgoing request target against the local user.
func ValidateTarget(self, target string) error {
	if target == "" {
		return ErrEmptyTarget
	}
	if target == self {
		return ErrSelfRequest
	}
	return nil
}
