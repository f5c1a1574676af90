package realtime

import (
	"errors"

	"github.com/hikemate/realtime/transport"
)

// ErrTransportUnavailable is returned by explicit user actions (submitting
// a friend request, inviting, sending) when the broker connection is down.
// The action did not go through; the caller should surface this and allow
// a retry. It aliases the transport's sentinel so errors.Is works across
// both packages.
var ErrTransportUnavailable = transport.ErrNotConnected

// ErrClosed is returned by user actions once the client has been closed.
var ErrClosed = errors.New("realtime: client closed")

// ErrPeerOffline is returned by Invite when the target is not in the
// online set; an invitation to an unreachable friend would hang forever.
var ErrPeerOffline = errors.New("realtime: peer is not online")

// ErrEmptyContent is returned by Send for empty chat messages.
var ErrEmptyContent = errors.New("realtime: message content is empty")

// ProtocolError marks a malformed or impossible inbound payload. These
// are logged and discarded, never fatal, and never surfaced to the user.
type ProtocolError struct {
	Topic  string
	Reason string
	Err    error
}

func (e *ProtocolError) Error() string {
	msg := "realtime: protocol violation: " + e.Reason
	if e.Topic != "" {
		msg += " on " + e.Topic
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}
