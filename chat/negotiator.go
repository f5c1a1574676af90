package chat

import (
	"errors"
	"sync"

	"github.com/sirupsen/logrus"
)

// State is the negotiator's position in the invitation handshake.
type State uint8

const (
	// StateIdle means no invitation is outstanding.
	StateIdle State = iota
	// StateAwaitingLocalResponse means the remote party invited us and the
	// local user has not answered yet.
	StateAwaitingLocalResponse
	// StateAwaitingRemoteResponse means we invited the remote party and
	// are waiting for their answer.
	StateAwaitingRemoteResponse
	// StateActive means both sides agreed and a session is open.
	StateActive
	// StateEnding is the transient teardown between Active and Idle.
	StateEnding
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingLocalResponse:
		return "awaiting-local-response"
	case StateAwaitingRemoteResponse:
		return "awaiting-remote-response"
	case StateActive:
		return "active"
	case StateEnding:
		return "ending"
	default:
		return "unknown"
	}
}

// Response is the wire spelling of a notification response.
type Response string

const (
	ResponseAccept  Response = "ACCEPT"
	ResponseDecline Response = "DECLINE"
	// ResponseBusy is the automatic decline sent when a notify arrives
	// while another negotiation or session is in progress, so the new
	// inviter is not left waiting.
	ResponseBusy Response = "BUSY"
	ResponseEnded Response = "ENDED"
)

// NotifyResult says how an inbound notify was handled.
type NotifyResult uint8

const (
	// NotifyAccepted means the notify opened a new local negotiation and
	// should be surfaced to the user.
	NotifyAccepted NotifyResult = iota
	// NotifyDuplicate means the same inviter notified again while their
	// invitation was already pending; nothing changed.
	NotifyDuplicate
	// NotifyBusy means another negotiation or session is in progress; the
	// caller must answer the inviter with ResponseBusy.
	NotifyBusy
)

// Outcome says what an inbound notification response did to the state.
type Outcome uint8

const (
	// OutcomeOpened means the peer accepted our invitation; a session is
	// now open.
	OutcomeOpened Outcome = iota
	// OutcomeDeclined means the peer declined; back to idle.
	OutcomeDeclined
	// OutcomeBusy means the peer was in another session; back to idle.
	OutcomeBusy
	// OutcomeEnded means the peer ended the active session; back to idle.
	OutcomeEnded
	// OutcomeStale means the response did not fit the current state. The
	// caller logs and discards it; the window where both sides disagree
	// about session state makes this normal, not a protocol error.
	OutcomeStale
)

// Negotiator errors.
var (
	ErrNegotiationInProgress = errors.New("chat: another negotiation is already in progress")
	ErrNoPendingInvitation   = errors.New("chat: no invitation awaiting a local response")
	ErrNoActiveSession       = errors.New("chat: no active session")
	ErrInvalidPeer           = errors.New("chat: invalid peer username")

	// ErrStaleState marks input for a negotiation the peer has already
	// torn down. It is resolved by discarding the input, never surfaced
	// to the user.
	ErrStaleState = errors.New("chat: stale session state")
)

// Negotiator is the invitation handshake state machine for one local user.
// It owns the active session and gates every message through the current
// state, so the two parties can never both believe a session is open when
// the handshake did not complete. Publishing is left to the caller; each
// transition returns what must be sent, if anything.
type Negotiator struct {
	self string

	mu      sync.Mutex
	state   State
	peer    string
	session *Session
}

// NewNegotiator creates an idle negotiator for the local user.
func NewNegotiator(self string) *Negotiator {
	return &Negotiator{self: self, state: StateIdle}
}

// State returns the current state.
func (n *Negotiator) State() State {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.state
}

// Peer returns the username of the current negotiation partner, or "" when
// idle.
func (n *Negotiator) Peer() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.peer
}

// Session returns the open session, or nil outside Active.
func (n *Negotiator) Session() *Session {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.session
}

// Invite starts an outgoing negotiation with the given peer. The caller
// publishes the notify on success.
func (n *Negotiator) Invite(peer string) error {
	if peer == "" || peer == n.self {
		return ErrInvalidPeer
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if n.state != StateIdle {
		return ErrNegotiationInProgress
	}
	n.state = StateAwaitingRemoteResponse
	n.peer = peer

	logrus.WithFields(logrus.Fields{
		"function": "Invite",
		"peer":     peer,
	}).Info("invitation sent, awaiting remote response")
	return nil
}

// HandleNotify processes an inbound invitation. Only one invitation may be
// outstanding per user: when the negotiator is not idle the result is
// NotifyBusy and the caller answers the inviter with ResponseBusy, leaving
// the current negotiation untouched.
func (n *Negotiator) HandleNotify(inviter string) NotifyResult {
	n.mu.Lock()
	defer n.mu.Unlock()

	switch {
	case n.state == StateIdle:
		n.state = StateAwaitingLocalResponse
		n.peer = inviter
		logrus.WithFields(logrus.Fields{
			"function": "HandleNotify",
			"inviter":  inviter,
		}).Info("invitation received, awaiting local response")
		return NotifyAccepted
	case n.state == StateAwaitingLocalResponse && n.peer == inviter:
		return NotifyDuplicate
	default:
		logrus.WithFields(logrus.Fields{
			"function": "HandleNotify",
			"inviter":  inviter,
			"state":    n.state.String(),
			"peer":     n.peer,
		}).Info("busy, auto-declining new invitation")
		return NotifyBusy
	}
}

// Accept answers a pending inbound invitation. The session opens
// immediately; the caller publishes the ACCEPT response.
func (n *Negotiator) Accept() (string, *Session, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.state != StateAwaitingLocalResponse {
		return "", nil, ErrNoPendingInvitation
	}
	n.state = StateActive
	n.session = NewSession(n.peer)

	logrus.WithFields(logrus.Fields{
		"function": "Accept",
		"peer":     n.peer,
	}).Info("invitation accepted, session open")
	return n.peer, n.session, nil
}

// Decline answers a pending inbound invitation negatively. The caller
// publishes the DECLINE response to the returned peer.
func (n *Negotiator) Decline() (string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.state != StateAwaitingLocalResponse {
		return "", ErrNoPendingInvitation
	}
	peer := n.peer
	n.state = StateIdle
	n.peer = ""

	logrus.WithFields(logrus.Fields{
		"function": "Decline",
		"peer":     peer,
	}).Info("invitation declined")
	return peer, nil
}

// HandleResponse processes an inbound notification response and returns
// what it did together with the peer it concerned. OutcomeStale means
// nothing changed and the input should be discarded.
func (n *Negotiator) HandleResponse(resp Response) (Outcome, string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	peer := n.peer
	switch n.state {
	case StateAwaitingRemoteResponse:
		switch resp {
		case ResponseAccept:
			n.state = StateActive
			n.session = NewSession(peer)
			logrus.WithFields(logrus.Fields{
				"function": "HandleResponse",
				"peer":     peer,
			}).Info("peer accepted, session open")
			return OutcomeOpened, peer
		case ResponseDecline:
			n.reset()
			return OutcomeDeclined, peer
		case ResponseBusy:
			n.reset()
			return OutcomeBusy, peer
		}
	case StateActive:
		if resp == ResponseEnded {
			n.state = StateEnding
			n.reset()
			logrus.WithFields(logrus.Fields{
				"function": "HandleResponse",
				"peer":     peer,
			}).Info("peer ended session")
			return OutcomeEnded, peer
		}
	}

	logrus.WithFields(logrus.Fields{
		"function": "HandleResponse",
		"response": string(resp),
		"state":    n.state.String(),
	}).Warn("discarding stale notification response")
	return OutcomeStale, peer
}

// Send appends a locally authored message to the active session. The
// caller publishes the message to the peer's chat topic; the local echo
// happens before any broker confirmation.
func (n *Negotiator) Send(content string) (Message, string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.state != StateActive || n.session == nil {
		return Message{}, "", ErrNoActiveSession
	}
	return n.session.Append(n.self, content), n.peer, nil
}

// HandleMessage appends a peer-authored message to the active session. A
// message from anyone but the active peer, or outside Active, is stale:
// the ENDED disagreement window makes such strays normal, so they are
// discarded, not treated as protocol errors.
func (n *Negotiator) HandleMessage(sender, content string) (Message, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.state != StateActive || n.session == nil || sender != n.peer {
		return Message{}, ErrStaleState
	}
	return n.session.Append(sender, content), nil
}

// End closes the active session on local initiative. The caller publishes
// ENDED to the returned peer.
func (n *Negotiator) End() (string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.state != StateActive {
		return "", ErrNoActiveSession
	}
	peer := n.peer
	n.state = StateEnding
	n.reset()

	logrus.WithFields(logrus.Fields{
		"function": "End",
		"peer":     peer,
	}).Info("session ended locally")
	return peer, nil
}

// PeerOffline forces the negotiation with the given user back to idle
// because their presence was lost. Nothing is published; the peer is
// unreachable. Reports whether anything was torn down.
func (n *Negotiator) PeerOffline(username string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.state == StateIdle || n.peer != username {
		return false
	}
	state := n.state
	n.reset()

	logrus.WithFields(logrus.Fields{
		"function": "PeerOffline",
		"peer":     username,
		"state":    state.String(),
	}).Info("peer went offline, negotiation torn down")
	return true
}

// ForceIdle abandons any negotiation without publishing. Used when the
// transport is being torn down and no further message may be sent.
func (n *Negotiator) ForceIdle() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.reset()
}

// reset must be called with the lock held.
func (n *Negotiator) reset() {
	n.state = StateIdle
	n.peer = ""
	n.session = nil
}
