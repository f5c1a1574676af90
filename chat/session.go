// Package chat implements the consent handshake that must complete before
// two users exchange live messages, and the in-memory session that carries
// those messages once both sides agree.
//
// The negotiator is a per-user state machine: at most one invitation is
// outstanding at a time, a notify arriving while busy is answered with an
// automatic BUSY response, and losing the peer's presence tears an active
// session down without publishing anything.
package chat

import "sync"

// Message is a single chat message held in session memory. Seq is a local
// sequence number; it is never sent over the wire.
type Message struct {
	Sender  string
	Content string
	Seq     uint64
}

// Session is the ordered, append-only message log for one negotiated chat.
// It exists only while the negotiation is active; history is discarded on
// end and never replayed for a later session with the same peer.
type Session struct {
	peer string

	mu      sync.Mutex
	msgs    []Message
	nextSeq uint64
}

// NewSession creates an empty session with the given peer.
func NewSession(peer string) *Session {
	return &Session{peer: peer, nextSeq: 1}
}

// Peer returns the remote username for this session.
func (s *Session) Peer() string {
	return s.peer
}

// Append adds a message in arrival order and assigns it the next local
// sequence number.
func (s *Session) Append(sender, content string) Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg := Message{Sender: sender, Content: content, Seq: s.nextSeq}
	s.nextSeq++
	s.msgs = append(s.msgs, msg)
	return msg
}

// Messages returns a copy of the session history in arrival order.
func (s *Session) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Message, len(s.msgs))
	copy(out, s.msgs)
	return out
}

// Len returns the number of messages exchanged so far.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.msgs)
}
