package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNegotiator_InviteAcceptOpensSession(t *testing.T) {
	n := NewNegotiator("alice")

	require.NoError(t, n.Invite("bob"))
	assert.Equal(t, StateAwaitingRemoteResponse, n.State())
	assert.Equal(t, "bob", n.Peer())

	outcome, peer := n.HandleResponse(ResponseAccept)
	assert.Equal(t, OutcomeOpened, outcome)
	assert.Equal(t, "bob", peer)
	assert.Equal(t, StateActive, n.State())
	require.NotNil(t, n.Session())
	assert.Equal(t, "bob", n.Session().Peer())
}

func TestNegotiator_InviteDeclineReturnsToIdle(t *testing.T) {
	n := NewNegotiator("alice")
	require.NoError(t, n.Invite("bob"))

	outcome, peer := n.HandleResponse(ResponseDecline)
	assert.Equal(t, OutcomeDeclined, outcome)
	assert.Equal(t, "bob", peer)
	assert.Equal(t, StateIdle, n.State())
	assert.Nil(t, n.Session())
}

func TestNegotiator_InviteBusyReturnsToIdle(t *testing.T) {
	n := NewNegotiator("alice")
	require.NoError(t, n.Invite("bob"))

	outcome, _ := n.HandleResponse(ResponseBusy)
	assert.Equal(t, OutcomeBusy, outcome)
	assert.Equal(t, StateIdle, n.State())
}

func TestNegotiator_InviteValidation(t *testing.T) {
	n := NewNegotiator("alice")

	assert.ErrorIs(t, n.Invite(""), ErrInvalidPeer)
	assert.ErrorIs(t, n.Invite("alice"), ErrInvalidPeer)

	require.NoError(t, n.Invite("bob"))
	assert.ErrorIs(t, n.Invite("carol"), ErrNegotiationInProgress)
}

func TestNegotiator_InboundNotifyAcceptFlow(t *testing.T) {
	n := NewNegotiator("alice")

	assert.Equal(t, NotifyAccepted, n.HandleNotify("bob"))
	assert.Equal(t, StateAwaitingLocalResponse, n.State())

	peer, session, err := n.Accept()
	require.NoError(t, err)
	assert.Equal(t, "bob", peer)
	require.NotNil(t, session)
	assert.Equal(t, StateActive, n.State())
}

func TestNegotiator_InboundNotifyDeclineFlow(t *testing.T) {
	n := NewNegotiator("alice")
	n.HandleNotify("bob")

	peer, err := n.Decline()
	require.NoError(t, err)
	assert.Equal(t, "bob", peer)
	assert.Equal(t, StateIdle, n.State())
	assert.Empty(t, n.Peer())
}

func TestNegotiator_AcceptDeclineRequirePendingInvitation(t *testing.T) {
	n := NewNegotiator("alice")

	_, _, err := n.Accept()
	assert.ErrorIs(t, err, ErrNoPendingInvitation)
	_, err = n.Decline()
	assert.ErrorIs(t, err, ErrNoPendingInvitation)
}

func TestNegotiator_BusyPolicy(t *testing.T) {
	testCases := []struct {
		name  string
		setup func(n *Negotiator)
	}{
		{
			"active session",
			func(n *Negotiator) {
				n.HandleNotify("bob")
				n.Accept()
			},
		},
		{
			"awaiting local response",
			func(n *Negotiator) {
				n.HandleNotify("bob")
			},
		},
		{
			"awaiting remote response",
			func(n *Negotiator) {
				n.Invite("bob")
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			n := NewNegotiator("alice")
			tc.setup(n)
			stateBefore := n.State()

			// Carol's notify must be auto-answered busy without
			// disturbing the negotiation with bob.
			assert.Equal(t, NotifyBusy, n.HandleNotify("carol"))
			assert.Equal(t, stateBefore, n.State())
			assert.Equal(t, "bob", n.Peer())
		})
	}
}

func TestNegotiator_DuplicateNotifyFromSameInviter(t *testing.T) {
	n := NewNegotiator("alice")

	require.Equal(t, NotifyAccepted, n.HandleNotify("bob"))
	assert.Equal(t, NotifyDuplicate, n.HandleNotify("bob"))
	assert.Equal(t, StateAwaitingLocalResponse, n.State())
}

func TestNegotiator_EndPublishesToPeer(t *testing.T) {
	n := NewNegotiator("alice")
	n.HandleNotify("bob")
	n.Accept()

	peer, err := n.End()
	require.NoError(t, err)
	assert.Equal(t, "bob", peer)
	assert.Equal(t, StateIdle, n.State())
	assert.Nil(t, n.Session())

	_, err = n.End()
	assert.ErrorIs(t, err, ErrNoActiveSession)
}

func TestNegotiator_RemoteEnded(t *testing.T) {
	n := NewNegotiator("alice")
	require.NoError(t, n.Invite("bob"))
	n.HandleResponse(ResponseAccept)

	outcome, peer := n.HandleResponse(ResponseEnded)
	assert.Equal(t, OutcomeEnded, outcome)
	assert.Equal(t, "bob", peer)
	assert.Equal(t, StateIdle, n.State())
	assert.Nil(t, n.Session())
}

func TestNegotiator_StaleResponses(t *testing.T) {
	testCases := []struct {
		name     string
		setup    func(n *Negotiator)
		response Response
	}{
		{"accept while idle", func(n *Negotiator) {}, ResponseAccept},
		{"ended while idle", func(n *Negotiator) {}, ResponseEnded},
		{"ended while awaiting remote", func(n *Negotiator) { n.Invite("bob") }, ResponseEnded},
		{"accept while active", func(n *Negotiator) {
			n.Invite("bob")
			n.HandleResponse(ResponseAccept)
		}, ResponseAccept},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			n := NewNegotiator("alice")
			tc.setup(n)
			stateBefore := n.State()

			outcome, _ := n.HandleResponse(tc.response)
			assert.Equal(t, OutcomeStale, outcome)
			assert.Equal(t, stateBefore, n.State())
		})
	}
}

func TestNegotiator_PeerOffline(t *testing.T) {
	n := NewNegotiator("alice")
	n.HandleNotify("bob")
	n.Accept()

	assert.False(t, n.PeerOffline("carol"), "an unrelated friend going offline changes nothing")
	assert.Equal(t, StateActive, n.State())

	assert.True(t, n.PeerOffline("bob"))
	assert.Equal(t, StateIdle, n.State())
	assert.Nil(t, n.Session())
}

func TestNegotiator_PeerOfflineDuringNegotiation(t *testing.T) {
	n := NewNegotiator("alice")
	require.NoError(t, n.Invite("bob"))

	// Presence loss overrides the in-flight negotiation too.
	assert.True(t, n.PeerOffline("bob"))
	assert.Equal(t, StateIdle, n.State())
}

func TestNegotiator_SendAndReceive(t *testing.T) {
	n := NewNegotiator("alice")
	n.HandleNotify("bob")
	n.Accept()

	msg, peer, err := n.Send("hi")
	require.NoError(t, err)
	assert.Equal(t, "bob", peer)
	assert.Equal(t, Message{Sender: "alice", Content: "hi", Seq: 1}, msg)

	reply, err := n.HandleMessage("bob", "hello")
	require.NoError(t, err)
	assert.Equal(t, Message{Sender: "bob", Content: "hello", Seq: 2}, reply)

	msgs := n.Session().Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "alice", msgs[0].Sender)
	assert.Equal(t, "bob", msgs[1].Sender)
}

func TestNegotiator_SendRequiresActiveSession(t *testing.T) {
	n := NewNegotiator("alice")
	_, _, err := n.Send("hi")
	assert.ErrorIs(t, err, ErrNoActiveSession)
}

func TestNegotiator_StrayMessagesDiscarded(t *testing.T) {
	n := NewNegotiator("alice")

	// No session at all.
	_, err := n.HandleMessage("bob", "hi")
	assert.ErrorIs(t, err, ErrStaleState)

	// Active with bob, message from someone else.
	n.HandleNotify("bob")
	n.Accept()
	_, err = n.HandleMessage("carol", "hi")
	assert.ErrorIs(t, err, ErrStaleState)
	assert.Equal(t, 0, n.Session().Len())
}

func TestNegotiator_ForceIdle(t *testing.T) {
	n := NewNegotiator("alice")
	n.Invite("bob")

	n.ForceIdle()
	assert.Equal(t, StateIdle, n.State())
	assert.Empty(t, n.Peer())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "awaiting-local-response", StateAwaitingLocalResponse.String())
	assert.Equal(t, "awaiting-remote-response", StateAwaitingRemoteResponse.String())
	assert.Equal(t, "active", StateActive.String())
	assert.Equal(t, "ending", StateEnding.String())
}
