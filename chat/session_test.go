package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_AppendPreservesArrivalOrder(t *testing.T) {
	s := NewSession("bob")

	s.Append("alice", "one")
	s.Append("bob", "two")
	s.Append("alice", "three")

	msgs := s.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, []string{"one", "two", "three"}, []string{msgs[0].Content, msgs[1].Content, msgs[2].Content})
	assert.Equal(t, uint64(1), msgs[0].Seq)
	assert.Equal(t, uint64(2), msgs[1].Seq)
	assert.Equal(t, uint64(3), msgs[2].Seq)
}

func TestSession_FreshSessionStartsEmpty(t *testing.T) {
	s := NewSession("bob")
	assert.Equal(t, "bob", s.Peer())
	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.Messages())
}

func TestSession_MessagesIsACopy(t *testing.T) {
	s := NewSession("bob")
	s.Append("alice", "hi")

	msgs := s.Messages()
	msgs[0].Content = "tampered"

	assert.Equal(t, "hi", s.Messages()[0].Content)
}
