package transport

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeFrame(t *testing.T) {
	f := Frame{
		Type:        FrameSend,
		Destination: "chat/bob",
		Headers:     map[string]string{"Authorization": "Bearer abc"},
		Body:        json.RawMessage(`{"sender":"alice","content":"hi"}`),
	}

	data, err := EncodeFrame(f)
	require.NoError(t, err)

	decoded, err := DecodeFrame(data)
	require.NoError(t, err)
	assert.Equal(t, f.Type, decoded.Type)
	assert.Equal(t, f.Destination, decoded.Destination)
	assert.Equal(t, f.Headers, decoded.Headers)
	assert.JSONEq(t, string(f.Body), string(decoded.Body))
}

func TestEncodeFrame_Validation(t *testing.T) {
	_, err := EncodeFrame(Frame{Type: FrameSend})
	assert.Error(t, err, "empty destination must be rejected")

	_, err = EncodeFrame(Frame{Type: "bogus", Destination: "x"})
	assert.Error(t, err)
}

func TestDecodeFrame_Malformed(t *testing.T) {
	testCases := []struct {
		name string
		data string
	}{
		{"not json", "not json at all"},
		{"missing destination", `{"type":"message"}`},
		{"unknown type", `{"type":"bogus","destination":"x"}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeFrame([]byte(tc.data))
			assert.Error(t, err)
		})
	}
}

func TestDecodeFrame_SubscriptionFrames(t *testing.T) {
	f, err := DecodeFrame([]byte(`{"type":"subscribe","destination":"online-status/bob"}`))
	require.NoError(t, err)
	assert.Equal(t, FrameSubscribe, f.Type)
	assert.Nil(t, f.Body)
}
