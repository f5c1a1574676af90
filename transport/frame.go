package transport

import (
	"encoding/json"
	"errors"
	"fmt"
)

// FrameType discriminates the JSON frames exchanged with the broker.
type FrameType string

const (
	// FrameSubscribe asks the broker to start delivering a topic.
	FrameSubscribe FrameType = "subscribe"
	// FrameUnsubscribe asks the broker to stop delivering a topic.
	FrameUnsubscribe FrameType = "unsubscribe"
	// FrameSend publishes a payload to a topic.
	FrameSend FrameType = "send"
	// FrameMessage is a broker-to-client delivery on a subscribed topic.
	FrameMessage FrameType = "message"
)

// Frame is the wire envelope for all broker traffic. Body is kept raw so
// the transport never interprets application payloads.
type Frame struct {
	Type        FrameType         `json:"type"`
	Destination string            `json:"destination"`
	Headers     map[string]string `json:"headers,omitempty"`
	Body        json.RawMessage   `json:"body,omitempty"`
}

var errEmptyDestination = errors.New("transport: frame has empty destination")

// EncodeFrame serializes a frame for the wire.
func EncodeFrame(f Frame) ([]byte, error) {
	if f.Destination == "" {
		return nil, errEmptyDestination
	}
	switch f.Type {
	case FrameSubscribe, FrameUnsubscribe, FrameSend, FrameMessage:
	default:
		return nil, fmt.Errorf("transport: unknown frame type %q", f.Type)
	}
	return json.Marshal(f)
}

// DecodeFrame parses a wire frame, rejecting envelopes that no handler
// could ever be dispatched for.
func DecodeFrame(data []byte) (Frame, error) {
	var f Frame
	if err := json.Unmarshal(data, &f); err != nil {
		return Frame{}, fmt.Errorf("transport: malformed frame: %w", err)
	}
	if f.Destination == "" {
		return Frame{}, errEmptyDestination
	}
	switch f.Type {
	case FrameSubscribe, FrameUnsubscribe, FrameSend, FrameMessage:
		return f, nil
	default:
		return Frame{}, fmt.Errorf("transport: unknown frame type %q", f.Type)
	}
}
