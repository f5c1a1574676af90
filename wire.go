package realtime

import (
	"encoding/json"
)

// Wire payloads. These match the broker's JSON bodies exactly; field names
// are part of the protocol.

type presencePayload struct {
	Online bool `json:"online"`
}

type friendRequestPayload struct {
	Sender   string `json:"sender"`
	Receiver string `json:"receiver,omitempty"`
}

type requestResponsePayload struct {
	Sender   string `json:"sender"`
	Receiver string `json:"receiver"`
	Status   string `json:"status"`
}

type notifyPayload struct {
	Sender string `json:"sender"`
}

type notificationResponsePayload struct {
	Response  string `json:"response"`
	Recipient string `json:"recipient"`
}

type chatPayload struct {
	Sender   string `json:"sender"`
	Receiver string `json:"receiver,omitempty"`
	Content  string `json:"content"`
}

// decodePresence accepts both the structured {online} payload and the
// legacy free-text ping, which only ever announced that a friend came
// online.
func decodePresence(data []byte) presencePayload {
	var p presencePayload
	if err := json.Unmarshal(data, &p); err != nil {
		return presencePayload{Online: true}
	}
	return p
}

func decodeFriendRequest(data []byte) (friendRequestPayload, error) {
	var p friendRequestPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return friendRequestPayload{}, &ProtocolError{Reason: "malformed friend request payload", Err: err}
	}
	if p.Sender == "" {
		return friendRequestPayload{}, &ProtocolError{Reason: "friend request without sender"}
	}
	return p, nil
}

func decodeNotify(data []byte) (notifyPayload, error) {
	var p notifyPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return notifyPayload{}, &ProtocolError{Reason: "malformed chat notify payload", Err: err}
	}
	if p.Sender == "" {
		return notifyPayload{}, &ProtocolError{Reason: "chat notify without sender"}
	}
	return p, nil
}

func decodeNotificationResponse(data []byte) (notificationResponsePayload, error) {
	var p notificationResponsePayload
	if err := json.Unmarshal(data, &p); err != nil {
		return notificationResponsePayload{}, &ProtocolError{Reason: "malformed notification response", Err: err}
	}
	switch p.Response {
	case "ACCEPT", "DECLINE", "BUSY", "ENDED":
		return p, nil
	default:
		return notificationResponsePayload{}, &ProtocolError{Reason: "unknown notification response " + p.Response}
	}
}

func decodeChat(data []byte) (chatPayload, error) {
	var p chatPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return chatPayload{}, &ProtocolError{Reason: "malformed chat payload", Err: err}
	}
	if p.Content == "" {
		return chatPayload{}, &ProtocolError{Reason: "chat payload without content"}
	}
	return p, nil
}
