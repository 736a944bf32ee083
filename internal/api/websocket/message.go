package websocket

import (
	"encoding/json"
	"time"
)

type MessageType string

const (
	// MessageTypeGenerate asks the server to generate the enclosed request.
	MessageTypeGenerate MessageType = "generate"
	// MessageTypeGenerated carries a result to every client in the room.
	MessageTypeGenerated MessageType = "generated"
	MessageTypeError     MessageType = "error"
	MessageTypeJoin      MessageType = "join"
	MessageTypeLeave     MessageType = "leave"
)

// Message is what the server writes to clients.
type Message struct {
	Type      MessageType `json:"type"`
	Room      string      `json:"room"`
	ClientID  string      `json:"clientId,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Data      any         `json:"data,omitempty"`
}

// Inbound is what clients send. Data stays raw until the processor decodes it.
type Inbound struct {
	Type MessageType     `json:"type"`
	Data json.RawMessage `json:"data"`
}

// ErrorMessage represents an error message
type ErrorMessage struct {
	Message string `json:"message"`
}

// Presence is the payload of join and leave messages.
type Presence struct {
	Clients int `json:"clients"`
}

func newMessage(t MessageType, room, clientID string, data any) Message {
	return Message{
		Type:      t,
		Room:      room,
		ClientID:  clientID,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

// NewErrorMessage creates a new error message
func NewErrorMessage(room, clientID, text string) Message {
	return newMessage(MessageTypeError, room, clientID, ErrorMessage{Message: text})
}
