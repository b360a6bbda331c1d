package net

import (
	"encoding/json"

	"github.com/survivethenight/server/internal/core/event"
)

// Client request types.
const (
	RequestPlayerInput  = "playerInput"
	RequestStartNewGame = "startNewGame"
)

// Request is a decoded client message. Payload is left raw until the game
// loop knows what the type expects.
type Request struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type envelope struct {
	Type    event.Type `json:"type"`
	Payload any        `json:"payload"`
}

// EncodeEvent renders ev as a JSON {type, payload} text frame.
func EncodeEvent(ev event.Event) ([]byte, error) {
	return json.Marshal(envelope{Type: ev.Type(), Payload: ev.Payload()})
}

func decodeRequest(data []byte) (Request, error) {
	var req Request
	err := json.Unmarshal(data, &req)
	return req, err
}
