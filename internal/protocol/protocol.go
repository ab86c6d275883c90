// Package protocol defines the messages exchanged over the control WebSocket.
package protocol

import (
	"encoding/json"
	"fmt"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	// TypeStatus is sent by the server on every run state change
	TypeStatus MessageType = "status"

	// TypeCountdown is sent once per countdown tick
	TypeCountdown MessageType = "countdown"

	// TypeProgress is sent after each dispatched character
	TypeProgress MessageType = "progress"

	// TypeControl is sent by a client to pause, resume or stop the run
	TypeControl MessageType = "control"

	// TypeError is sent by the server when a client message is rejected
	TypeError MessageType = "error"
)

// Control actions
const (
	ActionPause  = "pause"
	ActionResume = "resume"
	ActionStop   = "stop"
)

// Message is the generic container for all WebSocket messages
type Message struct {
	Type    MessageType `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// StatusPayload is the payload for TypeStatus
type StatusPayload struct {
	State string `json:"state"`
	Done  int    `json:"done"`
	Total int    `json:"total"`
}

// CountdownPayload is the payload for TypeCountdown
type CountdownPayload struct {
	Remaining int `json:"remaining"`
}

// ProgressPayload is the payload for TypeProgress
type ProgressPayload struct {
	Done  int `json:"done"`
	Total int `json:"total"`
}

// ControlPayload is the payload for TypeControl
type ControlPayload struct {
	Action string `json:"action"`
}

// ErrorPayload is the payload for TypeError
type ErrorPayload struct {
	Message string `json:"message"`
}

// ValidAction reports whether action is a known control action
func ValidAction(action string) bool {
	switch action {
	case ActionPause, ActionResume, ActionStop:
		return true
	}
	return false
}

// DecodePayload converts a decoded message payload into v
func DecodePayload(msg Message, v interface{}) error {
	raw, err := json.Marshal(msg.Payload)
	if err != nil {
		return fmt.Errorf("re-encode %s payload: %w", msg.Type, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode %s payload: %w", msg.Type, err)
	}
	return nil
}
