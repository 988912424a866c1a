package models

import (
	"time"

	"github.com/latestcomment/boardroom-chat/internal/render"
)

type EventType string

const (
	EventUserMessage   EventType = "user_message"
	EventTyping        EventType = "typing"
	EventTypingRemoved EventType = "typing_removed"
	EventMessage       EventType = "message"
	EventScroll        EventType = "scroll"
	EventSubmitState   EventType = "submit_state"
	EventInputCleared  EventType = "input_cleared"
	EventError         EventType = "error"
)

// StreamMessage is one permanent bubble in the stream.
type StreamMessage struct {
	Speaker    string
	Icon       string
	StyleClass string
	Fragment   render.Fragment
}

// Event is what the stream view sends to the browser. Unused fields are omitted.
type Event struct {
	Type       EventType        `json:"type"`
	ID         string           `json:"id,omitempty"`
	Speaker    string           `json:"speaker,omitempty"`
	Icon       string           `json:"icon,omitempty"`
	StyleClass string           `json:"styleClass,omitempty"`
	Text       string           `json:"text,omitempty"`
	Fragment   *render.Fragment `json:"fragment,omitempty"`
	HTML       string           `json:"html,omitempty"`
	Enabled    *bool            `json:"enabled,omitempty"`
	Label      string           `json:"label,omitempty"`
	Message    string           `json:"message,omitempty"`
	Timestamp  time.Time        `json:"timestamp"`
}

// Inbound is a message from the browser. Only "submit" is understood.
type Inbound struct {
	Type  string `json:"type"`
	Pitch string `json:"pitch"`
}
