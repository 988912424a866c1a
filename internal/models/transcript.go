package models

import "strings"

// UserStyleClass marks the bubble holding the user's own pitch.
const UserStyleClass = "user-message"

type TranscriptEntry struct {
	SpeakerName string `json:"agent"`
	SpeakerIcon string `json:"emoji"`
	MessageText string `json:"message"`
}

// StyleClass groups bubbles by speaker for presentation. It is not an identity key.
func (e TranscriptEntry) StyleClass() string {
	return SpeakerStyleClass(e.SpeakerName)
}

// SpeakerStyleClass lower-cases name and keeps its first token, so
// "Justice (CFO)" becomes "agent-justice".
func SpeakerStyleClass(name string) string {
	fields := strings.Fields(strings.ToLower(name))
	if len(fields) == 0 {
		return "agent-"
	}
	return "agent-" + fields[0]
}

// Transcript is produced atomically by one relay call. Order is presentation order.
type Transcript []TranscriptEntry
