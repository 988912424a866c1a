package services

import "github.com/latestcomment/boardroom-chat/internal/models"

// View is the single stream container together with its input field and
// submit button. Only the Controller and the Sequencer mutate it, and never
// concurrently.
type View interface {
	SetSubmit(enabled bool, label string)
	ClearInput()
	AppendUserMessage(text string)
	// ShowTyping inserts a placeholder for speaker and returns its id.
	ShowTyping(speaker string) string
	RemoveTyping(id string)
	AppendMessage(msg models.StreamMessage)
	ScrollToBottom()
	ShowError(message string)
}
