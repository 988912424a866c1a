package handlers

import (
	"sync"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"

	"github.com/latestcomment/boardroom-chat/internal/logger"
	"github.com/latestcomment/boardroom-chat/internal/models"
)

const userIcon = "👤"

// JSONWriter is the write half of a websocket connection.
type JSONWriter interface {
	WriteJSON(v any) error
}

// StreamView implements services.View by sending events to the browser.
// Writes are serialised; a failed write is logged and the stream carries on
// so that an abandoned page never breaks the controller.
type StreamView struct {
	mu    sync.Mutex
	w     JSONWriter
	clock clockwork.Clock
	log   *logger.Logger
}

func NewStreamView(w JSONWriter, clock clockwork.Clock, log *logger.Logger) *StreamView {
	return &StreamView{w: w, clock: clock, log: log}
}

func (v *StreamView) send(ev models.Event) {
	ev.Timestamp = v.clock.Now()

	v.mu.Lock()
	defer v.mu.Unlock()
	if err := v.w.WriteJSON(ev); err != nil {
		v.log.Debug("stream write failed", logrus.Fields{"event": string(ev.Type), "error": err.Error()})
	}
}

func (v *StreamView) SetSubmit(enabled bool, label string) {
	v.send(models.Event{Type: models.EventSubmitState, Enabled: &enabled, Label: label})
}

func (v *StreamView) ClearInput() {
	v.send(models.Event{Type: models.EventInputCleared})
}

// AppendUserMessage shows the pitch as typed, without formatting.
func (v *StreamView) AppendUserMessage(text string) {
	v.send(models.Event{
		Type:       models.EventUserMessage,
		Speaker:    "User",
		Icon:       userIcon,
		StyleClass: models.UserStyleClass,
		Text:       text,
	})
}

func (v *StreamView) ShowTyping(speaker string) string {
	id := uuid.NewString()
	v.send(models.Event{
		Type:    models.EventTyping,
		ID:      id,
		Speaker: speaker,
		Text:    speaker + " is reviewing...",
	})
	return id
}

func (v *StreamView) RemoveTyping(id string) {
	v.send(models.Event{Type: models.EventTypingRemoved, ID: id})
}

func (v *StreamView) AppendMessage(msg models.StreamMessage) {
	frag := msg.Fragment
	v.send(models.Event{
		Type:       models.EventMessage,
		Speaker:    msg.Speaker,
		Icon:       msg.Icon,
		StyleClass: msg.StyleClass,
		Fragment:   &frag,
		HTML:       frag.HTML(),
	})
}

func (v *StreamView) ScrollToBottom() {
	v.send(models.Event{Type: models.EventScroll})
}

func (v *StreamView) ShowError(message string) {
	v.send(models.Event{Type: models.EventError, Message: message})
}
