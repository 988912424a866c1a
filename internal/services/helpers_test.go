package services

import (
	"context"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel/metric/noop"

	"github.com/latestcomment/boardroom-chat/internal/models"
	"github.com/latestcomment/boardroom-chat/internal/observe"
)

// recordingView logs every view call as a short string.
type recordingView struct {
	mu      sync.Mutex
	events  []string
	msgs    []models.StreamMessage
	typing  map[string]bool
	nextID  int
	enabled bool
	label   string
	onError func(string)
}

func newRecordingView() *recordingView {
	return &recordingView{typing: map[string]bool{}, enabled: true, label: IdleLabel}
}

func (v *recordingView) add(format string, args ...any) {
	v.events = append(v.events, fmt.Sprintf(format, args...))
}

func (v *recordingView) SetSubmit(enabled bool, label string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.enabled, v.label = enabled, label
	v.add("submit:%t:%s", enabled, label)
}

func (v *recordingView) ClearInput() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.add("clear")
}

func (v *recordingView) AppendUserMessage(text string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.add("user:%s", text)
}

func (v *recordingView) ShowTyping(speaker string) string {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.nextID++
	id := fmt.Sprintf("t%d", v.nextID)
	v.typing[id] = true
	v.add("typing:%s", speaker)
	return id
}

func (v *recordingView) RemoveTyping(id string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.typing, id)
	v.add("untyping")
}

func (v *recordingView) AppendMessage(msg models.StreamMessage) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.msgs = append(v.msgs, msg)
	v.add("message:%s", msg.Speaker)
}

func (v *recordingView) ScrollToBottom() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.add("scroll")
}

func (v *recordingView) ShowError(message string) {
	v.mu.Lock()
	v.add("error:%s", message)
	hook := v.onError
	v.mu.Unlock()
	if hook != nil {
		hook(message)
	}
}

func (v *recordingView) Events() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]string(nil), v.events...)
}

// Filtered drops scroll events.
func (v *recordingView) Filtered() []string {
	var out []string
	for _, e := range v.Events() {
		if e != "scroll" {
			out = append(out, e)
		}
	}
	return out
}

func (v *recordingView) Messages() []models.StreamMessage {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]models.StreamMessage(nil), v.msgs...)
}

func (v *recordingView) Submit() (bool, string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.enabled, v.label
}

func (v *recordingView) TypingCount() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.typing)
}

// stubRelay returns a fixed result, optionally waiting on gate first.
type stubRelay struct {
	mu         sync.Mutex
	calls      int
	lastPitch  string
	lastToken  string
	transcript models.Transcript
	err        error
	gate       chan struct{}
	entered    chan struct{}
}

func (r *stubRelay) Consult(ctx context.Context, pitch, token string) (models.Transcript, error) {
	r.mu.Lock()
	r.calls++
	r.lastPitch, r.lastToken = pitch, token
	gate, entered := r.gate, r.entered
	r.mu.Unlock()

	if entered != nil {
		entered <- struct{}{}
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return r.transcript, r.err
}

func (r *stubRelay) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func testMetrics() *observe.Metrics {
	m, err := observe.NewMetrics(noop.NewMeterProvider())
	if err != nil {
		panic(err)
	}
	return m
}

func boardTranscript(names ...string) models.Transcript {
	t := make(models.Transcript, 0, len(names))
	for i, n := range names {
		t = append(t, models.TranscriptEntry{
			SpeakerName: n,
			SpeakerIcon: "*",
			MessageText: fmt.Sprintf("message %d from %s", i+1, n),
		})
	}
	return t
}
