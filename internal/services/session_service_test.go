package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/latestcomment/boardroom-chat/internal/logger"
)

type scriptedReader struct {
	msgs [][]byte
	i    int
}

func (r *scriptedReader) ReadMessage() (int, []byte, error) {
	if r.i >= len(r.msgs) {
		return 0, nil, errors.New("closed")
	}
	m := r.msgs[r.i]
	r.i++
	return 1, m, nil
}

func TestSessionService_OpenClose(t *testing.T) {
	clock := clockwork.NewFakeClock()
	s := NewSessionService(clock, logger.Discard(), testMetrics())

	a := s.Open("1.2.3.4")
	b := s.Open("5.6.7.8")
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, clock.Now(), a.OpenedAt)
	assert.Equal(t, 2, s.Count())

	s.Close(a)
	s.Close(a)
	assert.Equal(t, 1, s.Count())
}

func TestSessionService_LoopDispatchesSubmits(t *testing.T) {
	s := NewSessionService(clockwork.NewRealClock(), logger.Discard(), testMetrics())
	view := newRecordingView()
	relay := &stubRelay{transcript: boardTranscript("Daraima")}
	ctrl := newController(view, relay, clockwork.NewRealClock(), 0, 0)

	reader := &scriptedReader{msgs: [][]byte{
		[]byte(`not json`),
		[]byte(`{"type":"ping"}`),
		[]byte(`{"type":"submit","pitch":"   "}`),
		[]byte(`{"type":"submit","pitch":"Board me"}`),
	}}

	sess := s.Open("test")
	s.Loop(context.Background(), sess, reader, ctrl)

	// Loop waits for in-flight submissions, but the reader closed right away,
	// so the submission may have been cancelled before the relay answered.
	assert.LessOrEqual(t, relay.Calls(), 1)
	enabled, _ := view.Submit()
	assert.True(t, enabled)
}

func TestSessionService_LoopCancelsOnDisconnect(t *testing.T) {
	s := NewSessionService(clockwork.NewRealClock(), logger.Discard(), testMetrics())
	view := newRecordingView()
	relay := &stubRelay{gate: make(chan struct{}), entered: make(chan struct{}, 1)}
	ctrl := newController(view, relay, clockwork.NewRealClock(), 0, 0)

	reader := &blockingReader{first: []byte(`{"type":"submit","pitch":"hold"}`), release: make(chan struct{})}
	done := make(chan struct{})
	go func() {
		s.Loop(context.Background(), s.Open("x"), reader, ctrl)
		close(done)
	}()

	<-relay.entered
	close(reader.release)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("loop did not return after disconnect")
	}
	require.Equal(t, 1, relay.Calls())
	enabled, label := view.Submit()
	assert.True(t, enabled)
	assert.Equal(t, IdleLabel, label)
}

type blockingReader struct {
	first   []byte
	sent    bool
	release chan struct{}
}

func (r *blockingReader) ReadMessage() (int, []byte, error) {
	if !r.sent {
		r.sent = true
		return 1, r.first, nil
	}
	<-r.release
	return 0, nil, errors.New("closed")
}
