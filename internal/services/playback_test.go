package services

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/latestcomment/boardroom-chat/internal/logger"
	"github.com/latestcomment/boardroom-chat/internal/render"
)

// drive advances the fake clock each time the sequencer sleeps until done closes.
func drive(t *testing.T, clock *clockwork.FakeClock, steps []time.Duration, done <-chan error) error {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for _, d := range steps {
		require.NoError(t, clock.BlockUntilContext(ctx, 1))
		clock.Advance(d)
	}
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		t.Fatal("sequencer did not finish")
		return nil
	}
}

func TestSequencer_OrderAndTiming(t *testing.T) {
	clock := clockwork.NewFakeClock()
	view := newRecordingView()
	seq := NewSequencer(view, clock, DefaultTypingDelay, DefaultPauseDelay, logger.Discard(), testMetrics())
	tr := boardTranscript("Daraima", "Justice", "Moses")

	start := clock.Now()
	done := make(chan error, 1)
	go func() { done <- seq.Play(context.Background(), tr) }()

	steps := []time.Duration{
		DefaultTypingDelay, DefaultPauseDelay,
		DefaultTypingDelay, DefaultPauseDelay,
		DefaultTypingDelay,
	}
	require.NoError(t, drive(t, clock, steps, done))

	n := len(tr)
	wantMin := time.Duration(n)*DefaultTypingDelay + time.Duration(n-1)*DefaultPauseDelay
	assert.GreaterOrEqual(t, clock.Since(start), wantMin)

	assert.Equal(t, []string{
		"typing:Daraima", "untyping", "message:Daraima",
		"typing:Justice", "untyping", "message:Justice",
		"typing:Moses", "untyping", "message:Moses",
	}, view.Filtered())
	assert.Zero(t, view.TypingCount())

	msgs := view.Messages()
	require.Len(t, msgs, n)
	for i, m := range msgs {
		assert.Equal(t, tr[i].SpeakerName, m.Speaker)
		assert.Equal(t, tr[i].StyleClass(), m.StyleClass)
		assert.Equal(t, render.Render(tr[i].MessageText), m.Fragment)
	}
}

func TestSequencer_DoesNotProceedEarly(t *testing.T) {
	clock := clockwork.NewFakeClock()
	view := newRecordingView()
	seq := NewSequencer(view, clock, DefaultTypingDelay, DefaultPauseDelay, logger.Discard(), testMetrics())

	done := make(chan error, 1)
	go func() { done <- seq.Play(context.Background(), boardTranscript("Emma")) }()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	clock.Advance(DefaultTypingDelay - time.Millisecond)
	assert.Equal(t, []string{"typing:Emma"}, view.Filtered())
	assert.Equal(t, 1, view.TypingCount())

	clock.Advance(time.Millisecond)
	require.NoError(t, <-done)
	assert.Equal(t, []string{"typing:Emma", "untyping", "message:Emma"}, view.Filtered())
}

func TestSequencer_ScrollsAfterEveryChange(t *testing.T) {
	view := newRecordingView()
	seq := NewSequencer(view, clockwork.NewRealClock(), 0, 0, logger.Discard(), testMetrics())

	require.NoError(t, seq.Play(context.Background(), boardTranscript("A", "B")))

	events := view.Events()
	for i, e := range events {
		if e != "scroll" {
			require.Less(t, i+1, len(events))
			assert.Equal(t, "scroll", events[i+1], "event %d (%s) not followed by scroll", i, e)
		}
	}
}

func TestSequencer_EmptyTranscript(t *testing.T) {
	view := newRecordingView()
	seq := NewSequencer(view, clockwork.NewFakeClock(), DefaultTypingDelay, DefaultPauseDelay, logger.Discard(), testMetrics())

	require.NoError(t, seq.Play(context.Background(), nil))
	assert.Empty(t, view.Events())
}

func TestSequencer_CancelledMidSequence(t *testing.T) {
	clock := clockwork.NewFakeClock()
	view := newRecordingView()
	seq := NewSequencer(view, clock, DefaultTypingDelay, DefaultPauseDelay, logger.Discard(), testMetrics())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- seq.Play(ctx, boardTranscript("A", "B")) }()

	waitCtx, waitCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer waitCancel()
	require.NoError(t, clock.BlockUntilContext(waitCtx, 1))
	cancel()

	assert.ErrorIs(t, <-done, context.Canceled)
	assert.Equal(t, []string{"typing:A"}, view.Filtered())
}
