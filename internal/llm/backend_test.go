package llm

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/latestcomment/boardroom-chat/internal/logger"
)

type scriptedBackend struct {
	mu    sync.Mutex
	calls int
	errs  []error
	text  string
}

func (s *scriptedBackend) Name() string { return "scripted" }

func (s *scriptedBackend) Generate(_ context.Context, _ Request) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.calls
	s.calls++
	if i < len(s.errs) && s.errs[i] != nil {
		return "", s.errs[i]
	}
	return s.text, nil
}

func (s *scriptedBackend) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func TestRetrying_SucceedsAfterBackoff(t *testing.T) {
	clock := clockwork.NewFakeClock()
	b := &scriptedBackend{errs: []error{errors.New("503"), errors.New("429")}, text: "ok"}
	r := WithRetry(b, 3, clock, logger.Discard())

	type result struct {
		text string
		err  error
	}
	done := make(chan result, 1)
	go func() {
		text, err := r.Generate(context.Background(), Request{})
		done <- result{text, err}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	clock.Advance(500 * time.Millisecond)
	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	clock.Advance(time.Second)

	res := <-done
	require.NoError(t, res.err)
	assert.Equal(t, "ok", res.text)
	assert.Equal(t, 3, b.Calls())
}

func TestRetrying_GivesUp(t *testing.T) {
	clock := clockwork.NewFakeClock()
	b := &scriptedBackend{errs: []error{errors.New("boom"), errors.New("boom"), errors.New("last")}}
	r := WithRetry(b, 3, clock, logger.Discard())

	done := make(chan error, 1)
	go func() {
		_, err := r.Generate(context.Background(), Request{})
		done <- err
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for i := 0; i < 2; i++ {
		require.NoError(t, clock.BlockUntilContext(ctx, 1))
		clock.Advance(10 * time.Second)
	}

	err := <-done
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scripted: last")
	assert.Equal(t, 3, b.Calls())
}

func TestRetrying_PermanentErrorStops(t *testing.T) {
	b := &scriptedBackend{errs: []error{Permanent(errors.New("bad key"))}}
	r := WithRetry(b, 3, clockwork.NewFakeClock(), logger.Discard())

	_, err := r.Generate(context.Background(), Request{})
	require.Error(t, err)
	assert.Equal(t, 1, b.Calls())
}

func TestRetrying_ContextCancelledDuringBackoff(t *testing.T) {
	clock := clockwork.NewFakeClock()
	b := &scriptedBackend{errs: []error{errors.New("flaky"), errors.New("flaky")}}
	r := WithRetry(b, 3, clock, logger.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := r.Generate(ctx, Request{})
		done <- err
	}()

	waitCtx, waitCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer waitCancel()
	require.NoError(t, clock.BlockUntilContext(waitCtx, 1))
	cancel()

	assert.ErrorIs(t, <-done, context.Canceled)
	assert.Equal(t, 1, b.Calls())
}
