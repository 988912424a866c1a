// Package llm talks to the language-model engines that write board meeting
// transcripts, and turns their raw replies into a models.Transcript.
package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"

	"github.com/latestcomment/boardroom-chat/internal/logger"
)

// Request is the input of one transcript generation.
type Request struct {
	// System is the fixed instruction describing the board and its output format.
	System string
	// Pitch is the user's trimmed pitch text.
	Pitch string
}

// Backend is one language-model engine. Implementations must be safe for
// concurrent use.
type Backend interface {
	Name() string
	// Generate returns the model's raw text reply.
	Generate(ctx context.Context, req Request) (string, error)
}

type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

func isPermanent(err error) bool {
	var p *permanentError
	return errors.As(err, &p) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

const baseBackoff = 500 * time.Millisecond

// Retrying retries a Backend with exponential backoff starting at 500ms.
type Retrying struct {
	next     Backend
	attempts int
	clock    clockwork.Clock
	log      *logger.Logger
}

// WithRetry wraps b so that each Generate makes up to attempts calls.
func WithRetry(b Backend, attempts int, clock clockwork.Clock, log *logger.Logger) *Retrying {
	if attempts < 1 {
		attempts = 1
	}
	return &Retrying{next: b, attempts: attempts, clock: clock, log: log}
}

func (r *Retrying) Name() string { return r.next.Name() }

func (r *Retrying) Generate(ctx context.Context, req Request) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= r.attempts; attempt++ {
		text, err := r.next.Generate(ctx, req)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if isPermanent(err) || attempt == r.attempts {
			break
		}

		wait := baseBackoff << (attempt - 1)
		r.log.Warn("backend request failed, retrying", logrus.Fields{
			"engine":  r.next.Name(),
			"attempt": attempt,
			"backoff": wait.String(),
			"error":   err.Error(),
		})
		select {
		case <-r.clock.After(wait):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return "", fmt.Errorf("%s: %w", r.next.Name(), lastErr)
}
