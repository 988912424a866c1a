package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"

	"github.com/latestcomment/boardroom-chat/internal/llm"
	"github.com/latestcomment/boardroom-chat/internal/logger"
	"github.com/latestcomment/boardroom-chat/internal/models"
	"github.com/latestcomment/boardroom-chat/internal/observe"
)

// User-facing relay messages.
const (
	MsgNoPitch         = "The board requires a pitch to begin."
	MsgConnFailed      = "Connection to the Boardroom failed: "
	MsgSilent          = "The Board remained silent. Check API logs."
	MsgUnreadable      = "The Board produced an unreadable transcript. Requesting a re-take."
	MsgBadToken        = "Invalid security token. Reload the page and try again."
	MsgUnknownAction   = "Unknown action."
	defaultRelayBudget = 120 * time.Second
)

// RelayError is a relay failure with the message shown to the user.
type RelayError struct {
	Message string
	Err     error
}

func (e *RelayError) Error() string {
	if e.Err != nil {
		return e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Message
}

func (e *RelayError) Unwrap() error { return e.Err }

// RelayService is the server half of the relay: it asks the configured
// engine for a board meeting about a pitch and parses the reply.
type RelayService struct {
	backend llm.Backend
	timeout time.Duration
	clock   clockwork.Clock
	log     *logger.Logger
	metrics *observe.Metrics
}

func NewRelayService(backend llm.Backend, timeout time.Duration, clock clockwork.Clock, log *logger.Logger, metrics *observe.Metrics) *RelayService {
	if timeout <= 0 {
		timeout = defaultRelayBudget
	}
	return &RelayService{backend: backend, timeout: timeout, clock: clock, log: log, metrics: metrics}
}

func (s *RelayService) Engine() string { return s.backend.Name() }

// Process returns the transcript for pitch or a *RelayError.
func (s *RelayService) Process(ctx context.Context, pitch string) (models.Transcript, error) {
	pitch = strings.TrimSpace(pitch)
	if pitch == "" {
		s.metrics.RecordRelay(ctx, s.Engine(), "no_pitch", 0)
		return nil, &RelayError{Message: MsgNoPitch}
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := s.clock.Now()
	raw, err := s.backend.Generate(ctx, llm.Request{System: llm.SystemPrompt, Pitch: pitch})
	elapsed := s.clock.Since(start).Seconds()
	fields := logrus.Fields{"engine": s.Engine(), "elapsed_s": elapsed}

	if err != nil {
		s.metrics.RecordRelay(ctx, s.Engine(), "backend_error", elapsed)
		s.log.Error("backend request failed", fields, logrus.Fields{"error": err.Error()})
		return nil, &RelayError{Message: MsgConnFailed + rootCause(err).Error(), Err: err}
	}
	if strings.TrimSpace(raw) == "" {
		s.metrics.RecordRelay(ctx, s.Engine(), "silent", elapsed)
		s.log.Warn("backend returned no text", fields)
		return nil, &RelayError{Message: MsgSilent}
	}

	t, err := llm.ParseTranscript(raw)
	if err != nil {
		s.metrics.RecordRelay(ctx, s.Engine(), "unreadable", elapsed)
		s.log.Warn("backend reply is not a transcript", fields, logrus.Fields{"raw_len": len(raw)})
		return nil, &RelayError{Message: MsgUnreadable, Err: err}
	}

	s.metrics.RecordRelay(ctx, s.Engine(), "success", elapsed)
	s.log.Info("board meeting generated", fields, logrus.Fields{"entries": len(t)})
	return t, nil
}

func rootCause(err error) error {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err
		}
		err = next
	}
}
