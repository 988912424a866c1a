package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/latestcomment/boardroom-chat/internal/logger"
	"github.com/latestcomment/boardroom-chat/internal/models"
	"github.com/latestcomment/boardroom-chat/internal/observe"
)

const (
	IdleLabel     = "Consult the Board"
	BusyLabel     = "Consulting Board..."
	FallbackError = "Board Deadlock"
)

var (
	// ErrEmptyInput is returned for a blank pitch. Nothing is sent or shown.
	ErrEmptyInput = errors.New("submission: empty pitch")

	// ErrBusy is returned while another submission is in flight.
	ErrBusy = errors.New("submission: already in flight")
)

type FailureKind int

const (
	// TransportFailure means the relay could not be reached or timed out.
	TransportFailure FailureKind = iota + 1
	// ProtocolFailure means the relay answered without a usable transcript.
	ProtocolFailure
)

func (k FailureKind) String() string {
	switch k {
	case TransportFailure:
		return "transport_failure"
	case ProtocolFailure:
		return "protocol_failure"
	default:
		return "unknown"
	}
}

// SubmissionError is a failed relay round trip. Message, when set, is what
// the relay wants the user to read.
type SubmissionError struct {
	Kind    FailureKind
	Message string
	Err     error
}

func (e *SubmissionError) Error() string {
	switch {
	case e.Err != nil && e.Message != "":
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
}

func (e *SubmissionError) Unwrap() error { return e.Err }

// Relay sends one pitch and returns the board's transcript. Failures are
// reported as *SubmissionError.
type Relay interface {
	Consult(ctx context.Context, pitch, token string) (models.Transcript, error)
}

// Controller owns the single in-flight submission of one page.
type Controller struct {
	view    View
	relay   Relay
	player  *Sequencer
	token   string
	log     *logger.Logger
	metrics *observe.Metrics

	mu    sync.Mutex
	state models.SubmissionState
}

// NewController builds a controller for one page. token is the anti-forgery
// token sent with every relay request.
func NewController(view View, relay Relay, player *Sequencer, token string, log *logger.Logger, metrics *observe.Metrics) *Controller {
	return &Controller{
		view:    view,
		relay:   relay,
		player:  player,
		token:   token,
		log:     log,
		metrics: metrics,
	}
}

func (c *Controller) State() models.SubmissionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) setState(s models.SubmissionState) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

func (c *Controller) begin() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != models.StateIdle {
		return false
	}
	c.state = models.StateAwaitingResponse
	return true
}

// Submit sends pitch to the relay and plays back the answer. It blocks until
// playback completes or the submission fails, and always leaves the
// controller idle with the submit button enabled.
func (c *Controller) Submit(ctx context.Context, pitch string) error {
	pitch = strings.TrimSpace(pitch)
	if pitch == "" {
		return ErrEmptyInput
	}
	if !c.begin() {
		c.metrics.RecordSubmission(ctx, "busy")
		return ErrBusy
	}
	defer c.restore()

	c.view.SetSubmit(false, BusyLabel)
	c.view.AppendUserMessage(pitch)
	c.view.ScrollToBottom()
	c.view.ClearInput()

	transcript, err := c.relay.Consult(ctx, pitch, c.token)
	if err != nil {
		return c.fail(ctx, err)
	}

	c.setState(models.StatePlayingBack)
	if err := c.player.Play(ctx, transcript); err != nil {
		c.metrics.RecordSubmission(ctx, "aborted")
		c.log.Warn("playback abandoned", logrus.Fields{"error": err.Error()})
		return err
	}

	c.metrics.RecordSubmission(ctx, "ok")
	c.log.Info("board meeting played back", logrus.Fields{"entries": len(transcript)})
	return nil
}

func (c *Controller) fail(ctx context.Context, err error) error {
	c.setState(models.StateFailed)

	var se *SubmissionError
	if !errors.As(err, &se) {
		se = &SubmissionError{Kind: TransportFailure, Err: err}
	}

	msg := se.Message
	if msg == "" && se.Kind == TransportFailure && se.Err != nil {
		msg = se.Err.Error()
	}
	if msg == "" {
		msg = FallbackError
	}

	c.metrics.RecordSubmission(ctx, se.Kind.String())
	c.log.Warn("submission failed", logrus.Fields{"kind": se.Kind.String(), "error": err.Error()})
	c.view.ShowError(msg)
	return se
}

// restore runs deferred so that it also happens when a failure path panics.
func (c *Controller) restore() {
	c.setState(models.StateIdle)
	c.view.SetSubmit(true, IdleLabel)
}
