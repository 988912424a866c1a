package services

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"

	"github.com/latestcomment/boardroom-chat/internal/logger"
	"github.com/latestcomment/boardroom-chat/internal/models"
	"github.com/latestcomment/boardroom-chat/internal/observe"
	"github.com/latestcomment/boardroom-chat/internal/render"
)

const (
	DefaultTypingDelay = 3 * time.Second
	DefaultPauseDelay  = 2 * time.Second
)

// Sequencer reveals a transcript one entry at a time: typing placeholder,
// typing delay, placeholder removed, message shown, pause.
type Sequencer struct {
	view        View
	clock       clockwork.Clock
	typingDelay time.Duration
	pauseDelay  time.Duration
	log         *logger.Logger
	metrics     *observe.Metrics
}

func NewSequencer(view View, clock clockwork.Clock, typingDelay, pauseDelay time.Duration, log *logger.Logger, metrics *observe.Metrics) *Sequencer {
	return &Sequencer{
		view:        view,
		clock:       clock,
		typingDelay: typingDelay,
		pauseDelay:  pauseDelay,
		log:         log,
		metrics:     metrics,
	}
}

// Play returns once every entry has been revealed, or with ctx's error if
// the page went away first. No pause follows the final entry.
func (s *Sequencer) Play(ctx context.Context, t models.Transcript) error {
	for i, entry := range t {
		id := s.view.ShowTyping(entry.SpeakerName)
		s.view.ScrollToBottom()

		if err := s.sleep(ctx, s.typingDelay); err != nil {
			return err
		}

		s.view.RemoveTyping(id)
		s.view.ScrollToBottom()

		msg := models.StreamMessage{
			Speaker:    entry.SpeakerName,
			Icon:       entry.SpeakerIcon,
			StyleClass: entry.StyleClass(),
			Fragment:   render.Render(entry.MessageText),
		}
		s.view.AppendMessage(msg)
		s.view.ScrollToBottom()
		s.metrics.RecordRevealed(ctx, msg.StyleClass)

		if i == len(t)-1 {
			break
		}
		if err := s.sleep(ctx, s.pauseDelay); err != nil {
			return err
		}
	}
	s.log.Debug("playback finished", logrus.Fields{"entries": len(t)})
	return nil
}

// sleep suspends for d on the sequencer's clock.
func (s *Sequencer) sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-s.clock.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
