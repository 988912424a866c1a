package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"

	"github.com/latestcomment/boardroom-chat/internal/logger"
	"github.com/latestcomment/boardroom-chat/internal/models"
	"github.com/latestcomment/boardroom-chat/internal/observe"
)

// MessageReader is the read half of a websocket connection.
type MessageReader interface {
	ReadMessage() (messageType int, p []byte, err error)
}

// SessionService tracks open pages.
type SessionService struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*models.Session
	clock    clockwork.Clock
	log      *logger.Logger
	metrics  *observe.Metrics
}

func NewSessionService(clock clockwork.Clock, log *logger.Logger, metrics *observe.Metrics) *SessionService {
	return &SessionService{
		sessions: make(map[uuid.UUID]*models.Session),
		clock:    clock,
		log:      log,
		metrics:  metrics,
	}
}

func (s *SessionService) Open(remoteAddr string) *models.Session {
	sess := &models.Session{
		ID:         uuid.New(),
		RemoteAddr: remoteAddr,
		OpenedAt:   s.clock.Now(),
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	s.metrics.ActiveSessions.Add(context.Background(), 1)
	s.log.Info("session opened", logrus.Fields{"session": sess.ID.String(), "remote": remoteAddr})
	return sess
}

func (s *SessionService) Close(sess *models.Session) {
	s.mu.Lock()
	_, ok := s.sessions[sess.ID]
	delete(s.sessions, sess.ID)
	s.mu.Unlock()
	if !ok {
		return
	}

	s.metrics.ActiveSessions.Add(context.Background(), -1)
	s.log.Info("session closed", logrus.Fields{
		"session":  sess.ID.String(),
		"duration": s.clock.Since(sess.OpenedAt).String(),
	})
}

func (s *SessionService) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Loop reads browser messages until the connection fails, handing each
// submit to ctrl on its own goroutine so a busy controller never stalls the
// reader. When the reader stops, in-flight submissions are cancelled and
// awaited.
func (s *SessionService) Loop(ctx context.Context, sess *models.Session, conn MessageReader, ctrl *Controller) {
	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	defer func() {
		cancel()
		wg.Wait()
	}()

	log := s.log.With(logrus.Fields{"session": sess.ID.String()})
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var in models.Inbound
		if err := json.Unmarshal(data, &in); err != nil {
			log.Debug("ignoring malformed message", logrus.Fields{"error": err.Error()})
			continue
		}
		if in.Type != "submit" {
			log.Debug("ignoring message", logrus.Fields{"type": in.Type})
			continue
		}

		wg.Add(1)
		go func(pitch string) {
			defer wg.Done()
			err := ctrl.Submit(ctx, pitch)
			switch {
			case err == nil, errors.Is(err, ErrEmptyInput), errors.Is(err, ErrBusy):
			case errors.Is(err, context.Canceled):
				log.Debug("submission abandoned with the page")
			default:
				log.Debug("submission ended with error", logrus.Fields{"error": err.Error()})
			}
		}(in.Pitch)
	}
}
