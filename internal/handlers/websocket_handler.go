package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/jonboulle/clockwork"

	"github.com/latestcomment/boardroom-chat/internal/logger"
	"github.com/latestcomment/boardroom-chat/internal/observe"
	"github.com/latestcomment/boardroom-chat/internal/services"
)

type WebSocketHandler struct {
	Sessions    *services.SessionService
	Relay       services.Relay
	Clock       clockwork.Clock
	TypingDelay time.Duration
	PauseDelay  time.Duration
	Log         *logger.Logger
	Metrics     *observe.Metrics
}

func (h *WebSocketHandler) WebSocketMiddleware(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// HandleWebSocket runs one page: a controller, its sequencer and the stream
// view all live for exactly as long as the connection.
func (h *WebSocketHandler) HandleWebSocket(c *websocket.Conn) {
	defer func() {
		_ = c.Close()
	}()

	sess := h.Sessions.Open(c.RemoteAddr().String())
	defer h.Sessions.Close(sess)

	view := NewStreamView(c, h.Clock, h.Log)
	player := services.NewSequencer(view, h.Clock, h.TypingDelay, h.PauseDelay, h.Log, h.Metrics)
	ctrl := services.NewController(view, h.Relay, player, c.Query("nonce"), h.Log, h.Metrics)

	view.SetSubmit(true, services.IdleLabel)
	h.Sessions.Loop(context.Background(), sess, c, ctrl)
}
