package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/latestcomment/boardroom-chat/internal/logger"
	"github.com/latestcomment/boardroom-chat/internal/nonce"
	"github.com/latestcomment/boardroom-chat/internal/services"
)

const welcomeText = "Welcome to the War Room. We've managed 60+ global projects; we don't have time for fluff. " +
	"Pitch us your concept, or ask a specific agent for an execution plan."

// envelope is the relay's response body.
type envelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

type failureData struct {
	Message string `json:"message,omitempty"`
}

type conversationData struct {
	Conversation any `json:"conversation"`
}

type Handler struct {
	Relay    *services.RelayService
	Sessions *services.SessionService
	Issuer   *nonce.Issuer
	Action   string
	Log      *logger.Logger
}

func NewHandler(relay *services.RelayService, sessions *services.SessionService, issuer *nonce.Issuer, action string, log *logger.Logger) *Handler {
	return &Handler{Relay: relay, Sessions: sessions, Issuer: issuer, Action: action, Log: log}
}

// HomePage renders the board room with a fresh anti-forgery token.
func (h *Handler) HomePage(c *fiber.Ctx) error {
	return c.Render("index", fiber.Map{
		"Nonce":     h.Issuer.Create(h.Action),
		"Action":    h.Action,
		"IdleLabel": services.IdleLabel,
		"Welcome":   welcomeText,
	})
}

// ProcessPitch is the relay endpoint: it checks the action and token, asks
// the board for a transcript and answers with a success or failure envelope.
func (h *Handler) ProcessPitch(c *fiber.Ctx) error {
	action := c.FormValue("action")
	if action != h.Action {
		return c.Status(fiber.StatusBadRequest).JSON(envelope{Data: failureData{Message: services.MsgUnknownAction}})
	}
	if err := h.Issuer.Verify(action, c.FormValue("nonce")); err != nil {
		h.Log.Warn("rejected relay request", logrus.Fields{"remote": c.IP(), "error": err.Error()})
		return c.Status(fiber.StatusForbidden).JSON(envelope{Data: failureData{Message: services.MsgBadToken}})
	}

	transcript, err := h.Relay.Process(c.UserContext(), c.FormValue("pitch"))
	if err != nil {
		var re *services.RelayError
		if errors.As(err, &re) {
			return c.JSON(envelope{Data: failureData{Message: re.Message}})
		}
		h.Log.Error("relay failed", logrus.Fields{"error": err.Error()})
		return c.Status(fiber.StatusInternalServerError).JSON(envelope{Data: failureData{}})
	}
	return c.JSON(envelope{Success: true, Data: conversationData{Conversation: transcript}})
}

func (h *Handler) Healthz(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":   "ok",
		"engine":   h.Relay.Engine(),
		"sessions": h.Sessions.Count(),
	})
}
