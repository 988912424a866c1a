package models

import (
	"time"

	"github.com/google/uuid"
)

// Session is one open page. It lives as long as its websocket.
type Session struct {
	ID         uuid.UUID `json:"sessionId"`
	RemoteAddr string    `json:"remoteAddr"`
	OpenedAt   time.Time `json:"openedAt"`
}
