// Package nonce issues and verifies anti-forgery tokens bound to an action.
//
// Tokens are HMAC-SHA256 digests over the action and a time tick. A tick is
// half the configured lifetime, and a token stays valid for the tick it was
// issued in and the one after, so its effective lifetime is between half and
// all of the configured value.
package nonce

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"time"

	"github.com/jonboulle/clockwork"
)

const tokenLen = 20

var ErrInvalid = errors.New("nonce: invalid or expired token")

type Issuer struct {
	secret   []byte
	lifetime time.Duration
	clock    clockwork.Clock
}

// NewIssuer returns an Issuer keyed by secret. An empty secret gets a random
// key, which invalidates tokens across restarts.
func NewIssuer(secret string, lifetime time.Duration, clock clockwork.Clock) (*Issuer, error) {
	key := []byte(secret)
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, err
		}
	}
	if lifetime <= 0 {
		return nil, errors.New("nonce: lifetime must be positive")
	}
	return &Issuer{secret: key, lifetime: lifetime, clock: clock}, nil
}

func (i *Issuer) tick() int64 {
	half := int64(i.lifetime / 2)
	if half == 0 {
		half = 1
	}
	return i.clock.Now().UnixNano() / half
}

func (i *Issuer) sign(action string, tick int64) string {
	mac := hmac.New(sha256.New, i.secret)
	mac.Write([]byte(action))
	mac.Write([]byte{0})
	mac.Write([]byte(strconv.FormatInt(tick, 10)))
	return hex.EncodeToString(mac.Sum(nil))[:tokenLen]
}

// Create returns a token for action valid from now.
func (i *Issuer) Create(action string) string {
	return i.sign(action, i.tick())
}

// Verify returns ErrInvalid unless token was created for action in the
// current or previous tick.
func (i *Issuer) Verify(action, token string) error {
	if len(token) != tokenLen {
		return ErrInvalid
	}
	now := i.tick()
	for _, t := range []int64{now, now - 1} {
		if hmac.Equal([]byte(token), []byte(i.sign(action, t))) {
			return nil
		}
	}
	return ErrInvalid
}
