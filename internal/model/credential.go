package model

import (
	"time"
)

// Token is the opaque, time-limited bearer credential required by the mailer
// capability.
type Token struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Expired treats a zero expiry as non-expiring.
func (t *Token) Expired(now time.Time) bool {
	if t == nil {
		return true
	}
	return !t.ExpiresAt.IsZero() && !now.Before(t.ExpiresAt)
}
