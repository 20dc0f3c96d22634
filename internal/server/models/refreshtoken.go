package models

import "time"

// RefreshToken is the persisted half of a session. Records are hard-deleted
// on logout and on rotation; Revoked exists for bulk revocation by other
// tools and is honored by lookups.
type RefreshToken struct {
	ID        string
	Token     string
	UserID    string
	Kind      TokenKind
	ExpiresAt time.Time
	Revoked   bool
	CreatedAt time.Time
}

// Active reports whether the record can still be redeemed at now.
func (t *RefreshToken) Active(now time.Time) bool {
	return !t.Revoked && now.Before(t.ExpiresAt)
}
