package model

import "time"

// RefreshToken mirrors the 'refresh_tokens' table. TokenHash is a SHA-256 of
// the refresh JWT string and serves as an opaque lookup key; the token's own
// signature is the authenticity boundary. Rows are deleted on rotation,
// logout, password change and by the periodic expiry sweep.
type RefreshToken struct {
	ID        string
	UserID    string
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
}
