package entity

import (
	"time"

	"github.com/google/uuid"
)

// AccessToken is the persisted side of a bearer access token. The signed token
// string itself is never stored; the record keys revocation by the token's jti
// and holds a SHA-256 hash for auditing. A revoked token stays revoked even if
// its signature would still verify.
type AccessToken struct {
	ID        uuid.UUID  // Matches the jti claim of the signed token.
	UserID    uuid.UUID  // Owner of the token.
	TokenHash string     // SHA-256 hash of the raw token string.
	ExpiresAt time.Time  // Hard expiry, mirrors the exp claim.
	RevokedAt *time.Time // Non-nil once the token has been revoked by logout.
	CreatedAt time.Time
}

// Revoked reports whether the token has been explicitly revoked.
func (t *AccessToken) Revoked() bool {
	return t.RevokedAt != nil
}

// Expired reports whether the token's hard expiry has passed.
func (t *AccessToken) Expired(now time.Time) bool {
	return t.ExpiresAt.Before(now)
}

// Usable reports whether the token may still authenticate requests.
func (t *AccessToken) Usable(now time.Time) bool {
	return !t.Revoked() && !t.Expired(now)
}

// RefreshToken represents a long-lived session credential used to mint a new
// access token without re-presenting the password. Stored by hash only.
type RefreshToken struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	TokenHash string    // SHA-256 hash of the raw refresh token.
	ExpiresAt time.Time // 7 days by default, 6 months for remembered logins.
	CreatedAt time.Time
}
