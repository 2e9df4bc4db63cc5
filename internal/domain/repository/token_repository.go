package repository

import (
	"context"

	"gate/internal/domain/entity"
	"gate/internal/errors"

	"github.com/google/uuid"
)

// Sentinel errors returned by token lookups.
var (
	// ErrAccessTokenNotFound indicates no access token record matches.
	ErrAccessTokenNotFound = errors.New("access token not found")

	// ErrRefreshTokenNotFound indicates no refresh token record matches.
	ErrRefreshTokenNotFound = errors.New("refresh token not found")

	// ErrRefreshTokenExpired indicates the refresh token exists but its
	// expiry has passed.
	ErrRefreshTokenExpired = errors.New("refresh token expired")
)

// TokenRepository is the token store contract backing issuance, introspection
// and revocation.
type TokenRepository interface {
	// CreateAccessToken persists the revocation record of a freshly minted
	// access token.
	CreateAccessToken(ctx context.Context, token *entity.AccessToken) error

	// FindAccessTokenByID retrieves the record for the given jti.
	FindAccessTokenByID(ctx context.Context, id uuid.UUID) (*entity.AccessToken, error)

	// RevokeAccessToken marks the token permanently unusable. Revoking an
	// already revoked token is a no-op.
	RevokeAccessToken(ctx context.Context, id uuid.UUID) error

	// CreateRefreshToken persists a new refresh token record.
	CreateRefreshToken(ctx context.Context, token *entity.RefreshToken) error

	// FindRefreshTokenByHash retrieves an unexpired refresh token by its
	// SHA-256 hash.
	FindRefreshTokenByHash(ctx context.Context, tokenHash string) (*entity.RefreshToken, error)

	// DeleteRefreshTokensByUserID removes all refresh tokens of a user.
	DeleteRefreshTokensByUserID(ctx context.Context, userID uuid.UUID) error

	// DeleteExpired purges expired access token records and expired refresh
	// tokens. Revoked access tokens are kept until they expire so revocation
	// stays effective for the token's whole lifetime.
	DeleteExpired(ctx context.Context) error
}
