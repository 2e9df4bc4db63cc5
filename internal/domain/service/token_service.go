package service

import (
	"gate/internal/domain/entity"

	"github.com/google/uuid"
)

// TokenKind distinguishes the two token tiers minted by the service.
type TokenKind string

const (
	TokenKindAccess  TokenKind = "access"
	TokenKindRefresh TokenKind = "refresh"
)

// TokenClaims is the verified content of a parsed token.
type TokenClaims struct {
	TokenID uuid.UUID // jti claim, keys the revocation record for access tokens.
	UserID  uuid.UUID // sub claim.
	Kind    TokenKind // type claim.
}

// TokenService mints and parses the bearer tokens of the system. Issued
// tokens come with the persistence record the caller must store; parsing
// verifies signature, expiry and token type but not revocation, which is the
// store's concern.
type TokenService interface {
	// IssueAccessToken mints a short-lived access token for the user.
	IssueAccessToken(userID uuid.UUID) (token string, record *entity.AccessToken, err error)

	// IssueRefreshToken mints a refresh token. remember selects the
	// long-lived tier over the default one.
	IssueRefreshToken(userID uuid.UUID, remember bool) (token string, record *entity.RefreshToken, err error)

	// ParseAccessToken verifies an access token string and returns its claims.
	ParseAccessToken(token string) (*TokenClaims, error)

	// ParseRefreshToken verifies a refresh token string and returns its claims.
	ParseRefreshToken(token string) (*TokenClaims, error)

	// HashToken returns the hex SHA-256 hash under which raw tokens are
	// stored.
	HashToken(token string) string
}
