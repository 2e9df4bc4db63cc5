package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"gate/config"
	"gate/internal/domain/entity"
	"gate/internal/domain/service"
	"gate/internal/errors"
)

// jwtService is a concrete implementation of the TokenService interface using
// the JWT standard. Every issued token carries a jti claim; for access tokens
// it keys the revocation record in the store.
type jwtService struct {
	accessSecret  string
	refreshSecret string
	accessTTL     time.Duration
	refreshTTL    time.Duration
	rememberTTL   time.Duration
}

// NewJWTService is the constructor for jwtService.
// It takes configuration values to create a new token service instance.
func NewJWTService(cfg *config.Config) (service.TokenService, error) {
	if cfg.SecretKey.Access == "" || cfg.SecretKey.Refresh == "" {
		return nil, errors.New("jwt secrets must be provided")
	}

	return &jwtService{
		accessSecret:  cfg.SecretKey.Access,
		refreshSecret: cfg.SecretKey.Refresh,
		accessTTL:     cfg.Auth.AccessTokenTTL,
		refreshTTL:    cfg.Auth.RefreshTokenTTL,
		rememberTTL:   cfg.Auth.RememberMeTTL,
	}, nil
}

// IssueAccessToken mints a signed access token together with its store record.
func (s *jwtService) IssueAccessToken(userID uuid.UUID) (string, *entity.AccessToken, error) {
	now := time.Now()
	tokenID := uuid.New()

	token, err := s.signToken(tokenID, userID, now, s.accessTTL, s.accessSecret, service.TokenKindAccess)
	if err != nil {
		return "", nil, errors.Wrap(err, "failed to sign access token")
	}

	record := &entity.AccessToken{
		ID:        tokenID,
		UserID:    userID,
		TokenHash: s.HashToken(token),
		ExpiresAt: now.Add(s.accessTTL),
		CreatedAt: now,
	}

	return token, record, nil
}

// IssueRefreshToken mints a signed refresh token. remember selects the
// long-lived tier over the default one.
func (s *jwtService) IssueRefreshToken(userID uuid.UUID, remember bool) (string, *entity.RefreshToken, error) {
	now := time.Now()
	tokenID := uuid.New()

	ttl := s.refreshTTL
	if remember {
		ttl = s.rememberTTL
	}

	token, err := s.signToken(tokenID, userID, now, ttl, s.refreshSecret, service.TokenKindRefresh)
	if err != nil {
		return "", nil, errors.Wrap(err, "failed to sign refresh token")
	}

	record := &entity.RefreshToken{
		ID:        tokenID,
		UserID:    userID,
		TokenHash: s.HashToken(token),
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}

	return token, record, nil
}

// ParseAccessToken verifies an access token string and returns its claims.
func (s *jwtService) ParseAccessToken(token string) (*service.TokenClaims, error) {
	return s.parseToken(token, s.accessSecret, service.TokenKindAccess)
}

// ParseRefreshToken verifies a refresh token string and returns its claims.
func (s *jwtService) ParseRefreshToken(token string) (*service.TokenClaims, error) {
	return s.parseToken(token, s.refreshSecret, service.TokenKindRefresh)
}

// HashToken returns the hex SHA-256 hash under which raw tokens are stored.
func (s *jwtService) HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))

	return hex.EncodeToString(sum[:])
}

// signToken creates a JWT with the standard claim set of the system.
func (s *jwtService) signToken(tokenID, userID uuid.UUID, now time.Time, ttl time.Duration, secret string, kind service.TokenKind) (string, error) {
	claims := jwt.MapClaims{
		"jti":  tokenID.String(),
		"sub":  userID.String(),
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
		"type": string(kind),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return token.SignedString([]byte(secret))
}

// parseToken verifies signature, expiry and token type against the secret of
// the expected tier. Tokens of the wrong tier never verify, even though both
// tiers share the claim layout.
func (s *jwtService) parseToken(tokenString, secret string, kind service.TokenKind) (*service.TokenClaims, error) {
	parsed, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		// Ensure the signing method is what we expect.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}

		return []byte(secret), nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse token")
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token claims")
	}

	tokenType, _ := claims["type"].(string)
	if tokenType != string(kind) {
		return nil, errors.Errorf("unexpected token type: %s", tokenType)
	}

	tokenID, err := parseUUIDClaim(claims, "jti")
	if err != nil {
		return nil, err
	}
	userID, err := parseUUIDClaim(claims, "sub")
	if err != nil {
		return nil, err
	}

	return &service.TokenClaims{
		TokenID: tokenID,
		UserID:  userID,
		Kind:    kind,
	}, nil
}

func parseUUIDClaim(claims jwt.MapClaims, name string) (uuid.UUID, error) {
	raw, _ := claims[name].(string)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errors.Wrapf(err, "invalid %s claim", name)
	}

	return id, nil
}
