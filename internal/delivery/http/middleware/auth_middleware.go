package middleware

import (
	"strings"
	"time"

	deliverycontext "gate/internal/delivery/context"
	domainerrors "gate/internal/domain/errors"
	"gate/internal/domain/repository"
	"gate/internal/domain/service"

	"github.com/labstack/echo/v4"
)

// AuthMiddleware authenticates requests by bearer access token. A token must
// both verify cryptographically and still be live in the store: revocation
// and record expiry win over a valid signature.
type AuthMiddleware struct {
	tokenSvc  service.TokenService
	tokenRepo repository.TokenRepository
	userRepo  repository.UserRepository
}

// NewAuthMiddleware is the constructor for AuthMiddleware.
func NewAuthMiddleware(tokenSvc service.TokenService, tokenRepo repository.TokenRepository, userRepo repository.UserRepository) *AuthMiddleware {
	return &AuthMiddleware{
		tokenSvc:  tokenSvc,
		tokenRepo: tokenRepo,
		userRepo:  userRepo,
	}
}

// Authenticate validates the bearer token and stores the resolved identity on
// the request context. Every failure mode answers with the same generic 401.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			return domainerrors.ErrUnauthorized.WrapMessage("authorization header missing")
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader || tokenString == "" {
			return domainerrors.ErrUnauthorized.WrapMessage("malformed authorization header")
		}

		claims, err := m.tokenSvc.ParseAccessToken(tokenString)
		if err != nil {
			return domainerrors.ErrUnauthorized.WrapMessage("token verification failed")
		}

		ctx := c.Request().Context()

		record, err := m.tokenRepo.FindAccessTokenByID(ctx, claims.TokenID)
		if err != nil {
			return domainerrors.ErrUnauthorized.WrapMessage("token record lookup failed")
		}
		if !record.Usable(time.Now()) {
			return domainerrors.ErrUnauthorized.WrapMessage("token revoked or expired")
		}

		user, err := m.userRepo.FindByID(ctx, claims.UserID)
		if err != nil {
			return domainerrors.ErrUnauthorized.WrapMessage("token user lookup failed")
		}

		identity := &deliverycontext.Identity{User: user, TokenID: claims.TokenID}
		c.SetRequest(c.Request().WithContext(deliverycontext.WithIdentity(ctx, identity)))

		return next(c)
	}
}
