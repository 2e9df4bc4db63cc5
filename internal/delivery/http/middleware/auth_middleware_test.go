package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	deliverycontext "gate/internal/delivery/context"
	"gate/internal/domain/entity"
	domainerrors "gate/internal/domain/errors"
	"gate/internal/domain/repository"
	"gate/internal/domain/service"
	"gate/internal/errors"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTokenService struct {
	claims *service.TokenClaims
	err    error
}

func (s *stubTokenService) IssueAccessToken(uuid.UUID) (string, *entity.AccessToken, error) {
	return "", nil, errors.New("not implemented")
}

func (s *stubTokenService) IssueRefreshToken(uuid.UUID, bool) (string, *entity.RefreshToken, error) {
	return "", nil, errors.New("not implemented")
}

func (s *stubTokenService) ParseAccessToken(string) (*service.TokenClaims, error) {
	return s.claims, s.err
}

func (s *stubTokenService) ParseRefreshToken(string) (*service.TokenClaims, error) {
	return nil, errors.New("not implemented")
}

func (s *stubTokenService) HashToken(token string) string { return token }

type stubTokenRepo struct {
	record *entity.AccessToken
	err    error
}

func (s *stubTokenRepo) CreateAccessToken(context.Context, *entity.AccessToken) error { return nil }

func (s *stubTokenRepo) FindAccessTokenByID(context.Context, uuid.UUID) (*entity.AccessToken, error) {
	return s.record, s.err
}

func (s *stubTokenRepo) RevokeAccessToken(context.Context, uuid.UUID) error           { return nil }
func (s *stubTokenRepo) CreateRefreshToken(context.Context, *entity.RefreshToken) error { return nil }

func (s *stubTokenRepo) FindRefreshTokenByHash(context.Context, string) (*entity.RefreshToken, error) {
	return nil, repository.ErrRefreshTokenNotFound
}

func (s *stubTokenRepo) DeleteRefreshTokensByUserID(context.Context, uuid.UUID) error { return nil }
func (s *stubTokenRepo) DeleteExpired(context.Context) error                          { return nil }

type stubUserRepo struct {
	user *entity.User
	err  error
}

func (s *stubUserRepo) FindByID(context.Context, uuid.UUID) (*entity.User, error) {
	return s.user, s.err
}

func (s *stubUserRepo) FindByEmail(context.Context, string) (*entity.User, error) {
	return nil, repository.ErrUserNotFound
}

func (s *stubUserRepo) FindByPhone(context.Context, string) (*entity.User, error) {
	return nil, repository.ErrUserNotFound
}

func (s *stubUserRepo) Create(context.Context, *entity.User) error { return nil }
func (s *stubUserRepo) Update(context.Context, *entity.User) error { return nil }

func (s *stubUserRepo) UpsertByProvider(context.Context, string, string, *entity.User) (*entity.User, error) {
	return nil, errors.New("not implemented")
}

func runAuthenticate(t *testing.T, m *AuthMiddleware, authHeader string) (error, *deliverycontext.Identity) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/auth/user", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var captured *deliverycontext.Identity
	err := m.Authenticate(func(c echo.Context) error {
		captured, _ = deliverycontext.GetIdentity(c.Request().Context())

		return nil
	})(c)

	return err, captured
}

func TestAuthenticate_Success(t *testing.T) {
	user := &entity.User{ID: uuid.New(), Name: "Test User"}
	tokenID := uuid.New()

	m := NewAuthMiddleware(
		&stubTokenService{claims: &service.TokenClaims{TokenID: tokenID, UserID: user.ID, Kind: service.TokenKindAccess}},
		&stubTokenRepo{record: &entity.AccessToken{ID: tokenID, UserID: user.ID, ExpiresAt: time.Now().Add(time.Hour)}},
		&stubUserRepo{user: user},
	)

	err, identity := runAuthenticate(t, m, "Bearer some-token")
	require.NoError(t, err)
	require.NotNil(t, identity)
	assert.Equal(t, user.ID, identity.User.ID)
	assert.Equal(t, tokenID, identity.TokenID)
}

func TestAuthenticate_MissingAndMalformedHeaders(t *testing.T) {
	m := NewAuthMiddleware(&stubTokenService{}, &stubTokenRepo{}, &stubUserRepo{})

	err, _ := runAuthenticate(t, m, "")
	require.ErrorIs(t, err, domainerrors.ErrUnauthorized)

	err, _ = runAuthenticate(t, m, "Basic dXNlcjpwYXNz")
	require.ErrorIs(t, err, domainerrors.ErrUnauthorized)

	err, _ = runAuthenticate(t, m, "Bearer ")
	require.ErrorIs(t, err, domainerrors.ErrUnauthorized)
}

func TestAuthenticate_InvalidSignature(t *testing.T) {
	m := NewAuthMiddleware(
		&stubTokenService{err: errors.New("signature invalid")},
		&stubTokenRepo{},
		&stubUserRepo{},
	)

	err, _ := runAuthenticate(t, m, "Bearer tampered-token")
	require.ErrorIs(t, err, domainerrors.ErrUnauthorized)
}

func TestAuthenticate_RevokedToken(t *testing.T) {
	tokenID := uuid.New()
	userID := uuid.New()
	revokedAt := time.Now().Add(-time.Minute)

	m := NewAuthMiddleware(
		&stubTokenService{claims: &service.TokenClaims{TokenID: tokenID, UserID: userID, Kind: service.TokenKindAccess}},
		&stubTokenRepo{record: &entity.AccessToken{ID: tokenID, UserID: userID, ExpiresAt: time.Now().Add(time.Hour), RevokedAt: &revokedAt}},
		&stubUserRepo{user: &entity.User{ID: userID}},
	)

	err, _ := runAuthenticate(t, m, "Bearer revoked-token")
	require.ErrorIs(t, err, domainerrors.ErrUnauthorized)
}

func TestAuthenticate_UnknownTokenRecord(t *testing.T) {
	m := NewAuthMiddleware(
		&stubTokenService{claims: &service.TokenClaims{TokenID: uuid.New(), UserID: uuid.New(), Kind: service.TokenKindAccess}},
		&stubTokenRepo{err: repository.ErrAccessTokenNotFound},
		&stubUserRepo{},
	)

	err, _ := runAuthenticate(t, m, "Bearer unknown-token")
	require.ErrorIs(t, err, domainerrors.ErrUnauthorized)
}

func TestAuthenticate_DeletedUser(t *testing.T) {
	tokenID := uuid.New()

	m := NewAuthMiddleware(
		&stubTokenService{claims: &service.TokenClaims{TokenID: tokenID, UserID: uuid.New(), Kind: service.TokenKindAccess}},
		&stubTokenRepo{record: &entity.AccessToken{ID: tokenID, ExpiresAt: time.Now().Add(time.Hour)}},
		&stubUserRepo{err: repository.ErrUserNotFound},
	)

	err, _ := runAuthenticate(t, m, "Bearer orphan-token")
	require.ErrorIs(t, err, domainerrors.ErrUnauthorized)
}
