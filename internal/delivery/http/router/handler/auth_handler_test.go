package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	deliverycontext "gate/internal/delivery/context"
	deliveryMiddleware "gate/internal/delivery/http/middleware"
	"gate/internal/delivery/http/validator"
	"gate/internal/domain/entity"
	domainerrors "gate/internal/domain/errors"
	"gate/internal/domain/service"
	"gate/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAuthUsecase implements usecase.AuthUsecase with programmable results.
type fakeAuthUsecase struct {
	registerOut *usecase.AuthOutput
	registerErr error
	loginOut    *usecase.AuthOutput
	loginErr    error
	refreshOut  *usecase.RefreshOutput
	refreshErr  error
	socialURL   string
	socialErr   error
	callbackOut *usecase.AuthOutput
	callbackErr error
	currentUser *entity.User
	currentErr  error
	logoutErr   error

	lastLogin    *usecase.LoginInput
	lastCallback *usecase.SocialCallbackInput
	logoutUser   uuid.UUID
	logoutToken  uuid.UUID
}

func (f *fakeAuthUsecase) Register(_ context.Context, _ *usecase.RegisterInput) (*usecase.AuthOutput, error) {
	return f.registerOut, f.registerErr
}

func (f *fakeAuthUsecase) Login(_ context.Context, input *usecase.LoginInput) (*usecase.AuthOutput, error) {
	f.lastLogin = input

	return f.loginOut, f.loginErr
}

func (f *fakeAuthUsecase) Refresh(_ context.Context, _ *usecase.RefreshInput) (*usecase.RefreshOutput, error) {
	return f.refreshOut, f.refreshErr
}

func (f *fakeAuthUsecase) SocialAuthorizationURL(provider, state string) (string, error) {
	if f.socialErr != nil {
		return "", f.socialErr
	}

	return f.socialURL + "?state=" + state, nil
}

func (f *fakeAuthUsecase) SocialCallback(_ context.Context, input *usecase.SocialCallbackInput) (*usecase.AuthOutput, error) {
	f.lastCallback = input

	return f.callbackOut, f.callbackErr
}

func (f *fakeAuthUsecase) CurrentUser(_ context.Context, _ uuid.UUID) (*entity.User, error) {
	return f.currentUser, f.currentErr
}

func (f *fakeAuthUsecase) Logout(_ context.Context, userID, tokenID uuid.UUID) error {
	f.logoutUser = userID
	f.logoutToken = tokenID

	return f.logoutErr
}

func (f *fakeAuthUsecase) PurgeExpiredTokens(context.Context) error { return nil }

// noopAudit satisfies the error middleware's audit dependency.
type noopAudit struct{}

func (noopAudit) LogInfo(context.Context, string, map[string]any)  {}
func (noopAudit) LogError(context.Context, string, map[string]any) {}
func (noopAudit) Close() error                                     { return nil }

var _ service.AuditSink = noopAudit{}

func testUser() *entity.User {
	return &entity.User{
		ID:           uuid.New(),
		Name:         "Test User",
		Email:        "test@example.com",
		Phone:        "6281711112222",
		PasswordHash: "secret-hash",
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
}

func testSession(user *entity.User) *usecase.AuthOutput {
	return &usecase.AuthOutput{
		User:         user,
		AccessToken:  "access-token",
		RefreshToken: "refresh-token",
	}
}

func newTestEcho(t *testing.T, fake *fakeAuthUsecase) *echo.Echo {
	t.Helper()

	e := echo.New()
	e.HideBanner = true
	e.Validator = validator.New()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	errorMiddleware := deliveryMiddleware.NewErrorMiddleware(logger, noopAudit{})
	e.HTTPErrorHandler = errorMiddleware.HandleHTTPError

	h := NewAuthHandler(fake)
	e.POST("/auth/register", h.Register)
	e.POST("/auth/login", h.Login)
	e.POST("/auth/refresh", h.Refresh)
	e.GET("/auth/social/:provider", h.SocialRedirect)
	e.GET("/auth/social/:provider/callback", h.SocialCallback)
	e.GET("/auth/user", h.CurrentUser)
	e.POST("/auth/logout", h.Logout)

	return e
}

func doJSON(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var payload map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))

	return payload
}

func TestAuthHandler_Register_Created(t *testing.T) {
	user := testUser()
	fake := &fakeAuthUsecase{registerOut: testSession(user)}
	e := newTestEcho(t, fake)

	rec := doJSON(e, http.MethodPost, "/auth/register",
		`{"name":"Test User","email":"test@example.com","phone":"6281711112222","password":"Password123!"}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	payload := decodeBody(t, rec)
	assert.Equal(t, true, payload["success"])

	data := payload["data"].(map[string]any)
	assert.Equal(t, "access-token", data["token"])
	assert.Equal(t, "refresh-token", data["refresh_token"])

	userData := data["user"].(map[string]any)
	assert.Equal(t, user.ID.String(), userData["id"])
	assert.Equal(t, "test@example.com", userData["email"])
	// Credentials never leave the server.
	assert.NotContains(t, rec.Body.String(), "secret-hash")
	assert.NotContains(t, userData, "password_hash")
}

func TestAuthHandler_Register_ValidationFailure(t *testing.T) {
	fake := &fakeAuthUsecase{}
	e := newTestEcho(t, fake)

	rec := doJSON(e, http.MethodPost, "/auth/register",
		`{"name":"Test User","email":"test@example.com","phone":"6288112223333","password":"Password123!"}`)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	payload := decodeBody(t, rec)
	assert.Equal(t, false, payload["success"])
	assert.Equal(t, "The given data was invalid.", payload["message"])

	errs := payload["errors"].(map[string]any)
	phoneErrs := errs["phone"].([]any)
	assert.Contains(t, phoneErrs, "Phone number must use XL/Axis or IM3 carrier.")
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	fake := &fakeAuthUsecase{loginErr: domainerrors.ErrInvalidCredentials}
	e := newTestEcho(t, fake)

	rec := doJSON(e, http.MethodPost, "/auth/login",
		`{"identifier":"nobody@example.com","password":"Password123!"}`)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	payload := decodeBody(t, rec)
	assert.Equal(t, "Incorrect identifier or password.", payload["message"])
}

func TestAuthHandler_Login_PassesRememberMe(t *testing.T) {
	fake := &fakeAuthUsecase{loginOut: testSession(testUser())}
	e := newTestEcho(t, fake)

	rec := doJSON(e, http.MethodPost, "/auth/login",
		`{"identifier":"test@example.com","password":"Password123!","remember_me":true}`)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, fake.lastLogin)
	assert.True(t, fake.lastLogin.RememberMe)
}

func TestAuthHandler_Refresh(t *testing.T) {
	fake := &fakeAuthUsecase{refreshOut: &usecase.RefreshOutput{AccessToken: "new-access-token"}}
	e := newTestEcho(t, fake)

	rec := doJSON(e, http.MethodPost, "/auth/refresh", `{"refresh_token":"refresh-token"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	payload := decodeBody(t, rec)
	data := payload["data"].(map[string]any)
	assert.Equal(t, "new-access-token", data["token"])
}

func TestAuthHandler_SocialRedirect(t *testing.T) {
	fake := &fakeAuthUsecase{socialURL: "https://provider.example/authorize"}
	e := newTestEcho(t, fake)

	rec := doJSON(e, http.MethodGet, "/auth/social/google", "")

	require.Equal(t, http.StatusFound, rec.Code)
	location := rec.Header().Get("Location")
	assert.True(t, strings.HasPrefix(location, "https://provider.example/authorize?state="))
	// The state parameter is fresh entropy, not a constant.
	assert.Greater(t, len(location), len("https://provider.example/authorize?state=")+32)
}

func TestAuthHandler_SocialRedirect_UnknownProvider(t *testing.T) {
	fake := &fakeAuthUsecase{socialErr: domainerrors.ErrUnknownProvider}
	e := newTestEcho(t, fake)

	rec := doJSON(e, http.MethodGet, "/auth/social/facebook", "")

	require.Equal(t, http.StatusNotFound, rec.Code)
	payload := decodeBody(t, rec)
	assert.Equal(t, "Resource not found", payload["message"])
}

func TestAuthHandler_SocialCallback_Success(t *testing.T) {
	fake := &fakeAuthUsecase{callbackOut: testSession(testUser())}
	e := newTestEcho(t, fake)

	rec := doJSON(e, http.MethodGet, "/auth/social/google/callback?code=auth-code", "")

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, fake.lastCallback)
	assert.Equal(t, "google", fake.lastCallback.Provider)
	assert.Equal(t, "auth-code", fake.lastCallback.Code)
}

func TestAuthHandler_SocialCallback_ProviderDenied(t *testing.T) {
	fake := &fakeAuthUsecase{}
	e := newTestEcho(t, fake)

	rec := doJSON(e, http.MethodGet, "/auth/social/google/callback?error=access_denied", "")

	require.Equal(t, http.StatusBadRequest, rec.Code)
	payload := decodeBody(t, rec)
	assert.Equal(t, "Authentication failed.", payload["message"])
	assert.Equal(t, "access_denied", payload["error"])
	assert.Nil(t, fake.lastCallback)
}

func TestAuthHandler_SocialCallback_MissingCode(t *testing.T) {
	fake := &fakeAuthUsecase{}
	e := newTestEcho(t, fake)

	rec := doJSON(e, http.MethodGet, "/auth/social/google/callback", "")

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Nil(t, fake.lastCallback)
}

func TestAuthHandler_SocialCallback_ManualConflict(t *testing.T) {
	fake := &fakeAuthUsecase{callbackErr: domainerrors.ErrManualAccountConflict}
	e := newTestEcho(t, fake)

	rec := doJSON(e, http.MethodGet, "/auth/social/google/callback?code=auth-code", "")

	require.Equal(t, http.StatusForbidden, rec.Code)
	payload := decodeBody(t, rec)
	assert.Equal(t, "This email is already registered manually. Please log in using your password.", payload["message"])
}

func TestAuthHandler_CurrentUser_RequiresIdentity(t *testing.T) {
	fake := &fakeAuthUsecase{currentUser: testUser()}
	e := newTestEcho(t, fake)

	// No identity on the context.
	rec := doJSON(e, http.MethodGet, "/auth/user", "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	payload := decodeBody(t, rec)
	assert.Equal(t, "Unauthorized", payload["message"])
}

func TestAuthHandler_CurrentUser_WithIdentity(t *testing.T) {
	user := testUser()
	fake := &fakeAuthUsecase{currentUser: user}
	e := newTestEcho(t, fake)

	req := httptest.NewRequest(http.MethodGet, "/auth/user", nil)
	identity := &deliverycontext.Identity{User: user, TokenID: uuid.New()}
	req = req.WithContext(deliverycontext.WithIdentity(req.Context(), identity))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	payload := decodeBody(t, rec)
	data := payload["data"].(map[string]any)
	userData := data["user"].(map[string]any)
	assert.Equal(t, user.ID.String(), userData["id"])
}

func TestAuthHandler_Logout(t *testing.T) {
	user := testUser()
	tokenID := uuid.New()
	fake := &fakeAuthUsecase{}
	e := newTestEcho(t, fake)

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	identity := &deliverycontext.Identity{User: user, TokenID: tokenID}
	req = req.WithContext(deliverycontext.WithIdentity(req.Context(), identity))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, user.ID, fake.logoutUser)
	assert.Equal(t, tokenID, fake.logoutToken)

	payload := decodeBody(t, rec)
	assert.Equal(t, "Successfully logged out.", payload["message"])
}
