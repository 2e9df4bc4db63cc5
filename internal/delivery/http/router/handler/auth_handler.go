// Package handler contains the HTTP handlers of the API.
package handler

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"time"

	deliverycontext "gate/internal/delivery/context"
	"gate/internal/delivery/http/response"
	"gate/internal/domain/entity"
	domainerrors "gate/internal/domain/errors"
	"gate/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// AuthHandler serves the authentication endpoints.
type AuthHandler struct {
	authUsecase usecase.AuthUsecase
}

// NewAuthHandler is the constructor for AuthHandler.
func NewAuthHandler(authUsecase usecase.AuthUsecase) *AuthHandler {
	return &AuthHandler{authUsecase: authUsecase}
}

// userPayload is the client-facing shape of a user. Credentials and provider
// internals never leave the server.
type userPayload struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Email          string     `json:"email,omitempty"`
	Phone          string     `json:"phone,omitempty"`
	Provider       string     `json:"provider,omitempty"`
	AvatarURL      string     `json:"avatar_url,omitempty"`
	LastLoggedInAt *time.Time `json:"last_logged_in_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func presentUser(user *entity.User) *userPayload {
	return &userPayload{
		ID:             user.ID.String(),
		Name:           user.Name,
		Email:          user.Email,
		Phone:          user.Phone,
		Provider:       user.Provider,
		AvatarURL:      user.AvatarURL,
		LastLoggedInAt: user.LastLoggedInAt,
		CreatedAt:      user.CreatedAt,
		UpdatedAt:      user.UpdatedAt,
	}
}

// sessionPayload is the body of every flow that establishes a session.
type sessionPayload struct {
	User         *userPayload `json:"user"`
	Token        string       `json:"token"`
	RefreshToken string       `json:"refresh_token"`
}

func presentSession(output *usecase.AuthOutput) *sessionPayload {
	return &sessionPayload{
		User:         presentUser(output.User),
		Token:        output.AccessToken,
		RefreshToken: output.RefreshToken,
	}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c echo.Context) error {
	input := new(usecase.RegisterInput)
	if err := c.Bind(input); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Malformed request body")
	}
	if err := c.Validate(input); err != nil {
		return err
	}

	output, err := h.authUsecase.Register(c.Request().Context(), input)
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusCreated, presentSession(output), "Registration successful.")
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c echo.Context) error {
	input := new(usecase.LoginInput)
	if err := c.Bind(input); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Malformed request body")
	}
	if err := c.Validate(input); err != nil {
		return err
	}

	output, err := h.authUsecase.Login(c.Request().Context(), input)
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, presentSession(output), "Login successful.")
}

// Refresh handles POST /auth/refresh.
func (h *AuthHandler) Refresh(c echo.Context) error {
	input := new(usecase.RefreshInput)
	if err := c.Bind(input); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Malformed request body")
	}
	if err := c.Validate(input); err != nil {
		return err
	}

	output, err := h.authUsecase.Refresh(c.Request().Context(), input)
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, map[string]string{"token": output.AccessToken}, "")
}

// SocialRedirect handles GET /auth/social/:provider. It sends the browser to
// the provider's consent screen with a fresh state parameter.
func (h *AuthHandler) SocialRedirect(c echo.Context) error {
	state, err := randomState()
	if err != nil {
		return errors.Wrap(err, "failed to generate state parameter")
	}

	target, err := h.authUsecase.SocialAuthorizationURL(c.Param("provider"), state)
	if err != nil {
		return err
	}

	return c.Redirect(http.StatusFound, target)
}

// SocialCallback handles GET /auth/social/:provider/callback.
func (h *AuthHandler) SocialCallback(c echo.Context) error {
	// The provider reports consent denial through an error query parameter.
	if providerErr := c.QueryParam("error"); providerErr != "" {
		return domainerrors.ErrProviderExchange.WithDetails(providerErr)
	}

	code := c.QueryParam("code")
	if code == "" {
		return domainerrors.ErrProviderExchange.WrapMessage("callback carried no authorization code")
	}

	output, err := h.authUsecase.SocialCallback(c.Request().Context(), &usecase.SocialCallbackInput{
		Provider: c.Param("provider"),
		Code:     code,
	})
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, presentSession(output), "Login successful.")
}

// CurrentUser handles GET /auth/user.
func (h *AuthHandler) CurrentUser(c echo.Context) error {
	identity, ok := deliverycontext.GetIdentity(c.Request().Context())
	if !ok {
		return domainerrors.ErrUnauthorized.WrapMessage("request carries no identity")
	}

	user, err := h.authUsecase.CurrentUser(c.Request().Context(), identity.User.ID)
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, map[string]any{"user": presentUser(user)}, "")
}

// Logout handles POST /auth/logout.
func (h *AuthHandler) Logout(c echo.Context) error {
	identity, ok := deliverycontext.GetIdentity(c.Request().Context())
	if !ok {
		return domainerrors.ErrUnauthorized.WrapMessage("request carries no identity")
	}

	if err := h.authUsecase.Logout(c.Request().Context(), identity.User.ID, identity.TokenID); err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, nil, "Successfully logged out.")
}

func randomState() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}

	return hex.EncodeToString(buf), nil
}
