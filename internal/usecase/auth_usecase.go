// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"

	"gate/internal/domain/entity"

	"github.com/google/uuid"
)

// --- Input DTOs ---

// RegisterInput defines the data required to register a new user.
type RegisterInput struct {
	Name     string `json:"name" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Phone    string `json:"phone" validate:"required,min=11,max=14,phonecc,carrier"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginInput defines the data required to log in. Identifier is either an
// email address or a "62"-prefixed phone number; classification happens in
// the usecase.
type LoginInput struct {
	Identifier string `json:"identifier" validate:"required,max=255"`
	Password   string `json:"password" validate:"required,min=8"`
	RememberMe bool   `json:"remember_me"`
}

// RefreshInput carries the refresh token used to mint a new access token.
type RefreshInput struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// SocialCallbackInput carries the provider's callback parameters.
type SocialCallbackInput struct {
	Provider string
	Code     string
}

// --- Output DTOs ---

// AuthOutput is the result of any flow that establishes a session.
type AuthOutput struct {
	User         *entity.User
	AccessToken  string
	RefreshToken string
}

// RefreshOutput returns the freshly minted access token.
type RefreshOutput struct {
	AccessToken string
}

// AuthUsecase defines the auth coordination operations the delivery layer
// depends on.
type AuthUsecase interface {
	// Register creates a user from validated input, mints tokens and emits
	// an audit event. Uniqueness violations surface as a ValidationError.
	Register(ctx context.Context, input *RegisterInput) (*AuthOutput, error)

	// Login authenticates by email-or-phone identifier and password.
	// Unknown identifier and wrong password produce the same error.
	Login(ctx context.Context, input *LoginInput) (*AuthOutput, error)

	// Refresh mints a new access token from a valid refresh token. The
	// refresh token itself is not rotated.
	Refresh(ctx context.Context, input *RefreshInput) (*RefreshOutput, error)

	// SocialAuthorizationURL builds the redirect target for the provider's
	// authorization endpoint.
	SocialAuthorizationURL(provider, state string) (string, error)

	// SocialCallback exchanges the provider's code for a verified profile
	// and establishes a session, rejecting emails owned by password-only
	// accounts.
	SocialCallback(ctx context.Context, input *SocialCallbackInput) (*AuthOutput, error)

	// CurrentUser loads the user owning an authenticated token.
	CurrentUser(ctx context.Context, userID uuid.UUID) (*entity.User, error)

	// Logout permanently revokes the presented access token.
	Logout(ctx context.Context, userID, tokenID uuid.UUID) error

	// PurgeExpiredTokens removes token records that can no longer be used.
	PurgeExpiredTokens(ctx context.Context) error
}
