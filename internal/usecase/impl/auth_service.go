// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"log/slog"
	"time"

	deliverycontext "gate/internal/delivery/context"
	"gate/internal/domain/entity"
	domainerrors "gate/internal/domain/errors"
	"gate/internal/domain/repository"
	"gate/internal/domain/service"
	"gate/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// maxProviderDiagnostic bounds the provider error text echoed back on a
// failed exchange so provider internals never leak wholesale.
const maxProviderDiagnostic = 200

// authService implements the AuthUsecase interface.
type authService struct {
	txManager    repository.TransactionManager
	userRepo     repository.UserRepository
	tokenRepo    repository.TokenRepository
	hasher       service.PasswordHasher
	tokenService service.TokenService
	providers    service.OAuthProviders
	audit        service.AuditSink
	logger       *slog.Logger
}

// AuthServiceParams holds dependencies for the auth service, injected by Fx.
type AuthServiceParams struct {
	fx.In

	TxManager    repository.TransactionManager
	UserRepo     repository.UserRepository
	TokenRepo    repository.TokenRepository
	Hasher       service.PasswordHasher
	TokenService service.TokenService
	Providers    service.OAuthProviders
	Audit        service.AuditSink
	Logger       *slog.Logger
}

// NewAuthService is the constructor for authService. It receives all
// dependencies as interfaces.
func NewAuthService(params AuthServiceParams) usecase.AuthUsecase {
	return &authService{
		txManager:    params.TxManager,
		userRepo:     params.UserRepo,
		tokenRepo:    params.TokenRepo,
		hasher:       params.Hasher,
		tokenService: params.TokenService,
		providers:    params.Providers,
		audit:        params.Audit,
		logger:       params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to
// the service's logger.
func (srv *authService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Register orchestrates the complete registration flow: uniqueness checks and
// the user insert run in one transaction, so a validation failure leaves no
// partial write behind.
func (srv *authService) Register(ctx context.Context, input *usecase.RegisterInput) (*usecase.AuthOutput, error) {
	srv.log(ctx).Info("Starting registration", slog.String("email", input.Email))

	// bcrypt is CPU-bound; hash before entering the transaction.
	hashedPassword, err := srv.hasher.Hash(input.Password)
	if err != nil {
		srv.log(ctx).Error("Failed to hash password during registration", slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to hash password during registration")
	}

	newUser := &entity.User{
		Name:         input.Name,
		Email:        input.Email,
		Phone:        input.Phone,
		PasswordHash: hashedPassword,
	}

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		return srv.createUniqueUser(ctx, repoFactory.Users(), newUser)
	})
	if err != nil {
		var validationErr *domainerrors.ValidationError
		if errors.As(err, &validationErr) {
			return nil, err
		}
		srv.log(ctx).Error("Failed to execute registration transaction", slog.String("email", input.Email), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to execute registration transaction")
	}

	srv.emitAudit(ctx, "registration succeeded", map[string]any{
		"user_id": newUser.ID.String(),
		"email":   newUser.Email,
	})

	accessToken, refreshToken, err := srv.issueSession(ctx, newUser, false)
	if err != nil {
		srv.log(ctx).Error("Failed to issue session after registration", slog.Any("userID", newUser.ID), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to issue session after registration")
	}

	srv.log(ctx).Debug("Registration completed", slog.Any("userID", newUser.ID))

	return &usecase.AuthOutput{
		User:         newUser,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// createUniqueUser performs the uniqueness checks and the insert inside one
// transaction. Concurrent registrations racing past the checks are caught by
// the store's constraints and mapped to the same field errors.
func (srv *authService) createUniqueUser(ctx context.Context, users repository.UserRepository, newUser *entity.User) error {
	validationErr := domainerrors.NewValidationError()

	if _, err := users.FindByEmail(ctx, newUser.Email); err == nil {
		validationErr.Add("email", "The email has already been taken.")
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return errors.Wrap(err, "failed to check email uniqueness")
	}

	if _, err := users.FindByPhone(ctx, newUser.Phone); err == nil {
		validationErr.Add("phone", "The phone has already been taken.")
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return errors.Wrap(err, "failed to check phone uniqueness")
	}

	if validationErr.HasErrors() {
		return validationErr
	}

	if err := users.Create(ctx, newUser); err != nil {
		return srv.mapDuplicateToValidation(err)
	}

	return nil
}

// mapDuplicateToValidation converts a constraint-level uniqueness violation
// (lost race) into the same 422 field error the pre-check produces.
func (srv *authService) mapDuplicateToValidation(err error) error {
	validationErr := domainerrors.NewValidationError()

	switch {
	case errors.Is(err, repository.ErrDuplicateEmail):
		validationErr.Add("email", "The email has already been taken.")
	case errors.Is(err, repository.ErrDuplicatePhone):
		validationErr.Add("phone", "The phone has already been taken.")
	case errors.Is(err, repository.ErrDuplicateUser):
		validationErr.Add("email", "The email has already been taken.")
	default:
		return errors.Wrap(err, "failed to create user")
	}

	return validationErr
}

// Login authenticates a user by email-or-phone identifier and password.
func (srv *authService) Login(ctx context.Context, input *usecase.LoginInput) (*usecase.AuthOutput, error) {
	srv.log(ctx).Debug("Starting login")

	user, err := srv.resolveLoginUser(ctx, input.Identifier)
	if err != nil {
		return nil, err
	}

	// Constant-time comparison; a missing hash (social-only account) fails
	// the same way a wrong password does.
	if !user.HasPassword() || !srv.hasher.Check(input.Password, user.PasswordHash) {
		srv.log(ctx).Warn("Login failed", slog.Any("error", domainerrors.ErrInvalidCredentials))

		return nil, domainerrors.ErrInvalidCredentials.WrapMessage("login failed")
	}

	if err := srv.touchLastLogin(ctx, user); err != nil {
		return nil, errors.Wrap(err, "failed to update last login time")
	}

	srv.emitAudit(ctx, "login succeeded", map[string]any{
		"user_id": user.ID.String(),
		"email":   user.Email,
	})

	accessToken, refreshToken, err := srv.issueSession(ctx, user, input.RememberMe)
	if err != nil {
		srv.log(ctx).Error("Failed to issue session after login", slog.Any("userID", user.ID), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to issue session after login")
	}

	srv.log(ctx).Debug("User logged in successfully", slog.Any("userID", user.ID))

	return &usecase.AuthOutput{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// resolveLoginUser classifies the identifier and looks the user up by the
// classified field. An unrecognized shape fails with a generic format error
// that does not reveal which class was expected.
func (srv *authService) resolveLoginUser(ctx context.Context, identifier string) (*entity.User, error) {
	var user *entity.User
	var err error

	switch entity.ClassifyIdentifier(identifier) {
	case entity.IdentifierEmail:
		user, err = srv.userRepo.FindByEmail(ctx, identifier)
	case entity.IdentifierPhone:
		user, err = srv.userRepo.FindByPhone(ctx, identifier)
	default:
		validationErr := domainerrors.NewValidationError()
		validationErr.Add("identifier", "The identifier format is invalid.")

		return nil, validationErr
	}

	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			srv.log(ctx).Warn("Login failed", slog.Any("error", domainerrors.ErrInvalidCredentials))

			return nil, domainerrors.ErrInvalidCredentials.WrapMessage("login failed")
		}

		return nil, errors.Wrap(err, "failed to look up login user")
	}

	return user, nil
}

// Refresh mints a new access token from a valid refresh token. The refresh
// token remains unchanged; rotation is deliberately not performed.
func (srv *authService) Refresh(ctx context.Context, input *usecase.RefreshInput) (*usecase.RefreshOutput, error) {
	srv.log(ctx).Debug("Attempting to refresh access token")

	claims, err := srv.tokenService.ParseRefreshToken(input.RefreshToken)
	if err != nil {
		return nil, domainerrors.ErrUnauthorized.WrapMessage("invalid refresh token")
	}

	tokenHash := srv.tokenService.HashToken(input.RefreshToken)
	if _, err := srv.tokenRepo.FindRefreshTokenByHash(ctx, tokenHash); err != nil {
		if errors.Is(err, repository.ErrRefreshTokenNotFound) || errors.Is(err, repository.ErrRefreshTokenExpired) {
			return nil, domainerrors.ErrUnauthorized.WrapMessage("refresh token not found or expired")
		}

		return nil, errors.Wrap(err, "failed to look up refresh token")
	}

	user, err := srv.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			// The account is gone; its refresh tokens are dead weight.
			if cleanupErr := srv.tokenRepo.DeleteRefreshTokensByUserID(ctx, claims.UserID); cleanupErr != nil {
				srv.log(ctx).Warn("Failed to drop orphaned refresh tokens", slog.Any("error", cleanupErr))
			}

			return nil, domainerrors.ErrUnauthorized.WrapMessage("refresh token user no longer exists")
		}

		return nil, errors.Wrap(err, "failed to load refresh token user")
	}

	accessToken, record, err := srv.tokenService.IssueAccessToken(user.ID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to mint access token")
	}

	if err := srv.tokenRepo.CreateAccessToken(ctx, record); err != nil {
		return nil, errors.Wrap(err, "failed to store access token")
	}

	return &usecase.RefreshOutput{AccessToken: accessToken}, nil
}

// SocialAuthorizationURL builds the provider's authorization redirect target.
// No local state is persisted for the handshake.
func (srv *authService) SocialAuthorizationURL(provider, state string) (string, error) {
	bridge, ok := srv.providers[provider]
	if !ok {
		return "", domainerrors.ErrUnknownProvider.WrapMessage("unknown social provider: " + provider)
	}

	return bridge.AuthorizationURL(state), nil
}

// SocialCallback exchanges the provider's authorization code for a verified
// profile and establishes a session for the matching user.
func (srv *authService) SocialCallback(ctx context.Context, input *usecase.SocialCallbackInput) (*usecase.AuthOutput, error) {
	srv.log(ctx).Info("Handling social callback", slog.String("provider", input.Provider))

	bridge, ok := srv.providers[input.Provider]
	if !ok {
		return nil, domainerrors.ErrUnknownProvider.WrapMessage("unknown social provider: " + input.Provider)
	}

	oauthUser, err := srv.exchangeProfile(ctx, bridge, input.Code)
	if err != nil {
		return nil, err
	}

	// Reject emails owned by password-registered accounts: a matching email
	// from a provider must never silently take over a manual account.
	if oauthUser.Email != "" {
		existing, err := srv.userRepo.FindByEmail(ctx, oauthUser.Email)
		if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
			return nil, errors.Wrap(err, "failed to check for manual account conflict")
		}
		if existing != nil && !existing.IsSocial() {
			srv.log(ctx).Warn("Social login rejected for manually registered email", slog.Any("userID", existing.ID))

			return nil, domainerrors.ErrManualAccountConflict.WrapMessage("email registered manually")
		}
	}

	user, err := srv.userRepo.UpsertByProvider(ctx, bridge.Name(), oauthUser.ID, &entity.User{
		Name:      oauthUser.Name,
		Email:     oauthUser.Email,
		AvatarURL: oauthUser.AvatarURL,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to upsert social user")
	}

	if err := srv.touchLastLogin(ctx, user); err != nil {
		return nil, errors.Wrap(err, "failed to update last login time")
	}

	srv.emitAudit(ctx, "social login succeeded", map[string]any{
		"user_id":  user.ID.String(),
		"email":    user.Email,
		"provider": bridge.Name(),
	})

	accessToken, refreshToken, err := srv.issueSession(ctx, user, false)
	if err != nil {
		srv.log(ctx).Error("Failed to issue session after social login", slog.Any("userID", user.ID), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to issue session after social login")
	}

	return &usecase.AuthOutput{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// exchangeProfile trades the authorization code for the provider's current
// profile, converting any failure into the generic exchange error with a
// short diagnostic.
func (srv *authService) exchangeProfile(ctx context.Context, bridge service.OAuthProvider, code string) (*service.OAuthUser, error) {
	providerToken, err := bridge.ExchangeCode(ctx, code)
	if err != nil {
		srv.log(ctx).Warn("Social code exchange failed", slog.String("provider", bridge.Name()), slog.Any("error", err))

		return nil, domainerrors.ErrProviderExchange.WithDetails(trimDiagnostic(err))
	}

	oauthUser, err := bridge.FetchUser(ctx, providerToken)
	if err != nil {
		srv.log(ctx).Warn("Social profile fetch failed", slog.String("provider", bridge.Name()), slog.Any("error", err))

		return nil, domainerrors.ErrProviderExchange.WithDetails(trimDiagnostic(err))
	}

	return oauthUser, nil
}

// CurrentUser loads the user behind an authenticated token.
func (srv *authService) CurrentUser(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	user, err := srv.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, domainerrors.ErrUnauthorized.WrapMessage("token user no longer exists")
		}

		return nil, errors.Wrap(err, "failed to load current user")
	}

	return user, nil
}

// Logout permanently revokes the presented access token. Other live tokens
// of the same user are unaffected.
func (srv *authService) Logout(ctx context.Context, userID, tokenID uuid.UUID) error {
	srv.log(ctx).Info("Attempting to log out", slog.Any("userID", userID))

	if err := srv.tokenRepo.RevokeAccessToken(ctx, tokenID); err != nil {
		if errors.Is(err, repository.ErrAccessTokenNotFound) {
			return domainerrors.ErrUnauthorized.WrapMessage("token record not found")
		}
		srv.log(ctx).Error("Failed to revoke access token", slog.Any("error", err))

		return errors.Wrap(err, "failed to revoke access token")
	}

	srv.emitAudit(ctx, "logout", map[string]any{
		"user_id": userID.String(),
	})
	srv.log(ctx).Info("Successfully logged out", slog.Any("userID", userID))

	return nil
}

// PurgeExpiredTokens removes token records that can no longer authenticate.
func (srv *authService) PurgeExpiredTokens(ctx context.Context) error {
	if err := srv.tokenRepo.DeleteExpired(ctx); err != nil {
		return errors.Wrap(err, "failed to purge expired tokens")
	}

	return nil
}

// issueSession mints and persists an access token and a refresh token for
// the user.
func (srv *authService) issueSession(ctx context.Context, user *entity.User, remember bool) (string, string, error) {
	accessToken, accessRecord, err := srv.tokenService.IssueAccessToken(user.ID)
	if err != nil {
		return "", "", errors.Wrap(err, "failed to mint access token")
	}

	refreshToken, refreshRecord, err := srv.tokenService.IssueRefreshToken(user.ID, remember)
	if err != nil {
		return "", "", errors.Wrap(err, "failed to mint refresh token")
	}

	if err := srv.tokenRepo.CreateAccessToken(ctx, accessRecord); err != nil {
		return "", "", errors.Wrap(err, "failed to store access token")
	}

	if err := srv.tokenRepo.CreateRefreshToken(ctx, refreshRecord); err != nil {
		return "", "", errors.Wrap(err, "failed to store refresh token")
	}

	return accessToken, refreshToken, nil
}

// touchLastLogin stamps the user's last login time.
func (srv *authService) touchLastLogin(ctx context.Context, user *entity.User) error {
	now := time.Now()
	user.LastLoggedInAt = &now

	return srv.userRepo.Update(ctx, user)
}

// emitAudit forwards an auth event to the audit sink. The sink queues
// delivery in the background; this never blocks the request path.
func (srv *authService) emitAudit(ctx context.Context, event string, fields map[string]any) {
	if requestID := deliverycontext.GetRequestIDFromContext(ctx); requestID != "" {
		fields["request_id"] = requestID
	}
	srv.audit.LogInfo(ctx, event, fields)
}

// trimDiagnostic shortens a provider error for the response detail field.
func trimDiagnostic(err error) string {
	diag := err.Error()
	if len(diag) > maxProviderDiagnostic {
		diag = diag[:maxProviderDiagnostic]
	}

	return diag
}
