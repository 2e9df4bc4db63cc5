package service

import "context"

// OAuthUser is the verified external identity returned by a provider after a
// successful code exchange.
type OAuthUser struct {
	ID            string // The user's unique ID at the provider.
	Email         string
	Name          string
	AvatarURL     string
	EmailVerified bool
}

// OAuthProvider is the social login bridge contract: it produces the
// authorization redirect URL and exchanges the provider's returned code for a
// verified profile. Implementations must bound their outbound calls with a
// timeout.
type OAuthProvider interface {
	// Name returns the provider name used in routes and stored on users.
	Name() string

	// AuthorizationURL builds the provider's authorization endpoint URL.
	// The flow is stateless on our side; state is echoed back by the
	// provider for the client to verify.
	AuthorizationURL(state string) string

	// ExchangeCode trades the authorization code for a provider access
	// token.
	ExchangeCode(ctx context.Context, code string) (string, error)

	// FetchUser retrieves the user's current profile with the provider
	// access token.
	FetchUser(ctx context.Context, accessToken string) (*OAuthUser, error)
}

// OAuthProviders maps provider names to their bridges.
type OAuthProviders map[string]OAuthProvider
