// Package google implements the OAuthProvider contract against Google's
// OAuth 2.0 code flow.
package google

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"gate/config"
	"gate/internal/domain/entity"
	"gate/internal/domain/service"

	"github.com/pkg/errors"
)

const (
	googleOAuthURL    = "https://accounts.google.com/o/oauth2/v2/auth"
	googleTokenURL    = "https://oauth2.googleapis.com/token"
	googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

	// Outbound calls to Google are bounded so a slow provider cannot hold a
	// callback request open indefinitely.
	providerTimeout = 10 * time.Second
)

// Provider handles the Google side of a social login: building the
// authorization redirect, exchanging the callback code and fetching the
// verified profile.
type Provider struct {
	clientID     string
	clientSecret string
	redirectURL  string
	scopes       string

	client *http.Client

	// Overridable endpoints for tests.
	tokenURL    string
	userInfoURL string
}

// NewProvider creates a Google OAuth provider from configuration.
func NewProvider(cfg *config.Config) (service.OAuthProvider, error) {
	if cfg.GoogleOAuth == nil {
		return nil, errors.New("google oauth configuration is required")
	}
	if cfg.GoogleOAuth.ClientID == "" || cfg.GoogleOAuth.ClientSecret == "" {
		return nil, errors.New("google oauth client credentials are required")
	}

	scopes := cfg.GoogleOAuth.Scopes
	if scopes == "" {
		scopes = "openid email profile"
	}

	return &Provider{
		clientID:     cfg.GoogleOAuth.ClientID,
		clientSecret: cfg.GoogleOAuth.ClientSecret,
		redirectURL:  cfg.GoogleOAuth.RedirectURL,
		scopes:       scopes,
		client:       &http.Client{Timeout: providerTimeout},
		tokenURL:     googleTokenURL,
		userInfoURL:  googleUserInfoURL,
	}, nil
}

// Name returns the provider key used in routes and user records.
func (p *Provider) Name() string {
	return entity.ProviderGoogle
}

// AuthorizationURL constructs the Google OAuth authorization URL carrying the
// caller's state parameter.
func (p *Provider) AuthorizationURL(state string) string {
	params := url.Values{}
	params.Set("client_id", p.clientID)
	params.Set("redirect_uri", p.redirectURL)
	params.Set("scope", p.scopes)
	params.Set("response_type", "code")
	params.Set("state", state)

	return googleOAuthURL + "?" + params.Encode()
}

// ExchangeCode exchanges an authorization code for an access token.
func (p *Provider) ExchangeCode(ctx context.Context, code string) (string, error) {
	data := url.Values{}
	data.Set("client_id", p.clientID)
	data.Set("client_secret", p.clientSecret)
	data.Set("code", code)
	data.Set("grant_type", "authorization_code")
	data.Set("redirect_uri", p.redirectURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.tokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return "", errors.Wrap(err, "failed to create token exchange request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "failed to exchange code for token")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)

		return "", errors.Errorf("token exchange failed with status %d: %s", resp.StatusCode, string(body))
	}

	var tokenResponse struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenResponse); err != nil {
		return "", errors.Wrap(err, "failed to decode token response")
	}
	if tokenResponse.AccessToken == "" {
		return "", errors.New("token response carried no access token")
	}

	return tokenResponse.AccessToken, nil
}

// FetchUser retrieves the user's current profile using an access token.
func (p *Provider) FetchUser(ctx context.Context, accessToken string) (*service.OAuthUser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create user info request")
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get user info")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)

		return nil, errors.Errorf("user info request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var googleUser struct {
		ID            string `json:"id"`
		Email         string `json:"email"`
		Name          string `json:"name"`
		Picture       string `json:"picture"`
		VerifiedEmail bool   `json:"verified_email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&googleUser); err != nil {
		return nil, errors.Wrap(err, "failed to decode user info response")
	}
	if googleUser.ID == "" {
		return nil, errors.New("user info response carried no subject id")
	}

	return &service.OAuthUser{
		ID:            googleUser.ID,
		Email:         googleUser.Email,
		Name:          googleUser.Name,
		AvatarURL:     googleUser.Picture,
		EmailVerified: googleUser.VerifiedEmail,
	}, nil
}
