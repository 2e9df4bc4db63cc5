package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"gate/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProvider(t *testing.T) *Provider {
	t.Helper()

	cfg := &config.Config{
		GoogleOAuth: &config.GoogleOAuthConfig{
			ClientID:     "client-id",
			ClientSecret: "client-secret",
			RedirectURL:  "https://gate.example/auth/google/callback",
		},
	}

	provider, err := NewProvider(cfg)
	require.NoError(t, err)

	return provider.(*Provider)
}

func TestNewProvider_MissingCredentials(t *testing.T) {
	_, err := NewProvider(&config.Config{})
	require.Error(t, err)

	_, err = NewProvider(&config.Config{GoogleOAuth: &config.GoogleOAuthConfig{ClientID: "only-id"}})
	require.Error(t, err)
}

func TestProvider_AuthorizationURL(t *testing.T) {
	provider := testProvider(t)

	raw := provider.AuthorizationURL("state-token")
	parsed, err := url.Parse(raw)
	require.NoError(t, err)

	assert.Equal(t, "accounts.google.com", parsed.Host)
	query := parsed.Query()
	assert.Equal(t, "client-id", query.Get("client_id"))
	assert.Equal(t, "code", query.Get("response_type"))
	assert.Equal(t, "state-token", query.Get("state"))
	assert.Equal(t, "openid email profile", query.Get("scope"))
	assert.Equal(t, "https://gate.example/auth/google/callback", query.Get("redirect_uri"))
}

func TestProvider_ExchangeCode(t *testing.T) {
	var gotForm url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotForm = r.PostForm
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "provider-token",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	}))
	defer server.Close()

	provider := testProvider(t)
	provider.tokenURL = server.URL

	token, err := provider.ExchangeCode(context.Background(), "auth-code")
	require.NoError(t, err)
	assert.Equal(t, "provider-token", token)
	assert.Equal(t, "auth-code", gotForm.Get("code"))
	assert.Equal(t, "authorization_code", gotForm.Get("grant_type"))
	assert.Equal(t, "client-secret", gotForm.Get("client_secret"))
}

func TestProvider_ExchangeCode_ProviderRejects(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
	}))
	defer server.Close()

	provider := testProvider(t)
	provider.tokenURL = server.URL

	_, err := provider.ExchangeCode(context.Background(), "stale-code")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid_grant")
}

func TestProvider_FetchUser(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer provider-token", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":             "google-123",
			"email":          "user@example.com",
			"name":           "Some User",
			"picture":        "https://avatar.example/u.png",
			"verified_email": true,
		})
	}))
	defer server.Close()

	provider := testProvider(t)
	provider.userInfoURL = server.URL

	user, err := provider.FetchUser(context.Background(), "provider-token")
	require.NoError(t, err)
	assert.Equal(t, "google-123", user.ID)
	assert.Equal(t, "user@example.com", user.Email)
	assert.Equal(t, "Some User", user.Name)
	assert.Equal(t, "https://avatar.example/u.png", user.AvatarURL)
	assert.True(t, user.EmailVerified)
}

func TestProvider_FetchUser_MissingSubject(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	provider := testProvider(t)
	provider.userInfoURL = server.URL

	_, err := provider.FetchUser(context.Background(), "provider-token")
	require.Error(t, err)
}
