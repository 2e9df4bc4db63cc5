package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAccessToken_Usable(t *testing.T) {
	now := time.Now()
	revokedAt := now.Add(-time.Minute)

	live := &AccessToken{ExpiresAt: now.Add(time.Hour)}
	expired := &AccessToken{ExpiresAt: now.Add(-time.Hour)}
	revoked := &AccessToken{ExpiresAt: now.Add(time.Hour), RevokedAt: &revokedAt}

	assert.True(t, live.Usable(now))
	assert.False(t, expired.Usable(now))
	assert.False(t, revoked.Usable(now))

	assert.False(t, live.Revoked())
	assert.True(t, revoked.Revoked())
	assert.True(t, expired.Expired(now))
}
