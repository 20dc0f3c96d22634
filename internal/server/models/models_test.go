package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRole_Ordering(t *testing.T) {
	assert.True(t, RoleAdmin.AtLeast(RoleUser))
	assert.True(t, RoleAdmin.AtLeast(RoleAdmin))
	assert.True(t, RoleUser.AtLeast(RoleUser))
	assert.False(t, RoleUser.AtLeast(RoleAdmin))
	assert.False(t, RoleUnknown.AtLeast(RoleUnknown))
}

func TestParseRole(t *testing.T) {
	r, err := ParseRole("admin")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, r)

	r, err = ParseRole("User")
	require.NoError(t, err)
	assert.Equal(t, RoleUser, r)

	_, err = ParseRole("root")
	assert.Error(t, err)
}

func TestUser_JSONOmitsPasswordHash(t *testing.T) {
	u := &User{ID: "u1", Name: "Ann", Email: "ann@x.com", PasswordHash: "$2a$10$secret", Role: RoleUser}

	for _, v := range []any{u, u.Public()} {
		b, err := json.Marshal(v)
		require.NoError(t, err)
		assert.NotContains(t, string(b), "secret")
		assert.NotContains(t, string(b), "password")
		assert.Contains(t, string(b), `"role":"user"`)
	}
}

func TestRefreshToken_Active(t *testing.T) {
	now := time.Now()
	assert.True(t, (&RefreshToken{ExpiresAt: now.Add(time.Minute)}).Active(now))
	assert.False(t, (&RefreshToken{ExpiresAt: now.Add(-time.Minute)}).Active(now))
	assert.False(t, (&RefreshToken{ExpiresAt: now.Add(time.Minute), Revoked: true}).Active(now))
}

func TestParseTokenKind(t *testing.T) {
	for _, s := range []string{"access", "refresh", "reset-password", "verify-email"} {
		k, err := ParseTokenKind(s)
		require.NoError(t, err)
		assert.Equal(t, TokenKind(s), k)
	}
	_, err := ParseTokenKind("session")
	assert.Error(t, err)
}

func TestTokenPair_WireFormat(t *testing.T) {
	p := TokenPair{
		AccessToken:  TokenDetails{Token: "a", ExpiresIn: 1},
		RefreshToken: TokenDetails{Token: "r", ExpiresIn: 2},
	}
	b, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"accessToken":{"token":"a","expiresIn":1},"refreshToken":{"token":"r","expiresIn":2}}`, string(b))
}
