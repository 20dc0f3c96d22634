package models

import "fmt"

// TokenKind tags a token with its purpose so one kind cannot be used in
// place of another.
type TokenKind string

const (
	TokenKindAccess        TokenKind = "access"
	TokenKindRefresh       TokenKind = "refresh"
	TokenKindResetPassword TokenKind = "reset-password"
	TokenKindVerifyEmail   TokenKind = "verify-email"
)

// Valid reports whether k is one of the known kinds.
func (k TokenKind) Valid() bool {
	switch k {
	case TokenKindAccess, TokenKindRefresh, TokenKindResetPassword, TokenKindVerifyEmail:
		return true
	}
	return false
}

// ParseTokenKind converts the stored text form into a TokenKind.
func ParseTokenKind(s string) (TokenKind, error) {
	k := TokenKind(s)
	if !k.Valid() {
		return "", fmt.Errorf("invalid token kind %q", s)
	}
	return k, nil
}

// TokenDetails is a signed token and its absolute expiry in unix seconds.
type TokenDetails struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expiresIn"`
}

// TokenPair bundles a short-lived access token and a long-lived refresh
// token. Only the refresh half is persisted.
type TokenPair struct {
	AccessToken  TokenDetails `json:"accessToken"`
	RefreshToken TokenDetails `json:"refreshToken"`
}
