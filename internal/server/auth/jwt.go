// Package auth signs and verifies the service's tokens, issues token pairs,
// hashes credentials, and holds the transport-neutral part of the auth gates.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
)

// Claims are the contents of a signed token: the standard registered claims
// (sub, iat, exp, jti) plus the kind tag.
type Claims struct {
	jwt.RegisteredClaims
	Kind models.TokenKind `json:"token_type"`
}

// Codec signs and verifies HS256 tokens with a single process-wide secret.
// Key rotation is not supported.
type Codec struct {
	secret []byte
	parser *jwt.Parser
}

func NewCodec(secret []byte) *Codec {
	return &Codec{
		secret: secret,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithExpirationRequired(),
			jwt.WithIssuedAt(),
		),
	}
}

// Sign encodes claims into a token string. It fails only when the key
// material is unusable, which is a configuration problem.
func (c *Codec) Sign(claims Claims) (string, error) {
	if len(c.secret) == 0 {
		return "", fmt.Errorf("%w: empty secret", common.ErrSigning)
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrSigning, err)
	}
	return s, nil
}

// Verify checks signature, structure, expiry and kind. An expired token
// yields common.ErrTokenExpired; every other failure wraps
// common.ErrInvalidToken.
func (c *Codec) Verify(tokenString string, kind models.TokenKind) (*Claims, error) {
	claims := &Claims{}

	token, err := c.parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return c.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, common.ErrInvalidToken
	}

	if claims.Kind != kind {
		return nil, fmt.Errorf("%w: expected %s token, got %q", common.ErrInvalidToken, kind, claims.Kind)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", common.ErrInvalidToken)
	}
	return claims, nil
}

// IssuedAtTime returns the iat claim or the zero time.
func (c *Claims) IssuedAtTime() time.Time {
	if c.IssuedAt == nil {
		return time.Time{}
	}
	return c.IssuedAt.Time
}

// ExpiresAtTime returns the exp claim or the zero time.
func (c *Claims) ExpiresAtTime() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}
