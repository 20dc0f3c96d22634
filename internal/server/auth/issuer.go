package auth

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Issuer mints access/refresh token pairs.
type Issuer struct {
	codec      *Codec
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// IssuerOption customizes an Issuer.
type IssuerOption func(*Issuer)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) IssuerOption {
	return func(i *Issuer) { i.now = now }
}

// NewIssuer rejects non-positive TTLs so that a bad configuration fails at
// startup rather than on the first request.
func NewIssuer(codec *Codec, accessTTL, refreshTTL time.Duration, opts ...IssuerOption) (*Issuer, error) {
	if accessTTL <= 0 {
		return nil, fmt.Errorf("access token ttl must be positive, got %s", accessTTL)
	}
	if refreshTTL <= 0 {
		return nil, fmt.Errorf("refresh token ttl must be positive, got %s", refreshTTL)
	}
	i := &Issuer{codec: codec, accessTTL: accessTTL, refreshTTL: refreshTTL, now: time.Now}
	for _, opt := range opts {
		opt(i)
	}
	return i, nil
}

// IssuePair signs a fresh access token and a fresh refresh token for userID.
func (i *Issuer) IssuePair(userID string) (*models.TokenPair, error) {
	now := i.now()

	access, err := i.issue(userID, models.TokenKindAccess, now, i.accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := i.issue(userID, models.TokenKindRefresh, now, i.refreshTTL)
	if err != nil {
		return nil, err
	}
	return &models.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// issue sets a random jti so two tokens minted in the same second for the
// same user never share a string.
func (i *Issuer) issue(userID string, kind models.TokenKind, now time.Time, ttl time.Duration) (models.TokenDetails, error) {
	exp := now.Add(ttl)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
			ID:        uuid.NewString(),
		},
		Kind: kind,
	}

	token, err := i.codec.Sign(claims)
	if err != nil {
		return models.TokenDetails{}, err
	}
	return models.TokenDetails{Token: token, ExpiresIn: exp.Unix()}, nil
}
