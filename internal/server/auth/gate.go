package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
)

type ctxKey string

const userKey ctxKey = "user"

// ContextWithUser attaches the authenticated identity to ctx.
func ContextWithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// UserFromContext returns the identity attached by the auth gate.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(userKey).(*models.User)
	return u, ok && u != nil
}

// UserFinder loads an identity by id, returning common.ErrorNotFound when
// it does not exist.
type UserFinder interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// Gate resolves a bearer credential to an identity. The HTTP middleware and
// the gRPC interceptor both delegate to it.
type Gate struct {
	codec *Codec
	users UserFinder
}

func NewGate(codec *Codec, users UserFinder) *Gate {
	return &Gate{codec: codec, users: users}
}

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// value.
func BearerToken(header string) (string, error) {
	token, found := strings.CutPrefix(header, common.BearerPrefix)
	if !found {
		return "", fmt.Errorf("%w: missing bearer token", common.ErrorUnauthorized)
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", fmt.Errorf("%w: empty bearer token", common.ErrorUnauthorized)
	}
	return token, nil
}

// Authenticate verifies an access token and loads its owner.
//
// Errors:
//   - common.ErrorUnauthorized wrapping common.ErrInvalidToken for any
//     verification failure; expired and malformed are not distinguished.
//   - common.ErrorNotFound when the subject no longer exists.
//   - common.ErrorInternal for lookup failures.
func (g *Gate) Authenticate(ctx context.Context, token string) (*models.User, error) {
	claims, err := g.codec.Verify(token, models.TokenKindAccess)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrorUnauthorized, common.ErrInvalidToken)
	}

	u, err := g.users.GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	return u, nil
}

// Authorize fails with common.ErrorForbidden unless u ranks at or above
// required.
func Authorize(u *models.User, required models.Role) error {
	if u == nil || !u.Role.AtLeast(required) {
		return common.ErrorForbidden
	}
	return nil
}
