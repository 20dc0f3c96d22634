// Package refreshtokens declares the server-side store for persisted refresh
// token records and its PostgreSQL and in-memory implementations.
package refreshtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/server/models"
)

// Repository persists, looks up and revokes refresh token records.
type Repository interface {
	// Create stores a new record. A colliding token string yields
	// common.ErrorConflict.
	Create(ctx context.Context, token, userID string, expiresAt time.Time, kind models.TokenKind) (*models.RefreshToken, error)

	// FindActive looks up a non-revoked, unexpired record by its exact token
	// string and returns common.ErrorNotFound when there is none. Inside a
	// transaction the row stays locked until commit.
	FindActive(ctx context.Context, token string) (*models.RefreshToken, error)

	// Delete removes a record by id. Deleting a missing id is not an error.
	Delete(ctx context.Context, id string) error

	// DeleteAllForUser removes every record of kind owned by userID and
	// returns how many were removed.
	DeleteAllForUser(ctx context.Context, userID string, kind models.TokenKind) (int64, error)

	// DeleteExpired removes records that expired at or before now.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
