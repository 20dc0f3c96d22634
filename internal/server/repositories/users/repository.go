// Package users declares the identity store and its PostgreSQL and
// in-memory implementations.
package users

import (
	"context"

	"github.com/dmitrijs2005/authkeeper/internal/server/models"
)

// Repository persists identities. Lookups return common.ErrorNotFound when
// nothing matches; a duplicate email yields common.ErrorConflict.
type Repository interface {
	// Create stores user, assigning an id when it has none, and returns the
	// stored row.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	// List returns one page, newest first, plus the total count.
	List(ctx context.Context, limit, offset int) ([]*models.User, int, error)
	Update(ctx context.Context, id string, upd models.UserUpdate) (*models.User, error)
	Delete(ctx context.Context, id string) error
}
