package users

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	alice, err := repo.Create(ctx, &models.User{Name: "Alice", Email: "alice@x.com", PasswordHash: "h", Role: models.RoleUser})
	require.NoError(t, err)
	require.NotEmpty(t, alice.ID)
	assert.False(t, alice.CreatedAt.IsZero())

	_, err = repo.Create(ctx, &models.User{Name: "Other", Email: "ALICE@x.com", Role: models.RoleUser})
	assert.ErrorIs(t, err, common.ErrorConflict)

	got, err := repo.GetByEmail(ctx, "alice@x.com")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got.ID)

	got, err = repo.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.Name)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, common.ErrorNotFound)

	name := "Alicia"
	updated, err := repo.Update(ctx, alice.ID, models.UserUpdate{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Alicia", updated.Name)
	assert.Equal(t, "alice@x.com", updated.Email)

	require.NoError(t, repo.Delete(ctx, alice.ID))
	assert.ErrorIs(t, repo.Delete(ctx, alice.ID), common.ErrorNotFound)
	_, err = repo.Update(ctx, alice.ID, models.UserUpdate{Name: &name})
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestMemoryRepository_UpdateEmailConflict(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	a, err := repo.Create(ctx, &models.User{Name: "A", Email: "a@x.com", Role: models.RoleUser})
	require.NoError(t, err)
	_, err = repo.Create(ctx, &models.User{Name: "B", Email: "b@x.com", Role: models.RoleUser})
	require.NoError(t, err)

	taken := "b@x.com"
	_, err = repo.Update(ctx, a.ID, models.UserUpdate{Email: &taken})
	assert.ErrorIs(t, err, common.ErrorConflict)

	own := "a@x.com"
	_, err = repo.Update(ctx, a.ID, models.UserUpdate{Email: &own})
	assert.NoError(t, err)
}

func TestMemoryRepository_List(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	base := time.Unix(1_700_000_000, 0)
	tick := 0
	repo.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	for _, email := range []string{"1@x.com", "2@x.com", "3@x.com"} {
		_, err := repo.Create(ctx, &models.User{Name: email, Email: email, Role: models.RoleUser})
		require.NoError(t, err)
	}

	page, total, err := repo.List(ctx, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, page, 2)
	assert.Equal(t, "3@x.com", page[0].Email)
	assert.Equal(t, "2@x.com", page[1].Email)

	page, _, err = repo.List(ctx, 2, 2)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "1@x.com", page[0].Email)

	page, _, err = repo.List(ctx, 2, 10)
	require.NoError(t, err)
	assert.Empty(t, page)

	page, total, err = repo.List(ctx, 2, -16)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, page, 2)
	assert.Equal(t, "3@x.com", page[0].Email)
}

func TestMemoryRepository_SnapshotRestore(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	a, err := repo.Create(ctx, &models.User{Name: "A", Email: "a@x.com", Role: models.RoleUser})
	require.NoError(t, err)

	snap := repo.Snapshot()
	require.NoError(t, repo.Delete(ctx, a.ID))

	repo.Restore(snap)
	_, err = repo.GetByID(ctx, a.ID)
	assert.NoError(t, err)
}
