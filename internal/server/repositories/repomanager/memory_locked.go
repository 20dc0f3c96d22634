package repomanager

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/users"
)

type lockedUsers struct {
	repo users.Repository
	mu   *sync.Mutex
}

func (l *lockedUsers) Create(ctx context.Context, user *models.User) (*models.User, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.repo.Create(ctx, user)
}

func (l *lockedUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.repo.GetByEmail(ctx, email)
}

func (l *lockedUsers) GetByID(ctx context.Context, id string) (*models.User, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.repo.GetByID(ctx, id)
}

func (l *lockedUsers) List(ctx context.Context, limit, offset int) ([]*models.User, int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.repo.List(ctx, limit, offset)
}

func (l *lockedUsers) Update(ctx context.Context, id string, upd models.UserUpdate) (*models.User, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.repo.Update(ctx, id, upd)
}

func (l *lockedUsers) Delete(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.repo.Delete(ctx, id)
}

type lockedRefreshTokens struct {
	repo refreshtokens.Repository
	mu   *sync.Mutex
}

func (l *lockedRefreshTokens) Create(ctx context.Context, token, userID string, expiresAt time.Time, kind models.TokenKind) (*models.RefreshToken, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.repo.Create(ctx, token, userID, expiresAt, kind)
}

func (l *lockedRefreshTokens) FindActive(ctx context.Context, token string) (*models.RefreshToken, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.repo.FindActive(ctx, token)
}

func (l *lockedRefreshTokens) Delete(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.repo.Delete(ctx, id)
}

func (l *lockedRefreshTokens) DeleteAllForUser(ctx context.Context, userID string, kind models.TokenKind) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.repo.DeleteAllForUser(ctx, userID, kind)
}

func (l *lockedRefreshTokens) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.repo.DeleteExpired(ctx, now)
}
