package refreshtokens

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/google/uuid"
)

// MemoryRepository is a map-backed Repository keyed by record id.
type MemoryRepository struct {
	mu      sync.RWMutex
	records map[string]models.RefreshToken
	now     func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{records: make(map[string]models.RefreshToken), now: time.Now}
}

// MemorySnapshot is an opaque copy of a MemoryRepository's contents.
type MemorySnapshot map[string]models.RefreshToken

func (r *MemoryRepository) Snapshot() MemorySnapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s := make(MemorySnapshot, len(r.records))
	for k, v := range r.records {
		s[k] = v
	}
	return s
}

func (r *MemoryRepository) Restore(s MemorySnapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = make(map[string]models.RefreshToken, len(s))
	for k, v := range s {
		r.records[k] = v
	}
}

// Len returns the number of stored records, active or not.
func (r *MemoryRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

func (r *MemoryRepository) Create(_ context.Context, token, userID string, expiresAt time.Time, kind models.TokenKind) (*models.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, rec := range r.records {
		if rec.Token == token {
			return nil, common.ErrorConflict
		}
	}

	rec := models.RefreshToken{
		ID:        uuid.NewString(),
		Token:     token,
		UserID:    userID,
		Kind:      kind,
		ExpiresAt: expiresAt,
		CreatedAt: r.now(),
	}
	r.records[rec.ID] = rec
	return &rec, nil
}

func (r *MemoryRepository) FindActive(_ context.Context, token string) (*models.RefreshToken, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	now := r.now()
	for _, rec := range r.records {
		if rec.Token == token && rec.Active(now) {
			return &rec, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *MemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.records, id)
	return nil
}

func (r *MemoryRepository) DeleteAllForUser(_ context.Context, userID string, kind models.TokenKind) (int64, error) {
	return r.deleteWhere(func(rec models.RefreshToken) bool {
		return rec.UserID == userID && rec.Kind == kind
	}), nil
}

func (r *MemoryRepository) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	return r.deleteWhere(func(rec models.RefreshToken) bool {
		return !rec.ExpiresAt.After(now)
	}), nil
}

func (r *MemoryRepository) deleteWhere(match func(models.RefreshToken) bool) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for id, rec := range r.records {
		if match(rec) {
			delete(r.records, id)
			n++
		}
	}
	return n
}
