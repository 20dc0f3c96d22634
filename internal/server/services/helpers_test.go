package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/dbx"
	"github.com/dmitrijs2005/authkeeper/internal/server/auth"
	"github.com/dmitrijs2005/authkeeper/internal/server/config"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/users"
	"github.com/dmitrijs2005/authkeeper/internal/timex"
	"golang.org/x/crypto/bcrypt"
)

var errBoom = errors.New("boom")

type testEnv struct {
	rm       *repomanager.InMemoryRepositoryManager
	codec    *auth.Codec
	sessions *SessionService
	users    *UserService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWith(t, repomanager.NewInMemoryRepositoryManager(), nil)
}

// newTestEnvWith builds services over rm; wrap, when set, replaces the
// manager the services see.
func newTestEnvWith(t *testing.T, rm *repomanager.InMemoryRepositoryManager, wrap repomanager.RepositoryManager) *testEnv {
	t.Helper()

	cfg := &config.Config{
		SecretKey:        "test-secret",
		AccessTokenTTL:   15 * time.Minute,
		RefreshTokenTTL:  7 * timex.Day,
		RefreshRecordTTL: 30 * timex.Day,
	}
	codec := auth.NewCodec([]byte(cfg.SecretKey))
	issuer, err := auth.NewIssuer(codec, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	if err != nil {
		t.Fatalf("NewIssuer error: %v", err)
	}
	hasher := auth.NewBcryptHasher(bcrypt.MinCost)

	var m repomanager.RepositoryManager = rm
	if wrap != nil {
		m = wrap
	}

	return &testEnv{
		rm:       rm,
		codec:    codec,
		sessions: NewSessionService(m, issuer, codec, hasher, cfg),
		users:    NewUserService(m, hasher),
	}
}

// faultyManager injects failures into an in-memory manager.
type faultyManager struct {
	*repomanager.InMemoryRepositoryManager
	failRefreshCreate int
	failUsers         error
}

func (m *faultyManager) RefreshTokens(db dbx.DBTX) refreshtokens.Repository {
	return &faultyRefreshRepo{Repository: m.InMemoryRepositoryManager.RefreshTokens(db), m: m}
}

func (m *faultyManager) Users(db dbx.DBTX) users.Repository {
	if m.failUsers != nil {
		return &failingUsersRepo{err: m.failUsers}
	}
	return m.InMemoryRepositoryManager.Users(db)
}

type faultyRefreshRepo struct {
	refreshtokens.Repository
	m *faultyManager
}

func (r *faultyRefreshRepo) Create(ctx context.Context, token, userID string, expiresAt time.Time, kind models.TokenKind) (*models.RefreshToken, error) {
	if r.m.failRefreshCreate > 0 {
		r.m.failRefreshCreate--
		return nil, errBoom
	}
	return r.Repository.Create(ctx, token, userID, expiresAt, kind)
}

type failingUsersRepo struct {
	err error
}

func (r *failingUsersRepo) Create(context.Context, *models.User) (*models.User, error) {
	return nil, r.err
}
func (r *failingUsersRepo) GetByEmail(context.Context, string) (*models.User, error) {
	return nil, r.err
}
func (r *failingUsersRepo) GetByID(context.Context, string) (*models.User, error) {
	return nil, r.err
}
func (r *failingUsersRepo) List(context.Context, int, int) ([]*models.User, int, error) {
	return nil, 0, r.err
}
func (r *failingUsersRepo) Update(context.Context, string, models.UserUpdate) (*models.User, error) {
	return nil, r.err
}
func (r *failingUsersRepo) Delete(context.Context, string) error {
	return r.err
}
