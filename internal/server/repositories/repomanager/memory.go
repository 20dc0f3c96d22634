package repomanager

import (
	"context"
	"database/sql"
	"sync"

	"github.com/dmitrijs2005/authkeeper/internal/dbx"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/users"
)

// InMemoryRepositoryManager keeps all data in process. Transactions are
// serialized and roll back by restoring a snapshot taken at begin.
type InMemoryRepositoryManager struct {
	users   *users.MemoryRepository
	refresh *refreshtokens.MemoryRepository
	tx      *memoryTransactor
}

func NewInMemoryRepositoryManager() *InMemoryRepositoryManager {
	m := &InMemoryRepositoryManager{
		users:   users.NewMemoryRepository(),
		refresh: refreshtokens.NewMemoryRepository(),
	}
	m.tx = &memoryTransactor{m: m}
	return m
}

// RunMigrations is a no-op: there is no schema.
func (m *InMemoryRepositoryManager) RunMigrations(context.Context, *sql.DB) error {
	return nil
}

// Users returns the shared store. Outside a transaction every call takes the
// transaction lock, so a rollback never overlaps a direct write.
func (m *InMemoryRepositoryManager) Users(db dbx.DBTX) users.Repository {
	if _, ok := db.(memoryTx); ok {
		return m.users
	}
	return &lockedUsers{repo: m.users, mu: &m.tx.mu}
}

// RefreshTokens returns the shared store, locked like Users.
func (m *InMemoryRepositoryManager) RefreshTokens(db dbx.DBTX) refreshtokens.Repository {
	if _, ok := db.(memoryTx); ok {
		return m.refresh
	}
	return &lockedRefreshTokens{repo: m.refresh, mu: &m.tx.mu}
}

// RefreshTokenCount returns the number of stored refresh records.
func (m *InMemoryRepositoryManager) RefreshTokenCount() int {
	m.tx.mu.Lock()
	defer m.tx.mu.Unlock()
	return m.refresh.Len()
}

func (m *InMemoryRepositoryManager) Transactor() dbx.Transactor {
	return m.tx
}

// memoryTx is the handle passed to transaction bodies. Repositories bound to
// it skip the lock, which the transaction already holds.
type memoryTx struct {
	dbx.DBTX
}

type memoryTransactor struct {
	mu sync.Mutex
	m  *InMemoryRepositoryManager
}

func (t *memoryTransactor) WithinTx(ctx context.Context, fn dbx.TxFunc) (err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	usersSnap := t.m.users.Snapshot()
	refreshSnap := t.m.refresh.Snapshot()

	defer func() {
		if p := recover(); p != nil {
			t.m.users.Restore(usersSnap)
			t.m.refresh.Restore(refreshSnap)
			panic(p)
		}
		if err != nil {
			t.m.users.Restore(usersSnap)
			t.m.refresh.Restore(refreshSnap)
		}
	}()

	return fn(ctx, memoryTx{})
}

// Conn returns nil; repositories bound to it lock per call.
func (t *memoryTransactor) Conn() dbx.DBTX {
	return nil
}
