package store

import (
	"context"
	"sort"
	"sync"

	"github.com/punchamoorthee/deckops/internal/models"
)

// Memory is a map-backed store used by tests and dry runs.
type Memory struct {
	mu       sync.RWMutex
	accounts map[int64]models.Account

	// FailWrites makes every Put return ErrWriteFailed. Tests use it to
	// exercise the no-success-on-failed-persist path.
	FailWrites bool
}

func NewMemory() *Memory {
	return &Memory{accounts: make(map[int64]models.Account)}
}

func (m *Memory) Get(ctx context.Context, userID int64) (models.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	acc, ok := m.accounts[userID]
	if !ok {
		return models.Account{}, ErrNotFound
	}
	return acc, nil
}

func (m *Memory) Put(ctx context.Context, account models.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailWrites {
		return ErrWriteFailed
	}
	m.accounts[account.UserID] = account
	return nil
}

func (m *Memory) All(ctx context.Context) ([]models.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	accounts := make([]models.Account, 0, len(m.accounts))
	for _, acc := range m.accounts {
		accounts = append(accounts, acc)
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].UserID < accounts[j].UserID })
	return accounts, nil
}

func (m *Memory) Close() {}
