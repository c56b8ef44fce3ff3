// Package ledger is the only mutator of Account state. It enforces the
// non-negative-balance invariant and serializes every mutation through one
// in-process gate, which is what makes the whole-file JSON backend safe.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/punchamoorthee/deckops/internal/models"
	"github.com/punchamoorthee/deckops/internal/store"
)

type Manager struct {
	store  store.Store
	logger *zap.Logger

	mu sync.Mutex
}

func NewManager(s store.Store, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{store: s, logger: logger}
}

// EnsureAccount registers userID with zeroed fields if it is absent.
// Idempotent; persists only on creation.
func (m *Manager) EnsureAccount(ctx context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ensureLocked(ctx, userID)
}

// GetAccount returns a copy of the account, creating it first if absent.
func (m *Manager) GetAccount(ctx context.Context, userID int64) (models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.ensureLocked(ctx, userID); err != nil {
		return models.Account{}, err
	}
	return m.store.Get(ctx, userID)
}

// LookupAccount returns the account without creating it; absent accounts
// yield store.ErrNotFound. Used by the ops surface.
func (m *Manager) LookupAccount(ctx context.Context, userID int64) (models.Account, error) {
	acc, err := m.store.Get(ctx, userID)
	if err != nil {
		return models.Account{}, err
	}
	acc.UserID = userID
	return acc, nil
}

// Credit adds amount to the balance. Non-positive amounts are rejected with
// ErrInvalidAmount. The credited state is persisted before returning.
func (m *Manager) Credit(ctx context.Context, userID int64, amount int64) (models.Account, error) {
	if amount <= 0 {
		return models.Account{}, ErrInvalidAmount
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.ensureLocked(ctx, userID); err != nil {
		return models.Account{}, err
	}
	acc, err := m.store.Get(ctx, userID)
	if err != nil {
		return models.Account{}, err
	}

	acc.Balance += amount
	if err := m.store.Put(ctx, acc); err != nil {
		return models.Account{}, err
	}

	m.logger.Info("balance credited",
		zap.Int64("user_id", userID),
		zap.Int64("amount", amount),
		zap.Int64("balance", acc.Balance))
	return acc, nil
}

// DebitForPurchase withdraws amount for an executed purchase of slides
// units. It fails with ErrInsufficientBalance, leaving the account
// untouched, whenever the balance does not cover the amount. On success the
// balance drops by amount, TotalSpent grows by amount, and TotalSlides grows
// by slides, all persisted as one record write.
func (m *Manager) DebitForPurchase(ctx context.Context, userID int64, amount int64, slides int64) (models.Account, error) {
	if amount <= 0 || slides <= 0 {
		return models.Account{}, ErrInvalidAmount
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.ensureLocked(ctx, userID); err != nil {
		return models.Account{}, err
	}
	acc, err := m.store.Get(ctx, userID)
	if err != nil {
		return models.Account{}, err
	}

	if acc.Balance < amount {
		m.logger.Warn("debit refused, balance too low",
			zap.Int64("user_id", userID),
			zap.Int64("amount", amount),
			zap.Int64("balance", acc.Balance))
		return models.Account{}, ErrInsufficientBalance
	}

	acc.Balance -= amount
	acc.TotalSpent += amount
	acc.TotalSlides += slides
	if err := m.store.Put(ctx, acc); err != nil {
		// The backends apply Put atomically, so a failed write leaves the
		// persisted record at its pre-debit state. Surface the fault instead
		// of reporting a successful charge.
		return models.Account{}, fmt.Errorf("debit not recorded: %w", err)
	}

	m.logger.Info("balance debited",
		zap.Int64("user_id", userID),
		zap.Int64("amount", amount),
		zap.Int64("slides", slides),
		zap.Int64("balance", acc.Balance))
	return acc, nil
}

// ForceReduce is the administrative override: it reduces the balance by
// amount, clamping at zero. Never a business-rule failure.
func (m *Manager) ForceReduce(ctx context.Context, userID int64, amount int64) (models.Account, error) {
	if amount <= 0 {
		return models.Account{}, ErrInvalidAmount
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.ensureLocked(ctx, userID); err != nil {
		return models.Account{}, err
	}
	acc, err := m.store.Get(ctx, userID)
	if err != nil {
		return models.Account{}, err
	}

	acc.Balance -= amount
	if acc.Balance < 0 {
		acc.Balance = 0
	}
	if err := m.store.Put(ctx, acc); err != nil {
		return models.Account{}, err
	}

	m.logger.Info("balance reduced",
		zap.Int64("user_id", userID),
		zap.Int64("amount", amount),
		zap.Int64("balance", acc.Balance))
	return acc, nil
}

// Statistics sums every account elementwise. An empty store yields zeros.
func (m *Manager) Statistics(ctx context.Context) (models.Stats, error) {
	accounts, err := m.store.All(ctx)
	if err != nil {
		return models.Stats{}, err
	}

	var stats models.Stats
	stats.TotalUsers = int64(len(accounts))
	for _, acc := range accounts {
		stats.TotalSlides += acc.TotalSlides
		stats.TotalEarned += acc.TotalSpent
	}
	return stats, nil
}

// AllAccounts lists every known account, for the broadcast operation.
func (m *Manager) AllAccounts(ctx context.Context) ([]models.Account, error) {
	return m.store.All(ctx)
}

func (m *Manager) ensureLocked(ctx context.Context, userID int64) error {
	_, err := m.store.Get(ctx, userID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	if err := m.store.Put(ctx, models.Account{UserID: userID}); err != nil {
		return err
	}
	m.logger.Info("account created", zap.Int64("user_id", userID))
	return nil
}
