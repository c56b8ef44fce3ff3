// Package store provides durable keyed persistence for Account records.
// Two production backends exist behind the same interface: a Postgres table
// and a single JSON document. Neither backend tolerates concurrent writers
// from multiple processes; the ledger manager serializes all mutations
// through one in-process gate.
package store

import (
	"context"
	"errors"

	"github.com/punchamoorthee/deckops/internal/models"
)

var (
	// ErrNotFound marks a lookup of an account that was never created.
	ErrNotFound = errors.New("account not found")

	// ErrReadFailed marks a storage read fault, distinct from business errors.
	ErrReadFailed = errors.New("storage read failed")

	// ErrWriteFailed marks a storage write fault. A caller must not report
	// success to the user while a write carrying its mutation failed.
	ErrWriteFailed = errors.New("storage write failed")
)

// Store is the ledger store: keyed Account persistence.
type Store interface {
	// Get returns the account for userID, or ErrNotFound.
	Get(ctx context.Context, userID int64) (models.Account, error)

	// Put upserts a single account record.
	Put(ctx context.Context, account models.Account) error

	// All returns every persisted account, in no particular order.
	All(ctx context.Context) ([]models.Account, error)

	Close()
}
