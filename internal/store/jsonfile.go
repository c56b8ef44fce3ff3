package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"

	"github.com/punchamoorthee/deckops/internal/models"
)

// JSONFile keeps all accounts in one JSON document mapping decimal user IDs
// to account objects. The whole document is rewritten on every Put via a
// temp file and rename, so a crashed write never truncates prior state.
// Single-writer only; the in-memory map is authoritative between writes.
type JSONFile struct {
	path string

	mu       sync.RWMutex
	accounts map[string]models.Account
}

// NewJSONFile opens (or lazily creates) the document at path. A missing file
// yields an empty store. An unreadable or corrupt file also yields an empty
// store together with an error wrapping ErrReadFailed: the caller logs it
// and continues with defaults, per the ledger's degraded-start policy.
func NewJSONFile(path string) (*JSONFile, error) {
	s := &JSONFile{
		path:     path,
		accounts: make(map[string]models.Account),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return s, fmt.Errorf("%w: %v", ErrReadFailed, err)
	}
	if err := json.Unmarshal(data, &s.accounts); err != nil {
		s.accounts = make(map[string]models.Account)
		return s, fmt.Errorf("%w: parsing %s: %v", ErrReadFailed, path, err)
	}
	return s, nil
}

func (s *JSONFile) Get(ctx context.Context, userID int64) (models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acc, ok := s.accounts[strconv.FormatInt(userID, 10)]
	if !ok {
		return models.Account{}, ErrNotFound
	}
	acc.UserID = userID
	return acc, nil
}

func (s *JSONFile) Put(ctx context.Context, account models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strconv.FormatInt(account.UserID, 10)
	prev, existed := s.accounts[key]
	s.accounts[key] = account

	if err := s.flushLocked(); err != nil {
		// Keep the in-memory map consistent with what is on disk.
		if existed {
			s.accounts[key] = prev
		} else {
			delete(s.accounts, key)
		}
		return err
	}
	return nil
}

func (s *JSONFile) All(ctx context.Context) ([]models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	accounts := make([]models.Account, 0, len(s.accounts))
	for key, acc := range s.accounts {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: malformed user key %q", ErrReadFailed, key)
		}
		acc.UserID = id
		accounts = append(accounts, acc)
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].UserID < accounts[j].UserID })
	return accounts, nil
}

func (s *JSONFile) Close() {}

func (s *JSONFile) flushLocked() error {
	data, err := json.MarshalIndent(s.accounts, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}

	tmp, err := os.CreateTemp(dir, ".users-*.json")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	return nil
}
