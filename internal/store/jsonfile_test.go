package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/punchamoorthee/deckops/internal/models"
)

func TestJSONFileMissingFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")

	s, err := NewJSONFile(path)
	require.NoError(t, err)
	defer s.Close()

	accounts, err := s.All(context.Background())
	require.NoError(t, err)
	assert.Empty(t, accounts)
}

func TestJSONFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	ctx := context.Background()

	s, err := NewJSONFile(path)
	require.NoError(t, err)

	want := []models.Account{
		{UserID: 1, Balance: 10000},
		{UserID: 99, Balance: 500, TotalSlides: 12, TotalSpent: 6000},
	}
	for _, acc := range want {
		require.NoError(t, s.Put(ctx, acc))
	}
	s.Close()

	// A fresh store over the same file sees the same accounts.
	reopened, err := NewJSONFile(path)
	require.NoError(t, err)
	defer reopened.Close()

	for _, acc := range want {
		got, err := reopened.Get(ctx, acc.UserID)
		require.NoError(t, err)
		assert.Equal(t, acc, got)
	}
}

func TestJSONFileGetNotFound(t *testing.T) {
	s, err := NewJSONFile(filepath.Join(t.TempDir(), "users.json"))
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Get(context.Background(), 12345)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestJSONFileCorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	s, err := NewJSONFile(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrReadFailed)
	require.NotNil(t, s, "a corrupt file still yields a usable empty store")
	defer s.Close()

	accounts, err := s.All(context.Background())
	require.NoError(t, err)
	assert.Empty(t, accounts)
}

func TestJSONFileDocumentLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	ctx := context.Background()

	s, err := NewJSONFile(path)
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, models.Account{UserID: 42, Balance: 1500, TotalSlides: 3, TotalSpent: 1500}))
	s.Close()

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	// Accounts are keyed by the decimal user id, with the id kept out
	// of the record body.
	var doc map[string]map[string]int64
	require.NoError(t, json.Unmarshal(raw, &doc))
	require.Contains(t, doc, "42")
	assert.Equal(t, int64(1500), doc["42"]["balance"])
	assert.Equal(t, int64(3), doc["42"]["total_slides"])
	assert.Equal(t, int64(1500), doc["42"]["total_spent"])
	assert.NotContains(t, doc["42"], "user_id")
}

func TestJSONFileOverwriteKeepsSingleRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	ctx := context.Background()

	s, err := NewJSONFile(path)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Put(ctx, models.Account{UserID: 1, Balance: 100}))
	require.NoError(t, s.Put(ctx, models.Account{UserID: 1, Balance: 900}))

	accounts, err := s.All(ctx)
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, int64(900), accounts[0].Balance)
}

func TestJSONFileWriteFailureRollsBack(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("directory permissions do not bind root")
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "users.json")
	ctx := context.Background()

	s, err := NewJSONFile(path)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Put(ctx, models.Account{UserID: 1, Balance: 100}))

	// Make the directory unwritable so the temp-file rewrite fails.
	require.NoError(t, os.Chmod(dir, 0o555))
	defer os.Chmod(dir, 0o755)

	err = s.Put(ctx, models.Account{UserID: 1, Balance: 999})
	require.ErrorIs(t, err, ErrWriteFailed)

	// The in-memory state still matches what is on disk.
	got, err := s.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(100), got.Balance)
}
