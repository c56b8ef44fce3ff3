package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/punchamoorthee/deckops/internal/models"
	"github.com/punchamoorthee/deckops/internal/store"
)

func newTestManager(t *testing.T) (*Manager, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	return NewManager(mem, nil), mem
}

func TestEnsureAccountIdempotent(t *testing.T) {
	m, mem := newTestManager(t)
	ctx := context.Background()

	require.NoError(t, m.EnsureAccount(ctx, 42))
	require.NoError(t, m.EnsureAccount(ctx, 42))

	accounts, err := mem.All(ctx)
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, models.Account{UserID: 42}, accounts[0])
}

func TestGetAccountCreatesLazily(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	acc, err := m.GetAccount(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(7), acc.UserID)
	assert.Zero(t, acc.Balance)
	assert.Zero(t, acc.TotalSlides)
	assert.Zero(t, acc.TotalSpent)
}

func TestCreditRejectsNonPositiveAmounts(t *testing.T) {
	m, mem := newTestManager(t)
	ctx := context.Background()

	for _, amount := range []int64{0, -1, -5000} {
		_, err := m.Credit(ctx, 1, amount)
		assert.ErrorIs(t, err, ErrInvalidAmount, "amount %d", amount)
	}

	accounts, err := mem.All(ctx)
	require.NoError(t, err)
	assert.Empty(t, accounts, "rejected credits must not create accounts")
}

func TestCreditAddsBalance(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	acc, err := m.Credit(ctx, 1, 10000)
	require.NoError(t, err)
	assert.Equal(t, int64(10000), acc.Balance)

	acc, err = m.Credit(ctx, 1, 500)
	require.NoError(t, err)
	assert.Equal(t, int64(10500), acc.Balance)
}

func TestDebitInsufficientLeavesAccountUnchanged(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	_, err := m.Credit(ctx, 1, 4000)
	require.NoError(t, err)

	_, err = m.DebitForPurchase(ctx, 1, 5000, 10)
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	acc, err := m.GetAccount(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(4000), acc.Balance)
	assert.Zero(t, acc.TotalSpent)
	assert.Zero(t, acc.TotalSlides)
}

func TestDebitMovesAmountAndCounters(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	_, err := m.Credit(ctx, 1, 10000)
	require.NoError(t, err)
	_, err = m.Credit(ctx, 2, 7777)
	require.NoError(t, err)

	acc, err := m.DebitForPurchase(ctx, 1, 5000, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(5000), acc.Balance)
	assert.Equal(t, int64(5000), acc.TotalSpent)
	assert.Equal(t, int64(10), acc.TotalSlides)

	// No other account is affected.
	other, err := m.GetAccount(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(7777), other.Balance)
	assert.Zero(t, other.TotalSpent)
}

func TestDebitRejectsNonPositiveInputs(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	_, err := m.Credit(ctx, 1, 1000)
	require.NoError(t, err)

	_, err = m.DebitForPurchase(ctx, 1, 0, 10)
	assert.ErrorIs(t, err, ErrInvalidAmount)
	_, err = m.DebitForPurchase(ctx, 1, 500, 0)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestDebitSurfacesWriteFailure(t *testing.T) {
	m, mem := newTestManager(t)
	ctx := context.Background()

	_, err := m.Credit(ctx, 1, 10000)
	require.NoError(t, err)

	mem.FailWrites = true
	_, err = m.DebitForPurchase(ctx, 1, 5000, 10)
	assert.ErrorIs(t, err, store.ErrWriteFailed)

	mem.FailWrites = false
	acc, err := m.GetAccount(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(10000), acc.Balance, "failed persist must not report a charge")
}

func TestForceReduceClampsAtZero(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	_, err := m.Credit(ctx, 1, 3000)
	require.NoError(t, err)

	acc, err := m.ForceReduce(ctx, 1, 10000)
	require.NoError(t, err)
	assert.Zero(t, acc.Balance)

	// Never fails on an already-empty balance either.
	acc, err = m.ForceReduce(ctx, 1, 500)
	require.NoError(t, err)
	assert.Zero(t, acc.Balance)
}

func TestBalanceNeverNegative(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	ops := []func() (models.Account, error){
		func() (models.Account, error) { return m.Credit(ctx, 1, 1200) },
		func() (models.Account, error) { return m.DebitForPurchase(ctx, 1, 900, 3) },
		func() (models.Account, error) { return m.DebitForPurchase(ctx, 1, 900, 3) },
		func() (models.Account, error) { return m.ForceReduce(ctx, 1, 100000) },
		func() (models.Account, error) { return m.Credit(ctx, 1, 50) },
		func() (models.Account, error) { return m.ForceReduce(ctx, 1, 49) },
	}
	for i, op := range ops {
		op() // business failures are fine, negative balances are not
		acc, err := m.GetAccount(ctx, 1)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, acc.Balance, int64(0), "op %d", i)
	}
}

func TestStatisticsSumsAllAccounts(t *testing.T) {
	m, mem := newTestManager(t)
	ctx := context.Background()

	require.NoError(t, mem.Put(ctx, models.Account{UserID: 1}))
	require.NoError(t, mem.Put(ctx, models.Account{UserID: 2, TotalSpent: 1500, TotalSlides: 3}))
	require.NoError(t, mem.Put(ctx, models.Account{UserID: 3, TotalSpent: 3000, TotalSlides: 6}))

	stats, err := m.Statistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.Stats{TotalUsers: 3, TotalSlides: 9, TotalEarned: 4500}, stats)
}

func TestStatisticsEmptyStore(t *testing.T) {
	m, _ := newTestManager(t)

	stats, err := m.Statistics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.Stats{}, stats)
}
