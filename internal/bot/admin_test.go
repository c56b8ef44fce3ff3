package bot

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/punchamoorthee/deckops/internal/chat"
	"github.com/punchamoorthee/deckops/internal/ledger"
	"github.com/punchamoorthee/deckops/internal/store"
)

// fanoutTransport records text per recipient and can fail selected users.
type fanoutTransport struct {
	byUser   map[int64][]string
	failUser int64
}

func newFanoutTransport() *fanoutTransport {
	return &fanoutTransport{byUser: make(map[int64][]string)}
}

func (f *fanoutTransport) SendText(_ context.Context, userID int64, text string) error {
	if f.failUser != 0 && userID == f.failUser {
		return fmt.Errorf("user %d unreachable", userID)
	}
	f.byUser[userID] = append(f.byUser[userID], text)
	return nil
}

func (f *fanoutTransport) SendButtons(_ context.Context, _ int64, _ string, _ chat.Keyboard) error {
	return nil
}

func (f *fanoutTransport) SendPhoto(_ context.Context, _ int64, _, _ string, _ chat.Keyboard) error {
	return nil
}

func (f *fanoutTransport) EditPhoto(_ context.Context, _ int64, _ string, _ chat.Keyboard) error {
	return nil
}

func (f *fanoutTransport) SendDocument(_ context.Context, _ int64, _, _ string) error {
	return nil
}

func (f *fanoutTransport) last(t *testing.T, userID int64) string {
	t.Helper()
	msgs := f.byUser[userID]
	require.NotEmpty(t, msgs, "no messages for user %d", userID)
	return msgs[len(msgs)-1]
}

const adminID = int64(100)

func newAdminFixture(t *testing.T) (*Admin, *ledger.Manager, *fanoutTransport) {
	t.Helper()
	lm := ledger.NewManager(store.NewMemory(), nil)
	tr := newFanoutTransport()
	return NewAdmin(lm, tr, []int64{adminID}, nil), lm, tr
}

func TestAdminGateRefusesOutsiders(t *testing.T) {
	a, lm, tr := newAdminFixture(t)
	ctx := context.Background()

	err := a.Handle(ctx, 999, "/add_balance", "/add_balance 1 5000")
	assert.ErrorIs(t, err, ErrNotAdmin)
	assert.Contains(t, tr.last(t, 999), "administrators only")

	// Nothing was credited.
	acc, err := lm.GetAccount(ctx, 1)
	require.NoError(t, err)
	assert.Zero(t, acc.Balance)
}

func TestAdminIsAdmin(t *testing.T) {
	a, _, _ := newAdminFixture(t)

	assert.True(t, a.IsAdmin(adminID))
	assert.False(t, a.IsAdmin(999))
}

func TestAddBalance(t *testing.T) {
	a, lm, tr := newAdminFixture(t)
	ctx := context.Background()

	require.NoError(t, a.Handle(ctx, adminID, "/add_balance", "/add_balance 7 5000"))
	assert.Contains(t, tr.last(t, adminID), "New balance: 5000")

	acc, err := lm.GetAccount(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(5000), acc.Balance)
}

func TestAddBalanceBadArguments(t *testing.T) {
	a, _, tr := newAdminFixture(t)
	ctx := context.Background()

	for _, raw := range []string{"/add_balance", "/add_balance 7", "/add_balance seven 100", "/add_balance 7 lots"} {
		require.NoError(t, a.Handle(ctx, adminID, "/add_balance", raw))
		assert.Contains(t, tr.last(t, adminID), "Format:", "input %q", raw)
	}

	require.NoError(t, a.Handle(ctx, adminID, "/add_balance", "/add_balance 7 -100"))
	assert.Contains(t, tr.last(t, adminID), "Amount must be positive")
}

func TestRemoveBalanceClampsAtZero(t *testing.T) {
	a, lm, tr := newAdminFixture(t)
	ctx := context.Background()

	_, err := lm.Credit(ctx, 7, 3000)
	require.NoError(t, err)

	require.NoError(t, a.Handle(ctx, adminID, "/remove_balance", "/remove_balance 7 99999"))
	assert.Contains(t, tr.last(t, adminID), "New balance: 0")

	acc, err := lm.GetAccount(ctx, 7)
	require.NoError(t, err)
	assert.Zero(t, acc.Balance)
}

func TestUserInfo(t *testing.T) {
	a, lm, tr := newAdminFixture(t)
	ctx := context.Background()

	_, err := lm.Credit(ctx, 7, 10000)
	require.NoError(t, err)
	_, err = lm.DebitForPurchase(ctx, 7, 3000, 6)
	require.NoError(t, err)

	require.NoError(t, a.Handle(ctx, adminID, "/userinfo", "/userinfo 7"))
	out := tr.last(t, adminID)
	assert.Contains(t, out, "Balance: 7000")
	assert.Contains(t, out, "Slides: 6")
	assert.Contains(t, out, "Spent: 3000")
}

func TestStatsCommand(t *testing.T) {
	a, lm, tr := newAdminFixture(t)
	ctx := context.Background()

	_, err := lm.Credit(ctx, 1, 10000)
	require.NoError(t, err)
	_, err = lm.Credit(ctx, 2, 10000)
	require.NoError(t, err)
	_, err = lm.DebitForPurchase(ctx, 1, 5000, 10)
	require.NoError(t, err)

	require.NoError(t, a.Handle(ctx, adminID, "/stats", "/stats"))
	out := tr.last(t, adminID)
	assert.Contains(t, out, "Users: 2")
	assert.Contains(t, out, "Slides produced: 10")
	assert.Contains(t, out, "Total earned: 5000")
}

func TestBroadcastCountsDeliveries(t *testing.T) {
	a, lm, tr := newAdminFixture(t)
	ctx := context.Background()

	for _, id := range []int64{1, 2, 3} {
		require.NoError(t, lm.EnsureAccount(ctx, id))
	}
	tr.failUser = 2

	require.NoError(t, a.Handle(ctx, adminID, "/broadcast", "/broadcast Maintenance tonight at 22:00"))

	assert.Equal(t, []string{"Maintenance tonight at 22:00"}, tr.byUser[1])
	assert.Empty(t, tr.byUser[2])
	assert.Equal(t, []string{"Maintenance tonight at 22:00"}, tr.byUser[3])

	report := tr.last(t, adminID)
	assert.Contains(t, report, "Delivered: 2")
	assert.Contains(t, report, "Failed: 1")
}

func TestBroadcastRequiresText(t *testing.T) {
	a, _, tr := newAdminFixture(t)

	require.NoError(t, a.Handle(context.Background(), adminID, "/broadcast", "/broadcast"))
	assert.Contains(t, tr.last(t, adminID), "Format:")
}

func TestUnknownAdminCommand(t *testing.T) {
	a, _, tr := newAdminFixture(t)

	require.NoError(t, a.Handle(context.Background(), adminID, "/nuke", "/nuke"))
	assert.Contains(t, tr.last(t, adminID), "Unknown admin command")
}
