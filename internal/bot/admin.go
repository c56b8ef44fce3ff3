package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/punchamoorthee/deckops/internal/chat"
	"github.com/punchamoorthee/deckops/internal/ledger"
)

// ErrNotAdmin is returned when a non-administrator invokes an
// administrative command.
var ErrNotAdmin = errors.New("administrator only")

// Admin serves the administrative command surface, gated by a fixed
// allow-list of user IDs.
type Admin struct {
	ledger    *ledger.Manager
	transport chat.Transport
	allowed   map[int64]struct{}
	logger    *zap.Logger
}

func NewAdmin(lm *ledger.Manager, transport chat.Transport, adminIDs []int64, logger *zap.Logger) *Admin {
	if logger == nil {
		logger = zap.NewNop()
	}
	allowed := make(map[int64]struct{}, len(adminIDs))
	for _, id := range adminIDs {
		allowed[id] = struct{}{}
	}
	return &Admin{ledger: lm, transport: transport, allowed: allowed, logger: logger}
}

func (a *Admin) IsAdmin(userID int64) bool {
	_, ok := a.allowed[userID]
	return ok
}

// Handle runs one admin command. raw is the full message text, command
// included.
func (a *Admin) Handle(ctx context.Context, userID int64, cmd, raw string) error {
	if !a.IsAdmin(userID) {
		a.logger.Warn("admin command refused", zap.Int64("user_id", userID), zap.String("command", cmd))
		if err := a.transport.SendText(ctx, userID, "This command is for administrators only."); err != nil {
			return err
		}
		return ErrNotAdmin
	}

	args := strings.Fields(raw)[1:]
	switch cmd {
	case "/add_balance":
		return a.addBalance(ctx, userID, args)
	case "/remove_balance":
		return a.removeBalance(ctx, userID, args)
	case "/userinfo":
		return a.userInfo(ctx, userID, args)
	case "/stats":
		return a.stats(ctx, userID)
	case "/broadcast":
		return a.broadcast(ctx, userID, raw)
	}
	return a.transport.SendText(ctx, userID, "Unknown admin command.")
}

func (a *Admin) addBalance(ctx context.Context, adminID int64, args []string) error {
	target, amount, err := parseUserAmount(args)
	if err != nil {
		return a.transport.SendText(ctx, adminID, "Format: /add_balance user_id amount")
	}

	acc, err := a.ledger.Credit(ctx, target, amount)
	if err != nil {
		if errors.Is(err, ledger.ErrInvalidAmount) {
			return a.transport.SendText(ctx, adminID, "Amount must be positive.")
		}
		a.logger.Error("credit failed", zap.Int64("target", target), zap.Error(err))
		return a.transport.SendText(ctx, adminID, "Storage error, nothing credited. Try again.")
	}

	return a.transport.SendText(ctx, adminID, fmt.Sprintf(
		"Done!\nUser: %d\nAdded: %d\nNew balance: %d", target, amount, acc.Balance))
}

func (a *Admin) removeBalance(ctx context.Context, adminID int64, args []string) error {
	target, amount, err := parseUserAmount(args)
	if err != nil {
		return a.transport.SendText(ctx, adminID, "Format: /remove_balance user_id amount")
	}

	acc, err := a.ledger.ForceReduce(ctx, target, amount)
	if err != nil {
		if errors.Is(err, ledger.ErrInvalidAmount) {
			return a.transport.SendText(ctx, adminID, "Amount must be positive.")
		}
		a.logger.Error("force reduce failed", zap.Int64("target", target), zap.Error(err))
		return a.transport.SendText(ctx, adminID, "Storage error, nothing changed. Try again.")
	}

	return a.transport.SendText(ctx, adminID, fmt.Sprintf(
		"Done!\nUser: %d\nRemoved: %d\nNew balance: %d", target, amount, acc.Balance))
}

func (a *Admin) userInfo(ctx context.Context, adminID int64, args []string) error {
	if len(args) != 1 {
		return a.transport.SendText(ctx, adminID, "Format: /userinfo user_id")
	}
	target, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return a.transport.SendText(ctx, adminID, "Format: /userinfo user_id")
	}

	acc, err := a.ledger.GetAccount(ctx, target)
	if err != nil {
		a.logger.Error("account lookup failed", zap.Int64("target", target), zap.Error(err))
		return a.transport.SendText(ctx, adminID, "Storage error. Try again.")
	}

	return a.transport.SendText(ctx, adminID, fmt.Sprintf(
		"User: %d\nBalance: %d\nSlides: %d\nSpent: %d",
		target, acc.Balance, acc.TotalSlides, acc.TotalSpent))
}

func (a *Admin) stats(ctx context.Context, adminID int64) error {
	stats, err := a.ledger.Statistics(ctx)
	if err != nil {
		a.logger.Error("statistics failed", zap.Error(err))
		return a.transport.SendText(ctx, adminID, "Storage error. Try again.")
	}

	return a.transport.SendText(ctx, adminID, fmt.Sprintf(
		"Overall statistics\n\nUsers: %d\nSlides produced: %d\nTotal earned: %d",
		stats.TotalUsers, stats.TotalSlides, stats.TotalEarned))
}

func (a *Admin) broadcast(ctx context.Context, adminID int64, raw string) error {
	text := strings.TrimSpace(strings.TrimPrefix(raw, "/broadcast"))
	if text == "" {
		return a.transport.SendText(ctx, adminID, "Format: /broadcast message text")
	}

	accounts, err := a.ledger.AllAccounts(ctx)
	if err != nil {
		a.logger.Error("broadcast listing failed", zap.Error(err))
		return a.transport.SendText(ctx, adminID, "Storage error. Try again.")
	}

	var sent, failed int
	for _, acc := range accounts {
		if err := a.transport.SendText(ctx, acc.UserID, text); err != nil {
			a.logger.Warn("broadcast delivery failed", zap.Int64("user_id", acc.UserID), zap.Error(err))
			failed++
			continue
		}
		sent++
	}

	return a.transport.SendText(ctx, adminID, fmt.Sprintf(
		"Broadcast finished\n\nDelivered: %d\nFailed: %d", sent, failed))
}

func parseUserAmount(args []string) (int64, int64, error) {
	if len(args) != 2 {
		return 0, 0, fmt.Errorf("expected user_id and amount")
	}
	user, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, 0, err
	}
	amount, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return 0, 0, err
	}
	return user, amount, nil
}
