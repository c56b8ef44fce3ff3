// Package bot routes inbound chat updates to the purchase flow and the
// administrative command surface.
package bot

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/punchamoorthee/deckops/internal/chat"
	"github.com/punchamoorthee/deckops/internal/flow"
)

type Dispatcher struct {
	machine   *flow.Machine
	admin     *Admin
	transport chat.Transport
	logger    *zap.Logger
}

func NewDispatcher(machine *flow.Machine, admin *Admin, transport chat.Transport, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{machine: machine, admin: admin, transport: transport, logger: logger}
}

// Handle processes one inbound update. Errors are logged, never fatal: every
// failure becomes a log entry plus, where possible, a user-visible message.
func (d *Dispatcher) Handle(ctx context.Context, u chat.Update) {
	if u.CallbackData != "" {
		d.handleCallback(ctx, u)
		return
	}

	text := strings.TrimSpace(u.Text)
	if strings.HasPrefix(text, "/") {
		d.handleCommand(ctx, u, text)
		return
	}

	handled, err := d.machine.HandleText(ctx, u.UserID, text)
	if err != nil {
		d.logger.Error("text handling failed", zap.Int64("user_id", u.UserID), zap.Error(err))
		return
	}
	if !handled {
		d.send(ctx, u.UserID, "Send /start to begin.")
	}
}

func (d *Dispatcher) handleCallback(ctx context.Context, u chat.Update) {
	if acker, ok := d.transport.(chat.Acker); ok && u.CallbackID != "" {
		defer func() {
			if err := acker.AckCallback(ctx, u.CallbackID); err != nil {
				d.logger.Warn("callback ack failed", zap.Error(err))
			}
		}()
	}

	handled, err := d.machine.HandleCallback(ctx, u.UserID, u.CallbackData)
	if err != nil {
		d.logger.Error("callback handling failed",
			zap.Int64("user_id", u.UserID),
			zap.String("data", u.CallbackData),
			zap.Error(err))
		return
	}
	if !handled {
		d.logger.Warn("unknown callback", zap.String("data", u.CallbackData))
	}
}

func (d *Dispatcher) handleCommand(ctx context.Context, u chat.Update, text string) {
	fields := strings.Fields(text)
	cmd := fields[0]

	switch cmd {
	case "/start":
		if err := d.machine.Start(ctx, u.UserID, u.FirstName); err != nil {
			d.logger.Error("start failed", zap.Int64("user_id", u.UserID), zap.Error(err))
		}
	case "/add_balance", "/remove_balance", "/userinfo", "/stats", "/broadcast":
		if err := d.admin.Handle(ctx, u.UserID, cmd, text); err != nil {
			d.logger.Error("admin command failed",
				zap.Int64("user_id", u.UserID),
				zap.String("command", cmd),
				zap.Error(err))
		}
	default:
		d.send(ctx, u.UserID, "Unknown command. Send /start to begin.")
	}
}

func (d *Dispatcher) send(ctx context.Context, userID int64, text string) {
	if err := d.transport.SendText(ctx, userID, text); err != nil {
		d.logger.Error("send failed", zap.Int64("user_id", userID), zap.Error(err))
	}
}
