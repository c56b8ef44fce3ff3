package bot

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/punchamoorthee/deckops/internal/chat"
)

// Console is a single-user development transport: outbound messages print
// to a writer, inbound lines arrive through Run. Lines starting with "cb "
// simulate a keyboard press with the rest of the line as callback data.
type Console struct {
	userID int64

	mu  sync.Mutex
	out io.Writer
}

func NewConsole(userID int64, out io.Writer) *Console {
	return &Console{userID: userID, out: out}
}

func (c *Console) SendText(ctx context.Context, userID int64, text string) error {
	return c.printf("-> %d\n%s\n", userID, text)
}

func (c *Console) SendButtons(ctx context.Context, userID int64, text string, kb chat.Keyboard) error {
	if err := c.printf("-> %d\n%s\n", userID, text); err != nil {
		return err
	}
	return c.printKeyboard(kb)
}

func (c *Console) SendPhoto(ctx context.Context, userID int64, path, caption string, kb chat.Keyboard) error {
	if err := c.printf("-> %d [photo %s]\n%s\n", userID, path, caption); err != nil {
		return err
	}
	return c.printKeyboard(kb)
}

func (c *Console) EditPhoto(ctx context.Context, userID int64, path string, kb chat.Keyboard) error {
	if err := c.printf("-> %d [photo now %s]\n", userID, path); err != nil {
		return err
	}
	return c.printKeyboard(kb)
}

func (c *Console) SendDocument(ctx context.Context, userID int64, path, caption string) error {
	return c.printf("-> %d [document %s]\n%s\n", userID, path, caption)
}

// Run reads updates line by line until EOF or context cancellation and
// feeds them to the dispatcher.
func (c *Console) Run(ctx context.Context, d *Dispatcher, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		u := chat.Update{UserID: c.userID, FirstName: "console"}
		if data, ok := strings.CutPrefix(line, "cb "); ok {
			u.CallbackData = strings.TrimSpace(data)
		} else {
			u.Text = line
		}
		d.Handle(ctx, u)
	}
	return scanner.Err()
}

func (c *Console) printf(format string, args ...any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := fmt.Fprintf(c.out, format, args...)
	return err
}

func (c *Console) printKeyboard(kb chat.Keyboard) error {
	for _, row := range kb {
		parts := make([]string, 0, len(row))
		for _, b := range row {
			parts = append(parts, fmt.Sprintf("[%s -> cb %s]", b.Text, b.Data))
		}
		if err := c.printf("   %s\n", strings.Join(parts, " ")); err != nil {
			return err
		}
	}
	return nil
}
