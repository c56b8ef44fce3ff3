package deck

import (
	"context"
	"errors"
	"strings"

	"github.com/punchamoorthee/deckops/internal/models"
)

// ErrRender marks a collaborator fault during deck serialization. The
// purchase flow aborts with no debit when it sees this.
var ErrRender = errors.New("deck render failed")

// Renderer produces a deck file on local storage. The caller owns deletion
// of the returned path once the file is delivered.
type Renderer interface {
	Render(ctx context.Context, topic, author string, slides []models.Slide, templateID int) (string, error)
}

const maxFilenameLen = 50

// sanitizeFilename strips characters that are invalid in file names,
// replaces spaces with underscores, and truncates to a sane length.
func sanitizeFilename(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch r {
		case '<', '>', ':', '"', '/', '\\', '|', '?', '*':
			// dropped
		case ' ':
			b.WriteRune('_')
		default:
			b.WriteRune(r)
		}
	}
	out := b.String()
	if runes := []rune(out); len(runes) > maxFilenameLen {
		out = string(runes[:maxFilenameLen])
	}
	if out == "" {
		out = "presentation"
	}
	return out
}
