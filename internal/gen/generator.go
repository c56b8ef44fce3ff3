// Package gen is the generative-text collaborator: it turns a topic, an
// author, and a slide count into slide content.
package gen

import (
	"context"
	"errors"

	"github.com/punchamoorthee/deckops/internal/models"
)

// ErrGeneration marks a collaborator fault. The purchase flow aborts with no
// debit when it sees this.
var ErrGeneration = errors.New("slide generation failed")

// Generator produces an ordered sequence of slides. Calls are idempotent
// from the caller's perspective; retrying is the caller's choice.
type Generator interface {
	Generate(ctx context.Context, topic, author string, count int) ([]models.Slide, error)
}
