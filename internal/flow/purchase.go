package flow

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/punchamoorthee/deckops/internal/ledger"
)

// executePurchase runs the confirmed purchase pipeline, strictly in order:
// generate content, render the deck file, debit the quoted cost, deliver
// the document. The local artifact is removed on every exit path. If
// generation or rendering fails, no debit occurs. The debit happens only
// once the deliverable exists; a crash between render and debit is an
// accepted at-most-once-debit gap.
func (m *Machine) executePurchase(ctx context.Context, sess *Session) error {
	defer m.sessions.Delete(sess.UserID)
	timer := prometheus.NewTimer(purchaseDuration)
	defer timer.ObserveDuration()

	log := m.logger.With(
		zap.Int64("user_id", sess.UserID),
		zap.Int("slides", sess.SlideCount),
		zap.Int64("cost", sess.Cost))

	if err := m.transport.SendText(ctx, sess.UserID, "Generating slide content..."); err != nil {
		return err
	}

	slides, err := m.generator.Generate(ctx, sess.Topic, sess.Author, sess.SlideCount)
	if err != nil {
		return m.failPurchase(ctx, sess, log, err)
	}

	if err := m.transport.SendText(ctx, sess.UserID, "Building the presentation file..."); err != nil {
		return err
	}

	path, err := m.renderer.Render(ctx, sess.Topic, sess.Author, slides, sess.TemplateID)
	if err != nil {
		return m.failPurchase(ctx, sess, log, err)
	}
	defer os.Remove(path)

	if _, err := m.ledger.DebitForPurchase(ctx, sess.UserID, sess.Cost, int64(sess.SlideCount)); err != nil {
		if errors.Is(err, ledger.ErrInsufficientBalance) {
			purchaseFailures.WithLabelValues("debit").Inc()
			log.Warn("purchase aborted, balance dropped below quote")
			return m.transport.SendText(ctx, sess.UserID,
				"Your balance no longer covers the quoted price. Nothing was charged.")
		}
		return m.failPurchase(ctx, sess, log, err)
	}

	caption := fmt.Sprintf("Done! %d was charged from your balance.", sess.Cost)
	if err := m.transport.SendDocument(ctx, sess.UserID, path, caption); err != nil {
		// The debit is already recorded; losing delivery here is the one
		// drift an operator must reconcile by hand.
		purchaseFailures.WithLabelValues("deliver").Inc()
		log.Error("deck charged but not delivered", zap.Error(err))
		return err
	}

	purchasesTotal.Inc()
	slidesSold.Add(float64(sess.SlideCount))
	log.Info("purchase completed", zap.String("deck", path))
	return nil
}

func (m *Machine) failPurchase(ctx context.Context, sess *Session, log *zap.Logger, err error) error {
	purchaseFailures.WithLabelValues(errStage(err)).Inc()
	log.Error("purchase failed, nothing charged", zap.Error(err))
	return m.transport.SendText(ctx, sess.UserID, msgInternalError)
}
