// Package flow runs the purchase conversation: a strict linear sequence of
// prompts (topic, author, slide count, template, confirmation) with one
// piece of user input validated per step, ending in a paid deck delivery.
package flow

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/punchamoorthee/deckops/internal/chat"
	"github.com/punchamoorthee/deckops/internal/deck"
	"github.com/punchamoorthee/deckops/internal/gen"
	"github.com/punchamoorthee/deckops/internal/ledger"
)

const (
	MinSlides = 6
	MaxSlides = 30

	// DefaultUnitPrice is the fixed currency cost per generated slide.
	DefaultUnitPrice = 500
)

// Callback data exchanged with the inline keyboard.
const (
	cbPrefixPrev   = "design_prev_"
	cbPrefixNext   = "design_next_"
	cbPrefixSelect = "design_select_"
	cbCancel       = "design_back"
	cbConfirm      = "confirm_yes"
)

type Machine struct {
	ledger    *ledger.Manager
	sessions  *Sessions
	generator gen.Generator
	renderer  deck.Renderer
	catalog   *deck.Catalog
	transport chat.Transport
	unitPrice int64
	logger    *zap.Logger
}

func NewMachine(
	lm *ledger.Manager,
	sessions *Sessions,
	generator gen.Generator,
	renderer deck.Renderer,
	catalog *deck.Catalog,
	transport chat.Transport,
	unitPrice int64,
	logger *zap.Logger,
) *Machine {
	if unitPrice <= 0 {
		unitPrice = DefaultUnitPrice
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Machine{
		ledger:    lm,
		sessions:  sessions,
		generator: generator,
		renderer:  renderer,
		catalog:   catalog,
		transport: transport,
		unitPrice: unitPrice,
		logger:    logger,
	}
}

// UnitPrice reports the fixed per-slide price in effect.
func (m *Machine) UnitPrice() int64 { return m.unitPrice }

// Start handles /start: greets the user with their balance and opens a
// fresh session waiting for the topic. Any in-flight session is replaced.
func (m *Machine) Start(ctx context.Context, userID int64, firstName string) error {
	acc, err := m.ledger.GetAccount(ctx, userID)
	if err != nil {
		m.logger.Error("start failed", zap.Int64("user_id", userID), zap.Error(err))
		return m.transport.SendText(ctx, userID, msgInternalError)
	}

	greeting := firstName
	if greeting == "" {
		greeting = "friend"
	}
	text := fmt.Sprintf(
		"Hello, %s!\n\nBalance: %d\nSlides produced: %d\n\nSend the presentation topic:",
		greeting, acc.Balance, acc.TotalSlides)

	if err := m.transport.SendText(ctx, userID, text); err != nil {
		return err
	}
	m.sessions.Put(&Session{UserID: userID, Step: StepTopic})
	return nil
}

// HandleText feeds a plain message into the user's session. It reports
// false when no session is waiting for text input.
func (m *Machine) HandleText(ctx context.Context, userID int64, text string) (bool, error) {
	sess := m.sessions.Get(userID)
	if sess == nil {
		return false, nil
	}

	text = strings.TrimSpace(text)
	switch sess.Step {
	case StepTopic:
		return true, m.acceptTopic(ctx, sess, text)
	case StepAuthor:
		return true, m.acceptAuthor(ctx, sess, text)
	case StepSlideCount:
		return true, m.acceptSlideCount(ctx, sess, text)
	case StepTemplate, StepConfirm:
		return true, m.transport.SendText(ctx, userID, "Use the buttons to pick a design.")
	default:
		return false, nil
	}
}

// HandleCallback feeds a keyboard press into the user's session. It reports
// false for callback data it does not recognize.
func (m *Machine) HandleCallback(ctx context.Context, userID int64, data string) (bool, error) {
	switch {
	case data == cbCancel:
		m.sessions.Delete(userID)
		return true, m.transport.SendText(ctx, userID, "Cancelled. Send /start to begin again.")

	case strings.HasPrefix(data, cbPrefixPrev):
		return true, m.browseTemplate(ctx, userID, data, cbPrefixPrev)

	case strings.HasPrefix(data, cbPrefixNext):
		return true, m.browseTemplate(ctx, userID, data, cbPrefixNext)

	case strings.HasPrefix(data, cbPrefixSelect):
		return true, m.selectTemplate(ctx, userID, data)

	case data == cbConfirm:
		return true, m.confirm(ctx, userID)
	}
	return false, nil
}

func (m *Machine) acceptTopic(ctx context.Context, sess *Session, topic string) error {
	if len([]rune(topic)) < 3 {
		return m.transport.SendText(ctx, sess.UserID, "Topic is too short. Use at least 3 characters.")
	}

	sess.Topic = topic
	sess.Step = StepAuthor
	m.sessions.Put(sess)
	return m.transport.SendText(ctx, sess.UserID, "Got it. Now send the author name:")
}

func (m *Machine) acceptAuthor(ctx context.Context, sess *Session, author string) error {
	if len([]rune(author)) < 2 {
		return m.transport.SendText(ctx, sess.UserID, "Author name is too short.")
	}

	sess.Author = author
	sess.Step = StepSlideCount
	m.sessions.Put(sess)
	return m.transport.SendText(ctx, sess.UserID,
		fmt.Sprintf("Send the slide count (%d-%d):", MinSlides, MaxSlides))
}

func (m *Machine) acceptSlideCount(ctx context.Context, sess *Session, text string) error {
	count, err := strconv.Atoi(text)
	if err != nil {
		return m.transport.SendText(ctx, sess.UserID, "Please send a number.")
	}
	if count < MinSlides || count > MaxSlides {
		return m.transport.SendText(ctx, sess.UserID,
			fmt.Sprintf("Slide count must be between %d and %d.", MinSlides, MaxSlides))
	}

	cost := int64(count) * m.unitPrice
	acc, err := m.ledger.GetAccount(ctx, sess.UserID)
	if err != nil {
		m.logger.Error("balance check failed", zap.Int64("user_id", sess.UserID), zap.Error(err))
		return m.transport.SendText(ctx, sess.UserID, msgInternalError)
	}
	if acc.Balance < cost {
		// Terminal: the session does not survive an unaffordable quote.
		m.sessions.Delete(sess.UserID)
		return m.transport.SendText(ctx, sess.UserID,
			fmt.Sprintf("Insufficient balance!\nNeeded: %d\nYou have: %d", cost, acc.Balance))
	}

	sess.SlideCount = count
	sess.Cost = cost
	sess.Step = StepTemplate
	m.sessions.Put(sess)

	preview, err := m.catalog.PreviewPath(1)
	if err != nil {
		m.logger.Error("template preview missing", zap.Error(err))
		return m.transport.SendText(ctx, sess.UserID,
			"Template files are missing. Please contact an administrator.")
	}
	return m.transport.SendPhoto(ctx, sess.UserID, preview, "Pick a design:", designKeyboard(1))
}

func (m *Machine) browseTemplate(ctx context.Context, userID int64, data, prefix string) error {
	cur, err := strconv.Atoi(strings.TrimPrefix(data, prefix))
	if err != nil || !m.catalog.Valid(cur) {
		return m.transport.SendText(ctx, userID, "Unknown design.")
	}

	next := m.catalog.Next(cur)
	if prefix == cbPrefixPrev {
		next = m.catalog.Prev(cur)
	}

	preview, err := m.catalog.PreviewPath(next)
	if err != nil {
		return m.transport.SendText(ctx, userID, "Template not found.")
	}
	return m.transport.EditPhoto(ctx, userID, preview, designKeyboard(next))
}

func (m *Machine) selectTemplate(ctx context.Context, userID int64, data string) error {
	sess := m.sessions.Get(userID)
	if sess == nil || sess.Step != StepTemplate {
		return m.transport.SendText(ctx, userID, "No purchase in progress. Send /start to begin.")
	}

	id, err := strconv.Atoi(strings.TrimPrefix(data, cbPrefixSelect))
	if err != nil || !m.catalog.Valid(id) {
		return m.transport.SendText(ctx, userID, "Unknown design.")
	}

	sess.TemplateID = id
	sess.Step = StepConfirm
	m.sessions.Put(sess)

	kb := chat.Keyboard{
		{{Text: "Yes", Data: cbConfirm}},
		{{Text: "Cancel", Data: cbCancel}},
	}
	return m.transport.SendButtons(ctx, userID,
		fmt.Sprintf("Selected design: %d\nPrice: %d\nConfirm the purchase?", id, sess.Cost), kb)
}

func (m *Machine) confirm(ctx context.Context, userID int64) error {
	sess := m.sessions.Get(userID)
	if sess == nil || sess.Step != StepConfirm {
		return m.transport.SendText(ctx, userID, "No purchase in progress. Send /start to begin.")
	}
	return m.executePurchase(ctx, sess)
}

func designKeyboard(current int) chat.Keyboard {
	return chat.Keyboard{
		{
			{Text: "<", Data: fmt.Sprintf("%s%d", cbPrefixPrev, current)},
			{Text: fmt.Sprintf("Design %d", current), Data: fmt.Sprintf("%s%d", cbPrefixSelect, current)},
			{Text: ">", Data: fmt.Sprintf("%s%d", cbPrefixNext, current)},
		},
		{{Text: "Cancel", Data: cbCancel}},
	}
}

const msgInternalError = "Something went wrong. Please try again or contact an administrator."

// errStage names the pipeline stage of a purchase failure for metrics.
func errStage(err error) string {
	switch {
	case errors.Is(err, gen.ErrGeneration):
		return "generate"
	case errors.Is(err, deck.ErrRender):
		return "render"
	case errors.Is(err, ledger.ErrInsufficientBalance):
		return "debit"
	default:
		return "other"
	}
}
