// Package chat defines the narrow interface of the chat transport
// collaborator. Real transports (Telegram and friends) live outside this
// repository; a console transport for local runs is in internal/bot.
package chat

import "context"

// Button is one inline keyboard button; Data is what comes back as a
// callback when the button is pressed.
type Button struct {
	Text string
	Data string
}

// Keyboard is rows of buttons attached to an outbound message.
type Keyboard [][]Button

// Transport delivers outbound messages to a user, keyed by user identity.
type Transport interface {
	SendText(ctx context.Context, userID int64, text string) error
	SendButtons(ctx context.Context, userID int64, text string, kb Keyboard) error
	SendPhoto(ctx context.Context, userID int64, path, caption string, kb Keyboard) error
	// EditPhoto swaps the photo and keyboard of the most recent photo
	// message, used for cyclic template browsing.
	EditPhoto(ctx context.Context, userID int64, path string, kb Keyboard) error
	SendDocument(ctx context.Context, userID int64, path, caption string) error
}

// Update is one inbound event from the transport.
type Update struct {
	UserID    int64
	FirstName string

	// Text is set for plain messages and commands.
	Text string

	// CallbackData is set for keyboard presses; CallbackID acknowledges the
	// interaction back to the transport.
	CallbackData string
	CallbackID   string
}

// Acker acknowledges interactive selections. Optional: transports without
// the concept simply do not implement it.
type Acker interface {
	AckCallback(ctx context.Context, callbackID string) error
}
