// Package messaging defines the transport abstraction used by the dialog
// engine. A Service delivers outgoing messages and surfaces incoming chat
// events on a channel, independent of the concrete bot transport.
package messaging

import (
	"context"
	"errors"

	"github.com/daftarche/bankbook/internal/models"
)

// ErrUserNotFound is returned by LookupUser when the chat id does not
// resolve to a reachable user.
var ErrUserNotFound = errors.New("messaging: user not found")

// Service abstracts a chat transport.
type Service interface {
	// SendMessage sends a plain text message to the given chat.
	SendMessage(ctx context.Context, to int64, body string) error
	// SendKeyboard sends a text message together with a reply keyboard.
	SendKeyboard(ctx context.Context, to int64, body string, kb models.Keyboard) error
	// SendPhoto sends a previously uploaded photo by its file id.
	SendPhoto(ctx context.Context, to int64, fileID, caption string) error
	// SendDocument sends a previously uploaded document by its file id.
	SendDocument(ctx context.Context, to int64, fileID string) error
	// LookupUser resolves a chat id to basic profile information.
	LookupUser(ctx context.Context, id int64) (models.ChatUser, error)
	// Events returns the channel of incoming chat events.
	Events() <-chan models.Event
	// Start begins receiving updates from the transport.
	Start(ctx context.Context) error
	// Stop shuts the transport down and closes the event channel.
	Stop()
}
