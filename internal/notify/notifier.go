package notify

import (
	"context"
	"errors"
)

// ErrInvalidRecipient marks the device handle as permanently dead; the
// caller should drop it so future passes skip the user. Any other send
// error is treated as transient.
var ErrInvalidRecipient = errors.New("invalid recipient")

// Payload is one push reminder. CollectionDate is ISO-8601 (YYYY-MM-DD).
type Payload struct {
	DeviceToken    string
	Title          string
	Body           string
	Category       string
	BodyColor      string
	HeadColor      string
	CollectionDate string
}

type Notifier interface {
	Send(ctx context.Context, payload Payload) error
}
