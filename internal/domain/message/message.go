// Package message models the user to admin message thread shown on the
// storefront contact page.
package message

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

// ErrEmptyContent is returned when a message with no text is sent.
var ErrEmptyContent = errors.New("message content is empty")

// SenderType distinguishes who wrote a message in a thread.
type SenderType string

const (
	SenderUser  SenderType = "user"
	SenderAdmin SenderType = "admin"
)

// Message is one entry in a user's thread. UserID identifies the thread;
// SenderType records which side wrote it.
type Message struct {
	ID         string
	UserID     string
	Content    string
	SenderType SenderType
	CreatedAt  time.Time
}

// Repository defines persistence for message threads.
type Repository interface {
	Create(ctx context.Context, m *Message) (*Message, error)
	// ListForUser returns a user's thread, oldest first.
	ListForUser(ctx context.Context, userID string) ([]Message, error)
	// Latest returns the newest user-sent message across all threads, or nil
	// when none exist.
	Latest(ctx context.Context) (*Message, error)
}
