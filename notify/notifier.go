package notify

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// ErrUndeliverable is returned by adapters that cannot reach the recipient.
var ErrUndeliverable = errors.New("notification undeliverable")

// Notifier delivers a text message to a user.
type Notifier interface {
	Send(ctx context.Context, userID int64, message string) error
}

// Func adapts a plain function to [Notifier].
type Func func(ctx context.Context, userID int64, message string) error

// Send calls f.
func (f Func) Send(ctx context.Context, userID int64, message string) error {
	return f(ctx, userID, message)
}

// Discard accepts and drops every message.
type Discard struct{}

func (Discard) Send(context.Context, int64, string) error { return nil }

// LogNotifier writes messages to a structured logger instead of delivering them.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n LogNotifier) Send(ctx context.Context, userID int64, message string) error {
	logger := n.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "notification", "user_id", userID, "message", message)
	return nil
}

// Message is one delivery captured by [Memory].
type Message struct {
	UserID int64
	Text   string
}

// Memory records messages in order. It is safe for concurrent use and is
// mostly useful in tests and local tooling.
type Memory struct {
	mu       sync.Mutex
	messages []Message
	// Err, when set, is returned by Send after the message is recorded.
	Err error
}

func (m *Memory) Send(ctx context.Context, userID int64, message string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, Message{UserID: userID, Text: message})
	return m.Err
}

// Messages returns a copy of everything sent so far.
func (m *Memory) Messages() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Message(nil), m.messages...)
}

// For returns the messages sent to userID.
func (m *Memory) For(userID int64) []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Message
	for _, msg := range m.messages {
		if msg.UserID == userID {
			out = append(out, msg)
		}
	}
	return out
}
