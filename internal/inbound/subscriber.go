package inbound

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/redis/go-redis/v9"
)

// Subscriber feeds a Redis pub/sub channel into a [Handler].
type Subscriber struct {
	client  redis.UniversalClient
	channel string
	handler *Handler
	logger  *slog.Logger

	handled atomic.Uint64
	failed  atomic.Uint64
}

// NewSubscriber creates a [Subscriber]. An empty channel selects [DefaultChannel].
func NewSubscriber(client redis.UniversalClient, channel string, handler *Handler, logger *slog.Logger) *Subscriber {
	if channel = strings.TrimSpace(channel); channel == "" {
		channel = DefaultChannel
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Subscriber{client: client, channel: channel, handler: handler, logger: logger}
}

// Run subscribes and applies events until ctx is done. It returns an error
// only when the initial subscription fails. ready, if non-nil, is closed once
// the subscription is confirmed.
func (s *Subscriber) Run(ctx context.Context, ready chan<- struct{}) error {
	pubsub := s.client.Subscribe(ctx, s.channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", s.channel, err)
	}
	if ready != nil {
		close(ready)
	}
	s.logger.InfoContext(ctx, "inbound subscriber listening", "channel", s.channel)

	messages := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			if err := s.handler.Handle(ctx, []byte(msg.Payload)); err != nil {
				s.failed.Add(1)
				s.logger.WarnContext(ctx, "inbound event rejected", "channel", msg.Channel, "error", err)
				continue
			}
			s.handled.Add(1)
		}
	}
}

// Handled returns how many events were applied.
func (s *Subscriber) Handled() uint64 { return s.handled.Load() }

// Failed returns how many events were rejected.
func (s *Subscriber) Failed() uint64 { return s.failed.Load() }
