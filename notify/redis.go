package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
)

// DefaultChannel is the pub/sub channel used when none is configured.
const DefaultChannel = "gosession:notifications"

// Payload is the JSON document published for every notification. The chat
// transport subscribes to the channel and delivers Text to UserID.
type Payload struct {
	ID     string    `json:"id"`
	UserID int64     `json:"user_id"`
	Text   string    `json:"text"`
	SentAt time.Time `json:"sent_at"`
}

// RedisPublisher publishes notifications to a Redis pub/sub channel.
type RedisPublisher struct {
	client  redis.UniversalClient
	channel string
	clock   clockwork.Clock
	perUser bool
}

// RedisOption customizes a [RedisPublisher].
type RedisOption func(*RedisPublisher)

// WithChannel overrides [DefaultChannel].
func WithChannel(channel string) RedisOption {
	return func(p *RedisPublisher) {
		if channel = strings.TrimSpace(channel); channel != "" {
			p.channel = channel
		}
	}
}

// WithClock sets the clock used for Payload.SentAt.
func WithClock(clock clockwork.Clock) RedisOption {
	return func(p *RedisPublisher) {
		if clock != nil {
			p.clock = clock
		}
	}
}

// WithPerUserChannel routes every message to a per-user channel instead of the shared one.
func WithPerUserChannel() RedisOption {
	return func(p *RedisPublisher) { p.perUser = true }
}

// NewRedisPublisher creates a [RedisPublisher] on client.
func NewRedisPublisher(client redis.UniversalClient, opts ...RedisOption) *RedisPublisher {
	p := &RedisPublisher{
		client:  client,
		channel: DefaultChannel,
		clock:   clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Channel returns the channel userID's messages are published on.
func (p *RedisPublisher) Channel(userID int64) string {
	if p.perUser {
		return p.channel + ":" + strconv.FormatInt(userID, 10)
	}
	return p.channel
}

// Send publishes a [Payload]. Having no subscriber is reported as [ErrUndeliverable].
func (p *RedisPublisher) Send(ctx context.Context, userID int64, message string) error {
	if p == nil || p.client == nil {
		return errors.New("redis publisher is not configured")
	}
	data, err := json.Marshal(Payload{
		ID:     uuid.NewString(),
		UserID: userID,
		Text:   message,
		SentAt: p.clock.Now().UTC(),
	})
	if err != nil {
		return err
	}

	receivers, err := p.client.Publish(ctx, p.Channel(userID), data).Result()
	if err != nil {
		return fmt.Errorf("publish notification: %w", err)
	}
	if receivers == 0 {
		return ErrUndeliverable
	}
	return nil
}
