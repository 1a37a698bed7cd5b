package notify

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"
)

// BreakerConfig tunes [WithBreaker].
type BreakerConfig struct {
	Name string
	// ConsecutiveFailures trips the breaker.
	ConsecutiveFailures uint32
	// OpenTimeout is how long the breaker stays open before probing.
	OpenTimeout time.Duration
	// HalfOpenRequests is how many probes are allowed while half-open.
	HalfOpenRequests uint32
	OnStateChange    func(name string, from, to gobreaker.State)
}

// DefaultBreakerConfig returns conservative settings for a chat transport.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Name:                "notifier",
		ConsecutiveFailures: 5,
		OpenTimeout:         30 * time.Second,
		HalfOpenRequests:    1,
	}
}

// Breaker short-circuits sends while the wrapped notifier keeps failing.
type Breaker struct {
	next Notifier
	cb   *gobreaker.CircuitBreaker
}

// WithBreaker wraps next in a circuit breaker. While open, Send fails fast
// with gobreaker.ErrOpenState.
func WithBreaker(next Notifier, cfg BreakerConfig) *Breaker {
	if cfg.ConsecutiveFailures == 0 {
		cfg.ConsecutiveFailures = DefaultBreakerConfig().ConsecutiveFailures
	}
	threshold := cfg.ConsecutiveFailures
	return &Breaker{
		next: next,
		cb: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        cfg.Name,
			MaxRequests: cfg.HalfOpenRequests,
			Timeout:     cfg.OpenTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= threshold
			},
			// Context cancellation is the caller giving up, not the transport failing.
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, context.Canceled)
			},
			OnStateChange: cfg.OnStateChange,
		}),
	}
}

func (b *Breaker) Send(ctx context.Context, userID int64, message string) error {
	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, b.next.Send(ctx, userID, message)
	})
	return err
}

// State reports the breaker state.
func (b *Breaker) State() gobreaker.State {
	return b.cb.State()
}
