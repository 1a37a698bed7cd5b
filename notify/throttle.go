package notify

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

type throttled struct {
	next    Notifier
	limiter *rate.Limiter
}

// Throttle limits outbound sends to limiter's rate. A send waits for a token
// until ctx is done, in which case the context error is returned and next is
// never called.
func Throttle(next Notifier, limiter *rate.Limiter) Notifier {
	if limiter == nil {
		return next
	}
	return &throttled{next: next, limiter: limiter}
}

func (t *throttled) Send(ctx context.Context, userID int64, message string) error {
	if err := t.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("notification throttled: %w", err)
	}
	return t.next.Send(ctx, userID, message)
}
