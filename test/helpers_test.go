//go:build integration
// +build integration

package test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	goSession "github.com/MrEthical07/goSession"
	"github.com/MrEthical07/goSession/notify"
	"github.com/alicebob/miniredis/v2"
	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
)

var integrationEpoch = time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newIntegrationEngine wires an engine to a miniredis publisher and returns a
// subscription to the notification channel that is already confirmed.
func newIntegrationEngine(t *testing.T) (*goSession.Engine, *clockwork.FakeClock, *redis.Client, *redis.PubSub) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	notes := rdb.Subscribe(context.Background(), notify.DefaultChannel)
	if _, err := notes.Receive(context.Background()); err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	clock := clockwork.NewFakeClockAt(integrationEpoch)
	engine, err := goSession.New().
		WithClock(clock).
		WithLogger(quietLogger()).
		WithNotifier(notify.NewRedisPublisher(rdb, notify.WithClock(clock))).
		Build()
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	t.Cleanup(func() {
		engine.Close()
		_ = notes.Close()
		_ = rdb.Close()
		mr.Close()
	})
	return engine, clock, rdb, notes
}

func nextPayload(t *testing.T, notes *redis.PubSub) notify.Payload {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	msg, err := notes.ReceiveMessage(ctx)
	if err != nil {
		t.Fatalf("no notification received: %v", err)
	}
	var p notify.Payload
	if err := json.Unmarshal([]byte(msg.Payload), &p); err != nil {
		t.Fatalf("decode notification: %v", err)
	}
	return p
}

func parseClass(name string) (goSession.SessionClass, error) {
	return goSession.ParseSessionClass(name)
}
