package goSession

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/MrEthical07/goSession/identity"
	"github.com/MrEthical07/goSession/notify"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testEpoch = time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEngine(t *testing.T) (*Engine, *clockwork.FakeClock, *notify.Memory) {
	t.Helper()
	return newTestEngineWith(t, New())
}

func newTestEngineWith(t *testing.T, b *Builder) (*Engine, *clockwork.FakeClock, *notify.Memory) {
	t.Helper()

	clock := clockwork.NewFakeClockAt(testEpoch)
	mem := &notify.Memory{}
	e, err := b.
		WithClock(clock).
		WithNotifier(mem).
		WithLogger(quietLogger()).
		WithLatencyHistograms(true).
		Build()
	require.NoError(t, err)
	t.Cleanup(e.Close)
	return e, clock, mem
}

func TestCreateValidateRevoke(t *testing.T) {
	e, _, _ := newTestEngine(t)
	ctx := context.Background()

	token, err := e.CreateSession(ctx, 42, "alice", ManualLogin)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	id, ok := e.ValidateSession(ctx, 42)
	require.True(t, ok)
	assert.Equal(t, "alice", id)

	info, ok := e.GetSessionInfo(42)
	require.True(t, ok)
	assert.Equal(t, ManualLogin, info.Class)
	assert.Equal(t, testEpoch.Add(48*time.Hour), info.InactiveDeadline)
	assert.Equal(t, testEpoch.Add(96*time.Hour), info.HardDeadline)

	assert.True(t, e.RevokeSession(ctx, 42))
	assert.False(t, e.RevokeSession(ctx, 42))
	assert.False(t, e.IsAuthenticated(ctx, 42))
}

func TestCreateReplacesPriorSession(t *testing.T) {
	e, _, _ := newTestEngine(t)
	ctx := context.Background()

	first, err := e.CreateSession(ctx, 1, "v1", SmartAuth)
	require.NoError(t, err)
	second, err := e.CreateSession(ctx, 1, "v2", AdminSession)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	id, ok := e.UserInfo(ctx, 1)
	require.True(t, ok)
	assert.Equal(t, "v2", id)
	assert.Len(t, e.ActiveSessions(), 1)
}

func TestCreateUnknownClassIsConfigurationError(t *testing.T) {
	e, _, _ := newTestEngine(t)

	_, err := e.CreateSession(context.Background(), 1, nil, SessionClass(9))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConfiguration))
	assert.Empty(t, e.ActiveSessions())
}

func TestValidateEvictsExpiredSession(t *testing.T) {
	e, clock, _ := newTestEngine(t)
	ctx := context.Background()

	_, err := e.CreateSession(ctx, 5, "bob", AdminSession)
	require.NoError(t, err)

	clock.Advance(8 * time.Hour)
	assert.True(t, e.IsAuthenticated(ctx, 5))

	clock.Advance(time.Nanosecond)
	assert.False(t, e.IsAuthenticated(ctx, 5))
	_, ok := e.GetSessionInfo(5)
	assert.False(t, ok)
	assert.Equal(t, uint64(1), e.MetricsSnapshot().Counters[MetricSessionExpiredInactive])
}

func TestValidateDoesNotExtend(t *testing.T) {
	e, clock, _ := newTestEngine(t)
	ctx := context.Background()

	_, err := e.CreateSession(ctx, 5, "bob", AdminSession)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		clock.Advance(30 * time.Minute)
		_, ok := e.ValidateSession(ctx, 5)
		require.True(t, ok)
	}
	info, ok := e.GetSessionInfo(5)
	require.True(t, ok)
	assert.Equal(t, testEpoch.Add(8*time.Hour), info.InactiveDeadline)
	assert.Zero(t, info.ActivityCount)
}

func TestExtendSession(t *testing.T) {
	e, _, _ := newTestEngine(t)
	ctx := context.Background()

	assert.False(t, e.ExtendSession(ctx, 3, 2), "no session")

	_, err := e.CreateSession(ctx, 3, nil, AdminSession)
	require.NoError(t, err)
	assert.False(t, e.ExtendSession(ctx, 3, 0))
	assert.True(t, e.ExtendSession(ctx, 3, 3))

	info, _ := e.GetSessionInfo(3)
	assert.Equal(t, testEpoch.Add(11*time.Hour), info.InactiveDeadline)

	assert.True(t, e.ExtendSession(ctx, 3, 100))
	info, _ = e.GetSessionInfo(3)
	assert.Equal(t, info.HardDeadline, info.InactiveDeadline)
}

func TestExtendSessionHugeHoursClampsToHardDeadline(t *testing.T) {
	e, _, _ := newTestEngine(t)
	ctx := context.Background()

	_, err := e.CreateSession(ctx, 3, nil, AdminSession)
	require.NoError(t, err)

	// 5124097h overflows time.Duration if multiplied naively.
	assert.True(t, e.ExtendSession(ctx, 3, 5124097))
	info, ok := e.GetSessionInfo(3)
	require.True(t, ok)
	assert.Equal(t, testEpoch.Add(16*time.Hour), info.InactiveDeadline)
	assert.Equal(t, info.HardDeadline, info.InactiveDeadline)
	assert.True(t, e.IsAuthenticated(ctx, 3))

	assert.True(t, e.ExtendWithNotice(ctx, 3, math.MaxInt, "long leave"))
	info, _ = e.GetSessionInfo(3)
	assert.Equal(t, testEpoch.Add(16*time.Hour), info.InactiveDeadline)
}

func TestRecordActivityOutcomes(t *testing.T) {
	e, clock, _ := newTestEngine(t)
	ctx := context.Background()

	assert.False(t, e.RecordActivity(ctx, 9, "command", "/menu"), "no session yet")

	_, err := e.CreateSession(ctx, 9, nil, SmartAuth)
	require.NoError(t, err)
	clock.Advance(time.Minute)

	assert.False(t, e.RecordActivity(ctx, 9, "command", "/start"), "passive command")
	assert.False(t, e.RecordActivity(ctx, 9, "command", "/unknown"))
	assert.False(t, e.RecordActivity(ctx, 9, "typing", ""))

	for i := 0; i < 3; i++ {
		assert.True(t, e.RecordActivity(ctx, 9, "callback", "menu_main"))
	}
	assert.False(t, e.RecordActivity(ctx, 9, "callback", "menu_main"), "fourth repeat inside window")

	clock.Advance(31 * time.Second)
	assert.True(t, e.RecordActivity(ctx, 9, "callback", "menu_main"))

	snap := e.MetricsSnapshot()
	assert.Equal(t, uint64(4), snap.Counters[MetricActivityAccepted])
	assert.Equal(t, uint64(3), snap.Counters[MetricActivityIgnored])
	assert.Equal(t, uint64(1), snap.Counters[MetricActivitySuppressed])
	assert.Equal(t, uint64(1), snap.Counters[MetricActivityNoSession])

	summary := e.ActivitySummary(9)
	assert.True(t, summary.Authenticated)
	assert.Equal(t, SmartAuth, summary.Class)
	assert.Equal(t, int64(4), summary.ActivityCount)
	assert.Equal(t, "callback:menu_main", summary.LastActivityKey)
	assert.Equal(t, 1, summary.RecentInteractions)
}

func TestActivitySummaryWithoutSession(t *testing.T) {
	e, _, _ := newTestEngine(t)

	summary := e.ActivitySummary(77)
	assert.False(t, summary.Authenticated)
	assert.Equal(t, int64(77), summary.UserID)
	assert.Zero(t, summary.ActivityCount)
}

func TestActivityExtendsDeadline(t *testing.T) {
	e, clock, _ := newTestEngine(t)
	ctx := context.Background()

	_, err := e.CreateSession(ctx, 1, nil, SmartAuth)
	require.NoError(t, err)

	clock.Advance(23 * time.Hour)
	require.True(t, e.RecordActivity(ctx, 1, "ticket_action", "create"))

	info, ok := e.GetSessionInfo(1)
	require.True(t, ok)
	assert.Equal(t, testEpoch.Add(35*time.Hour), info.InactiveDeadline)
	assert.Equal(t, uint64(1), e.MetricsSnapshot().Counters[MetricDeadlineExtended])
}

func TestLoginWithStaticProvider(t *testing.T) {
	hash, err := identity.HashPassword("hunter2-hunter2", identity.HashParams{
		Memory: 8192, Time: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32,
	})
	require.NoError(t, err)

	provider, err := identity.NewStaticProvider([]identity.Account{{
		Identity:     identity.Identity{Name: "Alice", Email: "alice@example.com"},
		PasswordHash: hash,
	}})
	require.NoError(t, err)

	e, _, _ := newTestEngineWith(t, New().WithIdentityProvider(provider))
	ctx := context.Background()

	_, err = e.Login(ctx, 10, Credentials{Email: "alice@example.com", Password: "wrong"}, ManualLogin)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.False(t, e.IsAuthenticated(ctx, 10))

	token, err := e.Login(ctx, 10, Credentials{Email: "Alice@Example.com", Password: "hunter2-hunter2"}, ManualLogin)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	id, ok := e.UserInfo(ctx, 10)
	require.True(t, ok)
	got, ok := id.(identity.Identity)
	require.True(t, ok)
	assert.Equal(t, "Alice", got.Name)
	assert.Equal(t, int64(10), got.UserID)

	info, _ := e.GetSessionInfo(10)
	assert.Equal(t, int64(1), info.ActivityCount)
	assert.Equal(t, "login", info.LastActivityKey)

	snap := e.MetricsSnapshot()
	assert.Equal(t, uint64(1), snap.Counters[MetricLoginSuccess])
	assert.Equal(t, uint64(1), snap.Counters[MetricLoginFailure])
}

func TestLoginProviderFailures(t *testing.T) {
	ctx := context.Background()

	e, _, _ := newTestEngine(t)
	_, err := e.Login(ctx, 1, Credentials{}, SmartAuth)
	assert.ErrorIs(t, err, ErrIdentityUnavailable, "no provider configured")

	down := identity.ProviderFunc(func(context.Context, identity.Credentials) (identity.Identity, error) {
		return identity.Identity{}, identity.ErrUnavailable
	})
	e, _, _ = newTestEngineWith(t, New().WithIdentityProvider(down))
	_, err = e.Login(ctx, 1, Credentials{Email: "a@b.c"}, SmartAuth)
	assert.ErrorIs(t, err, ErrIdentityUnavailable)

	ok := identity.ProviderFunc(func(context.Context, identity.Credentials) (identity.Identity, error) {
		return identity.Identity{Name: "Root", Admin: true}, nil
	})
	e, _, _ = newTestEngineWith(t, New().WithIdentityProvider(ok))
	_, err = e.Login(ctx, 1, Credentials{}, SessionClass(7))
	assert.ErrorIs(t, err, ErrConfiguration)

	_, err = e.Login(ctx, 1, Credentials{}, SmartAuth)
	require.NoError(t, err)
	info, _ := e.GetSessionInfo(1)
	assert.Equal(t, "smart_login", info.LastActivityKey)
}

func TestAuditEventsEmitted(t *testing.T) {
	sink := NewChannelSink(64)
	cfg := DefaultConfig()
	cfg.Audit.Enabled = true

	e, clock, _ := newTestEngineWith(t, New().WithConfig(cfg).WithAuditSink(sink))
	ctx := context.Background()

	_, err := e.CreateSession(ctx, 1, nil, AdminSession)
	require.NoError(t, err)
	_, err = e.CreateSession(ctx, 1, nil, AdminSession)
	require.NoError(t, err)
	require.True(t, e.RevokeSession(ctx, 1))

	_, err = e.CreateSession(ctx, 2, nil, AdminSession)
	require.NoError(t, err)
	clock.Advance(9 * time.Hour)
	require.Equal(t, 1, e.RunSweep(ctx))

	e.Close()

	var types []string
	var expired AuditEvent
	for len(sink.Events()) > 0 {
		ev := <-sink.Events()
		types = append(types, ev.EventType)
		if ev.EventType == "session_expired" {
			expired = ev
		}
	}
	assert.Equal(t, []string{
		"session_created",
		"session_replaced",
		"session_revoked",
		"session_created",
		"session_expired",
		"sweep_completed",
	}, types)
	assert.Equal(t, int64(2), expired.UserID)
	assert.Equal(t, "admin_session", expired.Class)
	assert.Equal(t, "inactive", expired.Reason)
	assert.NotEmpty(t, expired.RunID)
}

func TestBuilderSingleUse(t *testing.T) {
	b := New().WithLogger(quietLogger())
	e, err := b.Build()
	require.NoError(t, err)
	defer e.Close()

	_, err = b.Build()
	assert.Error(t, err)
}

func TestBuilderRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Scheduler.NotifyTimeout = time.Hour

	_, err := New().WithConfig(cfg).Build()
	assert.ErrorIs(t, err, ErrConfiguration)
}
