package goSession

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/MrEthical07/goSession/notify"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngineNotifier(t *testing.T, cfg Config, n notify.Notifier) (*Engine, *clockwork.FakeClock) {
	t.Helper()

	clock := clockwork.NewFakeClockAt(testEpoch)
	e, err := New().
		WithConfig(cfg).
		WithClock(clock).
		WithNotifier(n).
		WithLogger(quietLogger()).
		Build()
	require.NoError(t, err)
	t.Cleanup(e.Close)
	return e, clock
}

// stuckNotifier never returns until release is closed and ignores its context.
func stuckNotifier(release <-chan struct{}) notify.Func {
	return func(context.Context, int64, string) error {
		<-release
		return nil
	}
}

func TestWarningScanNotifiesOnce(t *testing.T) {
	e, clock, mem := newTestEngine(t)
	ctx := context.Background()

	_, err := e.CreateSession(ctx, 1, nil, AdminSession)
	require.NoError(t, err)

	clock.Advance(6*time.Hour - time.Second)
	assert.Equal(t, 0, e.RunWarningScan(ctx))

	clock.Advance(time.Second)
	assert.Equal(t, 1, e.RunWarningScan(ctx))
	assert.Equal(t, 0, e.RunWarningScan(ctx))

	msgs := mem.For(1)
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0].Text, "Session Timeout Warning")
	assert.Contains(t, msgs[0].Text, "👨‍💼 Admin Session")
	assert.Contains(t, msgs[0].Text, "Time Remaining: 2 hours")

	info, ok := e.GetSessionInfo(1)
	require.True(t, ok)
	assert.True(t, info.Warned)

	stats := e.Stats()
	assert.Equal(t, uint64(1), stats.WarningsSent)
	assert.Equal(t, 1, stats.WarnedSessions)
	assert.Equal(t, uint64(1), e.MetricsSnapshot().Counters[MetricWarningSent])
}

func TestWarningRearmsAfterReprieve(t *testing.T) {
	e, clock, mem := newTestEngine(t)
	ctx := context.Background()

	_, err := e.CreateSession(ctx, 1, nil, AdminSession)
	require.NoError(t, err)

	clock.Advance(6 * time.Hour)
	require.Equal(t, 1, e.RunWarningScan(ctx))

	// Deadline moves from 8h to 10h: a full reprieve.
	require.True(t, e.RecordActivity(ctx, 1, "ticket_action", "reply"))
	info, _ := e.GetSessionInfo(1)
	assert.False(t, info.Warned)
	assert.Equal(t, testEpoch.Add(10*time.Hour), info.InactiveDeadline)
	assert.Equal(t, uint64(1), e.MetricsSnapshot().Counters[MetricWarningReprieved])

	clock.Advance(2*time.Hour - time.Second)
	assert.Equal(t, 0, e.RunWarningScan(ctx))
	clock.Advance(time.Second)
	assert.Equal(t, 1, e.RunWarningScan(ctx))
	assert.Len(t, mem.For(1), 2)
}

func TestWarningFailureIsCountedNotRetried(t *testing.T) {
	e, clock, mem := newTestEngine(t)
	ctx := context.Background()
	mem.Err = errors.New("chat unreachable")

	_, err := e.CreateSession(ctx, 1, nil, AdminSession)
	require.NoError(t, err)
	_, err = e.CreateSession(ctx, 2, nil, AdminSession)
	require.NoError(t, err)

	clock.Advance(7 * time.Hour)
	assert.Equal(t, 0, e.RunWarningScan(ctx))
	assert.Equal(t, 0, e.RunWarningScan(ctx))

	stats := e.Stats()
	assert.Equal(t, uint64(2), stats.WarningsFailed)
	assert.Equal(t, uint64(0), stats.WarningsSent)
	assert.Equal(t, 2, stats.WarnedSessions)

	snap := e.MetricsSnapshot()
	assert.Equal(t, uint64(2), snap.Counters[MetricWarningFailed])
	assert.Equal(t, uint64(2), snap.Counters[MetricNotifierFailure])
}

func TestWarningScanAbandonsStuckSend(t *testing.T) {
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })

	cfg := DefaultConfig()
	cfg.Scheduler.NotifyTimeout = 50 * time.Millisecond
	e, clock := newTestEngineNotifier(t, cfg, stuckNotifier(release))
	ctx := context.Background()

	_, err := e.CreateSession(ctx, 1, nil, AdminSession)
	require.NoError(t, err)
	_, err = e.CreateSession(ctx, 2, nil, AdminSession)
	require.NoError(t, err)
	clock.Advance(6 * time.Hour)

	start := time.Now()
	assert.Equal(t, 0, e.RunWarningScan(ctx))
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, uint64(2), e.Stats().WarningsFailed)
	assert.Equal(t, uint64(2), e.MetricsSnapshot().Counters[MetricNotifierFailure])

	err = e.SendAdminReport(ctx, 99)
	assert.ErrorIs(t, err, ErrNotifierFailure)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestStopReturnsWhileSendIsStuck(t *testing.T) {
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })

	cfg := DefaultConfig()
	cfg.Scheduler.NotifyTimeout = time.Minute
	e, clock := newTestEngineNotifier(t, cfg, stuckNotifier(release))
	ctx := context.Background()

	_, err := e.CreateSession(ctx, 1, nil, AdminSession)
	require.NoError(t, err)
	clock.Advance(6 * time.Hour)

	require.True(t, e.Start(ctx))

	stopped := make(chan struct{})
	go func() {
		e.Stop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop blocked on an in-flight notification")
	}

	assert.False(t, e.Stats().Running)
	assert.Equal(t, uint64(1), e.Stats().WarningsFailed)
}

func TestWarningScanIsolatesFailedAndSlowSends(t *testing.T) {
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })

	mem := &notify.Memory{}
	n := notify.Func(func(ctx context.Context, userID int64, message string) error {
		switch userID {
		case 1:
			return errors.New("chat unreachable")
		case 2:
			<-release
			return nil
		}
		return mem.Send(ctx, userID, message)
	})

	cfg := DefaultConfig()
	cfg.Scheduler.NotifyTimeout = 50 * time.Millisecond
	e, clock := newTestEngineNotifier(t, cfg, n)
	ctx := context.Background()

	for userID := int64(1); userID <= 4; userID++ {
		_, err := e.CreateSession(ctx, userID, nil, AdminSession)
		require.NoError(t, err)
	}
	clock.Advance(6 * time.Hour)

	assert.Equal(t, 2, e.RunWarningScan(ctx))
	assert.Len(t, mem.For(3), 1)
	assert.Len(t, mem.For(4), 1)
	assert.Empty(t, mem.For(1))
	assert.Empty(t, mem.For(2))

	stats := e.Stats()
	assert.Equal(t, uint64(2), stats.WarningsSent)
	assert.Equal(t, uint64(2), stats.WarningsFailed)
	assert.Equal(t, 4, stats.WarnedSessions)
}

func TestSchedulerTickersDriveWarningAndSweep(t *testing.T) {
	e, clock, mem := newTestEngine(t)
	ctx := context.Background()

	require.True(t, e.Start(ctx))
	require.Eventually(t, func() bool {
		stats := e.Stats()
		return !stats.LastWarningScan.IsZero() && !stats.LastSweep.IsZero()
	}, 2*time.Second, 5*time.Millisecond)
	clock.BlockUntil(2)

	_, err := e.CreateSession(ctx, 1, nil, AdminSession)
	require.NoError(t, err)

	scannedAt := func(d time.Duration) func() bool {
		return func() bool { return e.Stats().LastWarningScan.Equal(testEpoch.Add(d)) }
	}

	clock.Advance(5*time.Hour + 30*time.Minute)
	require.Eventually(t, scannedAt(5*time.Hour+30*time.Minute), 2*time.Second, 5*time.Millisecond)
	assert.Empty(t, mem.For(1), "warning point not reached yet")

	// One warning interval later the session is due.
	clock.Advance(30 * time.Minute)
	assert.Eventually(t, func() bool { return len(mem.For(1)) == 1 }, 2*time.Second, 5*time.Millisecond)

	clock.Advance(30 * time.Minute)
	require.Eventually(t, scannedAt(6*time.Hour+30*time.Minute), 2*time.Second, 5*time.Millisecond)
	assert.Len(t, mem.For(1), 1, "warning is sent once")
	assert.Equal(t, uint64(0), e.Stats().SessionsCleaned)

	// The hourly sweep picks the session up once it is past 8h of inactivity.
	clock.Advance(2 * time.Hour)
	assert.Eventually(t, func() bool {
		stats := e.Stats()
		return stats.SessionsCleaned == 1 && stats.ActiveSessions == 0
	}, 2*time.Second, 5*time.Millisecond)

	e.Stop()
}

func TestSweepRemovesExpiredSessions(t *testing.T) {
	e, clock, _ := newTestEngine(t)
	ctx := context.Background()

	_, err := e.CreateSession(ctx, 1, nil, AdminSession)
	require.NoError(t, err)
	_, err = e.CreateSession(ctx, 2, nil, SmartAuth)
	require.NoError(t, err)
	require.True(t, e.RecordActivity(ctx, 2, "command", "/menu"))

	clock.Advance(8 * time.Hour)
	assert.Equal(t, 0, e.RunSweep(ctx))

	clock.Advance(time.Nanosecond)
	assert.Equal(t, 1, e.RunSweep(ctx))
	assert.Equal(t, 0, e.RunSweep(ctx))

	stats := e.Stats()
	assert.Equal(t, 1, stats.ActiveSessions)
	assert.Equal(t, map[SessionClass]int{SmartAuth: 1}, stats.SessionsByClass)
	assert.Equal(t, uint64(1), stats.SessionsCleaned)
	assert.Equal(t, 0, stats.TrackedUsers, "stale activity history pruned")
	assert.True(t, stats.LastSweep.Equal(testEpoch.Add(8*time.Hour+time.Nanosecond)))
	assert.Equal(t, uint64(3), e.MetricsSnapshot().Counters[MetricSweepRun])
}

func TestForceExpire(t *testing.T) {
	e, _, mem := newTestEngine(t)
	ctx := context.Background()

	assert.False(t, e.ForceExpire(ctx, 3, "policy"))
	assert.Empty(t, mem.Messages())

	_, err := e.CreateSession(ctx, 3, nil, ManualLogin)
	require.NoError(t, err)
	assert.True(t, e.ForceExpire(ctx, 3, "security review"))
	assert.False(t, e.IsAuthenticated(ctx, 3))

	msgs := mem.For(3)
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0].Text, "Reason: security review")
	assert.Equal(t, uint64(1), e.MetricsSnapshot().Counters[MetricForcedLogout])
}

func TestForceExpireRevokesWhenNotifierFails(t *testing.T) {
	e, _, mem := newTestEngine(t)
	ctx := context.Background()
	mem.Err = errors.New("blocked by user")

	_, err := e.CreateSession(ctx, 3, nil, ManualLogin)
	require.NoError(t, err)
	assert.True(t, e.ForceExpire(ctx, 3, ""))
	assert.False(t, e.IsAuthenticated(ctx, 3))
}

func TestForceExpireSparesSessionCreatedDuringNotice(t *testing.T) {
	var e *Engine
	relogin := notify.Func(func(ctx context.Context, userID int64, _ string) error {
		_, err := e.CreateSession(ctx, userID, "fresh", ManualLogin)
		return err
	})
	e, _ = newTestEngineNotifier(t, DefaultConfig(), relogin)
	ctx := context.Background()

	_, err := e.CreateSession(ctx, 3, "stale", ManualLogin)
	require.NoError(t, err)

	assert.False(t, e.ForceExpire(ctx, 3, "security review"))

	id, ok := e.ValidateSession(ctx, 3)
	require.True(t, ok)
	assert.Equal(t, "fresh", id)
	assert.Equal(t, uint64(0), e.MetricsSnapshot().Counters[MetricForcedLogout])
}

func TestExtendWithNotice(t *testing.T) {
	e, _, mem := newTestEngine(t)
	ctx := context.Background()

	assert.False(t, e.ExtendWithNotice(ctx, 4, 3, "support ticket"))
	assert.Empty(t, mem.Messages())

	_, err := e.CreateSession(ctx, 4, nil, AdminSession)
	require.NoError(t, err)
	assert.True(t, e.ExtendWithNotice(ctx, 4, 3, "support ticket"))

	info, _ := e.GetSessionInfo(4)
	assert.Equal(t, testEpoch.Add(11*time.Hour), info.InactiveDeadline)

	msgs := mem.For(4)
	require.Len(t, msgs, 1)
	assert.Equal(t, "⏰ Your session has been extended by 3 hours.\n\nReason: support ticket", msgs[0].Text)
}

func TestSendAdminReport(t *testing.T) {
	e, _, mem := newTestEngine(t)
	ctx := context.Background()

	_, err := e.CreateSession(ctx, 1, nil, AdminSession)
	require.NoError(t, err)
	_, err = e.CreateSession(ctx, 2, nil, SmartAuth)
	require.NoError(t, err)

	require.NoError(t, e.SendAdminReport(ctx, 99))
	msgs := mem.For(99)
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0].Text, "Active Sessions: 2")
	assert.Contains(t, msgs[0].Text, "❌ Stopped")
	assert.Contains(t, msgs[0].Text, "Last Cleanup: never")

	mem.Err = errors.New("down")
	assert.ErrorIs(t, e.SendAdminReport(ctx, 99), ErrNotifierFailure)
}

func TestSchedulerStartRunsBothPassesImmediately(t *testing.T) {
	e, clock, mem := newTestEngine(t)
	ctx := context.Background()

	_, err := e.CreateSession(ctx, 1, nil, AdminSession)
	require.NoError(t, err)
	_, err = e.CreateSession(ctx, 2, nil, AdminSession)
	require.NoError(t, err)
	clock.Advance(6 * time.Hour)
	require.True(t, e.RecordActivity(ctx, 2, "login", ""))
	clock.Advance(3 * time.Hour)

	require.True(t, e.Start(ctx))
	assert.False(t, e.Start(ctx), "second start is a no-op")

	assert.Eventually(t, func() bool {
		return !e.Stats().LastSweep.IsZero() && len(mem.For(2)) == 1
	}, 2*time.Second, 5*time.Millisecond)

	stats := e.Stats()
	assert.True(t, stats.Running)
	assert.Equal(t, uint64(1), stats.SessionsCleaned)
	assert.True(t, strings.Contains(mem.For(2)[0].Text, "Session Timeout Warning"))

	e.Stop()
	e.Stop()
	assert.False(t, e.Stats().Running)
}

func TestStopBeforeStartIsNoop(t *testing.T) {
	e, _, _ := newTestEngine(t)
	e.Stop()
	assert.False(t, e.Stats().Running)

	require.True(t, e.Start(context.Background()))
	e.Stop()
	require.True(t, e.Start(context.Background()), "restart after stop")
	e.Stop()
}

func TestStartAfterCloseRefused(t *testing.T) {
	e, _, _ := newTestEngine(t)
	e.Close()
	assert.False(t, e.Start(context.Background()))
}
