package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	goSession "github.com/MrEthical07/goSession"
	"github.com/MrEthical07/goSession/activity"
	"github.com/MrEthical07/goSession/notify"
	"github.com/alicebob/miniredis/v2"
	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
)

var activityKeys = [][2]string{
	{activity.CategoryCommand, "/menu"},
	{activity.CategoryCommand, "/my_tickets"},
	{activity.CategoryCallback, "ticket_42"},
	{activity.CategoryConversation, "ticket_creation"},
	{activity.CategoryTicketAction, "reply"},
	{activity.CategoryCommand, "/start"},
}

func main() {
	var (
		sessions    = flag.Int("sessions", 10000, "number of sessions to seed")
		concurrency = flag.Int("concurrency", 64, "number of concurrent workers")
		ops         = flag.Int("ops", 200000, "operations per phase (validate + activity)")
		redisAddr   = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
		channel     = flag.String("channel", notify.DefaultChannel, "notification channel")
	)
	flag.Parse()

	if *sessions <= 0 || *concurrency <= 0 || *ops <= 0 {
		fmt.Fprintln(os.Stderr, "sessions, concurrency, and ops must be > 0")
		os.Exit(2)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	addr := *redisAddr
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}

	var (
		cleanup func()
		client  redis.UniversalClient
	)
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start miniredis: %v\n", err)
			os.Exit(1)
		}
		addr = mr.Addr()
		client = redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs: []string{addr},
		})
		cleanup = func() {
			_ = client.Close()
			mr.Close()
		}
		fmt.Printf("using miniredis at %s\n", addr)
	} else {
		client = redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs: []string{addr},
		})
		cleanup = func() { _ = client.Close() }
		fmt.Printf("using redis at %s\n", addr)
	}
	defer cleanup()

	var delivered atomic.Int64
	sub := client.Subscribe(ctx, *channel)
	if _, err := sub.Receive(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "subscribe failed: %v\n", err)
		os.Exit(1)
	}
	defer sub.Close()
	go func() {
		for range sub.Channel() {
			delivered.Add(1)
		}
	}()

	clock := clockwork.NewFakeClock()
	engine, err := goSession.New().
		WithClock(clock).
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))).
		WithNotifier(notify.NewRedisPublisher(client, notify.WithChannel(*channel), notify.WithClock(clock))).
		WithLatencyHistograms(true).
		Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "build engine: %v\n", err)
		os.Exit(1)
	}
	defer engine.Close()

	classes := []goSession.SessionClass{goSession.AdminSession, goSession.SmartAuth, goSession.ManualLogin}
	fmt.Printf("seeding %d sessions...\n", *sessions)
	startSeed := time.Now()
	for i := 0; i < *sessions; i++ {
		if _, err := engine.CreateSession(ctx, int64(i+1), fmt.Sprintf("user-%d", i+1), classes[i%len(classes)]); err != nil {
			fmt.Fprintf(os.Stderr, "create failed: %v\n", err)
			os.Exit(1)
		}
	}
	fmt.Printf("seeded in %s\n", time.Since(startSeed).Round(time.Millisecond))

	validateStats := runPhase(*ops, *concurrency, 7919, func(r *rand.Rand) bool {
		_, ok := engine.ValidateSession(ctx, int64(r.Intn(*sessions)+1))
		return ok
	})
	activityStats := runPhase(*ops, *concurrency, 6151, func(r *rand.Rand) bool {
		key := activityKeys[r.Intn(len(activityKeys))]
		engine.RecordActivity(ctx, int64(r.Intn(*sessions)+1), key[0], key[1])
		return true
	})

	// Admin sessions reach their warning point at 6h.
	clock.Advance(7 * time.Hour)
	warnStart := time.Now()
	warned := engine.RunWarningScan(ctx)
	warnTotal := time.Since(warnStart)

	clock.Advance(96 * time.Hour)
	sweepStart := time.Now()
	removed := engine.RunSweep(ctx)
	sweepTotal := time.Since(sweepStart)

	// Give the subscriber a moment to drain.
	time.Sleep(200 * time.Millisecond)

	fmt.Println("---- results ----")
	printStats("validate", validateStats)
	printStats("activity", activityStats)
	fmt.Printf("warning scan: warned=%d delivered=%d total=%s\n", warned, delivered.Load(), warnTotal.Round(time.Millisecond))
	fmt.Printf("sweep: removed=%d total=%s\n", removed, sweepTotal.Round(time.Millisecond))

	snap := engine.MetricsSnapshot()
	fmt.Printf("activity: accepted=%d suppressed=%d ignored=%d\n",
		snap.Counters[goSession.MetricActivityAccepted],
		snap.Counters[goSession.MetricActivitySuppressed],
		snap.Counters[goSession.MetricActivityIgnored],
	)
}

func runPhase(ops, concurrency int, seed int64, op func(r *rand.Rand) bool) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*seed))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				t0 := time.Now()
				ok := op(r)
				d := time.Since(t0)
				if !ok {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	total := time.Since(start)
	return computeStats(total, latencies, failures)
}

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	opsPerS  float64
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return phaseStats{
		total:    total,
		ops:      len(samples),
		failures: failures,
		p50:      percentile(samples, 50),
		p95:      percentile(samples, 95),
		p99:      percentile(samples, 99),
		opsPerS:  float64(len(samples)) / total.Seconds(),
	}
}

func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	idx := (len(samples) - 1) * p / 100
	return samples[idx]
}

func printStats(name string, s phaseStats) {
	fmt.Printf("%s: ops=%d failures=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.failures,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}
