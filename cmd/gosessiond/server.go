package main

import (
	"log/slog"
	"net/http"
	"time"

	goSession "github.com/MrEthical07/goSession"
	"github.com/MrEthical07/goSession/metrics/export/prometheus"
	"github.com/MrEthical07/goSession/notify"
	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

func newMux(engine *goSession.Engine) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", prometheus.NewPrometheusExporter(engine).Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		if !engine.Stats().Running {
			http.Error(w, "scheduler stopped", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("ok\n"))
	})
	return mux
}

func newMetricsServer(addr string, engine *goSession.Engine) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           newMux(engine),
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// newNotifier publishes to Redis behind a circuit breaker, with the send rate
// limited in front of the breaker so throttling never trips it.
func newNotifier(s settings, client redis.UniversalClient, logger *slog.Logger) (notify.Notifier, *notify.Breaker) {
	opts := []notify.RedisOption{notify.WithChannel(s.NotifyChannel)}
	if s.PerUserChannel {
		opts = append(opts, notify.WithPerUserChannel())
	}

	breaker := notify.WithBreaker(notify.NewRedisPublisher(client, opts...), notify.BreakerConfig{
		Name:                "redis-notifier",
		ConsecutiveFailures: s.BreakerFailures,
		OpenTimeout:         s.BreakerTimeout,
		HalfOpenRequests:    1,
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("notifier breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
	})

	var limiter *rate.Limiter
	if s.NotifyRate > 0 {
		limiter = rate.NewLimiter(rate.Limit(s.NotifyRate), s.NotifyBurst)
	}
	return notify.Throttle(breaker, limiter), breaker
}
