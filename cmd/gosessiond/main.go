// Command gosessiond runs the session lifecycle engine as a standalone
// process. It reads session events from Redis, publishes warnings and notices
// back to Redis, and serves Prometheus metrics.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goSession "github.com/MrEthical07/goSession"
	"github.com/MrEthical07/goSession/identity"
	"github.com/MrEthical07/goSession/internal/inbound"
	"github.com/MrEthical07/goSession/internal/logging"
	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
)

func main() {
	s, err := loadSettings(".env")
	if err != nil {
		// slog is not configured yet
		log.Fatalf("Failed to load settings: %v", err)
	}

	logger := logging.InitLogger(s.LogLevel, s.LogFormat)
	if err := run(s, logger); err != nil {
		logger.Error("gosessiond stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(s settings, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := goSession.DefaultConfig()
	if s.ConfigFile != "" {
		loaded, err := goSession.LoadConfigFile(s.ConfigFile)
		if err != nil {
			return err
		}
		cfg = loaded
		logger.Info("configuration loaded", "path", s.ConfigFile)
	}
	if s.AuditLog {
		cfg.Audit.Enabled = true
	}

	builder := goSession.New().WithConfig(cfg).WithLogger(logger)
	if s.AuditLog {
		builder = builder.WithAuditSink(goSession.SlogSink{Logger: logger.With("stream", "audit")})
	}

	if s.CredentialsFile != "" {
		provider, err := identity.LoadStaticProvider(s.CredentialsFile)
		if err != nil {
			return err
		}
		builder = builder.WithIdentityProvider(provider)
		logger.Info("credentials loaded", "path", s.CredentialsFile, "accounts", provider.Len())
	}

	var client redis.UniversalClient
	if s.RedisAddr != "" {
		client = redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs:    []string{s.RedisAddr},
			Password: s.RedisPassword,
			DB:       s.RedisDB,
		})
		defer func() { _ = client.Close() }()

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := client.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}

		notifier, _ := newNotifier(s, client, logger)
		builder = builder.WithNotifier(notifier)
	} else {
		logger.Warn("GOSESSION_REDIS_ADDR not set; notifications are only logged and no events are consumed")
	}

	engine, err := builder.Build()
	if err != nil {
		return err
	}
	defer engine.Close()
	engine.Start(ctx)

	if client != nil {
		sub := inbound.NewSubscriber(client, s.EventsChannel, inbound.NewHandler(engine, logger), logger)
		go func() {
			if err := sub.Run(ctx, nil); err != nil {
				logger.Error("inbound subscriber failed", "error", err)
				stop()
			}
		}()
	}

	if s.AdminID != 0 && s.ReportInterval > 0 {
		go reportLoop(ctx, clockwork.NewRealClock(), engine, s.AdminID, s.ReportInterval, logger)
	}

	srv := newMetricsServer(s.MetricsAddr, engine)
	serveErr := make(chan error, 1)
	go func() {
		logger.Info("metrics server listening", "addr", s.MetricsAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err = <-serveErr:
		logger.Error("metrics server failed", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
		logger.Error("metrics server shutdown error", "error", shutdownErr)
	}
	engine.Stop()
	return err
}

// reportLoop sends the admin report every interval until ctx is done.
func reportLoop(ctx context.Context, clock clockwork.Clock, engine *goSession.Engine, adminID int64, interval time.Duration, logger *slog.Logger) {
	ticker := clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			if err := engine.SendAdminReport(ctx, adminID); err != nil {
				logger.Warn("admin report failed", "admin_id", adminID, "error", err)
			}
		}
	}
}
