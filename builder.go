package goSession

import (
	"errors"
	"log/slog"

	"github.com/MrEthical07/goSession/activity"
	"github.com/MrEthical07/goSession/identity"
	"github.com/MrEthical07/goSession/internal/audit"
	"github.com/MrEthical07/goSession/notify"
	"github.com/MrEthical07/goSession/session"
	"github.com/jonboulle/clockwork"
)

// Builder assembles an [Engine]. A Builder is single-use.
type Builder struct {
	config Config

	logger    *slog.Logger
	clock     clockwork.Clock
	notifier  notify.Notifier
	provider  identity.Provider
	auditSink AuditSink

	built bool
}

// New returns a [Builder] seeded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the whole configuration with a deep copy of cfg.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithLogger sets the structured logger. Defaults to slog.Default().
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

// WithClock injects the time source used by the store, tracker, and scheduler.
// Tests pass a clockwork fake clock; production uses the real clock.
func (b *Builder) WithClock(clock clockwork.Clock) *Builder {
	b.clock = clock
	return b
}

// WithNotifier sets the warning and notice transport. Without one, messages
// are only logged.
func (b *Builder) WithNotifier(n notify.Notifier) *Builder {
	b.notifier = n
	return b
}

// WithIdentityProvider sets the credential verifier used by [Engine.Login].
func (b *Builder) WithIdentityProvider(p identity.Provider) *Builder {
	b.provider = p
	return b
}

// WithAuditSink sets the audit sink. Audit dispatch also has to be enabled in
// Config.Audit; [Builder.WithAuditSink] does not enable it implicitly.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithMetricsEnabled toggles in-process counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles the validation and sweep latency histograms.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and returns a ready [Engine]. The
// scheduler is not started; call [Engine.Start].
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := b.logger
	if logger == nil {
		logger = slog.Default()
	}
	clock := b.clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	notifier := b.notifier
	if notifier == nil {
		notifier = notify.LogNotifier{Logger: logger}
	}

	store := session.NewStore(cfg.Policies, clock)
	e := &Engine{
		config:     cfg,
		clock:      clock,
		logger:     logger,
		store:      store,
		tracker:    activity.NewTracker(store, cfg.Tracker, cfg.Weights, clock),
		notifier:   notifier,
		identities: b.provider,
		metrics:    NewMetrics(cfg.Metrics),
		audit: audit.NewDispatcher(audit.Config{
			Enabled:     cfg.Audit.Enabled,
			BufferSize:  cfg.Audit.BufferSize,
			DropIfFull:  cfg.Audit.DropIfFull,
			SinkTimeout: cfg.Audit.SinkTimeout,
		}, b.auditSink),
	}
	e.scheduler = newCleanupScheduler(e)

	b.built = true
	return e, nil
}
