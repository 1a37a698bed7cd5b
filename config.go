package goSession

import (
	"errors"
	"fmt"
	"time"

	"github.com/MrEthical07/goSession/activity"
	"github.com/MrEthical07/goSession/session"
)

// Config is the full engine configuration.
//
// Config instances are intended to be configured during initialization and then
// treated as immutable; [Builder.WithConfig] takes a deep copy.
type Config struct {
	Policies  session.PolicyTable    `yaml:"policies" toml:"policies"`
	Weights   activity.WeightTable   `yaml:"activity_weights" toml:"activity_weights"`
	Tracker   activity.TrackerConfig `yaml:"tracker" toml:"tracker"`
	Scheduler SchedulerConfig        `yaml:"scheduler" toml:"scheduler"`
	Audit     AuditConfig            `yaml:"audit" toml:"audit"`
	Metrics   MetricsConfig          `yaml:"metrics" toml:"metrics"`
}

/*
====================================
SCHEDULER CONFIG
====================================
*/

// SchedulerConfig controls the background warning and sweep cadences.
type SchedulerConfig struct {
	// WarningInterval is the warning-scan cadence.
	WarningInterval time.Duration `yaml:"warning_interval" toml:"warning_interval"`
	// SweepInterval is the expiry sweep cadence.
	SweepInterval time.Duration `yaml:"sweep_interval" toml:"sweep_interval"`
	// NotifyTimeout bounds every single notifier call.
	NotifyTimeout time.Duration `yaml:"notify_timeout" toml:"notify_timeout"`
}

/*
====================================
AUDIT / METRICS CONFIG
====================================
*/

// AuditConfig controls the async audit dispatcher.
type AuditConfig struct {
	Enabled     bool          `yaml:"enabled" toml:"enabled"`
	BufferSize  int           `yaml:"buffer_size" toml:"buffer_size"`
	DropIfFull  bool          `yaml:"drop_if_full" toml:"drop_if_full"`
	SinkTimeout time.Duration `yaml:"sink_timeout" toml:"sink_timeout"`
}

// MetricsConfig controls in-process counters and histograms.
type MetricsConfig struct {
	Enabled                 bool `yaml:"enabled" toml:"enabled"`
	EnableLatencyHistograms bool `yaml:"latency_histograms" toml:"latency_histograms"`
}

// DefaultConfig returns the stock configuration: the built-in class policies
// and weights, a 30 minute warning scan, an hourly sweep, and a 10 second
// notification timeout.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		Policies: session.DefaultPolicies(),
		Weights:  activity.DefaultWeights(),
		Tracker:  activity.DefaultTrackerConfig(),
		Scheduler: SchedulerConfig{
			WarningInterval: 30 * time.Minute,
			SweepInterval:   time.Hour,
			NotifyTimeout:   10 * time.Second,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Weights = cfg.Weights.Clone()
	out.Tracker = cfg.Tracker.Clone()
	return out
}

// Validate checks every section; failures wrap [ErrConfiguration].
func (c *Config) Validate() error {
	if err := c.validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	return nil
}

func (c *Config) validate() error {
	if err := c.Policies.Validate(); err != nil {
		return err
	}
	if err := c.Weights.Validate(); err != nil {
		return err
	}
	if err := c.Tracker.Validate(); err != nil {
		return err
	}

	if c.Scheduler.WarningInterval <= 0 {
		return errors.New("Scheduler WarningInterval must be > 0")
	}
	if c.Scheduler.SweepInterval <= 0 {
		return errors.New("Scheduler SweepInterval must be > 0")
	}
	if c.Scheduler.NotifyTimeout <= 0 {
		return errors.New("Scheduler NotifyTimeout must be > 0")
	}
	if c.Scheduler.NotifyTimeout >= c.Scheduler.WarningInterval {
		return errors.New("Scheduler NotifyTimeout must be shorter than WarningInterval")
	}

	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when audit is enabled")
	}
	if c.Audit.SinkTimeout < 0 {
		return errors.New("Audit SinkTimeout must be >= 0")
	}
	if c.Metrics.EnableLatencyHistograms && !c.Metrics.Enabled {
		return errors.New("Metrics latency histograms require metrics to be enabled")
	}
	return nil
}
