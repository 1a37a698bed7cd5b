package main

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const envPrefix = "GOSESSION"

// settings are the process-level knobs read from the environment. Session
// policies and cadences live in the config file instead.
type settings struct {
	ConfigFile      string `envconfig:"CONFIG_FILE"`
	CredentialsFile string `envconfig:"CREDENTIALS_FILE"`
	LogLevel        string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat       string `envconfig:"LOG_FORMAT" default:"text"`
	AuditLog        bool   `envconfig:"AUDIT_LOG"`

	RedisAddr     string `envconfig:"REDIS_ADDR"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB"`

	NotifyChannel  string  `envconfig:"NOTIFY_CHANNEL" default:"gosession:notifications"`
	PerUserChannel bool    `envconfig:"NOTIFY_PER_USER"`
	NotifyRate     float64 `envconfig:"NOTIFY_RATE" default:"25"`
	NotifyBurst    int     `envconfig:"NOTIFY_BURST" default:"5"`
	EventsChannel  string  `envconfig:"EVENTS_CHANNEL" default:"gosession:events"`

	BreakerFailures uint32        `envconfig:"BREAKER_FAILURES" default:"5"`
	BreakerTimeout  time.Duration `envconfig:"BREAKER_TIMEOUT" default:"30s"`

	MetricsAddr    string        `envconfig:"METRICS_ADDR" default:":9090"`
	AdminID        int64         `envconfig:"ADMIN_ID"`
	ReportInterval time.Duration `envconfig:"REPORT_INTERVAL" default:"24h"`
}

// loadSettings loads envFiles (missing files are ignored) into the process
// environment without overriding it, then decodes GOSESSION_* variables.
func loadSettings(envFiles ...string) (settings, error) {
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return settings{}, fmt.Errorf("load %s: %w", file, err)
		}
	}

	var s settings
	if err := envconfig.Process(envPrefix, &s); err != nil {
		return settings{}, fmt.Errorf("read environment: %w", err)
	}
	if err := s.validate(); err != nil {
		return settings{}, err
	}
	return s, nil
}

func (s settings) validate() error {
	if s.NotifyRate < 0 {
		return errors.New("GOSESSION_NOTIFY_RATE must be >= 0")
	}
	if s.NotifyRate > 0 && s.NotifyBurst <= 0 {
		return errors.New("GOSESSION_NOTIFY_BURST must be > 0 when a rate is set")
	}
	if s.BreakerFailures == 0 {
		return errors.New("GOSESSION_BREAKER_FAILURES must be > 0")
	}
	if s.ReportInterval < 0 {
		return errors.New("GOSESSION_REPORT_INTERVAL must be >= 0")
	}
	return nil
}
