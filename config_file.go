package goSession

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// LoadConfigFile reads a YAML (.yaml, .yml) or TOML (.toml) file and overlays
// it onto [DefaultConfig]. Keys absent from the file keep their defaults.
// Durations are written as Go duration strings ("30m", "24h").
func LoadConfigFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: read %s: %v", ErrConfiguration, path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseConfigYAML(data)
	case ".toml":
		return ParseConfigTOML(data)
	default:
		return Config{}, fmt.Errorf("%w: unsupported config file extension %q", ErrConfiguration, filepath.Ext(path))
	}
}

// ParseConfigYAML overlays YAML data onto the defaults and validates the result.
func ParseConfigYAML(data []byte) (Config, error) {
	cfg := defaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("%w: yaml: %v", ErrConfiguration, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ParseConfigTOML overlays TOML data onto the defaults and validates the result.
func ParseConfigTOML(data []byte) (Config, error) {
	cfg := defaultConfig()
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%w: toml: %v", ErrConfiguration, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("%w: toml: unknown key %q", ErrConfiguration, undecoded[0].String())
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
