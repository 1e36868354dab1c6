package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Duration is a time.Duration that reads and writes as a string like "5m".
type Duration struct {
	time.Duration
}

// UnmarshalText parses a Go duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText formats the duration as a Go duration string.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// ServerConfig holds settings for `stackdiff serve`.
type ServerConfig struct {
	Addr       string   `toml:"addr"`
	SessionTTL Duration `toml:"session_ttl"`
}

// Config holds the stackdiff configuration.
type Config struct {
	Registry    string       `toml:"registry"`
	CacheTime   Duration     `toml:"cache_time"`   // how long a lookup result stays valid; 0 disables caching
	LimiterTime Duration     `toml:"limiter_time"` // minimum spacing between registry requests
	MaxDepth    int          `toml:"max_depth"`    // 0 = unlimited
	Server      ServerConfig `toml:"server"`
}

// Defaults.
const (
	DefaultRegistry    = "https://registry.npmjs.org"
	DefaultCacheTime   = time.Hour
	DefaultLimiterTime = 100 * time.Millisecond
	DefaultAddr        = ":8080"
	DefaultSessionTTL  = 30 * time.Minute
)

// Default returns the default configuration.
func Default() Config {
	return Config{
		Registry:    DefaultRegistry,
		CacheTime:   Duration{DefaultCacheTime},
		LimiterTime: Duration{DefaultLimiterTime},
		Server: ServerConfig{
			Addr:       DefaultAddr,
			SessionTTL: Duration{DefaultSessionTTL},
		},
	}
}

// Path returns the config file location.
func Path() (string, error) {
	if p := os.Getenv("STACKDIFF_CONFIG"); p != "" {
		return p, nil
	}
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "stackdiff", "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "stackdiff", "config.toml"), nil
}

// Load reads the config file at [Path].
// Returns Default() if the file doesn't exist (no error).
// Returns an error only if the file exists but is invalid.
func Load() (Config, error) {
	path, err := Path()
	if err != nil {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile reads config from path. Keys missing from the file keep their
// default values; unknown keys are rejected.
func LoadFile(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return Default(), fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Default(), fmt.Errorf("unknown keys in %s: %s", path, strings.Join(keys, ", "))
	}

	if err := cfg.Validate(); err != nil {
		return Default(), fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Encode writes cfg as TOML.
func (c Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}
