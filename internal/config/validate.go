package config

import (
	"fmt"

	errs "github.com/matzehuels/stackdiff/pkg/errors"
)

// Validate checks that every field holds a usable value.
func (c Config) Validate() error {
	if err := errs.ValidateURL(c.Registry); err != nil {
		return fmt.Errorf("registry: %w", err)
	}
	if err := validateDuration(c.CacheTime, "cache_time"); err != nil {
		return err
	}
	if err := validateDuration(c.LimiterTime, "limiter_time"); err != nil {
		return err
	}
	if err := validateDuration(c.Server.SessionTTL, "server.session_ttl"); err != nil {
		return err
	}
	if c.MaxDepth < 0 {
		return fmt.Errorf("max_depth must not be negative, got %d", c.MaxDepth)
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr must not be empty")
	}
	return nil
}

func validateDuration(d Duration, field string) error {
	if d.Duration < 0 {
		return fmt.Errorf("%s must not be negative, got %s", field, d.Duration)
	}
	return nil
}
