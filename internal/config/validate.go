package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateSearch(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		return errors.New("paths.state_dir must be set")
	}
	return nil
}

func (c *Config) validateSearch() error {
	if c.Search.Alphabet == "" {
		return errors.New("search.alphabet must contain at least one symbol")
	}
	if c.Search.Length < 1 {
		return errors.New("search.length must be at least 1")
	}
	if c.Search.Workers < 0 {
		return errors.New("search.workers must be >= 0 (0 selects host parallelism)")
	}
	if err := ensurePositiveMap(map[string]int{
		"search.poll_interval_ms": c.Search.PollIntervalMS,
		"search.join_timeout_ms":  c.Search.JoinTimeoutMS,
	}); err != nil {
		return err
	}
	if c.Search.ProgressIntervalSeconds < 0 {
		return errors.New("search.progress_interval_seconds must be >= 0")
	}
	if strings.TrimSpace(c.Search.OutputFile) == "" {
		return errors.New("search.output_file must be set")
	}
	return nil
}

func (c *Config) validateNotifications() error {
	if c.Notifications.RequestTimeout <= 0 {
		return errors.New("notifications.request_timeout must be positive (seconds)")
	}
	if c.Notifications.RetryAttempts < 1 {
		return errors.New("notifications.retry_attempts must be >= 1")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q (expected console or json)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	if c.Logging.RetentionDays < 0 {
		return errors.New("logging.retention_days must be >= 0 (0 disables pruning)")
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
