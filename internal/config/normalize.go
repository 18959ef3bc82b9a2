package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/samber/lo"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeSearch(); err != nil {
		return err
	}
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

// Normalize applies the same normalization Load performs. Callers that adjust
// a loaded config (CLI flag overrides) run it again before validating.
func (c *Config) Normalize() error {
	return c.normalize()
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeSearch() error {
	c.Search.Alphabet = NormalizeAlphabet(c.Search.Alphabet)
	if c.Search.Alphabet == "" {
		c.Search.Alphabet = defaultAlphabet
	}
	if c.Search.PollIntervalMS == 0 {
		c.Search.PollIntervalMS = defaultPollIntervalMS
	}
	if c.Search.JoinTimeoutMS == 0 {
		c.Search.JoinTimeoutMS = defaultJoinTimeoutMS
	}

	var err error
	if strings.TrimSpace(c.Search.OutputFile) == "" {
		c.Search.OutputFile = defaultOutputFile
	}
	if c.Search.OutputFile, err = expandPath(strings.TrimSpace(c.Search.OutputFile)); err != nil {
		return fmt.Errorf("search.output_file: %w", err)
	}
	if strings.TrimSpace(c.Search.ExtractDir) != "" {
		if c.Search.ExtractDir, err = expandPath(strings.TrimSpace(c.Search.ExtractDir)); err != nil {
			return fmt.Errorf("search.extract_dir: %w", err)
		}
	}
	return nil
}

// NormalizeAlphabet trims surrounding whitespace and drops repeated symbols
// while keeping first-seen order.
func NormalizeAlphabet(alphabet string) string {
	trimmed := strings.TrimSpace(alphabet)
	if trimmed == "" {
		return ""
	}
	return string(lo.Uniq([]rune(trimmed)))
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.NtfyTopic == "" {
		if value, ok := os.LookupEnv("ZIPCRACK_NTFY_TOPIC"); ok {
			c.Notifications.NtfyTopic = strings.TrimSpace(value)
		}
	}
	if c.Notifications.RequestTimeout == 0 {
		c.Notifications.RequestTimeout = defaultNotifyRequestTimeout
	}
	if c.Notifications.RetryAttempts == 0 {
		c.Notifications.RetryAttempts = defaultNotifyRetryAttempts
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
