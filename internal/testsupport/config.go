package testsupport

import (
	"path/filepath"
	"testing"

	"zipcrack/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Timings are shortened so coordinator tests finish quickly, and
// notifications are left unconfigured.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Search.OutputFile = filepath.Join(base, "password.txt")
	cfgVal.Search.PollIntervalMS = 20
	cfgVal.Search.JoinTimeoutMS = 200
	cfgVal.Search.ProgressIntervalSeconds = 0
	cfgVal.Notifications.NtfyTopic = ""

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithKeyspace sets the alphabet and password length.
func WithKeyspace(alphabet string, length int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Search.Alphabet = alphabet
		b.cfg.Search.Length = length
	}
}

// WithWorkers sets an explicit worker count.
func WithWorkers(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Search.Workers = n
	}
}

// WithNtfyTopic points notifications at the given topic URL.
func WithNtfyTopic(topic string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Notifications.NtfyTopic = topic
		b.cfg.Notifications.RetryAttempts = 1
		b.cfg.Notifications.RequestTimeout = 2
	}
}

// WithHistory toggles the run ledger.
func WithHistory(enabled bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.History.Enabled = enabled
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}
