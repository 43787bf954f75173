// Package testsupport provides shared helpers for package tests.
package testsupport

import (
	"path/filepath"
	"testing"

	"xlate/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.InputDir = filepath.Join(base, "input")
	cfgVal.Paths.OutputDir = filepath.Join(base, "output")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.RateLimit.RequestsPerMinute = 60
	cfgVal.RateLimit.MaxRetries = 1
	cfgVal.RateLimit.RetryDelay = 0
	cfgVal.Backends = []config.Backend{
		{
			Name:        "siliconflow",
			Model:       "test-model",
			Enabled:     true,
			ContextSize: 32000,
		},
	}

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}

	return builder.cfg
}

// WithBackends replaces the configured backend list on the test config.
func WithBackends(backends ...config.Backend) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Backends = backends
	}
}

// WithLanguages sets the source and target languages on the test config.
func WithLanguages(source, target string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Processing.SourceLanguage = source
		b.cfg.Processing.TargetLanguage = target
	}
}

// WithChunkSize overrides the configured chunk size on the test config.
func WithChunkSize(size int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Processing.ChunkSize = size
	}
}
