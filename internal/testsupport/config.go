package testsupport

import (
	"path/filepath"
	"testing"

	"ocwsync/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// External services point nowhere and the lecture delay is disabled.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = base
	cfgVal.Paths.ScratchDir = filepath.Join(base, "scratch")
	cfgVal.Paths.ContentDir = filepath.Join(base, "content", "courses")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.LockDir = filepath.Join(base, "locks")
	cfgVal.Store.Driver = config.StoreDriverSQLite
	cfgVal.Store.Path = filepath.Join(base, "ocwsync.db")
	cfgVal.Source.LectureDelayMillis = 0
	cfgVal.LLM.APIKey = ""
	cfgVal.Conversion.APIKey = ""
	cfgVal.Conversion.PollIntervalSeconds = 1
	cfgVal.Catalog.RetryBackoffSeconds = 0
	cfgVal.Catalog.PageDelaySeconds = 0

	builder := &configBuilder{t: t, baseDir: base, cfg: &cfgVal}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithLLM points both oracles at baseURL with the given key.
func WithLLM(baseURL, apiKey string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.LLM.BaseURL = baseURL
		b.cfg.LLM.APIKey = apiKey
	}
}

// WithConversion points the document-conversion client at baseURL.
func WithConversion(baseURL, apiKey string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Conversion.BaseURL = baseURL
		b.cfg.Conversion.APIKey = apiKey
	}
}

// WithCatalog points catalog sync at baseURL.
func WithCatalog(baseURL string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Catalog.BaseURL = baseURL
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return cfg.Paths.DataDir
}
