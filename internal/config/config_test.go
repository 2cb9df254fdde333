package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"ocwsync/internal/config"
)

func TestLoadDefaultConfigUsesEnvKeysAndExpandsPaths(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "router-key")
	t.Setenv("LLAMA_CLOUD_API_KEY", "llama-key")
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	dataDir := filepath.Join(tempHome, ".local", "share", "ocwsync")
	if cfg.Paths.DataDir != dataDir {
		t.Fatalf("unexpected data dir: got %q want %q", cfg.Paths.DataDir, dataDir)
	}
	if cfg.Paths.ContentDir != filepath.Join(dataDir, "content", "courses") {
		t.Fatalf("unexpected content dir: %q", cfg.Paths.ContentDir)
	}
	if cfg.Store.Driver != config.StoreDriverSQLite || cfg.Store.Path != filepath.Join(dataDir, "ocwsync.db") {
		t.Fatalf("unexpected store settings: %+v", cfg.Store)
	}
	if cfg.LLM.APIKey != "router-key" {
		t.Fatalf("expected LLM key from env, got %q", cfg.LLM.APIKey)
	}
	if cfg.Conversion.APIKey != "llama-key" {
		t.Fatalf("expected conversion key from env, got %q", cfg.Conversion.APIKey)
	}
	if cfg.Conversion.RateLimit != 20 || cfg.Conversion.RateWindowSeconds != 60 {
		t.Fatalf("unexpected conversion rate: %d/%ds", cfg.Conversion.RateLimit, cfg.Conversion.RateWindowSeconds)
	}
	if cfg.Source.LectureDelayMillis != 500 {
		t.Fatalf("unexpected lecture delay: %d", cfg.Source.LectureDelayMillis)
	}
	if got := cfg.LectureCachePath("6-006"); got != filepath.Join(cfg.Paths.ContentDir, "6-006", "lectures.json") {
		t.Fatalf("unexpected cache path %q", got)
	}
	if got := cfg.OrderingLLM(); got.Model != "google/gemini-3-flash-preview" || got.APIKey != "router-key" {
		t.Fatalf("unexpected ordering llm %+v", got)
	}
	if got := cfg.ExtractionLLM(); got.Model != "openai/gpt-5-mini" {
		t.Fatalf("unexpected extraction model %q", got.Model)
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	configPath := filepath.Join(t.TempDir(), "ocwsync.toml")
	payload := map[string]any{
		"paths": map[string]any{
			"data_dir":      "~/ocw",
			"public_prefix": "static/courses/",
		},
		"store": map[string]any{
			"driver": "postgresql",
			"dsn":    "postgres://localhost/ocw",
		},
		"logging": map[string]any{
			"format": "JSON",
			"level":  "DEBUG",
		},
	}
	data, err := toml.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("unexpected resolution: %q exists=%v", resolved, exists)
	}
	if cfg.Paths.DataDir != filepath.Join(tempHome, "ocw") {
		t.Fatalf("unexpected data dir %q", cfg.Paths.DataDir)
	}
	if cfg.Paths.PublicPrefix != "/static/courses" {
		t.Fatalf("unexpected public prefix %q", cfg.Paths.PublicPrefix)
	}
	if cfg.Store.Driver != config.StoreDriverPostgres {
		t.Fatalf("unexpected driver %q", cfg.Store.Driver)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("unexpected logging %+v", cfg.Logging)
	}
}

func TestLoadReadsDotEnv(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("LLAMA_CLOUD_API_KEY", "")
	os.Unsetenv("LLAMA_CLOUD_API_KEY")
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("LLAMA_CLOUD_API_KEY=from-dotenv\n"), 0o644); err != nil {
		t.Fatalf("write .env: %v", err)
	}

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Conversion.APIKey != "from-dotenv" {
		t.Fatalf("expected key from .env, got %q", cfg.Conversion.APIKey)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
	configPath := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(configPath, []byte("[paths]\nstaging_dir = \"/x\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(configPath); err == nil {
		t.Fatal("expected unknown key to fail parsing")
	}
}

func TestCreateSample(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[conversion]") {
		t.Fatal("expected sample to contain conversion section")
	}
	if _, _, _, err := config.Load(path); err != nil {
		t.Fatalf("sample config should load cleanly: %v", err)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"postgres without dsn", func(c *config.Config) { c.Store.Driver = config.StoreDriverPostgres; c.Store.DSN = "" }, "store.dsn"},
		{"unknown driver", func(c *config.Config) { c.Store.Driver = "mysql" }, "store.driver"},
		{"zero rate limit", func(c *config.Config) { c.Conversion.RateLimit = 0 }, "conversion.rate_limit"},
		{"poll beyond timeout", func(c *config.Config) { c.Conversion.PollIntervalSeconds = 600 }, "poll_interval"},
		{"negative delay", func(c *config.Config) { c.Source.LectureDelayMillis = -1 }, "lecture_delay_ms"},
		{"bad level", func(c *config.Config) { c.Logging.Level = "loud" }, "logging.level"},
		{"zero attempts", func(c *config.Config) { c.Catalog.RetryAttempts = 0 }, "catalog.retry_attempts"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Store.Path = "/tmp/ocwsync.db"
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected %q in error, got %v", tc.want, err)
			}
		})
	}
}
