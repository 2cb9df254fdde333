package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory layout configuration.
type Paths struct {
	DataDir      string `toml:"data_dir"`
	ScratchDir   string `toml:"scratch_dir"`
	ContentDir   string `toml:"content_dir"`
	LogDir       string `toml:"log_dir"`
	LockDir      string `toml:"lock_dir"`
	PublicPrefix string `toml:"public_prefix"`
}

// Store selects the catalog database backend.
type Store struct {
	Driver string `toml:"driver"`
	Path   string `toml:"path"`
	DSN    string `toml:"dsn"`
}

// Source contains settings for the course-archive host.
type Source struct {
	UserAgent          string `toml:"user_agent"`
	DownloadPath       string `toml:"download_path"`
	GalleryPath        string `toml:"gallery_path"`
	LectureDelayMillis int    `toml:"lecture_delay_ms"`
	PublicBaseURL      string `toml:"public_base_url"`
}

// Catalog contains settings for the paginated course catalog API.
type Catalog struct {
	BaseURL               string `toml:"base_url"`
	PageSize              int    `toml:"page_size"`
	RetryAttempts         int    `toml:"retry_attempts"`
	RetryBackoffSeconds   int    `toml:"retry_backoff_seconds"`
	RequestTimeoutSeconds int    `toml:"request_timeout_seconds"`
	PageDelaySeconds      int    `toml:"page_delay_seconds"`
	BatchSize             int    `toml:"batch_size"`
}

// LLM contains shared LLM connection settings used by both oracles.
type LLM struct {
	APIKey          string `toml:"api_key"`
	BaseURL         string `toml:"base_url"`
	Referer         string `toml:"referer"`
	Title           string `toml:"title"`
	TimeoutSeconds  int    `toml:"timeout_seconds"`
	OrderingModel   string `toml:"ordering_model"`
	ExtractionModel string `toml:"extraction_model"`
}

// Conversion contains settings for the document-conversion service.
type Conversion struct {
	APIKey              string `toml:"api_key"`
	BaseURL             string `toml:"base_url"`
	Tier                string `toml:"tier"`
	RateLimit           int    `toml:"rate_limit"`
	RateWindowSeconds   int    `toml:"rate_window_seconds"`
	PollIntervalSeconds int    `toml:"poll_interval_seconds"`
	TimeoutSeconds      int    `toml:"timeout_seconds"`
	LocalFallback       bool   `toml:"local_fallback"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for ocwsync.
//
// Configuration sections by subsystem:
//   - Paths: scratch, content, log and lock directories
//   - Store: sqlite file or postgres DSN
//   - Source: course-archive host conventions and politeness delay
//   - Catalog: course catalog API pagination and retry
//   - LLM: ordering and extraction oracle settings
//   - Conversion: document-conversion service and its rate limit
//   - Logging: log format, level, and retention
type Config struct {
	Paths      Paths      `toml:"paths"`
	Store      Store      `toml:"store"`
	Source     Source     `toml:"source"`
	Catalog    Catalog    `toml:"catalog"`
	LLM        LLM        `toml:"llm"`
	Conversion Conversion `toml:"conversion"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. A .env file in the
// working directory is loaded first so its values act as environment fallbacks.
// The returned config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, "", false, err
	}
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

// loadDotEnv never overrides variables already present in the environment.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("ocwsync.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories a run writes into.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.ContentDir, c.Paths.LogDir, c.Paths.LockDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if c.Store.Driver == StoreDriverSQLite {
		if err := os.MkdirAll(filepath.Dir(c.Store.Path), 0o755); err != nil {
			return fmt.Errorf("create store directory: %w", err)
		}
	}
	return nil
}

// CourseContentDir returns the per-course public storage directory.
func (c *Config) CourseContentDir(slug string) string {
	return filepath.Join(c.Paths.ContentDir, slug)
}

// LectureCachePath returns the per-course lecture metadata cache file.
func (c *Config) LectureCachePath(slug string) string {
	return filepath.Join(c.CourseContentDir(slug), lectureCacheFile)
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// LLMConfig contains the connection settings for one oracle.
type LLMConfig struct {
	APIKey         string
	BaseURL        string
	Model          string
	Referer        string
	Title          string
	TimeoutSeconds int
}

func (c *Config) llmWithModel(model string) LLMConfig {
	return LLMConfig{
		APIKey:         strings.TrimSpace(c.LLM.APIKey),
		BaseURL:        strings.TrimSpace(c.LLM.BaseURL),
		Model:          strings.TrimSpace(model),
		Referer:        strings.TrimSpace(c.LLM.Referer),
		Title:          strings.TrimSpace(c.LLM.Title),
		TimeoutSeconds: c.LLM.TimeoutSeconds,
	}
}

// OrderingLLM returns the settings for the content ordering oracle.
func (c *Config) OrderingLLM() LLMConfig {
	return c.llmWithModel(c.LLM.OrderingModel)
}

// ExtractionLLM returns the settings for the problem extraction oracle.
func (c *Config) ExtractionLLM() LLMConfig {
	return c.llmWithModel(c.LLM.ExtractionModel)
}
