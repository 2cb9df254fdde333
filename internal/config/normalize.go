package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeStore(); err != nil {
		return err
	}
	c.normalizeSource()
	c.normalizeLLM()
	c.normalizeConversion()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	defaults := map[*string]string{
		&c.Paths.ScratchDir: defaultScratchDir(),
		&c.Paths.ContentDir: filepath.Join(c.Paths.DataDir, "content", "courses"),
		&c.Paths.LogDir:     filepath.Join(c.Paths.DataDir, "logs"),
		&c.Paths.LockDir:    filepath.Join(c.Paths.DataDir, "locks"),
	}
	names := map[*string]string{
		&c.Paths.ScratchDir: "paths.scratch_dir",
		&c.Paths.ContentDir: "paths.content_dir",
		&c.Paths.LogDir:     "paths.log_dir",
		&c.Paths.LockDir:    "paths.lock_dir",
	}
	for field, fallback := range defaults {
		if strings.TrimSpace(*field) == "" {
			*field = fallback
		}
		if *field, err = expandPath(*field); err != nil {
			return fmt.Errorf("%s: %w", names[field], err)
		}
	}
	c.Paths.PublicPrefix = "/" + strings.Trim(strings.TrimSpace(c.Paths.PublicPrefix), "/")
	if c.Paths.PublicPrefix == "/" {
		c.Paths.PublicPrefix = defaultPublicPrefix
	}
	return nil
}

func (c *Config) normalizeStore() error {
	c.Store.Driver = strings.ToLower(strings.TrimSpace(c.Store.Driver))
	switch c.Store.Driver {
	case "", "sqlite", "sqlite3":
		c.Store.Driver = StoreDriverSQLite
	case "postgres", "postgresql", "pgx":
		c.Store.Driver = StoreDriverPostgres
	}
	c.Store.DSN = strings.TrimSpace(c.Store.DSN)
	if c.Store.DSN == "" {
		if value, ok := os.LookupEnv("OCWSYNC_DATABASE_URL"); ok {
			c.Store.DSN = strings.TrimSpace(value)
		} else if value, ok := os.LookupEnv("DATABASE_URL"); ok {
			c.Store.DSN = strings.TrimSpace(value)
		}
	}
	if strings.TrimSpace(c.Store.Path) == "" {
		c.Store.Path = filepath.Join(c.Paths.DataDir, "ocwsync.db")
	}
	var err error
	if c.Store.Path, err = expandPath(c.Store.Path); err != nil {
		return fmt.Errorf("store.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeSource() {
	c.Source.UserAgent = strings.TrimSpace(c.Source.UserAgent)
	if c.Source.UserAgent == "" {
		c.Source.UserAgent = defaultUserAgent
	}
	c.Source.DownloadPath = strings.TrimPrefix(strings.TrimSpace(c.Source.DownloadPath), "/")
	if c.Source.DownloadPath == "" {
		c.Source.DownloadPath = defaultDownloadPath
	}
	c.Source.GalleryPath = strings.TrimPrefix(strings.TrimSpace(c.Source.GalleryPath), "/")
	if c.Source.GalleryPath == "" {
		c.Source.GalleryPath = defaultGalleryPath
	}
	c.Source.PublicBaseURL = strings.TrimRight(strings.TrimSpace(c.Source.PublicBaseURL), "/")
}

func (c *Config) normalizeLLM() {
	c.LLM.APIKey = strings.TrimSpace(c.LLM.APIKey)
	if c.LLM.APIKey == "" {
		if value, ok := os.LookupEnv("OPENROUTER_API_KEY"); ok {
			c.LLM.APIKey = strings.TrimSpace(value)
		}
	}
	c.LLM.BaseURL = strings.TrimSpace(c.LLM.BaseURL)
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = defaultLLMBaseURL
	}
	if strings.TrimSpace(c.LLM.OrderingModel) == "" {
		c.LLM.OrderingModel = defaultOrderingModel
	}
	if strings.TrimSpace(c.LLM.ExtractionModel) == "" {
		c.LLM.ExtractionModel = defaultExtractionModel
	}
}

func (c *Config) normalizeConversion() {
	c.Conversion.APIKey = strings.TrimSpace(c.Conversion.APIKey)
	if c.Conversion.APIKey == "" {
		if value, ok := os.LookupEnv("LLAMA_CLOUD_API_KEY"); ok {
			c.Conversion.APIKey = strings.TrimSpace(value)
		}
	}
	c.Conversion.BaseURL = strings.TrimRight(strings.TrimSpace(c.Conversion.BaseURL), "/")
	if c.Conversion.BaseURL == "" {
		c.Conversion.BaseURL = defaultConversionBaseURL
	}
	c.Conversion.Tier = strings.TrimSpace(c.Conversion.Tier)
	if c.Conversion.Tier == "" {
		c.Conversion.Tier = defaultConversionTier
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format != "json" {
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}
