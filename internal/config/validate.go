package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateStore(); err != nil {
		return err
	}
	if err := c.validateSource(); err != nil {
		return err
	}
	if err := c.validateCatalog(); err != nil {
		return err
	}
	if err := c.validateLLM(); err != nil {
		return err
	}
	if err := c.validateConversion(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateStore() error {
	switch c.Store.Driver {
	case StoreDriverSQLite:
		if c.Store.Path == "" {
			return errors.New("store.path must be set for the sqlite driver")
		}
	case StoreDriverPostgres:
		if c.Store.DSN == "" {
			return errors.New("store.dsn is required for the postgres driver. Set OCWSYNC_DATABASE_URL or edit the config file")
		}
	default:
		return fmt.Errorf("store.driver %q is not supported (use sqlite or postgres)", c.Store.Driver)
	}
	return nil
}

func (c *Config) validateSource() error {
	if c.Source.LectureDelayMillis < 0 {
		return errors.New("source.lecture_delay_ms must be >= 0")
	}
	return nil
}

func (c *Config) validateCatalog() error {
	if c.Catalog.RetryBackoffSeconds < 0 || c.Catalog.PageDelaySeconds < 0 {
		return errors.New("catalog backoff and page delay must be >= 0")
	}
	return ensurePositiveMap(map[string]int{
		"catalog.page_size":               c.Catalog.PageSize,
		"catalog.retry_attempts":          c.Catalog.RetryAttempts,
		"catalog.request_timeout_seconds": c.Catalog.RequestTimeoutSeconds,
		"catalog.batch_size":              c.Catalog.BatchSize,
	})
}

func (c *Config) validateLLM() error {
	if c.LLM.TimeoutSeconds <= 0 {
		return errors.New("llm.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateConversion() error {
	if err := ensurePositiveMap(map[string]int{
		"conversion.rate_limit":            c.Conversion.RateLimit,
		"conversion.rate_window_seconds":   c.Conversion.RateWindowSeconds,
		"conversion.poll_interval_seconds": c.Conversion.PollIntervalSeconds,
		"conversion.timeout_seconds":       c.Conversion.TimeoutSeconds,
	}); err != nil {
		return err
	}
	if c.Conversion.PollIntervalSeconds > c.Conversion.TimeoutSeconds {
		return errors.New("conversion.poll_interval_seconds must not exceed conversion.timeout_seconds")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("logging.level %q is not supported", c.Logging.Level)
	}
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
