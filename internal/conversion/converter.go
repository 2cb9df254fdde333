package conversion

import (
	"context"
	"log/slog"
	"time"

	"ocwsync/internal/config"
	"ocwsync/internal/ratelimit"
	"ocwsync/internal/services"
)

// Converter turns a local PDF into text.
type Converter interface {
	Name() string
	Convert(ctx context.Context, path string) (string, error)
}

// Select returns the LlamaParse client when an API key is configured, the
// local converter when local_fallback is enabled, and an error otherwise.
func Select(cfg *config.Config, limiter *ratelimit.Window, logger *slog.Logger) (Converter, error) {
	conv := cfg.Conversion
	if conv.APIKey != "" {
		return NewClient(Config{
			APIKey:       conv.APIKey,
			BaseURL:      conv.BaseURL,
			Tier:         conv.Tier,
			PollInterval: time.Duration(conv.PollIntervalSeconds) * time.Second,
			Timeout:      time.Duration(conv.TimeoutSeconds) * time.Second,
		}, limiter, WithLogger(logger)), nil
	}
	if conv.LocalFallback {
		return NewLocalConverter(), nil
	}
	return nil, services.Wrap(services.ErrConfiguration, "convert", "select converter",
		"conversion.api_key is empty and conversion.local_fallback is disabled", nil)
}
