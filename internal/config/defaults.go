package config

import (
	"os"
	"path/filepath"
)

const (
	defaultConfigPath   = "~/.config/ocwsync/config.toml"
	defaultDataDir      = "~/.local/share/ocwsync"
	defaultPublicPrefix = "/content/courses"
	lectureCacheFile    = "lectures.json"

	StoreDriverSQLite   = "sqlite"
	StoreDriverPostgres = "postgres"

	defaultUserAgent          = "ocwsync/1.0"
	defaultDownloadPath       = "download"
	defaultGalleryPath        = "video_galleries/lecture-videos/"
	defaultLectureDelayMillis = 500

	defaultCatalogBaseURL      = "https://api.learn.mit.edu/api/v1/courses/"
	defaultCatalogPageSize     = 100
	defaultCatalogAttempts     = 3
	defaultCatalogBackoff      = 10
	defaultCatalogTimeout      = 30
	defaultCatalogPageDelay    = 5
	defaultCatalogBatchSize    = 200
	defaultLLMBaseURL          = "https://openrouter.ai/api/v1/chat/completions"
	defaultLLMTitle            = "ocwsync"
	defaultLLMTimeout          = 120
	defaultOrderingModel       = "google/gemini-3-flash-preview"
	defaultExtractionModel     = "openai/gpt-5-mini"
	defaultConversionBaseURL   = "https://api.cloud.llamaindex.ai"
	defaultConversionTier      = "cost_effective"
	defaultConversionRateLimit = 20
	defaultConversionWindow    = 60
	defaultConversionPoll      = 5
	defaultConversionTimeout   = 300
	defaultLogLevel            = "info"
	defaultLogRetentionDays    = 30
)

func defaultScratchDir() string {
	return filepath.Join(os.TempDir(), "ocwsync-download")
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:      defaultDataDir,
			ScratchDir:   defaultScratchDir(),
			PublicPrefix: defaultPublicPrefix,
		},
		Store: Store{
			Driver: StoreDriverSQLite,
		},
		Source: Source{
			UserAgent:          defaultUserAgent,
			DownloadPath:       defaultDownloadPath,
			GalleryPath:        defaultGalleryPath,
			LectureDelayMillis: defaultLectureDelayMillis,
		},
		Catalog: Catalog{
			BaseURL:               defaultCatalogBaseURL,
			PageSize:              defaultCatalogPageSize,
			RetryAttempts:         defaultCatalogAttempts,
			RetryBackoffSeconds:   defaultCatalogBackoff,
			RequestTimeoutSeconds: defaultCatalogTimeout,
			PageDelaySeconds:      defaultCatalogPageDelay,
			BatchSize:             defaultCatalogBatchSize,
		},
		LLM: LLM{
			BaseURL:         defaultLLMBaseURL,
			Title:           defaultLLMTitle,
			TimeoutSeconds:  defaultLLMTimeout,
			OrderingModel:   defaultOrderingModel,
			ExtractionModel: defaultExtractionModel,
		},
		Conversion: Conversion{
			BaseURL:             defaultConversionBaseURL,
			Tier:                defaultConversionTier,
			RateLimit:           defaultConversionRateLimit,
			RateWindowSeconds:   defaultConversionWindow,
			PollIntervalSeconds: defaultConversionPoll,
			TimeoutSeconds:      defaultConversionTimeout,
			LocalFallback:       true,
		},
		Logging: Logging{
			Format:        "console",
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
