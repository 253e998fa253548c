// Package config loads process configuration from the environment (and
// an optional .env file for local development), following the
// Twelve-Factor approach the rest of the retrieval pack already uses:
// struct tags on caarlos0/env/v11, no config files to parse by hand.
package config

import (
	"fmt"
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the full process configuration, grouped the way spec §6.4
// groups its keys.
type Config struct {
	Port        int    `env:"PORT" envDefault:"8080"`
	DatabaseURL string `env:"DATABASE_URL" envDefault:"postgres://periodiq:periodiq@db:5432/periodiq?sslmode=disable"`
	RedisAddr   string `env:"REDIS_ADDR" envDefault:"redis:6379"`
	JWTSecret   string `env:"JWT_SECRET" envDefault:"change-me-in-production"`

	// AdminUsername/AdminPassword seed the single credentials row on
	// first run (spec §1, §4 [EXPANSION]); ignored once a row exists.
	AdminUsername string `env:"ADMIN_USERNAME" envDefault:"admin"`
	AdminPassword string `env:"ADMIN_PASSWORD" envDefault:"change-me"`

	Storage   StorageConfig
	Matching  MatchingConfig
	Import    ImportConfig
	Downloads DownloadsConfig
	Tasks     TasksConfig
	PDF       PDFConfig
	Provider  ProviderConfig
	Client    DownloadClientConfig
}

// ProviderConfig selects and configures the Search Provider adapter
// (spec §6.1, §6.4).
type ProviderConfig struct {
	Type    string `env:"PROVIDER_TYPE" envDefault:"http"`
	BaseURL string `env:"PROVIDER_BASE_URL" envDefault:"http://localhost:9117"`
	APIKey  string `env:"PROVIDER_API_KEY" envDefault:""`
}

// DownloadClientConfig selects and configures the Download Client
// adapter (spec §6.2, §6.4).
type DownloadClientConfig struct {
	Type    string `env:"CLIENT_TYPE" envDefault:"http"`
	BaseURL string `env:"CLIENT_BASE_URL" envDefault:"http://localhost:6789"`
	APIKey  string `env:"CLIENT_API_KEY" envDefault:""`
}

// StorageConfig holds the filesystem layout (spec §6.4 storage.*).
type StorageConfig struct {
	DBPath      string `env:"STORAGE_DB_PATH" envDefault:"/data/periodiq.db"`
	DownloadDir string `env:"STORAGE_DOWNLOAD_DIR" envDefault:"/data/downloads"`
	OrganizeDir string `env:"STORAGE_ORGANIZE_DIR" envDefault:"/data/library"`
	CacheDir    string `env:"STORAGE_CACHE_DIR" envDefault:"/data/cache"`
}

// MatchingConfig tunes the Title Normalizer's similarity thresholds
// (spec §6.4 matching.*).
type MatchingConfig struct {
	FuzzyThreshold             int `env:"MATCHING_FUZZY_THRESHOLD" envDefault:"80"`
	DuplicateDateThresholdDays int `env:"MATCHING_DUPLICATE_DATE_THRESHOLD_DAYS" envDefault:"5"`
}

// ImportConfig tunes the Import Pipeline (spec §6.4 import.*).
type ImportConfig struct {
	OrganizationPattern string `env:"IMPORT_ORGANIZATION_PATTERN" envDefault:"{category}/{title}/{title} - {year}-{month}"`
	AutoTrackImports    bool   `env:"IMPORT_AUTO_TRACK_IMPORTS" envDefault:"false"`
	CategoryPrefix      string `env:"IMPORT_CATEGORY_PREFIX" envDefault:"_"`
}

// DownloadsConfig tunes the Download Orchestrator (spec §6.4 downloads.*).
type DownloadsConfig struct {
	MaxRetries  int `env:"DOWNLOADS_MAX_RETRIES" envDefault:"3"`
	MaxPerBatch int `env:"DOWNLOADS_MAX_PER_BATCH" envDefault:"10"`
}

// TasksConfig sets the Task Scheduler's intervals (spec §6.4 tasks.*).
type TasksConfig struct {
	AutoDownloadInterval   time.Duration `env:"TASKS_AUTO_DOWNLOAD_INTERVAL" envDefault:"30m"`
	DownloadMonitorInterval time.Duration `env:"TASKS_DOWNLOAD_MONITOR_INTERVAL" envDefault:"30s"`
	CleanupCoversInterval  time.Duration `env:"TASKS_CLEANUP_COVERS_INTERVAL" envDefault:"24h"`
}

// PDFConfig tunes the cover-extraction strategy (spec §6.4 pdf.*).
type PDFConfig struct {
	CoverDPILow      int `env:"PDF_COVER_DPI_LOW" envDefault:"72"`
	CoverDPIHigh     int `env:"PDF_COVER_DPI_HIGH" envDefault:"200"`
	CoverQualityLow  int `env:"PDF_COVER_QUALITY_LOW" envDefault:"60"`
	CoverQualityHigh int `env:"PDF_COVER_QUALITY_HIGH" envDefault:"90"`
}

// Load reads an optional .env file (ignored if absent) and then parses
// the process environment into a Config.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("config: no .env file loaded: %v", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}
