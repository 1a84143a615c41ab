package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database (optional: empty URL disables the snapshot repository)
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// Snapshot producer
	Snapshot SnapshotConfig

	// Screening sessions
	Screener ScreenerConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	URL      string // REDIS_URL; overrides host/port/password/db
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// Enabled reports whether a database URL is configured
func (d DatabaseConfig) Enabled() bool {
	return d.URL != ""
}

// SnapshotConfig holds scanner and snapshot storage settings
type SnapshotConfig struct {
	Dir        string  // root of data/snapshots/YYYY/MM
	ExportPath string  // flat JSON written by `deploy`
	ScannerURL string  // TradingView scanner endpoint
	Market     string  // scanner market, e.g. "australia"
	BatchSize  int     // rows per scanner page
	RatePerSec float64 // scanner request pacing
	Cron       string  // daily fetch schedule (with seconds)
	CacheTTL   time.Duration
}

// ScreenerConfig holds interactive screening defaults
type ScreenerConfig struct {
	DefaultPageSize int
	PresetsFile     string
	SessionTTL      time.Duration
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8089"),
		Env:  getEnv("ENV", "development"),

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", ""),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		Snapshot: SnapshotConfig{
			Dir:        getEnv("SNAPSHOT_DIR", "data/snapshots"),
			ExportPath: getEnv("SNAPSHOT_EXPORT_PATH", "frontend/public/data.json"),
			ScannerURL: getEnv("SCANNER_URL", "https://scanner.tradingview.com/australia/scan"),
			Market:     getEnv("SCANNER_MARKET", "australia"),
			BatchSize:  getEnvAsInt("SCANNER_BATCH_SIZE", 500),
			RatePerSec: getEnvAsFloat("SCANNER_RATE_PER_SEC", 10),
			Cron:       getEnv("SNAPSHOT_CRON", "0 30 18 * * 1-5"),
			CacheTTL:   getEnvAsDuration("SNAPSHOT_CACHE_TTL", "1h"),
		},

		Screener: ScreenerConfig{
			DefaultPageSize: getEnvAsInt("DEFAULT_PAGE_SIZE", 50),
			PresetsFile:     getEnv("PRESETS_FILE", ""),
			SessionTTL:      getEnvAsDuration("SESSION_TTL", "30m"),
		},

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	switch c.Screener.DefaultPageSize {
	case 25, 50, 100:
	default:
		return fmt.Errorf("DEFAULT_PAGE_SIZE must be one of: 25, 50, 100")
	}

	if c.Snapshot.Dir == "" {
		return fmt.Errorf("SNAPSHOT_DIR is required")
	}

	if c.Snapshot.BatchSize <= 0 {
		return fmt.Errorf("SCANNER_BATCH_SIZE must be positive")
	}

	if c.Snapshot.RatePerSec <= 0 {
		return fmt.Errorf("SCANNER_RATE_PER_SEC must be positive")
	}

	return nil
}

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env",
		"backend/.env",
	}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
