package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	PostgresEnabled  bool
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	MaxConcurrency int
	RateLimitMs    int
	MaxRetries     int
	RetryDelay     time.Duration
	NavTimeout     time.Duration

	ReadyMaxTries   int
	ReadyDelay      time.Duration
	ScrollPause     time.Duration
	ScrollMaxRounds int
	SettleDelay     time.Duration
	PriceWait       time.Duration
	PriceFallback   time.Duration

	Headless    bool
	ChromeBin   string
	CatalogPath string
	OutputDir   string
	LogDir      string
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		PostgresEnabled:  getEnvBool("POSTGRES_ENABLED", false),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "scraper"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "scraper123"),
		PostgresDB:       getEnv("POSTGRES_DB", "rental_db"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 5),
		RateLimitMs:    getEnvInt("RATE_LIMIT_MS", 0),
		MaxRetries:     getEnvInt("MAX_RETRIES", 3),
		RetryDelay:     getEnvMs("RETRY_DELAY_MS", 5000),
		NavTimeout:     getEnvMs("NAV_TIMEOUT_MS", 60000),

		ReadyMaxTries:   getEnvInt("READY_MAX_TRIES", 10),
		ReadyDelay:      getEnvMs("READY_DELAY_MS", 1500),
		ScrollPause:     getEnvMs("SCROLL_PAUSE_MS", 2000),
		ScrollMaxRounds: getEnvInt("SCROLL_MAX_ROUNDS", 3),
		SettleDelay:     getEnvMs("SETTLE_DELAY_MS", 2000),
		PriceWait:       getEnvMs("PRICE_WAIT_MS", 6000),
		PriceFallback:   getEnvMs("PRICE_FALLBACK_MS", 1000),

		Headless:    getEnvBool("HEADLESS", true),
		ChromeBin:   getEnv("CHROME_BIN", ""),
		CatalogPath: getEnv("CATALOG_PATH", "config/make_model.csv"),
		OutputDir:   getEnv("OUTPUT_DIR", "output"),
		LogDir:      getEnv("LOG_DIR", "logs"),
	}
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvMs(key string, fallbackMs int) time.Duration {
	return time.Duration(getEnvInt(key, fallbackMs)) * time.Millisecond
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
	}
	return fallback
}
