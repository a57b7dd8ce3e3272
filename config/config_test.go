package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("MAX_CONCURRENCY", "")
	t.Setenv("RETRY_DELAY_MS", "")
	t.Setenv("HEADLESS", "")

	cfg := Load()
	if cfg.MaxConcurrency != 5 {
		t.Errorf("MaxConcurrency: got %d, want 5", cfg.MaxConcurrency)
	}
	if cfg.MaxRetries != 3 {
		t.Errorf("MaxRetries: got %d, want 3", cfg.MaxRetries)
	}
	if cfg.RetryDelay != 5*time.Second {
		t.Errorf("RetryDelay: got %v, want 5s", cfg.RetryDelay)
	}
	if cfg.NavTimeout != 60*time.Second {
		t.Errorf("NavTimeout: got %v, want 60s", cfg.NavTimeout)
	}
	if !cfg.Headless {
		t.Error("Headless should default to true")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("MAX_CONCURRENCY", "2")
	t.Setenv("READY_DELAY_MS", "250")
	t.Setenv("POSTGRES_ENABLED", "true")
	t.Setenv("SCROLL_MAX_ROUNDS", "not-a-number")

	cfg := Load()
	if cfg.MaxConcurrency != 2 {
		t.Errorf("MaxConcurrency: got %d, want 2", cfg.MaxConcurrency)
	}
	if cfg.ReadyDelay != 250*time.Millisecond {
		t.Errorf("ReadyDelay: got %v, want 250ms", cfg.ReadyDelay)
	}
	if !cfg.PostgresEnabled {
		t.Error("PostgresEnabled should be true")
	}
	if cfg.ScrollMaxRounds != 3 {
		t.Errorf("invalid int should fall back: got %d, want 3", cfg.ScrollMaxRounds)
	}
}

func TestDSN(t *testing.T) {
	cfg := &Config{
		PostgresHost: "db", PostgresPort: "5433", PostgresUser: "u",
		PostgresPassword: "p", PostgresDB: "rentals", PostgresSSLMode: "disable",
	}
	want := "host=db port=5433 user=u password=p dbname=rentals sslmode=disable"
	if got := cfg.DSN(); got != want {
		t.Errorf("DSN: got %q, want %q", got, want)
	}
}
