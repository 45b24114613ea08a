package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("server port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Errorf("database driver = %q, want sqlite", cfg.Database.Driver)
	}
	if cfg.YouTube.MaxRetries != 5 {
		t.Errorf("max retries = %d, want 5", cfg.YouTube.MaxRetries)
	}
	if cfg.YouTube.BackoffBaseSeconds != 0.5 {
		t.Errorf("backoff base = %v, want 0.5", cfg.YouTube.BackoffBaseSeconds)
	}
	if cfg.Jobs.Timeout() != 2*time.Hour {
		t.Errorf("job timeout = %v, want 2h", cfg.Jobs.Timeout())
	}
	if cfg.Jobs.ResultTTL() != 24*time.Hour {
		t.Errorf("result TTL = %v, want 24h", cfg.Jobs.ResultTTL())
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("YOUTUBE_API_KEY", "secret-key")
	t.Setenv("API_MAX_RETRIES", "3")
	t.Setenv("API_BACKOFF_BASE_SECONDS", "0.25")
	t.Setenv("CHANNEL_JOB_TIMEOUT_SECONDS", "600")
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost:5432/tubescope")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.YouTube.APIKey != "secret-key" {
		t.Errorf("api key not bound from env")
	}
	if cfg.YouTube.MaxRetries != 3 {
		t.Errorf("max retries = %d, want 3", cfg.YouTube.MaxRetries)
	}
	if cfg.YouTube.BackoffBaseSeconds != 0.25 {
		t.Errorf("backoff base = %v, want 0.25", cfg.YouTube.BackoffBaseSeconds)
	}
	if cfg.Jobs.Timeout() != 10*time.Minute {
		t.Errorf("job timeout = %v, want 10m", cfg.Jobs.Timeout())
	}
	if cfg.Database.URL != "postgres://u:p@localhost:5432/tubescope" {
		t.Errorf("database url not bound from env")
	}
}

func TestDSNPerDriver(t *testing.T) {
	sqlite := &DatabaseConfig{Driver: "sqlite", Path: "./data/videos.db"}
	if sqlite.DSN() != "./data/videos.db" {
		t.Errorf("sqlite DSN = %q", sqlite.DSN())
	}

	pg := &DatabaseConfig{Driver: "postgres", URL: "postgres://localhost/db"}
	if pg.DSN() != "postgres://localhost/db" {
		t.Errorf("postgres DSN = %q", pg.DSN())
	}
}
