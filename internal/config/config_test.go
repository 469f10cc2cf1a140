package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"STORE_BACKEND", "REDIS_ENABLED", "ASSIGNMENT_STRICT", "TRIP_CURRENCY", "CORS_ALLOWED_ORIGINS"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.Store.Backend != BackendMemory {
		t.Errorf("expected memory backend, got %s", cfg.Store.Backend)
	}
	if cfg.Redis.Enabled {
		t.Error("expected redis disabled for memory backend")
	}
	if cfg.Assignment.Strict {
		t.Error("expected advisory assignment by default")
	}
	if cfg.Trips.Currency != "INR" {
		t.Errorf("expected INR, got %s", cfg.Trips.Currency)
	}
	if cfg.Server.ReadTimeout != 10*time.Second {
		t.Errorf("expected 10s read timeout, got %v", cfg.Server.ReadTimeout)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("STORE_BACKEND", "redis")
	t.Setenv("ASSIGNMENT_STRICT", "true")
	t.Setenv("TRIP_CURRENCY", "USD")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://localhost:3000, https://fleet.example.com,")
	t.Setenv("SERVER_READ_TIMEOUT", "not-a-duration")

	cfg := Load()

	if !cfg.Redis.Enabled {
		t.Error("expected redis enabled for redis backend")
	}
	if !cfg.Assignment.Strict {
		t.Error("expected strict assignment")
	}
	if cfg.Trips.Currency != "USD" {
		t.Errorf("expected USD, got %s", cfg.Trips.Currency)
	}
	if len(cfg.Server.AllowedOrigins) != 2 || cfg.Server.AllowedOrigins[1] != "https://fleet.example.com" {
		t.Errorf("unexpected origins: %v", cfg.Server.AllowedOrigins)
	}
	if cfg.Server.ReadTimeout != 10*time.Second {
		t.Errorf("expected fallback read timeout, got %v", cfg.Server.ReadTimeout)
	}
}
