package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PDF417_TRY_HARDER", "PDF417_TIMEOUT", "PDF417_LOG_LEVEL", "PDF417_CACHE_SIZE"} {
		t.Setenv(key, "")
	}
	cfg := Load()
	if cfg.TryHarder {
		t.Error("TryHarder defaults to true")
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v", cfg.Timeout)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
	if cfg.CacheSize != 64 {
		t.Errorf("CacheSize = %d", cfg.CacheSize)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PDF417_TRY_HARDER", "true")
	t.Setenv("PDF417_TIMEOUT", "2s")
	t.Setenv("PDF417_LOG_LEVEL", "debug")
	t.Setenv("PDF417_CACHE_SIZE", "8")
	cfg := Load()
	if !cfg.TryHarder || cfg.Timeout != 2*time.Second || cfg.LogLevel != "debug" || cfg.CacheSize != 8 {
		t.Errorf("got %+v", cfg)
	}
}

func TestLoadIgnoresBadValues(t *testing.T) {
	t.Setenv("PDF417_TRY_HARDER", "maybe")
	t.Setenv("PDF417_TIMEOUT", "soon")
	t.Setenv("PDF417_CACHE_SIZE", "-3")
	cfg := Load()
	if cfg.TryHarder || cfg.Timeout != 30*time.Second || cfg.CacheSize != 64 {
		t.Errorf("got %+v", cfg)
	}
}
