// Package config reads the decoder CLI defaults from the environment.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the decoder CLI defaults. Flags override each field.
type Config struct {
	TryHarder bool
	Timeout   time.Duration
	LogLevel  string
	CacheSize int
}

// Load reads PDF417_TRY_HARDER, PDF417_TIMEOUT, PDF417_LOG_LEVEL and
// PDF417_CACHE_SIZE. Unset or unparsable values keep their defaults.
func Load() *Config {
	return &Config{
		TryHarder: getBool("PDF417_TRY_HARDER", false),
		Timeout:   getDuration("PDF417_TIMEOUT", 30*time.Second),
		LogLevel:  getEnv("PDF417_LOG_LEVEL", "warn"),
		CacheSize: getInt("PDF417_CACHE_SIZE", 64),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getBool(key string, defaultVal bool) bool {
	if v, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return v
	}
	return defaultVal
}

func getInt(key string, defaultVal int) int {
	if v, err := strconv.Atoi(getEnv(key, "")); err == nil && v > 0 {
		return v
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	if v, err := time.ParseDuration(getEnv(key, "")); err == nil && v > 0 {
		return v
	}
	return defaultVal
}
