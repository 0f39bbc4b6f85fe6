package config

import (
	"os"
	"runtime"
	"time"
)

const (
	// DefaultListen is the address the HTTP surface binds to when LISTEN is unset.
	DefaultListen = "0.0.0.0:8090"
	// DefaultMaxBodySize is the upload/URL-fetch byte ceiling when MAX_BODY_SIZE is unset.
	DefaultMaxBodySize int64 = 1 << 30 // 1 GiB
	// DefaultResultTTL is the staging-file retention window when RESULT_TTL_SEC is unset.
	DefaultResultTTL = 3600 * time.Second
)

// Config holds the service's process-environment configuration. It is read
// once at startup and never mutated afterwards.
type Config struct {
	Listen      string
	NumWorkers  int
	TempDir     string
	MaxBodySize int64
	ResultTTL   time.Duration
	APIKeys     []string
	LogLevel    string
}

// Load reads the configuration from the process environment, applying the
// defaults documented in the service's external interfaces.
func Load() (Config, error) {
	cfg := Config{
		Listen:      parseString("LISTEN", DefaultListen),
		NumWorkers:  parseInt("NUM_WORKERS", runtime.NumCPU()),
		TempDir:     parseString("TEMP_DIR", ""),
		MaxBodySize: int64(parseInt("MAX_BODY_SIZE", int(DefaultMaxBodySize))),
		ResultTTL:   time.Duration(parseInt("RESULT_TTL_SEC", int(DefaultResultTTL/time.Second))) * time.Second,
		APIKeys:     parseStringSlice("API_KEYS"),
		LogLevel:    parseString("LOG_LEVEL", "info"),
	}

	// "values <= 0 ignored" for NUM_WORKERS: fall back to host logical CPU count.
	if cfg.NumWorkers <= 0 {
		cfg.NumWorkers = runtime.NumCPU()
	}

	if cfg.TempDir == "" {
		dir := os.TempDir()
		if dir == "" {
			return Config{}, ErrTempDirUnavailable
		}
		cfg.TempDir = dir
	}

	return cfg, nil
}
