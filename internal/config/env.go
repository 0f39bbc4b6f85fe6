// Package config loads the service's environment-variable configuration.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/Neur0toxine/atranscoder-rpc/internal/logging"
	"github.com/rs/zerolog"
)

// parseString reads a string from an environment variable or returns defaultValue.
func parseString(key, defaultValue string) string {
	return parseStringWithLogger(logging.WithComponent("config"), key, defaultValue)
}

func parseStringWithLogger(logger zerolog.Logger, key, defaultValue string) string {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		logger.Debug().Str("key", key).Str("default", defaultValue).Str("source", "default").Msg("using default value")
		return defaultValue
	}
	logger.Debug().Str("key", key).Str("source", "environment").Msg("using environment variable")
	return value
}

// parseInt reads an integer from an environment variable, falling back to
// defaultValue on absence or a parse error.
func parseInt(key string, defaultValue int) int {
	logger := logging.WithComponent("config")
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		logger.Debug().Str("key", key).Int("default", defaultValue).Str("source", "default").Msg("using default value")
		return defaultValue
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		logger.Warn().Str("key", key).Str("value", v).Int("default", defaultValue).Msg("invalid integer in environment variable, using default")
		return defaultValue
	}
	logger.Debug().Str("key", key).Int("value", i).Str("source", "environment").Msg("using environment variable")
	return i
}

// parseStringSlice splits a comma-separated environment variable into a
// trimmed, non-empty slice of entries. Absent or empty returns nil.
func parseStringSlice(key string) []string {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
