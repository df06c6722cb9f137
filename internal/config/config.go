package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	HTTPAddr string

	// Artifact backend: fs (directory of JSON slices) or sqlite
	// (single-file artifact db).
	StoreDriver string
	StoreDSN    string

	// NormsPath overrides the embedded norms tables when set.
	NormsPath string

	// CacheTTL bounds how long loaded slices stay in memory.
	CacheTTL time.Duration

	CORSOrigins []string
}

func FromEnv() Config {
	return Config{
		HTTPAddr:    envOr("HTTP_ADDR", ":8080"),
		StoreDriver: envOr("STORE_DRIVER", "fs"),
		StoreDSN:    envOr("STORE_DSN", "./data"),
		NormsPath:   os.Getenv("NORMS_PATH"),
		CacheTTL:    envDuration("CACHE_TTL", 5*time.Minute),
		CORSOrigins: csvOr("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173"),
	}
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envDuration(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	return def
}

func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
