package config

import (
	"os"
	"strconv"
	"time"
)

// RateLimitConfig controls the token-bucket limiter applied to the auth
// endpoints. Credential-stuffing resistance comes from the bucket capacity
// and refill rate, keyed per client IP.
type RateLimitConfig struct {
	Enabled        bool
	Capacity       int
	RefillTokens   int
	RefillInterval time.Duration
	TTL            time.Duration
	Prefix         string
}

// LoadRateLimitConfig reads limiter settings from the environment with
// defaults suitable for interactive login traffic.
func LoadRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Enabled:        boolOr("RATE_LIMIT_ENABLED", true),
		Capacity:       intEnvOr("RATE_LIMIT_CAPACITY", 10),
		RefillTokens:   intEnvOr("RATE_LIMIT_REFILL_TOKENS", 1),
		RefillInterval: durOr("RATE_LIMIT_REFILL_INTERVAL", 3*time.Second),
		TTL:            durOr("RATE_LIMIT_TTL", 10*time.Minute),
		Prefix:         strOr("RATE_LIMIT_PREFIX", "rl:auth"),
	}
}

func boolOr(key string, def bool) bool {
	switch os.Getenv(key) {
	case "true", "1":
		return true
	case "false", "0":
		return false
	}
	return def
}

func intEnvOr(key string, def int) int {
	if s := os.Getenv(key); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
	}
	return def
}

func durOr(key string, def time.Duration) time.Duration {
	if s := os.Getenv(key); s != "" {
		if d, err := time.ParseDuration(s); err == nil {
			return d
		}
	}
	return def
}

func strOr(key, def string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return def
}
