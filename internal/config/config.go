package config // package config loads application configuration from environment variables

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration values. Each field corresponds to an
// environment variable. Access and refresh tokens are signed with separate
// secrets so that a leaked access secret cannot mint long-lived refresh tokens.
type Config struct {
	Env              string // application environment ("dev", "prod")
	Port             string // HTTP port to listen on
	DBUser           string // database username
	DBPass           string // database password (optional)
	DBHost           string // database host address
	DBPort           string // database port number
	DBName           string // database name
	AccessSecret     string // secret used to sign access JWTs
	RefreshSecret    string // secret used to sign refresh JWTs; must differ from AccessSecret
	AccessTTLMin     int    // access token time-to-live in minutes
	RefreshTTLDays   int    // refresh token time-to-live in days
	BcryptCost       int    // bcrypt cost for password hashing
	AMQPURL          string // RabbitMQ connection URL for the audit pipeline
	CleanupIntervalH int    // hours between expired refresh-token sweeps
}

// IsProd reports whether the service runs with production hardening
// (secure cookies, JSON logs).
func (c Config) IsProd() bool { return c.Env == "prod" }

// Load reads configuration from the environment, after loading an optional
// .env file for local development. Required variables are enforced by must();
// missing values cause the program to exit with a fatal log message.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		Env:              must("APP_ENV"),
		Port:             must("APP_PORT"),
		DBUser:           must("DB_USER"),
		DBPass:           os.Getenv("DB_PASS"),
		DBHost:           must("DB_HOST"),
		DBPort:           must("DB_PORT"),
		DBName:           must("DB_NAME"),
		AccessSecret:     must("JWT_ACCESS_SECRET"),
		RefreshSecret:    must("JWT_REFRESH_SECRET"),
		AccessTTLMin:     intOr("ACCESS_TOKEN_TTL_MIN", 15),
		RefreshTTLDays:   intOr("REFRESH_TOKEN_TTL_DAYS", 7),
		BcryptCost:       intOr("BCRYPT_COST", 12),
		AMQPURL:          os.Getenv("RABBITMQ_URL"),
		CleanupIntervalH: intOr("TOKEN_CLEANUP_INTERVAL_H", 1),
	}
	if cfg.AccessSecret == cfg.RefreshSecret {
		log.Fatal("JWT_ACCESS_SECRET and JWT_REFRESH_SECRET must differ")
	}
	return cfg
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// intOr retrieves an integer environment variable, falling back to def when
// unset. An unparsable value is fatal rather than silently defaulted.
func intOr(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}
