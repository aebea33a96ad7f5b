package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Environment variables read by parseEnv.
const (
	EnvGRPCAddr      = "EASYDRINK_GRPC_ADDR"
	EnvHTTPAddr      = "EASYDRINK_HTTP_ADDR"
	EnvDatabaseDSN   = "EASYDRINK_DATABASE_DSN"
	EnvSecretKey     = "EASYDRINK_SECRET_KEY"
	EnvAccessTTL     = "EASYDRINK_ACCESS_TOKEN_TTL"
	EnvRefreshTTL    = "EASYDRINK_REFRESH_TOKEN_TTL"
	EnvLoginAttempts = "EASYDRINK_LOGIN_ATTEMPTS_PER_MINUTE"
	EnvLogLevel      = "EASYDRINK_LOG_LEVEL"
)

// dotenvFiles are loaded into the process environment if present. Variables
// already set are not overridden.
var dotenvFiles = []string{".env"}

// parseEnv overlays Config with EASYDRINK_* variables. It panics on a
// malformed .env file or an unparsable value.
func parseEnv(cfg *Config) {
	for _, f := range dotenvFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			panic(err)
		}
	}

	if v := os.Getenv(EnvGRPCAddr); v != "" {
		cfg.EndpointAddrGRPC = v
	}
	if v := os.Getenv(EnvHTTPAddr); v != "" {
		cfg.EndpointAddrHTTP = v
	}
	if v := os.Getenv(EnvDatabaseDSN); v != "" {
		cfg.DatabaseDSN = v
	}
	if v := os.Getenv(EnvSecretKey); v != "" {
		cfg.SecretKey = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv(EnvAccessTTL); v != "" {
		cfg.AccessTokenValidityDuration = mustDuration(v)
	}
	if v := os.Getenv(EnvRefreshTTL); v != "" {
		cfg.RefreshTokenValidityDuration = mustDuration(v)
	}
	if v := os.Getenv(EnvLoginAttempts); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			panic(err)
		}
		cfg.LoginAttemptsPerMinute = n
	}
}

func mustDuration(v string) time.Duration {
	d, err := time.ParseDuration(v)
	if err != nil {
		panic(err)
	}
	return d
}
