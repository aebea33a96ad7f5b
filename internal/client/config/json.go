package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/easydrink/internal/flagx"
	"github.com/dmitrijs2005/easydrink/internal/timex"
)

// JsonConfig is the on-disk shape. Intervals use timex.Duration so they can
// be written as "30s" or as integer nanoseconds.
type JsonConfig struct {
	CatalogBaseURL       string         `json:"catalog_base_url"`
	IdentityProvider     string         `json:"identity_provider"`
	ServerEndpointAddr   string         `json:"server_endpoint_addr"`
	FirebaseAPIKey       string         `json:"firebase_api_key"`
	DatabaseDSN          string         `json:"database_dsn"`
	FavoritesBackend     string         `json:"favorites_backend"`
	RedisURL             string         `json:"redis_url"`
	S3                   *S3Config      `json:"s3"`
	RandomCount          int            `json:"random_count"`
	SessionCheckInterval timex.Duration `json:"session_check_interval"`
	LogLevel             string         `json:"log_level"`
}

func setIf(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// parseJson overlays Config with the file named by -c/-config. Fields absent
// from the file keep their current values. It panics on read or decode
// errors.
func parseJson(cfg *Config) {
	path := flagx.ConfigPath(os.Args[1:])
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}
	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	setIf(&cfg.CatalogBaseURL, jc.CatalogBaseURL)
	setIf(&cfg.IdentityProvider, jc.IdentityProvider)
	setIf(&cfg.ServerEndpointAddr, jc.ServerEndpointAddr)
	setIf(&cfg.FirebaseAPIKey, jc.FirebaseAPIKey)
	setIf(&cfg.DatabaseDSN, jc.DatabaseDSN)
	setIf(&cfg.FavoritesBackend, jc.FavoritesBackend)
	setIf(&cfg.RedisURL, jc.RedisURL)
	setIf(&cfg.LogLevel, jc.LogLevel)
	if jc.S3 != nil {
		setIf(&cfg.S3.Bucket, jc.S3.Bucket)
		setIf(&cfg.S3.Region, jc.S3.Region)
		setIf(&cfg.S3.Endpoint, jc.S3.Endpoint)
		setIf(&cfg.S3.AccessKey, jc.S3.AccessKey)
		setIf(&cfg.S3.SecretKey, jc.S3.SecretKey)
		setIf(&cfg.S3.Prefix, jc.S3.Prefix)
	}
	if jc.RandomCount > 0 {
		cfg.RandomCount = jc.RandomCount
	}
	if jc.SessionCheckInterval.Duration > 0 {
		cfg.SessionCheckInterval = jc.SessionCheckInterval.Duration
	}
}
