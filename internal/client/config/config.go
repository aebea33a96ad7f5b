package config

import "time"

// Identity providers.
const (
	ProviderServer   = "server"
	ProviderFirebase = "firebase"
)

// Favorites backends.
const (
	BackendSQLite = "sqlite"
	BackendS3     = "s3"
	BackendRedis  = "redis"
)

// Config holds runtime settings for the EasyDrink client.
type Config struct {
	CatalogBaseURL       string
	IdentityProvider     string
	ServerEndpointAddr   string
	FirebaseAPIKey       string
	DatabaseDSN          string
	FavoritesBackend     string
	RedisURL             string
	S3                   S3Config
	RandomCount          int
	SessionCheckInterval time.Duration
	LogLevel             string
}

// S3Config is used when FavoritesBackend is "s3".
type S3Config struct {
	Bucket    string `json:"bucket"`
	Region    string `json:"region"`
	Endpoint  string `json:"endpoint"`
	AccessKey string `json:"access_key"`
	SecretKey string `json:"secret_key"`
	Prefix    string `json:"prefix"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.CatalogBaseURL = "https://www.thecocktaildb.com/api/json/v1/1"
	c.IdentityProvider = ProviderServer
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.DatabaseDSN = "easydrink.db"
	c.FavoritesBackend = BackendSQLite
	c.RedisURL = "redis://127.0.0.1:6379/0"
	c.S3 = S3Config{Region: "us-east-1", Prefix: "easydrink/"}
	c.RandomCount = 12
	c.SessionCheckInterval = 30 * time.Second
	c.LogLevel = "warn"
}

// LoadConfig applies defaults, then the JSON file (if any), then flags.
// Later sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
