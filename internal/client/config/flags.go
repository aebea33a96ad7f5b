package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/easydrink/internal/flagx"
)

// parseFlags overlays Config with command-line flags:
//
//	-u string   recipe catalog base URL
//	-p string   identity provider (server|firebase)
//	-a string   identity server address (server)
//	-k string   Firebase web API key (firebase)
//	-d string   local SQLite database path
//	-f string   favorites backend (sqlite|s3|redis)
//	-r string   Redis URL (redis backend)
//	-n int      number of random recipes to fetch
//	-i int      session check interval (in seconds)
//	-l string   log level
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-u", "-p", "-a", "-k", "-d", "-f", "-r", "-n", "-i", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.CatalogBaseURL, "u", cfg.CatalogBaseURL, "recipe catalog base URL")
	fs.StringVar(&cfg.IdentityProvider, "p", cfg.IdentityProvider, "identity provider (server|firebase)")
	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port to access identity server")
	fs.StringVar(&cfg.FirebaseAPIKey, "k", cfg.FirebaseAPIKey, "Firebase web API key")
	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "local database path")
	fs.StringVar(&cfg.FavoritesBackend, "f", cfg.FavoritesBackend, "favorites backend (sqlite|s3|redis)")
	fs.StringVar(&cfg.RedisURL, "r", cfg.RedisURL, "redis URL")
	fs.IntVar(&cfg.RandomCount, "n", cfg.RandomCount, "number of random recipes")
	interval := fs.Int("i", int(cfg.SessionCheckInterval.Seconds()), "session check interval (in seconds)")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level (debug|info|warn|error)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.SessionCheckInterval = time.Duration(*interval) * time.Second
}
