package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "https://www.thecocktaildb.com/api/json/v1/1", c.CatalogBaseURL)
	assert.Equal(t, ProviderServer, c.IdentityProvider)
	assert.Equal(t, "127.0.0.1:50051", c.ServerEndpointAddr)
	assert.Equal(t, BackendSQLite, c.FavoritesBackend)
	assert.Equal(t, 12, c.RandomCount)
	assert.Equal(t, 30*time.Second, c.SessionCheckInterval)
}

func TestLoadConfig_Precedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	path := writeTempJSON(t, "", "", map[string]any{
		"identity_provider":      "firebase",
		"server_endpoint_addr":   "json:1",
		"session_check_interval": "1m",
	})
	os.Args = []string{"easydrink", "-c", path, "-a", "flag:2"}

	cfg := LoadConfig()
	require.NotNil(t, cfg)
	assert.Equal(t, ProviderFirebase, cfg.IdentityProvider)
	assert.Equal(t, "flag:2", cfg.ServerEndpointAddr)
	assert.Equal(t, time.Minute, cfg.SessionCheckInterval)
	assert.Equal(t, 12, cfg.RandomCount)
}
