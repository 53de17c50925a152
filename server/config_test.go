package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadConfig(t *testing.T) {
	b := []byte(`
	{
		"server": {
		  "port": 234,
		  "user_agent": "streammill-test"
		},
		"discovery": {
		  "domains": ["me.example.com", "example.org"],
		  "max_redirect_fetches": 10,
		  "include_reserved_hosts": true,
		  "cache_size": 100,
		  "cache_ttl_seconds": 60
		},
		"webhook": {
		  "endpoint": "https://hooks.example.com/in"
		}
	  }`)
	cfg, err := ReadConfig(b)
	require.NoError(t, err)

	expected := Config{
		Server: serverConfig{
			Port:      234,
			UserAgent: "streammill-test",
		},
		Discovery: discoveryConfig{
			Domains:              []string{"me.example.com", "example.org"},
			MaxRedirectFetches:   10,
			IncludeReservedHosts: true,
			CacheSize:            100,
			CacheTTLSeconds:      60,
		},
		Webhook: webhookConfig{
			Endpoint: "https://hooks.example.com/in",
		},
	}
	assert.Equal(t, expected, cfg)
}

func TestReadConfig_Invalid(t *testing.T) {
	_, err := ReadConfig([]byte("{not json"))
	require.Error(t, err)
}
