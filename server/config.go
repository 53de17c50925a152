package server

import (
	"encoding/json"
)

type serverConfig struct {
	Port      int    `json:"port"`
	UserAgent string `json:"user_agent"`
}

type discoveryConfig struct {
	Domains              []string `json:"domains"`
	MaxRedirectFetches   int      `json:"max_redirect_fetches"`
	IncludeReservedHosts bool     `json:"include_reserved_hosts"`
	CacheSize            int      `json:"cache_size"`
	CacheTTLSeconds      int      `json:"cache_ttl_seconds"`
}

type webhookConfig struct {
	Endpoint string `json:"endpoint"`
}

type Config struct {
	Server    serverConfig    `json:"server"`
	Discovery discoveryConfig `json:"discovery"`
	Webhook   webhookConfig   `json:"webhook"`
}

func ReadConfig(b []byte) (config Config, err error) {
	if uErr := json.Unmarshal(b, &config); uErr != nil {
		return config, uErr
	}
	return config, nil
}
