package models

import (
	"fmt"
	"os"
)

// ApplyEnv overlays environment variables on the config. Proxy credentials
// deliberately live in the environment, not the YAML file.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("UPSTREAM_URL"); v != "" {
		c.UpstreamURL = v
	}
	if v := os.Getenv("RANKENGINE_CACHE_DIR"); v != "" {
		c.CacheDir = v
	}
	if v := os.Getenv("RANKENGINE_DB_PATH"); v != "" {
		c.DBPath = v
	}
	if proxy := proxyFromEnv(); proxy != "" {
		c.Proxies = append(c.Proxies, proxy)
	}
}

// proxyFromEnv builds a proxy URL either from PROXY_URL directly or from the
// PROXY_HOST/PORT/USER/PASS quartet.
func proxyFromEnv() string {
	if v := os.Getenv("PROXY_URL"); v != "" {
		return v
	}
	host := os.Getenv("PROXY_HOST")
	port := os.Getenv("PROXY_PORT")
	if host == "" || port == "" {
		return ""
	}
	user := os.Getenv("PROXY_USER")
	pass := os.Getenv("PROXY_PASS")
	if user != "" && pass != "" {
		return fmt.Sprintf("http://%s:%s@%s:%s", user, pass, host, port)
	}
	return fmt.Sprintf("http://%s:%s", host, port)
}
