package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Session storage backends for the storefront client.
const (
	SessionBackendSQLite = "sqlite"
	SessionBackendRedis  = "redis"
	SessionBackendMemory = "memory"
)

// ClientConfig configures the storefront client (cmd/storefront).
type ClientConfig struct {
	APIURL string `env:"STOREFRONT_API_URL" envDefault:"http://localhost:8000/api"`

	// Timeout bounds each request. Zero keeps the transport defaults.
	Timeout time.Duration `env:"STOREFRONT_TIMEOUT" envDefault:"0s"`

	SessionBackend string `env:"STOREFRONT_SESSION_BACKEND" envDefault:"sqlite"`

	// SessionPath is the sqlite file holding the session. Empty means
	// <user config dir>/storefront/session.db.
	SessionPath string `env:"STOREFRONT_SESSION_PATH"`

	RedisAddr     string `env:"STOREFRONT_REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"STOREFRONT_REDIS_PASSWORD"`
	RedisDB       int    `env:"STOREFRONT_REDIS_DB" envDefault:"0"`
	RedisPrefix   string `env:"STOREFRONT_REDIS_PREFIX" envDefault:"storefront:session:"`

	Log LogConfig
}

// Sanitize applies guardrails to values loaded from env.
func (c *ClientConfig) Sanitize() {
	c.APIURL = strings.TrimRight(strings.TrimSpace(c.APIURL), "/")
	if c.Timeout < 0 {
		c.Timeout = 0
	}
	switch strings.ToLower(strings.TrimSpace(c.SessionBackend)) {
	case SessionBackendRedis:
		c.SessionBackend = SessionBackendRedis
	case SessionBackendMemory:
		c.SessionBackend = SessionBackendMemory
	default:
		c.SessionBackend = SessionBackendSQLite
	}
	if c.SessionBackend == SessionBackendSQLite && c.SessionPath == "" {
		c.SessionPath = defaultSessionPath()
	}
	c.Log.Sanitize()
}

func defaultSessionPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "storefront", "session.db")
}

// LoadClient reads ClientConfig from the environment.
func LoadClient() (ClientConfig, error) {
	var cfg ClientConfig
	if err := parse(&cfg); err != nil {
		return cfg, err
	}
	cfg.Sanitize()
	return cfg, nil
}
