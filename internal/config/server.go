package config

import (
	"strings"
	"time"
)

// ServerConfig configures the reference REST backend (cmd/api, cmd/migrate,
// cmd/seed, cmd/importer).
type ServerConfig struct {
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8000"`

	// BasePath prefixes every API route.
	BasePath string `env:"API_BASE_PATH" envDefault:"/api"`

	// DBConnString selects Postgres. Empty runs the API on in-memory repositories.
	DBConnString string `env:"DB_DSN"`
	DBMaxConns   int32  `env:"DB_MAX_CONNS" envDefault:"10"`

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	TokenTTL        time.Duration `env:"TOKEN_TTL" envDefault:"48h"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173,http://localhost:3000"`

	// Seed admin account created by cmd/seed and by in-memory mode.
	SeedAdminEmail    string `env:"SEED_ADMIN_EMAIL" envDefault:"admin@gmail.com"`
	SeedAdminPassword string `env:"SEED_ADMIN_PASSWORD" envDefault:"12345678"`

	Log LogConfig
}

// Sanitize applies guardrails to values loaded from env.
func (c *ServerConfig) Sanitize() {
	c.BasePath = "/" + strings.Trim(strings.TrimSpace(c.BasePath), "/")
	if c.BasePath == "/" {
		c.BasePath = ""
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = 10 * time.Second
	}
	if c.TokenTTL <= 0 {
		c.TokenTTL = 48 * time.Hour
	}
	origins := c.CORSAllowedOrigins[:0]
	for _, o := range c.CORSAllowedOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	c.CORSAllowedOrigins = origins
	c.Log.Sanitize()
}

// InMemory reports whether no database is configured.
func (c ServerConfig) InMemory() bool {
	return strings.TrimSpace(c.DBConnString) == ""
}

// LoadServer reads ServerConfig from the environment.
func LoadServer() (ServerConfig, error) {
	var cfg ServerConfig
	if err := parse(&cfg); err != nil {
		return cfg, err
	}
	cfg.Sanitize()
	return cfg, nil
}
