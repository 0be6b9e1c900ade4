package swapbook

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/swapbook/swapbook/swapbook/config"
)

// LoadConfig reads the TOML config at path, applies .env and environment
// overrides, then fills defaults for anything left unset.
func LoadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err = toml.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err = loadDotEnv(); err != nil {
		return nil, err
	}
	cfg.applyEnv()
	cfg.applyDefaults()

	if err = cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type Config struct {
	Log    LogConfig    `toml:"log"`
	DB     DBConfig     `toml:"db"`
	Web    WebConfig    `toml:"web"`
	Notify NotifyConfig `toml:"notify"`
	Query  QueryConfig  `toml:"query"`
}

type LogConfig struct {
	Level     slog.Level `toml:"level"`
	Format    string     `toml:"format"`
	AddSource bool       `toml:"add_source"`
}

type DBConfig struct {
	Driver       string `toml:"driver"`
	Host         string `toml:"host"`
	Port         int    `toml:"port"`
	User         string `toml:"user"`
	Password     string `toml:"password"`
	Database     string `toml:"database"`
	PoolSize     int    `toml:"pool_size"`
	MaxIdleConns int    `toml:"max_idle_conns"`
	MaxLifetime  int    `toml:"max_lifetime"`
	Path         string `toml:"path"`
}

type WebConfig struct {
	Host       string        `toml:"host"`
	Port       int           `toml:"port"`
	RateLimit  int           `toml:"rate_limit"`
	RateWindow time.Duration `toml:"rate_window"`
}

type NotifyConfig struct {
	Async               *bool         `toml:"async"`
	Timeout             time.Duration `toml:"timeout"`
	DiscordWebhookID    string        `toml:"discord_webhook_id"`
	DiscordWebhookToken string        `toml:"discord_webhook_token"`
	RedisAddr           string        `toml:"redis_addr"`
	RedisPassword       string        `toml:"redis_password"`
	RedisDB             int           `toml:"redis_db"`
}

// IsAsync reports whether post-commit hooks run off the request goroutine.
func (n NotifyConfig) IsAsync() bool {
	return n.Async == nil || *n.Async
}

type QueryConfig struct {
	CacheSize int `toml:"cache_size"`
	PageSize  int `toml:"page_size"`
}

// Validate rejects configurations that cannot start.
func (c *Config) Validate() error {
	switch c.DB.Driver {
	case config.DriverPostgres:
		if c.DB.Host == "" || c.DB.Database == "" {
			return fmt.Errorf("postgres driver requires db.host and db.database")
		}
	case config.DriverSQLite:
		if c.DB.Path == "" {
			return fmt.Errorf("sqlite driver requires db.path")
		}
	default:
		return fmt.Errorf("unknown db driver %q", c.DB.Driver)
	}
	if (c.Notify.DiscordWebhookID == "") != (c.Notify.DiscordWebhookToken == "") {
		return fmt.Errorf("notify.discord_webhook_id and notify.discord_webhook_token must be set together")
	}
	return nil
}

func loadDotEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() {
	overrides := map[string]*string{
		"SWAPBOOK_DB_HOST":               &c.DB.Host,
		"SWAPBOOK_DB_PASSWORD":           &c.DB.Password,
		"SWAPBOOK_DISCORD_WEBHOOK_TOKEN": &c.Notify.DiscordWebhookToken,
		"SWAPBOOK_REDIS_PASSWORD":        &c.Notify.RedisPassword,
	}
	for key, field := range overrides {
		if v, ok := os.LookupEnv(key); ok {
			*field = v
		}
	}
}

func (c *Config) applyDefaults() {
	if c.DB.Driver == "" {
		c.DB.Driver = config.DriverPostgres
	}
	if c.DB.Port == 0 {
		c.DB.Port = 5432
	}
	if c.DB.PoolSize == 0 {
		c.DB.PoolSize = 10
	}
	if c.Web.Host == "" {
		c.Web.Host = "0.0.0.0"
	}
	if c.Web.Port == 0 {
		c.Web.Port = 8080
	}
	if c.Web.RateLimit == 0 {
		c.Web.RateLimit = 100
	}
	if c.Web.RateWindow == 0 {
		c.Web.RateWindow = time.Minute
	}
	if c.Notify.Timeout == 0 {
		c.Notify.Timeout = config.NotifyTimeout
	}
	if c.Query.CacheSize == 0 {
		c.Query.CacheSize = config.CacheSize
	}
	if c.Query.PageSize == 0 {
		c.Query.PageSize = config.DefaultPageSize
	}
}
