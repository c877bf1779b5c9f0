package mappa

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/syssam/mappa/dialect"
	"github.com/syssam/mappa/security"
)

// DefaultBatchSize caps the rows per generated multi-row INSERT.
const DefaultBatchSize = 500

// Duration is a time.Duration that unmarshals from yaml strings like
// "250ms" or "2s".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(n *yaml.Node) error {
	var s string
	if err := n.Decode(&s); err != nil {
		return err
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("mappa: invalid duration %q: %w", s, err)
	}
	*d = Duration(v)
	return nil
}

// Std returns the standard library duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// PoolConfig maps onto the database/sql pool settings.
type PoolConfig struct {
	MaxOpen         int      `yaml:"max_open"`
	MaxIdle         int      `yaml:"max_idle"`
	ConnMaxLifetime Duration `yaml:"conn_max_lifetime"`
	ConnMaxIdleTime Duration `yaml:"conn_max_idle_time"`
}

// CacheConfig enables the built-in query cache.
type CacheConfig struct {
	Enabled bool     `yaml:"enabled"`
	TTL     Duration `yaml:"ttl"`
}

// Config describes one database connection and the mapper behavior on
// top of it. URL wins over the structured host fields when both are
// set.
type Config struct {
	Platform string `yaml:"platform"`
	URL      string `yaml:"url"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`

	// DriverName overrides the registered database/sql driver, needed
	// for Oracle and SQL Server whose client libraries are registered
	// by the application.
	DriverName string `yaml:"driver_name"`

	Pool               PoolConfig  `yaml:"pool"`
	LogLevel           string      `yaml:"log_level"`
	SlowQueryThreshold Duration    `yaml:"slow_query_threshold"`
	Strict             bool        `yaml:"strict"`
	SecurityPolicy     string      `yaml:"security_policy"`
	BatchSize          int         `yaml:"batch_size"`
	Cache              CacheConfig `yaml:"cache"`

	// Logger receives the mapper's structured logs; nil falls back to a
	// text handler on stderr at the configured level.
	Logger *slog.Logger `yaml:"-"`
}

// LoadConfig reads and parses a yaml configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("mappa: read config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig parses yaml configuration bytes.
func ParseConfig(data []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("mappa: parse config: %w", err)
	}
	return &c, nil
}

// validate checks the configuration and resolves defaults.
func (c *Config) validate() (dialect.Dialect, security.Policy, error) {
	d, err := dialect.Lookup(dialect.Platform(c.Platform))
	if err != nil {
		return nil, 0, NewConfigError("platform", fmt.Sprintf("unknown platform %q", c.Platform))
	}
	policy, ok := security.ParsePolicy(c.SecurityPolicy)
	if !ok {
		return nil, 0, NewConfigError("security_policy", fmt.Sprintf("unknown policy %q", c.SecurityPolicy))
	}
	if c.BatchSize < 0 {
		return nil, 0, NewConfigError("batch_size", "must not be negative")
	}
	if c.BatchSize == 0 {
		c.BatchSize = DefaultBatchSize
	}
	return d, policy, nil
}

// dsn resolves the data source name: the URL when given, otherwise one
// assembled from the structured fields.
func (c *Config) dsn(p dialect.Platform) (string, error) {
	if c.URL != "" {
		return c.URL, nil
	}
	switch p {
	case dialect.MySQL:
		host, port := c.Host, c.Port
		if host == "" {
			host = "127.0.0.1"
		}
		if port == 0 {
			port = 3306
		}
		if c.Database == "" {
			return "", NewConfigError("database", "required for mysql")
		}
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
			c.Username, c.Password, host, port, c.Database), nil
	case dialect.Postgres:
		host, port := c.Host, c.Port
		if host == "" {
			host = "127.0.0.1"
		}
		if port == 0 {
			port = 5432
		}
		if c.Database == "" {
			return "", NewConfigError("database", "required for postgres")
		}
		dsn := fmt.Sprintf("host=%s port=%d dbname=%s", host, port, c.Database)
		if c.Username != "" {
			dsn += " user=" + c.Username
		}
		if c.Password != "" {
			dsn += " password=" + c.Password
		}
		return dsn, nil
	case dialect.SQLite:
		if c.Database == "" {
			return "", NewConfigError("database", "required for sqlite (file path or :memory:)")
		}
		return c.Database, nil
	case dialect.Oracle, dialect.MSSQL:
		return "", NewConfigError("url", fmt.Sprintf("required for %s", p))
	}
	return "", NewConfigError("platform", "unsupported")
}

// logLevel maps the configured level onto slog.
func (c *Config) logLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
