package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig     `mapstructure:"server"`
	Database  DatabaseConfig   `mapstructure:"database"`
	Redis     RedisConfig      `mapstructure:"redis"`
	JWT       JWTConfig        `mapstructure:"jwt"`
	Ledger    LedgerConfig     `mapstructure:"ledger"`
	Channels  ChannelsConfig   `mapstructure:"channels"`
	Operators []OperatorConfig `mapstructure:"operators"`
	Log       LogConfig        `mapstructure:"log"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // debug, release, test
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig configures the journal and audit store. When Enabled is
// false the ledger runs purely in memory.
type DatabaseConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// RedisConfig configures the idempotency cache, session denylist and rate
// limiter. All three are skipped when Enabled is false.
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns the Redis address string.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type JWTConfig struct {
	Secret string `mapstructure:"secret"`
	Issuer string `mapstructure:"issuer"`
}

type LedgerConfig struct {
	IdempotencyTTL time.Duration `mapstructure:"idempotency_ttl"`
	SessionTTL     time.Duration `mapstructure:"session_ttl"`
	JournalBuffer  int           `mapstructure:"journal_buffer"`
}

// ATMConfig is an ATM registered at boot with its opening cash reservoir.
type ATMConfig struct {
	ID   string `mapstructure:"id"`
	Cash int64  `mapstructure:"cash"`
}

// ChannelsConfig lists the terminals that exist before the first request.
// EDCs need a merchant account and are registered through the API.
type ChannelsConfig struct {
	ATMs     []ATMConfig `mapstructure:"atms"`
	Counters []string    `mapstructure:"counters"`
}

// OperatorConfig is a staff login allowed to onboard customers, run
// maintenance jobs and read any statement.
type OperatorConfig struct {
	ID  string `mapstructure:"id"`
	Key string `mapstructure:"key"`
}

// minOperatorKeyLen is the shortest operator key accepted at boot.
const minOperatorKeyLen = 16

// OperatorKeys maps operator id to key.
func (c *Config) OperatorKeys() map[string]string {
	keys := make(map[string]string, len(c.Operators))
	for _, op := range c.Operators {
		keys[op.ID] = op.Key
	}
	return keys
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Pretty bool   `mapstructure:"pretty"` // human-readable output (dev only)
}

// Load reads configuration from file and environment variables.
// Environment variables override file values. Prefix: LEDGER_.
// Nested keys use underscore: LEDGER_DATABASE_HOST, LEDGER_JWT_SECRET, etc.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "ledger")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("database.min_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.issuer", "retail-bank-ledger")
	v.SetDefault("ledger.idempotency_ttl", "24h")
	v.SetDefault("ledger.session_ttl", "5m")
	v.SetDefault("ledger.journal_buffer", 256)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	// File config
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables: LEDGER_DATABASE_HOST -> database.host
	v.SetEnvPrefix("LEDGER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// The file is optional when searching; env vars can suffice.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the ledger cannot start with.
func (c *Config) Validate() error {
	if c.Ledger.SessionTTL <= 0 {
		return errors.New("ledger.session_ttl must be positive")
	}
	if c.Ledger.JournalBuffer < 0 {
		return errors.New("ledger.journal_buffer cannot be negative")
	}
	seen := make(map[string]struct{})
	for _, atm := range c.Channels.ATMs {
		if atm.ID == "" {
			return errors.New("channels.atms: id is required")
		}
		if atm.Cash < 0 {
			return fmt.Errorf("channels.atms[%s]: cash cannot be negative", atm.ID)
		}
		if _, dup := seen[atm.ID]; dup {
			return fmt.Errorf("channels: duplicate id %s", atm.ID)
		}
		seen[atm.ID] = struct{}{}
	}
	for _, id := range c.Channels.Counters {
		if id == "" {
			return errors.New("channels.counters: id is required")
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("channels: duplicate id %s", id)
		}
		seen[id] = struct{}{}
	}
	operators := make(map[string]struct{})
	for _, op := range c.Operators {
		if op.ID == "" {
			return errors.New("operators: id is required")
		}
		if len(op.Key) < minOperatorKeyLen {
			return fmt.Errorf("operators[%s]: key must be at least %d characters", op.ID, minOperatorKeyLen)
		}
		if _, dup := operators[op.ID]; dup {
			return fmt.Errorf("operators: duplicate id %s", op.ID)
		}
		operators[op.ID] = struct{}{}
	}
	return nil
}
