// Package config loads gamerdb settings from defaults, an optional YAML file,
// a .env file and GAMERDB_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	persistence "github.com/goliatone/go-persistence-bun"
	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, e.g. GAMERDB_DATABASE_DSN.
const EnvPrefix = "GAMERDB"

// ErrTokenRequired indicates the gateway was started without a bot token.
var ErrTokenRequired = errors.New("config: discord token required")

// Config is the full runtime configuration.
type Config struct {
	Discord  DiscordConfig  `mapstructure:"discord"`
	Database DatabaseConfig `mapstructure:"database"`
	Prefix   PrefixConfig   `mapstructure:"prefix"`
	Flow     FlowConfig     `mapstructure:"flow"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Log      LogConfig      `mapstructure:"log"`
	// Features holds static feature gate overrides. Nested keys are
	// flattened with dots, so `platforms: {manage: false}` disables
	// "platforms.manage".
	Features map[string]any `mapstructure:"features"`
}

// DiscordConfig configures the chat gateway.
type DiscordConfig struct {
	Token         string `mapstructure:"token"`
	ApplicationID string `mapstructure:"application_id"`
	// DevGuildID registers slash commands on one guild instead of globally.
	DevGuildID string `mapstructure:"dev_guild_id"`
	OwnerID    string `mapstructure:"owner_id"`
	// Permissions is the invite link permission bitmask.
	Permissions int64 `mapstructure:"permissions"`
}

// DatabaseConfig implements persistence.Config.
type DatabaseConfig struct {
	Driver         string        `mapstructure:"driver"`
	DSN            string        `mapstructure:"dsn"`
	Debug          bool          `mapstructure:"debug"`
	PingTimeout    time.Duration `mapstructure:"ping_timeout"`
	OtelIdentifier string        `mapstructure:"otel_identifier"`
}

func (c DatabaseConfig) GetDebug() bool                { return c.Debug }
func (c DatabaseConfig) GetDriver() string             { return c.Driver }
func (c DatabaseConfig) GetServer() string             { return c.DSN }
func (c DatabaseConfig) GetPingTimeout() time.Duration { return c.PingTimeout }
func (c DatabaseConfig) GetOtelIdentifier() string     { return c.OtelIdentifier }

// PrefixConfig sets the system default command prefix.
type PrefixConfig struct {
	Default string `mapstructure:"default"`
}

// FlowConfig bounds interactive selections.
type FlowConfig struct {
	TTL           time.Duration `mapstructure:"ttl"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

// CacheConfig toggles and sizes the guild settings cache.
type CacheConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	TTL      time.Duration `mapstructure:"ttl"`
	Capacity int           `mapstructure:"capacity"`
}

// LogConfig configures the logrus adapter.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// LoadOptions points Load at explicit files. Empty values use the defaults:
// gamerdb.yaml in ., ./config or ~/.config/gamerdb, and .env in the working
// directory. A leading ~ is expanded.
type LoadOptions struct {
	File    string
	EnvFile string
}

// Load reads the configuration. A missing config or .env file is not an
// error; an explicitly named config file must exist.
func Load(opts LoadOptions) (*Config, error) {
	envFile, err := homedir.Expand(opts.EnvFile)
	if err != nil {
		return nil, fmt.Errorf("config: env file: %w", err)
	}
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: load %s: %w", envFile, err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.File != "" {
		file, err := homedir.Expand(opts.File)
		if err != nil {
			return nil, fmt.Errorf("config: config file: %w", err)
		}
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", opts.File, err)
		}
	} else {
		v.SetConfigName("gamerdb")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		if home, err := homedir.Dir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "gamerdb"))
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("config: read gamerdb.yaml: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	if token := strings.TrimSpace(os.Getenv("DISCORD_TOKEN")); token != "" {
		cfg.Discord.Token = token
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("discord.token", "")
	v.SetDefault("discord.application_id", "")
	v.SetDefault("discord.dev_guild_id", "")
	v.SetDefault("discord.owner_id", "")
	v.SetDefault("discord.permissions", 264192)
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "file:gamerdb.db?_journal_mode=WAL&_fk=1")
	v.SetDefault("database.debug", false)
	v.SetDefault("database.ping_timeout", 5*time.Second)
	v.SetDefault("database.otel_identifier", "gamerdb")
	v.SetDefault("prefix.default", "gdb/")
	v.SetDefault("flow.ttl", 3*time.Minute)
	v.SetDefault("flow.sweep_interval", time.Minute)
	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.ttl", 10*time.Minute)
	v.SetDefault("cache.capacity", 10000)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// GetPersistence returns the database section as a persistence.Config.
func (c *Config) GetPersistence() persistence.Config {
	return c.Database
}

// ValidateGateway checks what the chat gateway needs to connect.
func (c *Config) ValidateGateway() error {
	if strings.TrimSpace(c.Discord.Token) == "" {
		return ErrTokenRequired
	}
	return nil
}
