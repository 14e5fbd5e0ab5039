package config

import (
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	API      APIConfig      `mapstructure:"api"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Session  SessionConfig  `mapstructure:"session"`
	Log      LogConfig      `mapstructure:"log"`
}

// ServerConfig holds API server configuration
type ServerConfig struct {
	Port            int      `mapstructure:"port"`
	Host            string   `mapstructure:"host"`
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
	ShutdownTimeout int      `mapstructure:"shutdown_timeout"`
}

func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// APIConfig holds the logbook API client configuration
type APIConfig struct {
	BaseURL              string `mapstructure:"base_url"`
	Timeout              int    `mapstructure:"timeout"`
	MaxRetries           int    `mapstructure:"max_retries"`
	MaxRequestsPerSecond int    `mapstructure:"max_requests_per_second"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	SSLMode  string `mapstructure:"ssl_mode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// RedisConfig holds Redis connection details
type RedisConfig struct {
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	Password  string `mapstructure:"password"`
	Database  int    `mapstructure:"database"`
	KeyPrefix string `mapstructure:"key_prefix"`
	TTL       int    `mapstructure:"ttl"` // seconds, reference lists

	StreamPrefix   string `mapstructure:"stream_prefix"`
	ActivityMaxLen int64  `mapstructure:"activity_max_len"`
}

func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// AuthConfig holds identity token settings
type AuthConfig struct {
	Secret   string `mapstructure:"secret"`
	TokenTTL int    `mapstructure:"token_ttl"` // hours

	// TrustUsernameHeader accepts a bare X-Username header when no bearer token is sent.
	TrustUsernameHeader bool `mapstructure:"trust_username_header"`
}

// DefaultSecret signs tokens when no auth.secret is configured.
const DefaultSecret = "change-me"

// UsesDefaultSecret reports whether tokens would be signed with a blank or built-in secret.
func (c AuthConfig) UsesDefaultSecret() bool {
	return c.Secret == "" || c.Secret == DefaultSecret
}

// SessionConfig holds where the CLI keeps the logged in user
type SessionConfig struct {
	Path string `mapstructure:"path"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load loads configuration from a YAML file with environment variable overrides.
// An empty path searches ./config.yaml and $HOME/.logbook/config.yaml; a missing
// file falls back to defaults.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.logbook")
	}

	setDefaults(v)

	v.SetEnvPrefix("logbook")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		log.Debug("No config file found, using defaults and environment")
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	return &config, nil
}

// ConfigureLogging applies the log section to the global logrus logger.
func ConfigureLogging(cfg LogConfig) error {
	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	log.SetLevel(level)

	switch cfg.Format {
	case "json":
		log.SetFormatter(&log.JSONFormatter{})
	case "text", "":
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	default:
		return fmt.Errorf("invalid log format %q", cfg.Format)
	}

	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 7071)
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("server.shutdown_timeout", 10)

	v.SetDefault("api.base_url", "http://localhost:7071/api")
	v.SetDefault("api.timeout", 30)
	v.SetDefault("api.max_retries", 2)
	v.SetDefault("api.max_requests_per_second", 20)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "logbook")
	v.SetDefault("database.user", "logbook_user")
	v.SetDefault("database.password", "logbook_pass")
	v.SetDefault("database.ssl_mode", "disable")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.database", 0)
	v.SetDefault("redis.key_prefix", "logbook:ref:")
	v.SetDefault("redis.ttl", 300)
	v.SetDefault("redis.stream_prefix", "logbook:stream:")
	v.SetDefault("redis.activity_max_len", 1000)

	v.SetDefault("auth.secret", DefaultSecret)
	v.SetDefault("auth.token_ttl", 24*7)
	v.SetDefault("auth.trust_username_header", true)

	v.SetDefault("session.path", "$HOME/.logbook/session.json")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}
