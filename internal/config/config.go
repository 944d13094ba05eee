// Package config loads runtime settings with Viper.
//
// Precedence, highest first: environment variables, the YAML config file,
// built-in defaults. Environment variables use the VIOLETS_ prefix with dots
// replaced by underscores (auth.jwt_secret → VIOLETS_AUTH_JWT_SECRET); PORT
// and DB_PATH are honoured too, for container platforms that set them.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	envPrefix      = "VIOLETS"
	configFileName = "violets"
	configFileType = "yaml"
)

// Config holds every setting the application reads.
type Config struct {
	Port   int        `mapstructure:"port"`
	DBPath string     `mapstructure:"db_path"`
	Log    LogConfig  `mapstructure:"log"`
	Auth   AuthConfig `mapstructure:"auth"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // text or json
}

// AuthConfig configures the optional keeper login. Leaving both PasswordHash
// and JWTSecret empty disables it.
type AuthConfig struct {
	PasswordHash string        `mapstructure:"password_hash"`
	JWTSecret    string        `mapstructure:"jwt_secret"`
	SessionTTL   time.Duration `mapstructure:"session_ttl"`
}

// Enabled reports whether journal edits require logging in.
func (a AuthConfig) Enabled() bool {
	return a.PasswordHash != "" || a.JWTSecret != ""
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", 8080)
	v.SetDefault("db_path", "data/violets.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("auth.password_hash", "")
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.session_ttl", "12h")
}

// Load reads configuration. path names an explicit config file, which must
// exist; an empty path looks for violets.yaml in the working directory and
// carries on without one if it is missing.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("port", envPrefix+"_PORT", "PORT"); err != nil {
		return nil, fmt.Errorf("config: binding port: %w", err)
	}
	if err := v.BindEnv("db_path", envPrefix+"_DB_PATH", "DB_PATH"); err != nil {
		return nil, fmt.Errorf("config: binding db_path: %w", err)
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(configFileName)
		v.SetConfigType(configFileType)
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decoding: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that the settings are usable together.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("config: port %d out of range", c.Port)
	}
	if strings.TrimSpace(c.DBPath) == "" {
		return errors.New("config: db_path must not be empty")
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("config: unknown log format %q (want text or json)", c.Log.Format)
	}

	if c.Auth.Enabled() {
		if c.Auth.PasswordHash == "" {
			return errors.New("config: auth.jwt_secret is set but auth.password_hash is empty")
		}
		if len(c.Auth.JWTSecret) < 16 {
			return errors.New("config: auth.jwt_secret must be at least 16 characters when auth is enabled")
		}
		if c.Auth.SessionTTL <= 0 {
			return fmt.Errorf("config: auth.session_ttl must be positive, got %s", c.Auth.SessionTTL)
		}
	}
	return nil
}

// ParseLevel maps a config level name to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("config: unknown log level %q", s)
	}
	return level, nil
}
