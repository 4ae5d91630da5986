// Package config loads richconv settings from viper: config file, RICHCONV_
// environment variables and bound command-line flags.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/viper"

	"github.com/jmylchreest/richconv/internal/logger"
	"github.com/jmylchreest/richconv/pkg/htmlmd"
)

// EnvPrefix is the prefix of environment variables read by richconv.
const EnvPrefix = "RICHCONV"

// Config is the complete richconv configuration.
type Config struct {
	Debug    bool   `mapstructure:"debug"`
	Quiet    bool   `mapstructure:"quiet"`
	LogLevel string `mapstructure:"log_level"`
	LogJSON  bool   `mapstructure:"log_json"`

	Convert htmlmd.Config `mapstructure:"convert"`
	Server  ServerConfig  `mapstructure:"server"`
	Resave  ResaveConfig  `mapstructure:"resave"`
}

// ServerConfig configures the HTTP boundary.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	MaxBodySize     string        `mapstructure:"max_body_size"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// MaxBodyBytes parses MaxBodySize ("1MB", "512KiB", ...).
func (s ServerConfig) MaxBodyBytes() (int64, error) {
	n, err := humanize.ParseBytes(s.MaxBodySize)
	if err != nil {
		return 0, fmt.Errorf("invalid server.max_body_size %q: %w", s.MaxBodySize, err)
	}
	if n == 0 {
		return 0, fmt.Errorf("server.max_body_size must be greater than zero")
	}
	return int64(n), nil
}

// ResaveConfig configures the batch re-save tool.
type ResaveConfig struct {
	OfficeBin string        `mapstructure:"office_bin"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// SetDefaults registers every default on v. Keys must be known to viper
// for environment overrides to reach Unmarshal.
func SetDefaults(v *viper.Viper) {
	conv := htmlmd.DefaultConfig()

	v.SetDefault("debug", false)
	v.SetDefault("quiet", false)
	v.SetDefault("log_level", "")
	v.SetDefault("log_json", false)

	v.SetDefault("convert.engine", string(conv.Engine))
	v.SetDefault("convert.strong_delimiter", conv.StrongDelimiter)
	v.SetDefault("convert.em_delimiter", conv.EmDelimiter)
	v.SetDefault("convert.bullet_marker", conv.BulletMarker)
	v.SetDefault("convert.normalize_unicode", conv.NormalizeUnicode)

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.max_body_size", "1MB")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 15*time.Second)

	v.SetDefault("resave.office_bin", "soffice")
	v.SetDefault("resave.timeout", 2*time.Minute)
}

// BindEnv makes v read RICHCONV_* variables, with "." in keys mapped to "_"
// (server.addr is RICHCONV_SERVER_ADDR).
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// New returns a viper instance with defaults and environment binding.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	BindEnv(v)
	return v
}

// Load unmarshals and validates the configuration held by v.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values viper cannot type-check.
func (c *Config) Validate() error {
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if err := c.Convert.Validate(); err != nil {
		return fmt.Errorf("convert: %w", err)
	}
	if _, err := c.Server.MaxBodyBytes(); err != nil {
		return err
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr must not be empty")
	}
	if c.Resave.OfficeBin == "" {
		return fmt.Errorf("resave.office_bin must not be empty")
	}
	return nil
}
