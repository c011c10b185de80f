// Package config provides configuration management for the REST API server.
//
// Values are layered, later sources winning: built-in defaults, an optional
// config file, an optional per-environment overlay file and finally APP_
// prefixed environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Default configuration values.
const (
	DefaultEnvironment     = "Development"
	DefaultServerPort      = 8080
	DefaultProbePort       = 0
	DefaultShutdownTimeout = 30 * time.Second
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "json"
	DefaultMetricsEnabled  = true
	DefaultCORSMaxAge      = time.Hour
	DefaultJWTIssuer       = "VueNetCrud.Server"
	DefaultJWTAudience     = "VueNetCrud.Client"
	DefaultJWTTTL          = time.Hour

	// DefaultJWTKey signs tokens when no key is configured. Override it
	// with APP_JWT_KEY outside local development.
	DefaultJWTKey = "vuenetcrud-development-signing-key-change-me" //nolint:gosec // development default
)

// ProductionEnvironment is the environment name that disables developer
// endpoints.
const ProductionEnvironment = "Production"

// MinJWTKeyLength is the shortest accepted HMAC signing key.
const MinJWTKeyLength = 32

// Config file lookup.
const (
	EnvPrefix     = "APP"
	EnvConfigFile = "APP_CONFIG_FILE"
	configName    = "config"
	configType    = "yaml"
)

// configPaths are searched for config.yaml when EnvConfigFile is unset.
var configPaths = []string{".", "./config"}

// DefaultAllowedOrigins are the browser origins of the bundled clients.
var DefaultAllowedOrigins = []string{
	"http://localhost:5173",
	"http://localhost:5174",
	"http://localhost:3000",
	"http://localhost:8080",
	"https://local.vueclient.com",
	"http://local.vueclient.com",
	"http://localhost:4200",
	"https://local.angularclient.com",
}

// Config holds the application configuration.
type Config struct {
	Environment string        `mapstructure:"environment"`
	Server      ServerConfig  `mapstructure:"server"`
	Log         LogConfig     `mapstructure:"log"`
	Metrics     MetricsConfig `mapstructure:"metrics"`
	CORS        CORSConfig    `mapstructure:"cors"`
	JWT         JWTConfig     `mapstructure:"jwt"`
	Auth        AuthConfig    `mapstructure:"auth"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ProbePort       int           `mapstructure:"probe_port"` // 0 disables the probe server.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// MetricsConfig holds Prometheus settings.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// CORSConfig holds the cross-origin policy.
type CORSConfig struct {
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
	MaxAge         time.Duration `mapstructure:"max_age"`
}

// JWTConfig holds token signing settings.
type JWTConfig struct {
	Key      string        `mapstructure:"key"`
	Issuer   string        `mapstructure:"issuer"`
	Audience string        `mapstructure:"audience"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// AuthConfig holds the login users as "user:bcrypt-hash" entries.
type AuthConfig struct {
	Users []string `mapstructure:"users"`
}

// Validation errors.
var (
	ErrInvalidServerPort      = errors.New("server port must be between 1 and 65535")
	ErrInvalidProbePort       = errors.New("probe port must be between 0 and 65535")
	ErrProbePortConflict      = errors.New("probe port must differ from server port when probe port is not 0")
	ErrInvalidLogLevel        = errors.New("log level must be one of: debug, info, warn, error")
	ErrInvalidLogFormat       = errors.New("log format must be one of: json, console")
	ErrInvalidShutdownTimeout = errors.New("shutdown timeout must be positive")
	ErrInvalidCORSMaxAge      = errors.New("CORS max age must not be negative")
	ErrInvalidJWTKey          = fmt.Errorf("JWT key must be at least %d bytes", MinJWTKeyLength)
	ErrInvalidJWTIssuer       = errors.New("JWT issuer and audience must be set")
	ErrInvalidJWTTTL          = errors.New("JWT TTL must be positive")
	ErrInvalidAuthUser        = errors.New("auth users must be user:hash entries")
)

// Load reads the configuration and validates it.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := readConfigFiles(v); err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// setDefaults registers a default for every key so AutomaticEnv can
// override all of them.
func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", DefaultEnvironment)

	v.SetDefault("server.port", DefaultServerPort)
	v.SetDefault("server.probe_port", DefaultProbePort)
	v.SetDefault("server.shutdown_timeout", DefaultShutdownTimeout)

	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.format", DefaultLogFormat)

	v.SetDefault("metrics.enabled", DefaultMetricsEnabled)

	v.SetDefault("cors.allowed_origins", DefaultAllowedOrigins)
	v.SetDefault("cors.max_age", DefaultCORSMaxAge)

	v.SetDefault("jwt.key", DefaultJWTKey)
	v.SetDefault("jwt.issuer", DefaultJWTIssuer)
	v.SetDefault("jwt.audience", DefaultJWTAudience)
	v.SetDefault("jwt.ttl", DefaultJWTTTL)

	v.SetDefault("auth.users", []string{})
}

// readConfigFiles loads the base config file, then merges the overlay for
// the configured environment. Missing files are not an error unless the
// base file was named explicitly.
func readConfigFiles(v *viper.Viper) error {
	dirs := configPaths

	if file := os.Getenv(EnvConfigFile); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return err
		}
		dirs = []string{filepath.Dir(file)}
	} else {
		v.SetConfigName(configName)
		v.SetConfigType(configType)
		for _, dir := range configPaths {
			v.AddConfigPath(dir)
		}

		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return err
			}
		}
	}

	overlay := findFile(dirs, fmt.Sprintf("%s.%s.%s", configName, v.GetString("environment"), configType))
	if overlay == "" {
		return nil
	}

	v.SetConfigFile(overlay)
	return v.MergeInConfig()
}

// findFile returns the first dirs/name that exists.
func findFile(dirs []string, name string) string {
	for _, dir := range dirs {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// normalize trims list entries that came from comma-separated env values.
func (c *Config) normalize() {
	c.CORS.AllowedOrigins = trimEntries(c.CORS.AllowedOrigins)
	c.Auth.Users = trimEntries(c.Auth.Users)
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	c.Log.Format = strings.ToLower(strings.TrimSpace(c.Log.Format))
}

func trimEntries(entries []string) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if e = strings.TrimSpace(e); e != "" {
			out = append(out, e)
		}
	}
	return out
}

// Validate checks if the configuration values are valid.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}

	if err := c.validateLog(); err != nil {
		return err
	}

	if c.CORS.MaxAge < 0 {
		return ErrInvalidCORSMaxAge
	}

	return c.validateAuth()
}

// validateServer validates server-related configuration.
func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return ErrInvalidServerPort
	}

	if c.Server.ProbePort < 0 || c.Server.ProbePort > 65535 {
		return ErrInvalidProbePort
	}

	if c.Server.ProbePort != 0 && c.Server.ProbePort == c.Server.Port {
		return ErrProbePortConflict
	}

	if c.Server.ShutdownTimeout <= 0 {
		return ErrInvalidShutdownTimeout
	}

	return nil
}

// validateLog validates logger configuration.
func (c *Config) validateLog() error {
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.Log.Level] {
		return ErrInvalidLogLevel
	}

	if c.Log.Format != "json" && c.Log.Format != "console" {
		return ErrInvalidLogFormat
	}

	return nil
}

// validateAuth validates token and login configuration.
func (c *Config) validateAuth() error {
	if len(c.JWT.Key) < MinJWTKeyLength {
		return ErrInvalidJWTKey
	}

	if c.JWT.Issuer == "" || c.JWT.Audience == "" {
		return ErrInvalidJWTIssuer
	}

	if c.JWT.TTL <= 0 {
		return ErrInvalidJWTTTL
	}

	for _, entry := range c.Auth.Users {
		user, hash, found := strings.Cut(entry, ":")
		if !found || user == "" || hash == "" {
			return fmt.Errorf("%w: %q", ErrInvalidAuthUser, user)
		}
	}

	return nil
}

// IsProduction reports whether the service runs in the Production
// environment.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, ProductionEnvironment)
}

// Address returns the server address in host:port format.
func (c *Config) Address() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

// ProbeAddress returns the probe server address in host:port format.
func (c *Config) ProbeAddress() string {
	return fmt.Sprintf(":%d", c.Server.ProbePort)
}
