package shared

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
)

//go:embed config.example.toml
var exampleConf []byte

const envPrefix = "FLOODY_"

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Floody   FloodyConfig   `toml:"floody"`
	OAuth    OAuthConfig    `toml:"oauth"`
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Log      LogConfig      `toml:"log"`
}

// FloodyConfig contains backend connection settings.
type FloodyConfig struct {
	Endpoint  string  `toml:"endpoint" env:"ENDPOINT"`
	Timeout   int     `toml:"timeout" env:"TIMEOUT"`
	RateLimit float64 `toml:"rate_limit" env:"RATE_LIMIT"`
}

// RequestTimeout returns the configured timeout as a [time.Duration].
func (c FloodyConfig) RequestTimeout() time.Duration {
	if c.Timeout <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.Timeout) * time.Second
}

// OAuthConfig contains Google OAuth client settings.
type OAuthConfig struct {
	ClientID     string `toml:"client_id" env:"OAUTH_CLIENT_ID"`
	ClientSecret string `toml:"client_secret" env:"OAUTH_CLIENT_SECRET"`
}

// ServerConfig contains the sign-in callback server settings.
type ServerConfig struct {
	Host string `toml:"host" env:"CALLBACK_HOST"`
	Port int    `toml:"port" env:"CALLBACK_PORT"`
}

// Addr returns host:port.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// RedirectURL returns the OAuth redirect URL served by the callback server.
func (c ServerConfig) RedirectURL() string {
	return fmt.Sprintf("http://%s/callback", c.Addr())
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path" env:"DATABASE_PATH"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// LogConfig contains logger settings.
type LogConfig struct {
	Level   string `toml:"level" env:"LOG_LEVEL"`
	TUIFile string `toml:"tui_file" env:"LOG_FILE"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Values not present in the file keep their defaults and FLOODY_* environment variables win over both.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := ApplyEnv(config); err != nil {
		return nil, err
	}
	return config, nil
}

// ApplyEnv overrides config values with FLOODY_* environment variables that are set.
func ApplyEnv(config *Config) error {
	if err := env.ParseWithOptions(config, env.Options{Prefix: envPrefix}); err != nil {
		return fmt.Errorf("%w: parse env: %v", ErrInvalidConfig, err)
	}
	return nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// SaveConfig encodes config as TOML and writes it to path, replacing any existing file.
func SaveConfig(path string, config *Config) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
