package shared

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Cache       CacheConfig       `toml:"cache"`
	Downloads   DownloadsConfig   `toml:"downloads"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Telegram TelegramConfig `toml:"telegram"`
	Spotify  SpotifyConfig  `toml:"spotify"`
}

// TelegramConfig contains the Telegram bot credentials.
type TelegramConfig struct {
	Token string `toml:"token"`
}

// SpotifyConfig contains Spotify API credentials for the client-credentials grant.
type SpotifyConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
}

// CacheConfig contains resolution-cache settings. An empty Path disables the
// sqlite store and falls back to the bounded in-memory store.
type CacheConfig struct {
	Path       string `toml:"path"`
	MaxEntries int    `toml:"max_entries"`
}

// DownloadsConfig contains local download settings.
type DownloadsConfig struct {
	// WorkDir is the parent directory for per-workflow temp directories.
	// Empty means the system temp directory.
	WorkDir string `toml:"work_dir"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read config file: %v", ErrMissingConfig, err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	return &config, nil
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

// Validate checks the three required startup secrets. A missing one is a
// fatal condition: the process must not start without it.
func (c *Config) Validate() error {
	if c.Credentials.Telegram.Token == "" {
		return fmt.Errorf("%w: telegram token", ErrMissingCredentials)
	}
	if c.Credentials.Spotify.ClientID == "" {
		return fmt.Errorf("%w: spotify client_id", ErrMissingCredentials)
	}
	if c.Credentials.Spotify.ClientSecret == "" {
		return fmt.Errorf("%w: spotify client_secret", ErrMissingCredentials)
	}
	return nil
}
