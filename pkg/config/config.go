// Package config loads and saves the netcodec service configuration.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the netcodec configuration
type Config struct {
	Server    Server    `yaml:"server"`
	Capture   Capture   `yaml:"capture"`
	Snapshots Snapshots `yaml:"snapshots"`
	Logging   Logging   `yaml:"logging"`
}

// Server contains HTTP service configuration
type Server struct {
	Port            int           `yaml:"port"`
	Bind            string        `yaml:"bind"`
	APIKey          string        `yaml:"api_key"`
	AllowedOrigins  []string      `yaml:"allowed_origins"`
	MaxBodySize     int64         `yaml:"max_body_size"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Capture contains capture log configuration
type Capture struct {
	Enabled       bool          `yaml:"enabled"`
	Dir           string        `yaml:"dir"`
	FsyncInterval time.Duration `yaml:"fsync_interval"`
	BufferSize    int           `yaml:"buffer_size"`
}

// Snapshots contains snapshot store configuration
type Snapshots struct {
	Enabled bool   `yaml:"enabled"`
	Dir     string `yaml:"dir"`
	Sync    bool   `yaml:"sync"`
}

// Logging contains logging configuration
type Logging struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"` // json or console
	Output     string `yaml:"output"` // stdout, stderr or file
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: Server{
			Port:            8080,
			Bind:            "127.0.0.1",
			AllowedOrigins:  []string{"*"},
			MaxBodySize:     1 << 20,
			ShutdownTimeout: 10 * time.Second,
		},
		Capture: Capture{
			Dir:           "./data/captures",
			FsyncInterval: time.Second,
			BufferSize:    64 * 1024,
		},
		Snapshots: Snapshots{
			Dir: "./data/snapshots",
		},
		Logging: Logging{
			Level:      "info",
			Format:     "console",
			Output:     "stderr",
			MaxSizeMB:  100,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

// Validate reports the first setting that cannot be used
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Server.MaxBodySize < 0 {
		return fmt.Errorf("invalid max body size %d", c.Server.MaxBodySize)
	}
	if c.Capture.Enabled && c.Capture.Dir == "" {
		return fmt.Errorf("capture is enabled but capture.dir is empty")
	}
	if c.Snapshots.Enabled && c.Snapshots.Dir == "" {
		return fmt.Errorf("snapshots are enabled but snapshots.dir is empty")
	}
	switch c.Logging.Format {
	case "", "json", "console":
	default:
		return fmt.Errorf("invalid log format %q", c.Logging.Format)
	}
	switch c.Logging.Output {
	case "", "stdout", "stderr":
	case "file":
		if c.Logging.File == "" {
			return fmt.Errorf("log output is file but logging.file is empty")
		}
	default:
		return fmt.Errorf("invalid log output %q", c.Logging.Output)
	}
	return nil
}

// LoadConfig loads configuration from the specified path
func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configPath)
	}

	if !filepath.IsAbs(configPath) {
		absPath, err := filepath.Abs(configPath)
		if err != nil {
			return nil, fmt.Errorf("invalid config path: %w", err)
		}
		configPath = absPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start from the defaults so a partial file keeps sane values
	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file: %w", err)
	}

	return config, nil
}

// SaveConfig saves the configuration to the specified path with secure permissions
func SaveConfig(config *Config, configPath string) error {
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GenerateSecureKey generates a cryptographically secure random key
func GenerateSecureKey(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate secure key: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}

// BootstrapConfig creates a new configuration with a generated API key and
// data directories under dataDir
func BootstrapConfig(configPath string, dataDir string) (*Config, error) {
	config := DefaultConfig()
	if dataDir != "" {
		config.Capture.Dir = filepath.Join(dataDir, "captures")
		config.Snapshots.Dir = filepath.Join(dataDir, "snapshots")
	}
	config.Snapshots.Enabled = true

	apiKey, err := GenerateSecureKey(32) // 256 bits
	if err != nil {
		return nil, fmt.Errorf("failed to generate API key: %w", err)
	}
	config.Server.APIKey = apiKey

	if err := SaveConfig(config, configPath); err != nil {
		return nil, fmt.Errorf("failed to save bootstrap config: %w", err)
	}

	return config, nil
}

// GetDefaultConfigPath returns the default configuration path for the current platform
func GetDefaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./netcodec.yaml"
	}

	// For Linux/macOS, use ~/.config/netcodec/config.yaml
	return filepath.Join(homeDir, ".config", "netcodec", "config.yaml")
}

// ConfigExists checks if a configuration file exists
func ConfigExists(configPath string) bool {
	_, err := os.Stat(configPath)
	return !os.IsNotExist(err)
}
