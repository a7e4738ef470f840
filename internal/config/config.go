package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	// DatabasePath is the SQLite file holding all projects.
	DatabasePath string `yaml:"database_path"`

	// SocketPath is the unix socket the change-event daemon listens on.
	SocketPath string `yaml:"socket_path"`

	// DefaultActor is used when neither --actor nor BACKLOG_ACTOR is set.
	// Empty means fall back to the OS username.
	DefaultActor string `yaml:"default_actor"`

	// VelocityWindow is how many completed sprints feed the velocity
	// average by default.
	VelocityWindow int `yaml:"velocity_window"`
}

// Load loads config from the user's config directory
// Returns default config if file doesn't exist
func Load() (*Config, error) {
	configPath, err := getConfigPath()
	if err != nil {
		// Return default config if we can't determine config path
		config := &Config{}
		config.applyDefaults()
		return config, nil
	}

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		config := &Config{}
		config.applyDefaults()
		return config, nil
	}

	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	// Parse YAML
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, err
	}

	// Fill in any missing values with defaults
	config.applyDefaults()

	return &config, nil
}

// Save saves the config to the user's config directory
func (c *Config) Save() error {
	configPath, err := getConfigPath()
	if err != nil {
		return err
	}

	// Create config directory if it doesn't exist
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return err
	}

	// Marshal to YAML
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	// Write to file
	return os.WriteFile(configPath, data, 0o644)
}

// getConfigPath returns the path to the config file.
// BACKLOG_CONFIG overrides the lookup entirely.
func getConfigPath() (string, error) {
	if override := os.Getenv("BACKLOG_CONFIG"); override != "" {
		return override, nil
	}

	// Try XDG_CONFIG_HOME first
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, "backlog", "config.yaml"), nil
	}

	// Fall back to ~/.config
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(homeDir, ".config", "backlog", "config.yaml"), nil
}

// DataDir returns the directory holding the database, socket, and logs.
func DataDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".backlog"), nil
}

// applyDefaults fills in missing configuration with defaults
func (c *Config) applyDefaults() {
	dataDir, err := DataDir()
	if err != nil {
		dataDir = "."
	}
	if c.DatabasePath == "" {
		c.DatabasePath = filepath.Join(dataDir, "backlog.db")
	}
	if c.SocketPath == "" {
		c.SocketPath = filepath.Join(dataDir, "backlog.sock")
	}
	if c.VelocityWindow <= 0 {
		c.VelocityWindow = 3
	}
}
