package core

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

const (
	// AppName is the name of the application directories.
	AppName = "aws-login"

	// DefaultBackupKeep is the number of template backups kept by default.
	DefaultBackupKeep = 5

	// DefaultHTTPTimeout bounds template downloads.
	DefaultHTTPTimeout = 30 * time.Second

	templatesFileName = "templates.json"
)

// Config represents the global configuration for aws-login.
// It can be loaded from YAML files or set via CLI flags.
type Config struct {
	// Debug enables debug logging.
	Debug bool `yaml:"debug"`

	// TemplatesPath is the location of the profile templates file.
	TemplatesPath string `yaml:"templates_path"`

	// TemplatesURL is the default download location for `pull`.
	TemplatesURL string `yaml:"templates_url"`

	// BackupDir stores copies of the templates file before it is replaced.
	BackupDir string `yaml:"backup_dir"`

	// BackupKeep is the number of backups retained.
	BackupKeep int `yaml:"backup_keep"`

	// HTTPTimeout is a Go duration string such as "30s".
	HTTPTimeout string `yaml:"http_timeout"`
}

// NewConfig creates a new configuration with default values.
func NewConfig() *Config {
	return &Config{
		TemplatesPath: DefaultTemplatesPath(),
		BackupDir:     filepath.Join(xdg.StateHome, AppName, "backups"),
		BackupKeep:    DefaultBackupKeep,
		HTTPTimeout:   DefaultHTTPTimeout.String(),
	}
}

// DefaultTemplatesPath returns the per-user location of the templates file.
func DefaultTemplatesPath() string {
	return filepath.Join(xdg.ConfigHome, AppName, templatesFileName)
}

// LoadConfig loads configuration from a YAML file.
// If the file doesn't exist, returns a default configuration.
// The precedence order is: CLI flags > YAML config > defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := NewConfig()

	if path == "" {
		path = FindConfigFile()
	}

	if path == "" {
		return cfg, nil
	}

	// #nosec G304 -- config file path is from user input or searched standard locations
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %q: %w", path, err)
	}

	return cfg, nil
}

// FindConfigFile searches for an aws-login configuration file in standard locations.
// Returns an empty string if no config file is found.
func FindConfigFile() string {
	searchPaths := []string{
		"./aws-login.yaml",
		"./aws-login.yml",
		filepath.Join(xdg.ConfigHome, AppName, "config.yaml"),
		filepath.Join(xdg.ConfigHome, AppName, "config.yml"),
	}

	for _, path := range searchPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// Validate checks the configuration values and fills in defaults for
// values left empty in the file.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.TemplatesPath) == "" {
		c.TemplatesPath = DefaultTemplatesPath()
	}

	if c.BackupKeep < 0 {
		return fmt.Errorf("backup_keep cannot be negative: %d", c.BackupKeep)
	}

	if strings.TrimSpace(c.HTTPTimeout) == "" {
		c.HTTPTimeout = DefaultHTTPTimeout.String()
	}

	if _, err := c.Timeout(); err != nil {
		return err
	}

	return nil
}

// Timeout returns the parsed HTTP timeout.
func (c *Config) Timeout() (time.Duration, error) {
	timeout, err := time.ParseDuration(c.HTTPTimeout)
	if err != nil {
		return 0, fmt.Errorf("parse http_timeout %q: %w", c.HTTPTimeout, err)
	}
	if timeout <= 0 {
		return 0, fmt.Errorf("http_timeout must be positive: %s", c.HTTPTimeout)
	}

	return timeout, nil
}
