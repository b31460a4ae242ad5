// Package config provides configuration loading and path utilities.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config is the resolved application configuration. Values come from the
// config file, CENTAVO_* environment variables and flag bindings, in
// ascending precedence.
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Advisor  AdvisorConfig
	Logging  LoggingConfig
}

// DatabaseConfig locates the SQLite database file.
type DatabaseConfig struct {
	Path string
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr string
}

// AdvisorConfig selects and configures the advice oracle. An empty provider
// disables it; categorization then uses the keyword fallback only.
type AdvisorConfig struct {
	Provider    string
	APIKey      string
	Model       string
	Temperature float64
}

// LoggingConfig configures structured logging output.
type LoggingConfig struct {
	Level  string
	Format string
}

// SetDefaults registers the default values with viper. Call once before
// reading the config file.
func SetDefaults() {
	viper.SetDefault("database.path", "$HOME/.local/share/centavo/centavo.db")
	viper.SetDefault("server.addr", ":8080")
	viper.SetDefault("advisor.provider", "")
	viper.SetDefault("advisor.model", "")
	viper.SetDefault("advisor.temperature", 0.3)
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "console")
}

// Load materializes the configuration from viper's current state.
func Load() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path: ExpandPath(viper.GetString("database.path")),
		},
		Server: ServerConfig{
			Addr: viper.GetString("server.addr"),
		},
		Advisor: AdvisorConfig{
			Provider:    viper.GetString("advisor.provider"),
			APIKey:      viper.GetString("advisor.api_key"),
			Model:       viper.GetString("advisor.model"),
			Temperature: viper.GetFloat64("advisor.temperature"),
		},
		Logging: LoggingConfig{
			Level:  viper.GetString("logging.level"),
			Format: viper.GetString("logging.format"),
		},
	}
}

// ExpandPath expands ~ and environment variables in a file path.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[2:])
		}
	} else if path == "~" {
		home, err := os.UserHomeDir()
		if err == nil {
			path = home
		}
	}

	return os.ExpandEnv(path)
}
