// Package config loads the application configuration from swiftcrud.yaml,
// with environment variable overrides.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config is the application configuration
type Config struct {
	ProjectName string         `mapstructure:"project_name"`
	Server      ServerConfig   `mapstructure:"server"`
	Database    DatabaseConfig `mapstructure:"database"`
	Templates   TemplateConfig `mapstructure:"templates"`
	Static      StaticConfig   `mapstructure:"static"`
	Auth        AuthConfig     `mapstructure:"auth"`
}

// ServerConfig configures the HTTP server
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Address returns the listen address
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig configures the database connection
type DatabaseConfig struct {
	// Driver is sqlite3 or postgres
	Driver string `mapstructure:"driver"`

	// URL is the driver-specific data source name
	URL string `mapstructure:"url"`
}

// TemplateConfig configures template loading
type TemplateConfig struct {
	// Dir is the root of the template search path
	Dir string `mapstructure:"dir"`
}

// StaticConfig configures the asset file server
type StaticConfig struct {
	// Dir is the asset directory; assets are served when it exists
	Dir string `mapstructure:"dir"`

	// Prefix is the URL prefix assets are mounted under
	Prefix string `mapstructure:"prefix"`

	// MaxAge is the Cache-Control max-age in seconds
	MaxAge int `mapstructure:"max_age"`
}

// AuthConfig configures optional JWT protection of write operations
type AuthConfig struct {
	Enabled bool `mapstructure:"enabled"`

	// Secret signs and verifies tokens (HS256)
	Secret string `mapstructure:"secret"`

	// TokenTTL bounds token lifetime for the token command
	TokenTTL time.Duration `mapstructure:"token_ttl"`

	// PasswordHash is the bcrypt hash the token command verifies against
	PasswordHash string `mapstructure:"password_hash"`
}

// Load reads swiftcrud.yaml from the working directory, falling back to
// defaults when the file is absent. Environment variables override file
// values (SWIFTCRUD_SERVER_PORT and so on).
func Load() (*Config, error) {
	return LoadFrom(".")
}

// LoadFrom reads the configuration from the given directory
func LoadFrom(dir string) (*Config, error) {
	v := viper.New()

	v.SetDefault("project_name", "swiftcrud")
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("database.driver", "sqlite3")
	v.SetDefault("database.url", "swiftcrud.db")
	v.SetDefault("templates.dir", "templates")
	v.SetDefault("static.dir", "static")
	v.SetDefault("static.prefix", "/static")
	v.SetDefault("static.max_age", 3600)
	v.SetDefault("auth.enabled", false)
	v.SetDefault("auth.token_ttl", 24*time.Hour)

	v.SetConfigName("swiftcrud")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)

	v.SetEnvPrefix("swiftcrud")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// No config file, defaults apply
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

func validate(config *Config) error {
	switch config.Database.Driver {
	case "sqlite3", "postgres":
	default:
		return fmt.Errorf("unsupported database driver %q, use sqlite3 or postgres", config.Database.Driver)
	}

	if config.Database.URL == "" {
		return fmt.Errorf("database.url is required")
	}
	if config.Server.Port < 1 || config.Server.Port > 65535 {
		return fmt.Errorf("server.port %d is out of range", config.Server.Port)
	}
	if config.Auth.Enabled && config.Auth.Secret == "" {
		return fmt.Errorf("auth.secret is required when auth is enabled")
	}
	return nil
}
