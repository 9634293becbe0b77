package authoring

import (
	"time"
)

// Config consolidates settings for the engine and the authoring gateway.
type Config struct {
	Portal   PortalConfig   `json:"portal"`
	Upload   UploadConfig   `json:"upload"`
	Database DatabaseConfig `json:"database"`
	Logging  LoggingConfig  `json:"logging"`
}

// PortalConfig points at the portal API consumed by the HTTP collaborators.
type PortalConfig struct {
	BaseURL string        `json:"baseUrl"`
	Timeout time.Duration `json:"timeout"`
}

// UploadConfig contains media upload settings.
type UploadConfig struct {
	Bucket        string        `json:"bucket"`
	Region        string        `json:"region"`
	KeyPrefix     string        `json:"keyPrefix"`
	PublicBaseURL string        `json:"publicBaseUrl"`
	MaxFileBytes  int64         `json:"maxFileBytes"`
	Timeout       time.Duration `json:"timeout"`
}

// DatabaseConfig contains the configuration-store connection settings.
type DatabaseConfig struct {
	Host            string        `json:"host"`
	Port            int           `json:"port"`
	Database        string        `json:"database"`
	Username        string        `json:"username"`
	Password        string        `json:"password"`
	SSLMode         string        `json:"sslMode"`
	UseIAMAuth      bool          `json:"useIamAuth"`
	MaxConnections  int           `json:"maxConnections"`
	MaxIdleConns    int           `json:"maxIdleConns"`
	ConnMaxLifetime time.Duration `json:"connMaxLifetime"`
	ConnMaxIdleTime time.Duration `json:"connMaxIdleTime"`
	Timeout         time.Duration `json:"timeout"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"`
}

// DefaultConfig returns a default configuration.
func DefaultConfig() *Config {
	return &Config{
		Portal: PortalConfig{
			BaseURL: "https://arabhaya2.bidabhadohi.com",
			Timeout: 30 * time.Second,
		},
		Upload: UploadConfig{
			Region:       "ap-south-1",
			KeyPrefix:    "media/",
			MaxFileBytes: 100 * 1024 * 1024,
			Timeout:      2 * time.Minute,
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			SSLMode:         "disable",
			MaxConnections:  25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
			ConnMaxIdleTime: 5 * time.Minute,
			Timeout:         30 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Portal.BaseURL == "" {
		return &ConfigError{Field: "portal.baseUrl", Message: "must not be empty"}
	}
	if c.Portal.Timeout <= 0 {
		return &ConfigError{Field: "portal.timeout", Message: "must be greater than 0"}
	}
	if c.Upload.MaxFileBytes <= 0 {
		return &ConfigError{Field: "upload.maxFileBytes", Message: "must be greater than 0"}
	}
	if c.Database.MaxConnections <= 0 {
		return &ConfigError{Field: "database.maxConnections", Message: "must be greater than 0"}
	}
	return nil
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ConfigError) Error() string {
	return "config validation error for field '" + e.Field + "': " + e.Message
}
