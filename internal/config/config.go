// Package config provides application configuration management.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server ServerConfig
	Store  StoreConfig
	Groq   GroqConfig
	Notion NotionConfig
	Log    LogConfig
}

// ServerConfig holds HTTP server settings for the daemon.
type ServerConfig struct {
	Host           string
	Port           int
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	RequestTimeout time.Duration
	// AuthToken, when non-empty, requires a matching bearer token on every
	// API request so only the extension can talk to the daemon.
	AuthToken string
}

// Validate validates the server configuration.
func (c ServerConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Host, validation.Required),
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// StoreConfig holds local persistence settings.
type StoreConfig struct {
	Dir string
}

// Validate validates the store configuration.
func (c StoreConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Dir, validation.Required),
	)
}

// GroqConfig holds structuring-service settings. The API key itself lives
// encrypted in the secret store, never in config.
type GroqConfig struct {
	BaseURL string
	Model   string
}

// Validate validates the Groq configuration.
func (c GroqConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.BaseURL, validation.Required),
		validation.Field(&c.Model, validation.Required),
	)
}

// NotionConfig holds document-storage settings. Credentials live encrypted
// in the secret store.
type NotionConfig struct {
	BaseURL string
}

// Validate validates the Notion configuration.
func (c NotionConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.BaseURL, validation.Required),
	)
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string
}

// Validate validates the log configuration.
func (c LogConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Level, validation.In("debug", "info", "warn", "error")),
	)
}

// Validate validates the whole configuration.
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return err
	}
	if err := c.Store.Validate(); err != nil {
		return err
	}
	if err := c.Groq.Validate(); err != nil {
		return err
	}
	if err := c.Notion.Validate(); err != nil {
		return err
	}
	return c.Log.Validate()
}

// Load reads configuration from environment variables with sane defaults.
// All keys use the MAPPING_ prefix, e.g. MAPPING_SERVER_PORT.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("MAPPING")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{
		Server: ServerConfig{
			Host:           v.GetString("server.host"),
			Port:           v.GetInt("server.port"),
			ReadTimeout:    v.GetDuration("server.read_timeout"),
			WriteTimeout:   v.GetDuration("server.write_timeout"),
			IdleTimeout:    v.GetDuration("server.idle_timeout"),
			RequestTimeout: v.GetDuration("server.request_timeout"),
			AuthToken:      v.GetString("server.auth_token"),
		},
		Store: StoreConfig{
			Dir: v.GetString("store.dir"),
		},
		Groq: GroqConfig{
			BaseURL: v.GetString("groq.base_url"),
			Model:   v.GetString("groq.model"),
		},
		Notion: NotionConfig{
			BaseURL: v.GetString("notion.base_url"),
		},
		Log: LogConfig{
			Level: v.GetString("log.level"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8787)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)
	v.SetDefault("server.idle_timeout", 120*time.Second)
	v.SetDefault("server.request_timeout", 90*time.Second)
	v.SetDefault("server.auth_token", "")
	v.SetDefault("store.dir", defaultStoreDir())
	v.SetDefault("groq.base_url", "https://api.groq.com/openai/v1")
	v.SetDefault("groq.model", "llama-3.3-70b-versatile")
	v.SetDefault("notion.base_url", "https://api.notion.com/v1")
	v.SetDefault("log.level", "info")
}

func defaultStoreDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".mapping"
	}
	return filepath.Join(home, ".mapping")
}
