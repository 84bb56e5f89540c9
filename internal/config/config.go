// Package config loads refsync settings from flags, environment, .env
// files and an optional YAML config file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"refsync/internal/logging"
)

// EnvPrefix prefixes every environment variable (REFSYNC_ZOTERO_API_KEY, ...)
const EnvPrefix = "REFSYNC"

// DefaultZoteroURL is the Zotero Web API base URL
const DefaultZoteroURL = "https://api.zotero.org"

// DefaultCitaviBridgeURL is where the Citavi automation bridge listens
const DefaultCitaviBridgeURL = "http://127.0.0.1:8789"

// Config holds the application configuration
type Config struct {
	ConfigFile string `mapstructure:"-"`

	Links  LinksConfig    `mapstructure:"links"`
	Sync   SyncConfig     `mapstructure:"sync"`
	Zotero ZoteroConfig   `mapstructure:"zotero"`
	Citavi CitaviConfig   `mapstructure:"citavi"`
	Server ServerConfig   `mapstructure:"server"`
	Log    logging.Config `mapstructure:"log"`
	Export ExportConfig   `mapstructure:"export"`
}

// LinksConfig locates the link database
type LinksConfig struct {
	Path string `mapstructure:"path"` // empty: XDG data directory
}

// SyncConfig tunes the sync workflow
type SyncConfig struct {
	DiffTTL time.Duration `mapstructure:"diff_ttl"`
}

// ZoteroConfig configures the Zotero Web API adapter
type ZoteroConfig struct {
	APIKey  string `mapstructure:"api_key"`
	UserID  string `mapstructure:"user_id"`
	BaseURL string `mapstructure:"base_url"`
}

// Enabled reports whether enough is set to talk to Zotero
func (z ZoteroConfig) Enabled() bool {
	return z.APIKey != "" && z.UserID != ""
}

// CitaviConfig configures the Citavi bridge adapter
type CitaviConfig struct {
	BridgeURL string `mapstructure:"bridge_url"`
	Disabled  bool   `mapstructure:"disabled"`
}

// ServerConfig configures the HTTP surface
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// ExportConfig configures link exports to S3
type ExportConfig struct {
	Bucket string `mapstructure:"bucket"`
	Prefix string `mapstructure:"prefix"`
	Region string `mapstructure:"region"`
}

var defaults = map[string]any{
	"links.path":        "",
	"sync.diff_ttl":     30 * time.Minute,
	"zotero.api_key":    "",
	"zotero.user_id":    "",
	"zotero.base_url":   DefaultZoteroURL,
	"citavi.bridge_url": DefaultCitaviBridgeURL,
	"citavi.disabled":   false,
	"server.addr":       "127.0.0.1:8788",
	"log.level":         "info",
	"log.format":        "auto",
	"log.output":        "stderr",
	"log.no_color":      false,
	"export.bucket":     "",
	"export.prefix":     "refsync/",
	"export.region":     "",
}

// Load reads configuration in order of precedence:
// 1. Command-line flags (bound by the caller through v)
// 2. Environment variables (REFSYNC_*)
// 3. .env and .env.local
// 4. Config file (configFile, or ~/.refsync.yaml / ./.refsync.yaml)
// 5. Defaults
func Load(v *viper.Viper, configFile string) (*Config, error) {
	if v == nil {
		v = viper.New()
	}
	loadEnvFiles()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", configFile, err)
		}
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(".refsync")

		// A missing config file is fine
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.ConfigFile = v.ConfigFileUsed()

	if cfg.Sync.DiffTTL <= 0 {
		cfg.Sync.DiffTTL = 30 * time.Minute
	}
	return cfg, nil
}

// loadEnvFiles loads .env files; .env.local overrides .env
func loadEnvFiles() {
	for _, envFile := range []string{".env.local", ".env"} {
		_ = godotenv.Load(envFile)
	}
}
