package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"github.com/goliatone/go-widgetgrid/components/dashboard"
)

// EnvPrefix namespaces environment overrides, e.g. WIDGETGRID_STORAGE_DRIVER.
const EnvPrefix = "WIDGETGRID"

// Storage drivers.
const (
	DriverMemory = "memory"
	DriverDiskv  = "diskv"
	DriverBolt   = "bolt"
)

// Config is the resolved runtime configuration.
type Config struct {
	Storage StorageConfig
	Metrics MetricsConfig
	Server  ServerConfig
	Catalog CatalogConfig
}

// StorageConfig selects the layout store.
type StorageConfig struct {
	Driver string
	Path   string
	Key    string
}

// MetricsConfig points at the aggregate-statistics backend.
type MetricsConfig struct {
	BaseURL   string
	StatsPath string
	APIKey    string
	Timeout   time.Duration
}

// ServerConfig configures `gridctl serve`.
type ServerConfig struct {
	Addr     string
	BasePath string
}

// CatalogConfig points at an optional catalog manifest.
type CatalogConfig struct {
	Manifest string
}

// LoadOptions controls where configuration is read from.
type LoadOptions struct {
	// File is an explicit config file; when empty ".widgetgrid.yaml" is searched in Paths.
	File  string
	Paths []string
	// DotEnv is an optional .env file loaded before environment lookups.
	DotEnv string
}

// Load resolves defaults, the optional config file, and WIDGETGRID_* environment variables.
func Load(opts LoadOptions) (Config, error) {
	if opts.DotEnv != "" {
		if _, err := os.Stat(opts.DotEnv); err == nil {
			if err := godotenv.Load(opts.DotEnv); err != nil {
				return Config{}, fmt.Errorf("config: load %s: %w", opts.DotEnv, err)
			}
		} else if !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("config: stat %s: %w", opts.DotEnv, err)
		}
	}

	v := viper.New()
	v.SetDefault("storage.driver", DriverDiskv)
	v.SetDefault("storage.path", "~/.widgetgrid")
	v.SetDefault("storage.key", dashboard.DefaultStorageKey)
	v.SetDefault("metrics.base_url", "")
	v.SetDefault("metrics.stats_path", "/api/stats")
	v.SetDefault("metrics.api_key", "")
	v.SetDefault("metrics.timeout", 10*time.Second)
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.base_path", "")
	v.SetDefault("catalog.manifest", "")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.File != "" {
		v.SetConfigFile(opts.File)
	} else {
		v.SetConfigName(".widgetgrid")
		paths := opts.Paths
		if len(paths) == 0 {
			paths = []string{"./"}
			if home, err := homedir.Dir(); err == nil {
				paths = append(paths, home)
			}
		}
		for _, p := range paths {
			v.AddConfigPath(p)
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if opts.File != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("config: read config: %w", err)
		}
	}

	cfg := Config{
		Storage: StorageConfig{
			Driver: strings.ToLower(strings.TrimSpace(v.GetString("storage.driver"))),
			Path:   v.GetString("storage.path"),
			Key:    v.GetString("storage.key"),
		},
		Metrics: MetricsConfig{
			BaseURL:   v.GetString("metrics.base_url"),
			StatsPath: v.GetString("metrics.stats_path"),
			APIKey:    v.GetString("metrics.api_key"),
			Timeout:   v.GetDuration("metrics.timeout"),
		},
		Server: ServerConfig{
			Addr:     v.GetString("server.addr"),
			BasePath: v.GetString("server.base_path"),
		},
		Catalog: CatalogConfig{
			Manifest: v.GetString("catalog.manifest"),
		},
	}
	var err error
	if cfg.Storage.Path, err = homedir.Expand(cfg.Storage.Path); err != nil {
		return Config{}, fmt.Errorf("config: expand storage.path: %w", err)
	}
	if cfg.Catalog.Manifest, err = homedir.Expand(cfg.Catalog.Manifest); err != nil {
		return Config{}, fmt.Errorf("config: expand catalog.manifest: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate checks values that cannot be defaulted.
func (c Config) Validate() error {
	switch c.Storage.Driver {
	case DriverMemory:
	case DriverDiskv, DriverBolt:
		if c.Storage.Path == "" {
			return fmt.Errorf("config: storage.path is required for driver %s", c.Storage.Driver)
		}
	default:
		return fmt.Errorf("config: unknown storage driver %q", c.Storage.Driver)
	}
	if c.Storage.Key == "" {
		return errors.New("config: storage.key must not be empty")
	}
	return nil
}
