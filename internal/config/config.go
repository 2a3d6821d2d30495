// =================================
// File: internal/config/config.go
// =================================
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Transport selects how the pool table is queried. Both transports answer
// the same projection query and are interchangeable.
const (
	TransportREST     = "rest"
	TransportPostgres = "postgres"
)

type Config struct {
	SupabaseURL  string        `mapstructure:"supabase_url"`
	SupabaseKey  string        `mapstructure:"supabase_key"`
	PostgresURL  string        `mapstructure:"postgres_url"`
	Transport    string        `mapstructure:"transport"`
	Network      string        `mapstructure:"network"`
	Table        string        `mapstructure:"table"`
	ReferenceDEX string        `mapstructure:"reference_dex"`
	CacheTTL     time.Duration `mapstructure:"cache_ttl"`
	ExportDir    string        `mapstructure:"export_dir"`
	DebugLogging bool          `mapstructure:"debug_logging"`
	LogFile      string        `mapstructure:"log_file"`
}

const (
	DefaultNetwork      = "hyperevm"
	DefaultTable        = "pools"
	DefaultReferenceDEX = "hyperswap"
	DefaultCacheTTL     = 10 * time.Minute
	DefaultExportDir    = "exports"
	DefaultLogFile      = "logs/liduido.log"
)

// ErrMissingCredentials is returned when the configured transport has no
// usable credentials. Callers must treat it as fatal before any query.
var ErrMissingCredentials = errors.New("missing store credentials")

// Load reads configuration from an optional file plus environment
// variables (SUPABASE_URL, SUPABASE_KEY, POSTGRES_URL, ...).
func Load(path string) (*Config, error) {
	v := viper.New()

	defaults := map[string]interface{}{
		"supabase_url":  "",
		"supabase_key":  "",
		"postgres_url":  "",
		"transport":     TransportREST,
		"network":       DefaultNetwork,
		"table":         DefaultTable,
		"reference_dex": DefaultReferenceDEX,
		"cache_ttl":     DefaultCacheTTL,
		"export_dir":    DefaultExportDir,
		"debug_logging": false,
		"log_file":      DefaultLogFile,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	for _, key := range []string{"supabase_url", "supabase_key", "postgres_url", "transport", "network", "reference_dex"} {
		if err := v.BindEnv(key, strings.ToUpper(key)); err != nil {
			return nil, err
		}
	}
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			// Config file is optional; only a malformed one is fatal.
			var pathErr *fs.PathError
			if !errors.As(err, &pathErr) {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, validate(&cfg)
}

func validate(cfg *Config) error {
	switch cfg.Transport {
	case TransportREST:
		if cfg.SupabaseURL == "" || cfg.SupabaseKey == "" {
			return fmt.Errorf("%w: SUPABASE_URL and SUPABASE_KEY are required for the rest transport", ErrMissingCredentials)
		}
		if err := validateHTTPURL(cfg.SupabaseURL); err != nil {
			return err
		}
	case TransportPostgres:
		if cfg.PostgresURL == "" {
			return fmt.Errorf("%w: POSTGRES_URL is required for the postgres transport", ErrMissingCredentials)
		}
	default:
		return fmt.Errorf("unknown transport %q", cfg.Transport)
	}

	if cfg.Network == "" {
		return errors.New("network must not be empty")
	}
	if cfg.Table == "" {
		return errors.New("table must not be empty")
	}
	if cfg.ReferenceDEX == "" {
		return errors.New("reference_dex must not be empty")
	}
	if cfg.CacheTTL <= 0 {
		return errors.New("invalid cache_ttl")
	}
	return nil
}

func validateHTTPURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil || !strings.HasPrefix(u.Scheme, "http") || u.Host == "" {
		return fmt.Errorf("invalid store URL %q", rawURL)
	}
	return nil
}
