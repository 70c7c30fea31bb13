package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// ErrMissingDatabaseURL is returned by Validate when DATABASE_URL is unset.
var ErrMissingDatabaseURL = errors.New("DATABASE_URL is required")

// Config holds the application configuration.
type Config struct {
	ServerPort  string `mapstructure:"SERVER_PORT"`
	MetricsAddr string `mapstructure:"METRICS_ADDR"`
	LogLevel    string `mapstructure:"LOG_LEVEL"`

	DatabaseURL   string `mapstructure:"DATABASE_URL"`
	EntriesTable  string `mapstructure:"ENTRIES_TABLE"`
	MaxEntries    int    `mapstructure:"MAX_ENTRIES"`
	LinkScanLimit int    `mapstructure:"LINK_SCAN_LIMIT"`

	OutputDir   string `mapstructure:"OUTPUT_DIR"`
	MappingFile string `mapstructure:"MAPPING_FILE"`

	FetchMode              string `mapstructure:"FETCH_MODE"`
	RequestTimeoutSeconds  int    `mapstructure:"REQUEST_TIMEOUT_SECONDS"`
	RequestDelayMillis     int    `mapstructure:"REQUEST_DELAY_MILLIS"`
	PageLoadTimeoutSeconds int    `mapstructure:"PAGE_LOAD_TIMEOUT_SECONDS"`
	RespectRobots          bool   `mapstructure:"RESPECT_ROBOTS"`
	HTTPProxies            string `mapstructure:"HTTP_PROXIES"`

	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`
	CacheTTLHours int    `mapstructure:"RESOLUTION_CACHE_TTL_HOURS"`
}

// flagKeys maps command line flag names to configuration keys.
var flagKeys = map[string]string{
	"max-entries":  "MAX_ENTRIES",
	"output-dir":   "OUTPUT_DIR",
	"mapping-file": "MAPPING_FILE",
	"fetch-mode":   "FETCH_MODE",
	"log-level":    "LOG_LEVEL",
}

// RegisterFlags adds the overridable settings to fs. Defaults are left empty
// so only flags the user actually sets take precedence over the environment.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.Int("max-entries", 0, "maximum number of records to process (MAX_ENTRIES)")
	fs.String("output-dir", "", "directory for images and the mapping file (OUTPUT_DIR)")
	fs.String("mapping-file", "", "mapping artifact file name (MAPPING_FILE)")
	fs.String("fetch-mode", "", "page fetch mode: http or browser (FETCH_MODE)")
	fs.String("log-level", "", "log level: debug, info, warn, error (LOG_LEVEL)")
}

// Load reads configuration from an optional .env file, environment variables
// and, when fs is non-nil, command line flags that were explicitly set.
func Load(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	// .env is optional; the environment alone is enough.
	_ = v.ReadInConfig()

	setDefaults(v)

	if fs != nil {
		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil && f.Changed {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, err
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	cfg.FetchMode = strings.ToLower(strings.TrimSpace(cfg.FetchMode))
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("METRICS_ADDR", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("ENTRIES_TABLE", "catalog_entries")
	v.SetDefault("MAX_ENTRIES", 20)
	v.SetDefault("LINK_SCAN_LIMIT", 500)
	v.SetDefault("OUTPUT_DIR", "public/catalog_images")
	v.SetDefault("MAPPING_FILE", "MAPPING.json")
	v.SetDefault("FETCH_MODE", "http")
	v.SetDefault("REQUEST_TIMEOUT_SECONDS", 20)
	v.SetDefault("REQUEST_DELAY_MILLIS", 800)
	v.SetDefault("PAGE_LOAD_TIMEOUT_SECONDS", 60)
	v.SetDefault("RESPECT_ROBOTS", false)
	v.SetDefault("HTTP_PROXIES", "")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("RESOLUTION_CACHE_TTL_HOURS", 48)
}

// Validate checks the settings a batch run cannot do without.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return ErrMissingDatabaseURL
	}
	switch c.FetchMode {
	case "http", "browser":
	default:
		return errors.New("FETCH_MODE must be http or browser, got " + c.FetchMode)
	}
	return nil
}

func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

func (c *Config) RequestDelay() time.Duration {
	return time.Duration(c.RequestDelayMillis) * time.Millisecond
}

func (c *Config) PageLoadTimeout() time.Duration {
	return time.Duration(c.PageLoadTimeoutSeconds) * time.Second
}

func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLHours) * time.Hour
}

// Proxies splits HTTP_PROXIES into its non-empty entries.
func (c *Config) Proxies() []string {
	var out []string
	for _, p := range strings.Split(c.HTTPProxies, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
