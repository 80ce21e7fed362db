package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Nomadcxx/releasescan/internal/logging"
	"github.com/Nomadcxx/releasescan/internal/paths"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

type Config struct {
	Scanner  ScannerConfig  `mapstructure:"scanner" toml:"scanner"`
	Radarr   RadarrConfig   `mapstructure:"radarr" toml:"radarr"`
	Database DatabaseConfig `mapstructure:"database" toml:"database"`
	Probe    ProbeConfig    `mapstructure:"probe" toml:"probe"`
	Watch    WatchConfig    `mapstructure:"watch" toml:"watch"`
	Activity ActivityConfig `mapstructure:"activity" toml:"activity"`
	Logging  logging.Config `mapstructure:"logging" toml:"logging"`
}

// SizeRange is an inclusive megabyte range. Zero Max means open-ended.
type SizeRange struct {
	MinMB float64 `mapstructure:"min_mb" toml:"min_mb"`
	MaxMB float64 `mapstructure:"max_mb" toml:"max_mb"`
}

type SizesConfig struct {
	Movie    SizeRange `mapstructure:"movie" toml:"movie"`
	Trailer  SizeRange `mapstructure:"trailer" toml:"trailer"`
	Backdrop SizeRange `mapstructure:"backdrop" toml:"backdrop"`
}

type FreshnessConfig struct {
	// GracePeriod is how recently every file of a release must have been
	// touched for it to count as still being written.
	GracePeriod string `mapstructure:"grace_period" toml:"grace_period"`
}

type BackpressureConfig struct {
	MaxActiveTasks int    `mapstructure:"max_active_tasks" toml:"max_active_tasks"`
	PollInterval   string `mapstructure:"poll_interval" toml:"poll_interval"`
	MaxWait        string `mapstructure:"max_wait" toml:"max_wait"`
}

// ScannerConfig holds the tunable heuristics of the release scanner.
type ScannerConfig struct {
	Sizes          SizesConfig        `mapstructure:"sizes" toml:"sizes"`
	Freshness      FreshnessConfig    `mapstructure:"freshness" toml:"freshness"`
	Backpressure   BackpressureConfig `mapstructure:"backpressure" toml:"backpressure"`
	StatWorkers    int                `mapstructure:"stat_workers" toml:"stat_workers"`
	FollowSymlinks bool               `mapstructure:"follow_symlinks" toml:"follow_symlinks"`
}

type RadarrConfig struct {
	Enabled        bool   `mapstructure:"enabled" toml:"enabled"`
	URL            string `mapstructure:"url" toml:"url"`
	APIKey         string `mapstructure:"api_key" toml:"api_key"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" toml:"timeout_seconds"`
}

type DatabaseConfig struct {
	// Path overrides the default ~/.config/releasescan/releases.db.
	Path string `mapstructure:"path" toml:"path"`
}

type ProbeConfig struct {
	Enabled bool   `mapstructure:"enabled" toml:"enabled"`
	FFprobe string `mapstructure:"ffprobe" toml:"ffprobe"`
}

// WatchConfig drives the watch command
type WatchConfig struct {
	Roots    []string `mapstructure:"roots" toml:"roots"`
	Interval string   `mapstructure:"interval" toml:"interval"`
	Debounce string   `mapstructure:"debounce" toml:"debounce"`
}

type ActivityConfig struct {
	Enabled       bool   `mapstructure:"enabled" toml:"enabled"`
	Dir           string `mapstructure:"dir" toml:"dir"`
	RetentionDays int    `mapstructure:"retention_days" toml:"retention_days"`
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Scanner: ScannerConfig{
			Sizes: SizesConfig{
				Movie:    SizeRange{MinMB: 200},
				Trailer:  SizeRange{MinMB: 2, MaxMB: 199},
				Backdrop: SizeRange{MinMB: 0, MaxMB: 5},
			},
			Freshness: FreshnessConfig{GracePeriod: "2m"},
			Backpressure: BackpressureConfig{
				MaxActiveTasks: 100,
				PollInterval:   "1s",
				MaxWait:        "5m",
			},
			StatWorkers:    8,
			FollowSymlinks: true,
		},
		Radarr: RadarrConfig{
			TimeoutSeconds: 30,
		},
		Probe: ProbeConfig{
			Enabled: true,
			FFprobe: "ffprobe",
		},
		Watch: WatchConfig{
			Roots:    []string{},
			Interval: "15m",
			Debounce: "30s",
		},
		Activity: ActivityConfig{
			Enabled:       true,
			RetentionDays: 30,
		},
		Logging: logging.DefaultConfig(),
	}
}

// Load reads the config file at path, or the default location when path is
// empty. A missing file yields defaults. RELEASESCAN_* environment variables
// override file values.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path == "" {
		p, err := paths.ConfigPath()
		if err != nil {
			return nil, fmt.Errorf("unable to get config path: %w", err)
		}
		path = p
	}
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	v.SetEnvPrefix("RELEASESCAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv only applies to keys viper already knows about.
	for _, key := range []string{"radarr.url", "radarr.api_key", "radarr.enabled", "database.path", "logging.level"} {
		_ = v.BindEnv(key)
	}

	if _, err := os.Stat(path); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("unable to read config file: %w", err)
		}
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the scanner thresholds and durations.
func (c *Config) Validate() error {
	var errs []error
	check := func(name string, r SizeRange) {
		if r.MinMB < 0 || r.MaxMB < 0 {
			errs = append(errs, fmt.Errorf("scanner.sizes.%s: negative size", name))
		}
		if r.MaxMB > 0 && r.MaxMB < r.MinMB {
			errs = append(errs, fmt.Errorf("scanner.sizes.%s: max_mb %.0f below min_mb %.0f", name, r.MaxMB, r.MinMB))
		}
	}
	check("movie", c.Scanner.Sizes.Movie)
	check("trailer", c.Scanner.Sizes.Trailer)
	check("backdrop", c.Scanner.Sizes.Backdrop)

	if c.Scanner.Backpressure.MaxActiveTasks <= 0 {
		errs = append(errs, errors.New("scanner.backpressure.max_active_tasks must be positive"))
	}

	for name, value := range map[string]string{
		"scanner.freshness.grace_period":     c.Scanner.Freshness.GracePeriod,
		"scanner.backpressure.poll_interval": c.Scanner.Backpressure.PollInterval,
		"scanner.backpressure.max_wait":      c.Scanner.Backpressure.MaxWait,
		"watch.interval":                     c.Watch.Interval,
		"watch.debounce":                     c.Watch.Debounce,
	} {
		if value == "" {
			continue
		}
		if _, err := time.ParseDuration(value); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}

	if c.Radarr.Enabled && (c.Radarr.URL == "" || c.Radarr.APIKey == "") {
		errs = append(errs, errors.New("radarr: url and api_key are required when enabled"))
	}
	return errors.Join(errs...)
}

// Save writes the configuration as TOML to the default config path.
func (c *Config) Save() error {
	configFile, err := paths.ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(configFile)
}

// SaveTo writes the configuration as TOML to path.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("unable to create config dir: %w", err)
	}

	content, err := c.ToTOML()
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0600)
}

func (c *Config) ToTOML() (string, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("encoding config: %w", err)
	}
	return "# releasescan configuration\n# Generated by: releasescan config init\n\n" + string(data), nil
}

// ConfigExists reports whether a config file exists at the default path.
func ConfigExists() bool {
	path, err := paths.ConfigPath()
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// DatabasePath returns the configured database path or the default one.
func (c *Config) DatabasePath() string {
	if c.Database.Path != "" {
		return c.Database.Path
	}
	dbPath, err := paths.DatabasePath()
	if err != nil {
		return "./releases.db"
	}
	return dbPath
}

// ActivityDir returns the configured journal directory or the default one.
func (c *Config) ActivityDir() string {
	if c.Activity.Dir != "" {
		return c.Activity.Dir
	}
	dir, err := paths.ActivityDir()
	if err != nil {
		return "./activity"
	}
	return dir
}

// Duration parses a duration setting, falling back when empty or invalid.
func Duration(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}

func (s ScannerConfig) GracePeriod() time.Duration {
	return Duration(s.Freshness.GracePeriod, 2*time.Minute)
}

func (s ScannerConfig) PollInterval() time.Duration {
	return Duration(s.Backpressure.PollInterval, time.Second)
}

func (s ScannerConfig) MaxWait() time.Duration {
	return Duration(s.Backpressure.MaxWait, 5*time.Minute)
}
