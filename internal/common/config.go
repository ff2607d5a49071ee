package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"

	"github.com/ternarybob/rankscout/internal/models"
)

// Config represents the application configuration
type Config struct {
	Logging LoggingConfig `toml:"logging"`
	Browser BrowserConfig `toml:"browser"`
	Crawler CrawlerConfig `toml:"crawler"`
	Batch   BatchConfig   `toml:"batch"`
	Storage StorageConfig `toml:"storage"`
}

type LoggingConfig struct {
	Level      string   `toml:"level" validate:"oneof=trace debug info warn error"`
	Output     []string `toml:"output"`      // "stdout", "file"
	TimeFormat string   `toml:"time_format"` // Console/file timestamp layout (default: "15:04:05")
	FileName   string   `toml:"file_name"`   // Log file name inside ./logs next to the executable
}

// BrowserConfig controls the shared browser process
type BrowserConfig struct {
	Headless           bool     `toml:"headless"`
	DisableGPU         bool     `toml:"disable_gpu"`
	NoSandbox          bool     `toml:"no_sandbox"`
	ExecPath           string   `toml:"exec_path"`       // Empty lets chromedp locate Chrome
	UserDataDir        string   `toml:"user_data_dir"`   // Empty uses a throwaway profile
	StartupTimeout     string   `toml:"startup_timeout"` // e.g. "30s"
	MaxIdlePerPlatform int      `toml:"max_idle_per_platform" validate:"min=0,max=16"`
	BlockResources     bool     `toml:"block_resources"` // Abort heavy images, fonts and trackers
	ExtraBlockedTokens []string `toml:"extra_blocked_tokens"`
}

// CrawlerConfig holds the default driver budgets plus per-platform overrides.
// Durations are Go duration strings ("600ms", "6s").
type CrawlerConfig struct {
	MaxPages               int    `toml:"max_pages" validate:"min=1"`
	MaxProducts            int    `toml:"max_products" validate:"min=1"`
	BaseDelay              string `toml:"base_delay"`
	NavigationTimeout      string `toml:"navigation_timeout"`
	RetryAttempts          int    `toml:"retry_attempts" validate:"min=1,max=10"`
	RetryDelay             string `toml:"retry_delay"`
	StagnationLimit        int    `toml:"stagnation_limit" validate:"min=1"`
	EarlyPageThreshold     int    `toml:"early_page_threshold" validate:"min=1"`
	MaxConsecutiveFailures int    `toml:"max_consecutive_failures" validate:"min=1"`

	// NavigationRate is the allowed page loads per second per host across all tasks (0 disables)
	NavigationRate  float64 `toml:"navigation_rate" validate:"min=0"`
	NavigationBurst int     `toml:"navigation_burst" validate:"min=0"`

	Platforms map[string]PlatformOverride `toml:"platforms" validate:"dive"`
}

// PlatformOverride replaces crawler defaults for one platform; zero values inherit
type PlatformOverride struct {
	MaxPages               int    `toml:"max_pages" validate:"min=0"`
	MaxProducts            int    `toml:"max_products" validate:"min=0"`
	BaseDelay              string `toml:"base_delay"`
	NavigationTimeout      string `toml:"navigation_timeout"`
	RetryAttempts          int    `toml:"retry_attempts" validate:"min=0,max=10"`
	RetryDelay             string `toml:"retry_delay"`
	StagnationLimit        int    `toml:"stagnation_limit" validate:"min=0"`
	EarlyPageThreshold     int    `toml:"early_page_threshold" validate:"min=0"`
	MaxConsecutiveFailures int    `toml:"max_consecutive_failures" validate:"min=0"`
}

type BatchConfig struct {
	Concurrency int `toml:"concurrency" validate:"min=1,max=32"` // Tasks crawled in parallel, one browsing context each
}

type StorageConfig struct {
	Enabled bool         `toml:"enabled"` // Record every result in the rank history store
	Badger  BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path"`
	ResetOnStartup bool   `toml:"reset_on_startup"`
}

// NewDefaultConfig creates a configuration with default values
func NewDefaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:      "info",
			Output:     []string{"stdout"},
			TimeFormat: "15:04:05",
			FileName:   "rankscout.log",
		},
		Browser: BrowserConfig{
			Headless:           true,
			DisableGPU:         true,
			NoSandbox:          true,
			StartupTimeout:     "30s",
			MaxIdlePerPlatform: 2,
			BlockResources:     true,
		},
		Crawler: CrawlerConfig{
			MaxPages:               20,
			MaxProducts:            2000,
			BaseDelay:              "600ms",
			NavigationTimeout:      "6s",
			RetryAttempts:          3,
			RetryDelay:             "1s",
			StagnationLimit:        3,
			EarlyPageThreshold:     3,
			MaxConsecutiveFailures: 3,
			NavigationRate:         2,
			NavigationBurst:        2,
			Platforms:              map[string]PlatformOverride{},
		},
		Batch: BatchConfig{
			Concurrency: 2,
		},
		Storage: StorageConfig{
			Enabled: false,
			Badger: BadgerConfig{
				Path: "./data/rankscout",
			},
		},
	}
}

// LoadFromFiles loads configuration with priority: defaults -> file1 -> file2 -> ... -> env.
// Later files override earlier files. CLI flags are applied afterwards with ApplyFlagOverrides.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies RANKSCOUT_* environment variable overrides to config
func applyEnvOverrides(config *Config) {
	// Logging configuration
	if level := os.Getenv("RANKSCOUT_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if output := os.Getenv("RANKSCOUT_LOG_OUTPUT"); output != "" {
		outputs := []string{}
		for _, o := range strings.Split(output, ",") {
			if o = strings.TrimSpace(o); o != "" {
				outputs = append(outputs, o)
			}
		}
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}

	// Browser configuration
	if headless := os.Getenv("RANKSCOUT_BROWSER_HEADLESS"); headless != "" {
		if b, err := strconv.ParseBool(headless); err == nil {
			config.Browser.Headless = b
		}
	}
	if noSandbox := os.Getenv("RANKSCOUT_BROWSER_NO_SANDBOX"); noSandbox != "" {
		if b, err := strconv.ParseBool(noSandbox); err == nil {
			config.Browser.NoSandbox = b
		}
	}
	if execPath := os.Getenv("RANKSCOUT_BROWSER_EXEC_PATH"); execPath != "" {
		config.Browser.ExecPath = execPath
	}
	if block := os.Getenv("RANKSCOUT_BROWSER_BLOCK_RESOURCES"); block != "" {
		if b, err := strconv.ParseBool(block); err == nil {
			config.Browser.BlockResources = b
		}
	}

	// Crawler configuration
	if maxPages := os.Getenv("RANKSCOUT_CRAWLER_MAX_PAGES"); maxPages != "" {
		if v, err := strconv.Atoi(maxPages); err == nil {
			config.Crawler.MaxPages = v
		}
	}
	if maxProducts := os.Getenv("RANKSCOUT_CRAWLER_MAX_PRODUCTS"); maxProducts != "" {
		if v, err := strconv.Atoi(maxProducts); err == nil {
			config.Crawler.MaxProducts = v
		}
	}
	if baseDelay := os.Getenv("RANKSCOUT_CRAWLER_BASE_DELAY"); baseDelay != "" {
		config.Crawler.BaseDelay = baseDelay
	}
	if timeout := os.Getenv("RANKSCOUT_CRAWLER_NAVIGATION_TIMEOUT"); timeout != "" {
		config.Crawler.NavigationTimeout = timeout
	}
	if rate := os.Getenv("RANKSCOUT_CRAWLER_NAVIGATION_RATE"); rate != "" {
		if v, err := strconv.ParseFloat(rate, 64); err == nil {
			config.Crawler.NavigationRate = v
		}
	}

	// Batch configuration
	if concurrency := os.Getenv("RANKSCOUT_BATCH_CONCURRENCY"); concurrency != "" {
		if v, err := strconv.Atoi(concurrency); err == nil {
			config.Batch.Concurrency = v
		}
	}

	// Storage configuration
	if enabled := os.Getenv("RANKSCOUT_STORAGE_ENABLED"); enabled != "" {
		if b, err := strconv.ParseBool(enabled); err == nil {
			config.Storage.Enabled = b
		}
	}
	if badgerPath := os.Getenv("RANKSCOUT_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}
}

// FlagOverrides carries CLI flag values; zero values leave the config unchanged
type FlagOverrides struct {
	LogLevel    string
	MaxPages    int
	MaxProducts int
	Concurrency int
	Headful     bool
	Store       bool
	StorePath   string
}

// ApplyFlagOverrides applies command-line flag overrides to config.
// Command-line flags have highest priority.
func ApplyFlagOverrides(config *Config, flags FlagOverrides) {
	if flags.LogLevel != "" {
		config.Logging.Level = flags.LogLevel
	}
	if flags.MaxPages > 0 {
		config.Crawler.MaxPages = flags.MaxPages
	}
	if flags.MaxProducts > 0 {
		config.Crawler.MaxProducts = flags.MaxProducts
	}
	if flags.Concurrency > 0 {
		config.Batch.Concurrency = flags.Concurrency
	}
	if flags.Headful {
		config.Browser.Headless = false
	}
	if flags.Store {
		config.Storage.Enabled = true
	}
	if flags.StorePath != "" {
		config.Storage.Badger.Path = flags.StorePath
	}
}

// Validate checks value ranges and duration strings
func (c *Config) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	durations := map[string]string{
		"browser.startup_timeout":    c.Browser.StartupTimeout,
		"crawler.base_delay":         c.Crawler.BaseDelay,
		"crawler.navigation_timeout": c.Crawler.NavigationTimeout,
		"crawler.retry_delay":        c.Crawler.RetryDelay,
	}
	for key, override := range c.Crawler.Platforms {
		durations["crawler.platforms."+key+".base_delay"] = override.BaseDelay
		durations["crawler.platforms."+key+".navigation_timeout"] = override.NavigationTimeout
		durations["crawler.platforms."+key+".retry_delay"] = override.RetryDelay
	}
	for key, value := range durations {
		if value == "" {
			continue
		}
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid configuration: %s: %w", key, err)
		}
	}

	return nil
}

// DriverConfig returns the budgets for platform: crawler defaults with the
// platform's override applied
func (c *CrawlerConfig) DriverConfig(platform string) models.DriverConfig {
	cfg := models.DefaultDriverConfig().Merge(models.DriverConfig{
		MaxPages:               c.MaxPages,
		MaxProducts:            c.MaxProducts,
		BaseDelay:              ParseDuration(c.BaseDelay, 0),
		NavigationTimeout:      ParseDuration(c.NavigationTimeout, 0),
		RetryAttempts:          c.RetryAttempts,
		RetryDelay:             ParseDuration(c.RetryDelay, 0),
		StagnationLimit:        c.StagnationLimit,
		EarlyPageThreshold:     c.EarlyPageThreshold,
		MaxConsecutiveFailures: c.MaxConsecutiveFailures,
	})

	override, ok := c.Platforms[strings.ToLower(platform)]
	if !ok {
		return cfg
	}

	return cfg.Merge(models.DriverConfig{
		MaxPages:               override.MaxPages,
		MaxProducts:            override.MaxProducts,
		BaseDelay:              ParseDuration(override.BaseDelay, 0),
		NavigationTimeout:      ParseDuration(override.NavigationTimeout, 0),
		RetryAttempts:          override.RetryAttempts,
		RetryDelay:             ParseDuration(override.RetryDelay, 0),
		StagnationLimit:        override.StagnationLimit,
		EarlyPageThreshold:     override.EarlyPageThreshold,
		MaxConsecutiveFailures: override.MaxConsecutiveFailures,
	})
}

// ParseDuration parses a Go duration string, returning fallback when empty or invalid
func ParseDuration(value string, fallback time.Duration) time.Duration {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return d
}
