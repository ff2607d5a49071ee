package models

import "time"

// Driver status values reported by GetConfig
const (
	DriverStatusActive = "active"
	DriverStatusStub   = "stub"
)

// DriverConfig holds the runtime-tunable budgets of a platform driver.
// Zero values in an update mean "leave unchanged".
type DriverConfig struct {
	MaxPages          int           `json:"max_pages" toml:"max_pages"`
	MaxProducts       int           `json:"max_products" toml:"max_products"`
	BaseDelay         time.Duration `json:"base_delay" toml:"base_delay"`
	NavigationTimeout time.Duration `json:"navigation_timeout" toml:"navigation_timeout"`
	RetryAttempts     int           `json:"retry_attempts" toml:"retry_attempts"`
	RetryDelay        time.Duration `json:"retry_delay" toml:"retry_delay"`

	// StagnationLimit is the number of consecutive pages without new ids before giving up
	StagnationLimit int `json:"stagnation_limit" toml:"stagnation_limit"`
	// EarlyPageThreshold: failed pages up to this page number are skipped instead of aborting
	EarlyPageThreshold int `json:"early_page_threshold" toml:"early_page_threshold"`
	// MaxConsecutiveFailures aborts the crawl after this many failed pages in a row
	MaxConsecutiveFailures int `json:"max_consecutive_failures" toml:"max_consecutive_failures"`

	// Read-only fields filled in by GetConfig
	Platform string `json:"platform,omitempty" toml:"-"`
	Status   string `json:"status,omitempty" toml:"-"`
}

// DefaultDriverConfig returns the budgets used when nothing is configured
func DefaultDriverConfig() DriverConfig {
	return DriverConfig{
		MaxPages:               20,
		MaxProducts:            2000,
		BaseDelay:              600 * time.Millisecond,
		NavigationTimeout:      6 * time.Second,
		RetryAttempts:          3,
		RetryDelay:             time.Second,
		StagnationLimit:        3,
		EarlyPageThreshold:     3,
		MaxConsecutiveFailures: 3,
	}
}

// Merge returns a copy of c with every positive field of update applied
func (c DriverConfig) Merge(update DriverConfig) DriverConfig {
	if update.MaxPages > 0 {
		c.MaxPages = update.MaxPages
	}
	if update.MaxProducts > 0 {
		c.MaxProducts = update.MaxProducts
	}
	if update.BaseDelay > 0 {
		c.BaseDelay = update.BaseDelay
	}
	if update.NavigationTimeout > 0 {
		c.NavigationTimeout = update.NavigationTimeout
	}
	if update.RetryAttempts > 0 {
		c.RetryAttempts = update.RetryAttempts
	}
	if update.RetryDelay > 0 {
		c.RetryDelay = update.RetryDelay
	}
	if update.StagnationLimit > 0 {
		c.StagnationLimit = update.StagnationLimit
	}
	if update.EarlyPageThreshold > 0 {
		c.EarlyPageThreshold = update.EarlyPageThreshold
	}
	if update.MaxConsecutiveFailures > 0 {
		c.MaxConsecutiveFailures = update.MaxConsecutiveFailures
	}
	return c
}
