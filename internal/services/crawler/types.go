package crawler

import (
	"errors"
	"time"
)

var (
	// ErrPoolClosed is returned by Acquire after the session pool has been closed
	ErrPoolClosed = errors.New("session pool closed")

	// ErrBrowserNotStarted is returned when a session is requested before Start
	ErrBrowserNotStarted = errors.New("browser not started")
)

// BrowserConfig holds launch settings for the shared browser process
type BrowserConfig struct {
	Headless       bool
	DisableGPU     bool
	NoSandbox      bool
	ExecPath       string // Empty uses chromedp's browser discovery
	UserDataDir    string // Empty uses a temporary profile
	StartupTimeout time.Duration

	// MaxIdlePerPlatform is the number of warm browsing contexts kept per platform
	MaxIdlePerPlatform int
	// BlockResources installs the network filter on every session
	BlockResources bool
	// ExtraBlockedTokens are added to the default tracker token list
	ExtraBlockedTokens []string
}

// DefaultBrowserConfig returns launch settings suitable for unattended crawling
func DefaultBrowserConfig() BrowserConfig {
	return BrowserConfig{
		Headless:           true,
		DisableGPU:         true,
		NoSandbox:          true,
		StartupTimeout:     30 * time.Second,
		MaxIdlePerPlatform: 2,
		BlockResources:     true,
	}
}

// ContextProfile is the fingerprint applied to every browsing context
type ContextProfile struct {
	UserAgent      string
	AcceptLanguage string
	Locale         string
	Languages      []string
	TimezoneID     string
	ViewportWidth  int64
	ViewportHeight int64
	Headers        map[string]string
}

// DefaultContextProfile returns a realistic desktop Chrome fingerprint for Korean marketplaces
func DefaultContextProfile() ContextProfile {
	return ContextProfile{
		UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		AcceptLanguage: "ko-KR,ko;q=0.9,en;q=0.8",
		Locale:         "ko-KR",
		Languages:      []string{"ko-KR", "ko", "en"},
		TimezoneID:     "Asia/Seoul",
		ViewportWidth:  1920,
		ViewportHeight: 1080,
		Headers: map[string]string{
			"accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
			"accept-language":           "ko-KR,ko;q=0.9,en;q=0.8",
			"cache-control":             "max-age=0",
			"sec-ch-ua":                 `"Not_A Brand";v="8", "Chromium";v="120", "Google Chrome";v="120"`,
			"sec-ch-ua-mobile":          "?0",
			"sec-ch-ua-platform":        `"Windows"`,
			"sec-fetch-dest":            "document",
			"sec-fetch-mode":            "navigate",
			"sec-fetch-site":            "none",
			"sec-fetch-user":            "?1",
			"upgrade-insecure-requests": "1",
		},
	}
}
