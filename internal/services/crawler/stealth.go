package crawler

import (
	"encoding/json"
	"fmt"

	"github.com/chromedp/chromedp"
)

// LaunchOptions returns the exec allocator flags for the shared browser process.
// Automation fingerprints and background subsystems are switched off.
func LaunchOptions(cfg BrowserConfig, profile ContextProfile) []chromedp.ExecAllocatorOption {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	opts = append(opts,
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-gpu", cfg.DisableGPU),
		chromedp.Flag("no-sandbox", cfg.NoSandbox),
		chromedp.Flag("disable-setuid-sandbox", cfg.NoSandbox),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("enable-automation", false),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-background-timer-throttling", true),
		chromedp.Flag("disable-renderer-backgrounding", true),
		chromedp.Flag("disable-backgrounding-occluded-windows", true),
		chromedp.Flag("disable-client-side-phishing-detection", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("disable-default-apps", true),
		chromedp.Flag("disable-translate", true),
		chromedp.Flag("disable-notifications", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-speech-api", true),
		chromedp.Flag("disable-logging", true),
		chromedp.Flag("mute-audio", true),
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.WindowSize(int(profile.ViewportWidth), int(profile.ViewportHeight)),
		chromedp.UserAgent(profile.UserAgent),
	)

	if cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ExecPath))
	}
	if cfg.UserDataDir != "" {
		opts = append(opts, chromedp.UserDataDir(cfg.UserDataDir))
	}

	return opts
}

// StealthScript returns the init script evaluated before any page script runs.
// It hides the webdriver flag, fakes a plugin list, pins the language list and
// provides the window.chrome object that pages probe for.
func StealthScript(profile ContextProfile) string {
	languages := profile.Languages
	if len(languages) == 0 {
		languages = []string{"ko-KR", "ko", "en"}
	}
	langJSON, err := json.Marshal(languages)
	if err != nil {
		langJSON = []byte(`["ko-KR","ko","en"]`)
	}

	return fmt.Sprintf(`
		Object.defineProperty(navigator, 'webdriver', { get: () => false, configurable: true });
		Object.defineProperty(navigator, 'plugins', { get: () => [1, 2, 3, 4, 5], configurable: true });
		Object.defineProperty(navigator, 'languages', { get: () => %s, configurable: true });
		window.chrome = window.chrome || {};
		window.chrome.runtime = window.chrome.runtime || {};
		window.chrome.loadTimes = window.chrome.loadTimes || function() {};
		window.chrome.csi = window.chrome.csi || function() {};
		window.chrome.app = window.chrome.app || {};
	`, langJSON)
}
