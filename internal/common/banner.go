package common

import (
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/banner"
)

// PrintBanner displays the application banner and logs the effective crawl settings
func PrintBanner(config *Config, logger arbor.ILogger) {
	banner.PrintSimple("RankScout", GetVersion())

	logger.Info().
		Str("version", GetFullVersion()).
		Bool("headless", config.Browser.Headless).
		Int("max_pages", config.Crawler.MaxPages).
		Int("max_products", config.Crawler.MaxProducts).
		Int("concurrency", config.Batch.Concurrency).
		Bool("history", config.Storage.Enabled).
		Msg("RankScout starting")
}
