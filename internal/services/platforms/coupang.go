package platforms

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/rankscout/internal/interfaces"
	"github.com/ternarybob/rankscout/internal/models"
	"github.com/ternarybob/rankscout/internal/services/crawler"
	"github.com/ternarybob/rankscout/internal/services/identifiers"
)

// CoupangSearchURL is the search listing endpoint
const CoupangSearchURL = "https://www.coupang.com/search"

// Result messages shared by drivers
const (
	MsgIdentifierExtractionFailed = "identifier extraction failed"
	MsgBrowserNotSet              = "browser not set"
)

// CoupangDriver is the full rank discovery implementation for coupang.com
type CoupangDriver struct {
	extractor   *identifiers.ProductExtractor
	limiter     *crawler.RateLimiter
	strategies  []crawler.SelectorStrategy
	logger      arbor.ILogger
	config      models.DriverConfig
	provider    interfaces.SessionProvider
	initialized bool
	mu          sync.RWMutex
}

// NewCoupangDriver creates a driver; positive fields of config override the defaults.
// A nil limiter disables navigation rate limiting.
func NewCoupangDriver(config models.DriverConfig, limiter *crawler.RateLimiter, logger arbor.ILogger) *CoupangDriver {
	return &CoupangDriver{
		extractor:  identifiers.NewProductExtractor(),
		limiter:    limiter,
		strategies: crawler.CoupangStrategies(),
		logger:     logger,
		config:     models.DefaultDriverConfig().Merge(config),
	}
}

func (d *CoupangDriver) Platform() string {
	return identifiers.PlatformCoupang
}

// SetBrowser injects the shared session provider
func (d *CoupangDriver) SetBrowser(provider interfaces.SessionProvider) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.provider = provider
}

// ResolveTarget extracts the product id from the task's target URL
func (d *CoupangDriver) ResolveTarget(task *models.Task) (string, bool) {
	return d.extractor.Extract(task.TargetURL, identifiers.PlatformCoupang)
}

// PageURL builds the search listing URL; page 1 omits the page parameter
func PageURL(keyword string, pageNumber int) string {
	u := CoupangSearchURL + "?q=" + url.QueryEscape(keyword)
	if pageNumber > 1 {
		u += "&page=" + strconv.Itoa(pageNumber)
	}
	return u
}

// Crawl scans the search listing for the task's target product
func (d *CoupangDriver) Crawl(ctx context.Context, task *models.Task) *models.RankResult {
	result, elapsed, _ := crawler.MeasureTime(func() (*models.RankResult, error) {
		return d.crawl(ctx, task), nil
	})
	result.ProcessingTimeMs = elapsed.Milliseconds()
	return result
}

func (d *CoupangDriver) crawl(ctx context.Context, task *models.Task) *models.RankResult {
	logger := d.logger.WithCorrelationId(task.ID)
	cfg := d.GetConfig()

	targetID, ok := d.ResolveTarget(task)
	if !ok {
		logger.Warn().
			Str("target_url", task.TargetURL).
			Msg("Could not extract product id from target URL")
		return models.NewFailedResult(task, nil, MsgIdentifierExtractionFailed)
	}

	d.mu.RLock()
	provider := d.provider
	d.mu.RUnlock()
	if provider == nil {
		return models.NewFailedResult(task, &targetID, MsgBrowserNotSet)
	}

	session, err := provider.Acquire(ctx, identifiers.PlatformCoupang)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to acquire browsing context")
		return models.NewFailedResult(task, &targetID, fmt.Sprintf("failed to acquire browsing context: %v", err))
	}
	defer provider.Release(session)

	logger.Info().
		Str("keyword", task.Keyword).
		Str("target_product_id", targetID).
		Str("session_id", session.ID()).
		Int("max_pages", cfg.MaxPages).
		Int("max_products", cfg.MaxProducts).
		Msg("Starting rank crawl")

	loop := &crawlLoop{
		session:    session,
		limiter:    d.limiter,
		strategies: d.strategies,
		pageURL:    PageURL,
		config:     cfg,
		logger:     logger,
	}
	outcome := loop.run(ctx, task.Keyword, targetID)

	result := &models.RankResult{
		TargetProductID: &targetID,
		Platform:        task.PlatformKey,
		Keyword:         task.Keyword,
		CheckedAt:       time.Now(),
	}
	outcome.apply(result)

	logger.Info().
		Bool("found", result.Found).
		Int("rank", result.RankValue()).
		Int("total_products", result.TotalProducts).
		Int("pages_scanned", result.PagesScanned).
		Str("stop_reason", outcome.stopReason).
		Msg("Rank crawl finished")

	return result
}

// UpdateConfig applies every positive field of update
func (d *CoupangDriver) UpdateConfig(update models.DriverConfig) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.config = d.config.Merge(update)
}

// GetConfig returns a copy of the current budgets
func (d *CoupangDriver) GetConfig() models.DriverConfig {
	d.mu.RLock()
	defer d.mu.RUnlock()

	cfg := d.config
	cfg.Platform = identifiers.PlatformCoupang
	cfg.Status = models.DriverStatusActive
	return cfg
}

func (d *CoupangDriver) Status() models.DriverStatus {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return models.DriverStatus{
		Name:       identifiers.PlatformCoupang,
		BrowserSet: d.provider != nil,
		Ready:      d.initialized && d.provider != nil,
	}
}

// Initialize marks the driver ready; the browser itself is owned by the caller
func (d *CoupangDriver) Initialize(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.provider == nil {
		return fmt.Errorf("%s driver: %s", identifiers.PlatformCoupang, MsgBrowserNotSet)
	}
	d.initialized = true
	d.logger.Debug().Str("platform", identifiers.PlatformCoupang).Msg("Driver initialized")
	return nil
}

func (d *CoupangDriver) Cleanup(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.initialized = false
	d.logger.Debug().Str("platform", identifiers.PlatformCoupang).Msg("Driver cleaned up")
	return nil
}
