package platforms

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/rankscout/internal/interfaces"
	"github.com/ternarybob/rankscout/internal/models"
	"github.com/ternarybob/rankscout/internal/services/identifiers"
)

// StubDriver registers a marketplace whose crawl is not implemented yet.
// It resolves targets but never opens a browsing context.
type StubDriver struct {
	platform  string
	extractor *identifiers.ProductExtractor
	logger    arbor.ILogger
	config    models.DriverConfig
	provider  interfaces.SessionProvider
	mu        sync.RWMutex
}

// NewStubDriver creates a stub for platform
func NewStubDriver(platform string, logger arbor.ILogger) *StubDriver {
	return &StubDriver{
		platform:  platform,
		extractor: identifiers.NewProductExtractor(),
		logger:    logger,
		config:    models.DefaultDriverConfig(),
	}
}

// NewNaverDriver returns the stub for shopping.naver.com
func NewNaverDriver(logger arbor.ILogger) *StubDriver {
	return NewStubDriver(identifiers.PlatformNaver, logger)
}

// New11stDriver returns the stub for 11st.co.kr
func New11stDriver(logger arbor.ILogger) *StubDriver {
	return NewStubDriver(identifiers.Platform11st, logger)
}

func (d *StubDriver) Platform() string {
	return d.platform
}

func (d *StubDriver) SetBrowser(provider interfaces.SessionProvider) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.provider = provider
}

func (d *StubDriver) ResolveTarget(task *models.Task) (string, bool) {
	return d.extractor.Extract(task.TargetURL, d.platform)
}

// Crawl returns a typed not-implemented result
func (d *StubDriver) Crawl(ctx context.Context, task *models.Task) *models.RankResult {
	start := time.Now()

	var target *string
	if id, ok := d.ResolveTarget(task); ok {
		target = &id
	}

	d.logger.WithCorrelationId(task.ID).Warn().
		Str("platform", d.platform).
		Str("keyword", task.Keyword).
		Msg("Rank crawl requested for unimplemented platform")

	result := models.NewFailedResult(task, target, NotImplementedMessage(d.platform))
	result.ProcessingTimeMs = time.Since(start).Milliseconds()
	return result
}

// NotImplementedMessage is the error carried by stub results
func NotImplementedMessage(platform string) string {
	return fmt.Sprintf("%s driver not implemented", platform)
}

func (d *StubDriver) UpdateConfig(update models.DriverConfig) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.config = d.config.Merge(update)
}

func (d *StubDriver) GetConfig() models.DriverConfig {
	d.mu.RLock()
	defer d.mu.RUnlock()

	cfg := d.config
	cfg.Platform = d.platform
	cfg.Status = models.DriverStatusStub
	return cfg
}

func (d *StubDriver) Status() models.DriverStatus {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return models.DriverStatus{
		Name:       d.platform,
		BrowserSet: d.provider != nil,
		Ready:      false,
		Stub:       true,
	}
}

func (d *StubDriver) Initialize(ctx context.Context) error {
	d.logger.Debug().Str("platform", d.platform).Msg("Stub driver initialized")
	return nil
}

func (d *StubDriver) Cleanup(ctx context.Context) error {
	return nil
}

var (
	_ interfaces.PlatformDriver = (*CoupangDriver)(nil)
	_ interfaces.PlatformDriver = (*StubDriver)(nil)
)
