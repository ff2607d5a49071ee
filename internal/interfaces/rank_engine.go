package interfaces

import (
	"context"
	"time"

	"github.com/ternarybob/rankscout/internal/models"
)

// PageSession is one isolated browsing context (own cookies, cache and storage)
// living inside the shared browser process.
type PageSession interface {
	// ID returns a unique identifier for logging
	ID() string

	// Platform returns the platform key the session was opened for
	Platform() string

	// LoadHTML navigates to url with a hard timeout and returns the rendered document HTML
	LoadHTML(ctx context.Context, url string, timeout time.Duration) (string, error)

	// Close disposes the browsing context
	Close() error
}

// SessionProvider hands out pooled browsing contexts.
// Sessions must be returned with Release so they can be reused or disposed.
type SessionProvider interface {
	Acquire(ctx context.Context, platform string) (PageSession, error)
	Release(session PageSession)
}

// PlatformDriver implements rank discovery for one marketplace
type PlatformDriver interface {
	// Platform returns the registry key, e.g. "coupang"
	Platform() string

	// SetBrowser injects the shared browser process
	SetBrowser(provider SessionProvider)

	// ResolveTarget extracts the canonical product id from the task URL.
	// Returns false when the URL carries no recognisable id.
	ResolveTarget(task *models.Task) (string, bool)

	// Crawl runs the rank lookup and always returns a well-formed result
	Crawl(ctx context.Context, task *models.Task) *models.RankResult

	UpdateConfig(update models.DriverConfig)
	GetConfig() models.DriverConfig
	Status() models.DriverStatus

	Initialize(ctx context.Context) error
	Cleanup(ctx context.Context) error
}

// RankHistoryStorage records rank observations on behalf of the engine's caller
type RankHistoryStorage interface {
	SaveResult(ctx context.Context, task *models.Task, result *models.RankResult) (*models.RankHistoryEntry, error)
	ListByKeyword(ctx context.Context, keyword, platform string, limit int) ([]*models.RankHistoryEntry, error)
	Latest(ctx context.Context, keyword, platform string) (*models.RankHistoryEntry, error)
	DeleteByKeyword(ctx context.Context, keyword, platform string) (int, error)
}
