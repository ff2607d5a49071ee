package platforms

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/rankscout/internal/interfaces"
	"github.com/ternarybob/rankscout/internal/models"
	"github.com/ternarybob/rankscout/internal/services/crawler"
)

// pageURLFunc builds the search listing URL for a 1-based page number
type pageURLFunc func(keyword string, pageNumber int) string

// crawlLoop is the paginated scan shared by every full driver.
// Pages are fetched strictly in order; each page's dedup depends on all prior pages.
type crawlLoop struct {
	session    interfaces.PageSession
	limiter    *crawler.RateLimiter
	strategies []crawler.SelectorStrategy
	pageURL    pageURLFunc
	config     models.DriverConfig
	logger     arbor.ILogger
}

// crawlOutcome is the terminal state of one crawl
type crawlOutcome struct {
	found        bool
	rank         int
	totalIDs     int
	pagesScanned int
	stopReason   string
	navErr       error // set when no page could be loaded
	cancelErr    error
}

const (
	stopFound        = "found"
	stopMaxProducts  = "max_products"
	stopMaxPages     = "max_pages"
	stopStagnation   = "stagnation"
	stopCancelled    = "cancelled"
	stopNavFailures  = "navigation_failures"
	stopEarlyFailure = "failure_past_early_pages"
)

// run scans pages until the target is found or a budget is exhausted
func (l *crawlLoop) run(ctx context.Context, keyword, targetID string) crawlOutcome {
	cfg := l.config
	seen := crawler.NewOrderedIDSet()
	policy := crawler.RetryPolicy{MaxAttempts: cfg.RetryAttempts, BaseDelay: cfg.RetryDelay}

	var (
		outcome             crawlOutcome
		stagnantPages       int
		consecutiveFailures int
		lastErr             error
	)
	outcome.stopReason = stopMaxPages

	for pageNumber := 1; pageNumber <= cfg.MaxPages; pageNumber++ {
		if err := ctx.Err(); err != nil {
			outcome.cancelErr = err
			outcome.stopReason = stopCancelled
			break
		}

		pageURL := l.pageURL(keyword, pageNumber)
		html, err := crawler.Retry(ctx, policy, l.logger, func(ctx context.Context) (string, error) {
			if err := l.limiter.Wait(ctx, pageURL); err != nil {
				return "", err
			}
			return l.session.LoadHTML(ctx, pageURL, cfg.NavigationTimeout)
		})
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				outcome.cancelErr = ctxErr
				outcome.stopReason = stopCancelled
				break
			}

			consecutiveFailures++
			lastErr = err
			l.logger.Warn().
				Err(err).
				Int("page", pageNumber).
				Int("consecutive_failures", consecutiveFailures).
				Msg("Page load failed after retries")

			if pageNumber > cfg.EarlyPageThreshold {
				outcome.stopReason = stopEarlyFailure
				break
			}
			if consecutiveFailures >= cfg.MaxConsecutiveFailures {
				outcome.stopReason = stopNavFailures
				break
			}
			continue
		}
		consecutiveFailures = 0
		outcome.pagesScanned++

		if err := crawler.Sleep(ctx, crawler.CalculateDelay(cfg.BaseDelay, pageNumber)); err != nil {
			outcome.cancelErr = err
			outcome.stopReason = stopCancelled
			break
		}

		candidates, err := crawler.ExtractCandidates(html, l.strategies)
		if err != nil {
			l.logger.Warn().Err(err).Int("page", pageNumber).Msg("Failed to extract candidates")
		}

		added := seen.AddAll(crawler.CandidateIDs(candidates))

		l.logger.Debug().
			Int("page", pageNumber).
			Int("candidates", len(candidates)).
			Int("new_ids", added).
			Int("total_ids", seen.Len()).
			Bool("target_on_page", crawler.ContainsProduct(candidates, targetID)).
			Msg("Page scanned")

		if seen.Contains(targetID) {
			outcome.found = true
			outcome.rank = seen.Rank(targetID)
			outcome.stopReason = stopFound
			break
		}

		if seen.Len() >= cfg.MaxProducts {
			outcome.stopReason = stopMaxProducts
			break
		}

		if added == 0 && seen.Len() > 0 {
			stagnantPages++
		} else {
			stagnantPages = 0
		}
		if stagnantPages >= cfg.StagnationLimit {
			outcome.stopReason = stopStagnation
			break
		}
	}

	outcome.totalIDs = seen.Len()
	if outcome.pagesScanned == 0 && lastErr != nil && outcome.cancelErr == nil {
		outcome.navErr = lastErr
	}

	return outcome
}

// apply copies the outcome onto a result
func (o crawlOutcome) apply(result *models.RankResult) {
	result.Found = o.found
	result.TotalProducts = o.totalIDs
	result.PagesScanned = o.pagesScanned
	if o.found {
		rank := o.rank
		result.Rank = &rank
	}

	switch {
	case o.cancelErr != nil:
		msg := fmt.Sprintf("crawl cancelled: %v", o.cancelErr)
		result.Error = &msg
	case o.navErr != nil:
		msg := fmt.Sprintf("navigation failed: %v", o.navErr)
		result.Error = &msg
	}
}
