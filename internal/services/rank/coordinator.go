package rank

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/rankscout/internal/interfaces"
	"github.com/ternarybob/rankscout/internal/models"
	"golang.org/x/sync/errgroup"
)

// Coordinator maps platform keys to drivers, shares the browser between them
// and dispatches tasks.
type Coordinator struct {
	drivers  map[string]interfaces.PlatformDriver
	provider interfaces.SessionProvider
	validate *validator.Validate
	logger   arbor.ILogger
	mu       sync.RWMutex
}

// NewCoordinator creates an empty registry
func NewCoordinator(logger arbor.ILogger) *Coordinator {
	return &Coordinator{
		drivers:  make(map[string]interfaces.PlatformDriver),
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
	}
}

func normalizeKey(platform string) string {
	return strings.ToLower(strings.TrimSpace(platform))
}

// RegisterDriver adds driver under driver.Platform(), replacing any existing one.
// A browser set earlier is injected immediately.
func (c *Coordinator) RegisterDriver(driver interfaces.PlatformDriver) {
	key := normalizeKey(driver.Platform())

	c.mu.Lock()
	_, replaced := c.drivers[key]
	c.drivers[key] = driver
	provider := c.provider
	c.mu.Unlock()

	if provider != nil {
		driver.SetBrowser(provider)
	}

	c.logger.Info().
		Str("platform", key).
		Bool("replaced", replaced).
		Msg("Platform driver registered")
}

// SetBrowser propagates the shared browser to every registered driver
func (c *Coordinator) SetBrowser(provider interfaces.SessionProvider) {
	c.mu.Lock()
	c.provider = provider
	drivers := c.snapshotLocked()
	c.mu.Unlock()

	for _, driver := range drivers {
		driver.SetBrowser(provider)
	}

	c.logger.Debug().
		Int("drivers", len(drivers)).
		Msg("Browser propagated to platform drivers")
}

// Process runs one task on the driver registered for task.PlatformKey.
//
// An unknown platform is the only error returned; it matches ErrUnsupportedPlatform.
// Invalid tasks, driver failures and driver panics are reported through RankResult.Error.
func (c *Coordinator) Process(ctx context.Context, task *models.Task) (*models.RankResult, error) {
	if task == nil {
		return nil, fmt.Errorf("task is nil")
	}

	if err := c.validate.Struct(task); err != nil {
		c.logger.Warn().Err(err).Str("task_id", task.ID).Msg("Rejected invalid task")
		return models.NewFailedResult(task, nil, fmt.Sprintf("invalid task: %v", err)), nil
	}

	driver, ok := c.Driver(task.PlatformKey)
	if !ok {
		return nil, &UnsupportedPlatformError{
			Platform:  task.PlatformKey,
			Supported: c.SupportedPlatforms(),
		}
	}

	logger := c.logger.WithCorrelationId(task.ID)
	logger.Info().
		Str("platform", driver.Platform()).
		Str("keyword", task.Keyword).
		Msg("Processing rank task")

	result := c.runDriver(ctx, driver, task, logger)

	if result.HasError() {
		logger.Warn().
			Str("error", result.ErrorMessage()).
			Int64("processing_ms", result.ProcessingTimeMs).
			Msg("Rank task finished with error")
	} else {
		logger.Info().
			Bool("found", result.Found).
			Int("rank", result.RankValue()).
			Int("total_products", result.TotalProducts).
			Int64("processing_ms", result.ProcessingTimeMs).
			Msg("Rank task finished")
	}

	return result, nil
}

// runDriver calls Crawl and converts a panic into a failed result
func (c *Coordinator) runDriver(ctx context.Context, driver interfaces.PlatformDriver, task *models.Task, logger arbor.ILogger) (result *models.RankResult) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			logger.Error().
				Str("panic", fmt.Sprintf("%v", r)).
				Str("stack", string(debug.Stack())).
				Msg("Platform driver panicked")
			result = models.NewFailedResult(task, nil, fmt.Sprintf("driver panic: %v", r))
			result.ProcessingTimeMs = time.Since(start).Milliseconds()
		}
	}()

	result = driver.Crawl(ctx, task)
	if result == nil {
		result = models.NewFailedResult(task, nil, "driver returned no result")
		result.ProcessingTimeMs = time.Since(start).Milliseconds()
	}
	return result
}

// ProcessBatch runs tasks concurrently, at most concurrency at a time, and
// returns one CompletedTask per input task in input order. Each task crawls
// in its own browsing context.
func (c *Coordinator) ProcessBatch(ctx context.Context, tasks []models.Task, concurrency int) []models.CompletedTask {
	if concurrency < 1 {
		concurrency = 1
	}

	completed := make([]models.CompletedTask, len(tasks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i := range tasks {
		g.Go(func() error {
			task := tasks[i]
			start := time.Now()

			result, err := c.Process(gctx, &task)
			entry := models.CompletedTask{
				Task:             task,
				Result:           result,
				ProcessingTimeMs: time.Since(start).Milliseconds(),
				Status:           models.TaskStatusCompleted,
			}
			switch {
			case err != nil:
				entry.Status = models.TaskStatusFailed
				entry.Error = err.Error()
			case result.HasError():
				entry.Status = models.TaskStatusFailed
				entry.Error = result.ErrorMessage()
				entry.ProcessingTimeMs = result.ProcessingTimeMs
			default:
				entry.ProcessingTimeMs = result.ProcessingTimeMs
			}
			completed[i] = entry
			return nil
		})
	}

	_ = g.Wait()

	c.logger.Info().
		Int("tasks", len(tasks)).
		Int("concurrency", concurrency).
		Msg("Batch processed")

	return completed
}

// GetStats aggregates completed tasks per platform. Every registered platform
// appears in the output, including those with no tasks.
func (c *Coordinator) GetStats(completed []models.CompletedTask) map[string]models.PlatformStats {
	stats := make(map[string]models.PlatformStats)
	totals := make(map[string]int64)

	for _, key := range c.SupportedPlatforms() {
		stats[key] = models.PlatformStats{}
	}

	for _, ct := range completed {
		key := normalizeKey(ct.Task.PlatformKey)
		s := stats[key]
		s.TotalTasks++
		switch ct.Status {
		case models.TaskStatusCompleted:
			s.CompletedTasks++
		case models.TaskStatusFailed:
			s.FailedTasks++
		}
		totals[key] += ct.ProcessingTimeMs
		stats[key] = s
	}

	for key, s := range stats {
		if s.TotalTasks > 0 {
			s.AvgProcessingTimeMs = (totals[key] + int64(s.TotalTasks)/2) / int64(s.TotalTasks)
			stats[key] = s
		}
	}

	return stats
}

// SupportedPlatforms returns the registered platform keys, sorted
func (c *Coordinator) SupportedPlatforms() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	keys := make([]string, 0, len(c.drivers))
	for key := range c.drivers {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func (c *Coordinator) IsSupported(platform string) bool {
	_, ok := c.Driver(platform)
	return ok
}

// Driver returns the driver registered for platform
func (c *Coordinator) Driver(platform string) (interfaces.PlatformDriver, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	driver, ok := c.drivers[normalizeKey(platform)]
	return driver, ok
}

// DriversStatus returns the status of every registered driver, sorted by platform
func (c *Coordinator) DriversStatus() []models.DriverStatus {
	c.mu.RLock()
	drivers := c.snapshotLocked()
	c.mu.RUnlock()

	statuses := make([]models.DriverStatus, 0, len(drivers))
	for _, driver := range drivers {
		statuses = append(statuses, driver.Status())
	}
	sort.Slice(statuses, func(i, j int) bool { return statuses[i].Name < statuses[j].Name })
	return statuses
}

// InitializeAll initializes every driver, continuing past failures.
// The returned error joins every driver failure.
func (c *Coordinator) InitializeAll(ctx context.Context) error {
	return c.fanOut(ctx, "initialize", func(ctx context.Context, d interfaces.PlatformDriver) error {
		return d.Initialize(ctx)
	})
}

// CleanupAll cleans up every driver, continuing past failures
func (c *Coordinator) CleanupAll(ctx context.Context) error {
	return c.fanOut(ctx, "cleanup", func(ctx context.Context, d interfaces.PlatformDriver) error {
		return d.Cleanup(ctx)
	})
}

func (c *Coordinator) fanOut(ctx context.Context, action string, fn func(context.Context, interfaces.PlatformDriver) error) error {
	c.mu.RLock()
	drivers := c.snapshotLocked()
	c.mu.RUnlock()

	var errs []error
	for _, driver := range drivers {
		if err := fn(ctx, driver); err != nil {
			c.logger.Error().
				Err(err).
				Str("platform", driver.Platform()).
				Str("action", action).
				Msg("Platform driver lifecycle step failed")
			errs = append(errs, fmt.Errorf("%s %s: %w", action, driver.Platform(), err))
			continue
		}
		c.logger.Debug().
			Str("platform", driver.Platform()).
			Str("action", action).
			Msg("Platform driver lifecycle step completed")
	}

	return errors.Join(errs...)
}

// snapshotLocked returns the drivers ordered by platform key; caller holds c.mu
func (c *Coordinator) snapshotLocked() []interfaces.PlatformDriver {
	keys := make([]string, 0, len(c.drivers))
	for key := range c.drivers {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	drivers := make([]interfaces.PlatformDriver, 0, len(keys))
	for _, key := range keys {
		drivers = append(drivers, c.drivers[key])
	}
	return drivers
}
