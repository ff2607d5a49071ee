package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/rankscout/internal/common"
	"github.com/ternarybob/rankscout/internal/interfaces"
	"github.com/ternarybob/rankscout/internal/models"
	"github.com/ternarybob/rankscout/internal/services/crawler"
	"github.com/ternarybob/rankscout/internal/services/identifiers"
	"github.com/ternarybob/rankscout/internal/services/platforms"
	"github.com/ternarybob/rankscout/internal/services/rank"
	"github.com/ternarybob/rankscout/internal/storage/badger"
)

// engine owns the shared browser, the coordinator and the optional history store
type engine struct {
	coordinator *rank.Coordinator
	browser     *crawler.Browser
	db          *badger.BadgerDB
	history     interfaces.RankHistoryStorage
	logger      arbor.ILogger
}

// newCoordinator registers every platform driver with its configured budgets.
// No browser is attached.
func newCoordinator(cfg *common.Config, logger arbor.ILogger) *rank.Coordinator {
	limiter := crawler.NewRateLimiter(cfg.Crawler.NavigationRate, cfg.Crawler.NavigationBurst)

	coordinator := rank.NewCoordinator(logger)
	coordinator.RegisterDriver(platforms.NewCoupangDriver(cfg.Crawler.DriverConfig(identifiers.PlatformCoupang), limiter, logger))

	for _, driver := range []*platforms.StubDriver{platforms.NewNaverDriver(logger), platforms.New11stDriver(logger)} {
		driver.UpdateConfig(cfg.Crawler.DriverConfig(driver.Platform()))
		coordinator.RegisterDriver(driver)
	}

	return coordinator
}

// browserConfig converts the [browser] section into launch settings
func browserConfig(c common.BrowserConfig) crawler.BrowserConfig {
	defaults := crawler.DefaultBrowserConfig()
	return crawler.BrowserConfig{
		Headless:           c.Headless,
		DisableGPU:         c.DisableGPU,
		NoSandbox:          c.NoSandbox,
		ExecPath:           c.ExecPath,
		UserDataDir:        c.UserDataDir,
		StartupTimeout:     common.ParseDuration(c.StartupTimeout, defaults.StartupTimeout),
		MaxIdlePerPlatform: c.MaxIdlePerPlatform,
		BlockResources:     c.BlockResources,
		ExtraBlockedTokens: c.ExtraBlockedTokens,
	}
}

// startEngine launches the browser, attaches it to every driver and opens
// the history store when enabled
func startEngine(ctx context.Context, cfg *common.Config, logger arbor.ILogger) (*engine, error) {
	e := &engine{
		coordinator: newCoordinator(cfg, logger),
		browser:     crawler.NewBrowser(browserConfig(cfg.Browser), logger),
		logger:      logger,
	}

	if err := e.browser.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	e.coordinator.SetBrowser(e.browser)

	if err := e.coordinator.InitializeAll(ctx); err != nil {
		e.Close(ctx)
		return nil, fmt.Errorf("failed to initialize platform drivers: %w", err)
	}

	if cfg.Storage.Enabled {
		db, err := badger.NewBadgerDB(logger, &cfg.Storage.Badger)
		if err != nil {
			e.Close(ctx)
			return nil, fmt.Errorf("failed to open rank history store: %w", err)
		}
		e.db = db
		e.history = badger.NewRankHistoryStorage(db, logger)
	}

	return e, nil
}

// record saves result when the history store is enabled; failures are logged only
func (e *engine) record(ctx context.Context, task *models.Task, result *models.RankResult) {
	if e.history == nil || result == nil {
		return
	}
	if _, err := e.history.SaveResult(ctx, task, result); err != nil {
		e.logger.Error().Err(err).Str("task_id", task.ID).Msg("Failed to record rank history")
	}
}

// Close cleans up drivers, shuts down the browser and closes the store
func (e *engine) Close(ctx context.Context) {
	var errs []error
	if err := e.coordinator.CleanupAll(context.WithoutCancel(ctx)); err != nil {
		errs = append(errs, err)
	}
	if err := e.browser.Shutdown(); err != nil {
		errs = append(errs, err)
	}
	if e.db != nil {
		if err := e.db.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if err := errors.Join(errs...); err != nil {
		e.logger.Warn().Err(err).Msg("Shutdown completed with errors")
		return
	}
	e.logger.Debug().Msg("Engine shut down")
}

// signalContext returns a context cancelled on SIGINT or SIGTERM
func signalContext(parent context.Context, logger arbor.ILogger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	common.SafeGo(logger, "signalWatcher", func() {
		defer signal.Stop(sigChan)
		select {
		case <-sigChan:
			logger.Info().Msg("Interrupt signal received, cancelling")
			cancel()
		case <-ctx.Done():
		}
	})

	return ctx, cancel
}
