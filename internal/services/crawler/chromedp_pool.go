package crawler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/google/uuid"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/rankscout/internal/interfaces"
)

// Browser owns the single browser process shared by every platform driver.
// Each task gets its own isolated browser context from the session pool.
type Browser struct {
	config        BrowserConfig
	profile       ContextProfile
	logger        arbor.ILogger
	pool          *SessionPool
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
	mu            sync.Mutex
	started       bool
}

// NewBrowser creates an unstarted browser using the default context profile
func NewBrowser(config BrowserConfig, logger arbor.ILogger) *Browser {
	b := &Browser{
		config:  config,
		profile: DefaultContextProfile(),
		logger:  logger,
	}
	b.pool = NewSessionPool(b.openSession, config.MaxIdlePerPlatform, logger)
	return b
}

// Start launches the browser process and verifies it responds
func (b *Browser) Start(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.started {
		return fmt.Errorf("browser already started")
	}

	startTime := time.Now()
	b.logger.Info().
		Bool("headless", b.config.Headless).
		Bool("block_resources", b.config.BlockResources).
		Int("max_idle_per_platform", b.config.MaxIdlePerPlatform).
		Msg("Starting shared browser process")

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), LaunchOptions(b.config, b.profile)...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	timeout := b.config.StartupTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	probeCtx, probeCancel := context.WithTimeout(browserCtx, timeout)
	defer probeCancel()
	stop := context.AfterFunc(ctx, probeCancel)
	defer stop()

	if err := chromedp.Run(probeCtx, chromedp.Navigate("about:blank")); err != nil {
		browserCancel()
		allocCancel()
		return fmt.Errorf("browser failed startup test: %w", err)
	}

	b.allocCancel = allocCancel
	b.browserCtx = browserCtx
	b.browserCancel = browserCancel
	b.started = true

	b.logger.Info().
		Dur("startup_time", time.Since(startTime)).
		Msg("Shared browser process started")

	return nil
}

// IsStarted reports whether Start succeeded and Shutdown has not run
func (b *Browser) IsStarted() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.started
}

// Acquire implements interfaces.SessionProvider
func (b *Browser) Acquire(ctx context.Context, platform string) (interfaces.PageSession, error) {
	if !b.IsStarted() {
		return nil, ErrBrowserNotStarted
	}
	return b.pool.Acquire(ctx, platform)
}

// Release implements interfaces.SessionProvider
func (b *Browser) Release(session interfaces.PageSession) {
	b.pool.Release(session)
}

// Stats returns the session pool counters
func (b *Browser) Stats() PoolStats {
	return b.pool.Stats()
}

// Shutdown closes every browsing context and then the browser process
func (b *Browser) Shutdown() error {
	poolErr := b.pool.Close()

	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.started {
		return poolErr
	}

	if err := chromedp.Cancel(b.browserCtx); err != nil {
		b.logger.Debug().Err(err).Msg("Browser close returned error")
	}
	b.browserCancel()
	b.allocCancel()
	b.started = false

	b.logger.Info().Msg("Shared browser process shut down")
	return poolErr
}

// openSession is the pool factory: a fresh browser context with the profile,
// stealth script and network filter applied
func (b *Browser) openSession(ctx context.Context, platform string) (interfaces.PageSession, error) {
	b.mu.Lock()
	browserCtx := b.browserCtx
	b.mu.Unlock()

	if browserCtx == nil {
		return nil, ErrBrowserNotStarted
	}

	tabCtx, tabCancel := chromedp.NewContext(browserCtx, chromedp.WithNewBrowserContext())

	timeout := b.config.StartupTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	setupCtx, setupCancel := context.WithTimeout(tabCtx, timeout)
	defer setupCancel()
	stop := context.AfterFunc(ctx, setupCancel)
	defer stop()

	headers := make(network.Headers, len(b.profile.Headers))
	for k, v := range b.profile.Headers {
		headers[k] = v
	}
	stealth := StealthScript(b.profile)

	err := chromedp.Run(setupCtx,
		network.Enable(),
		network.SetExtraHTTPHeaders(headers),
		emulation.SetLocaleOverride().WithLocale(b.profile.Locale),
		emulation.SetTimezoneOverride(b.profile.TimezoneID),
		chromedp.EmulateViewport(b.profile.ViewportWidth, b.profile.ViewportHeight),
		chromedp.ActionFunc(func(ctx context.Context) error {
			_, err := page.AddScriptToEvaluateOnNewDocument(stealth).Do(ctx)
			return err
		}),
	)
	if err != nil {
		tabCancel()
		return nil, fmt.Errorf("failed to prepare browsing context: %w", err)
	}

	session := &chromedpSession{
		id:       uuid.New().String(),
		platform: platform,
		ctx:      tabCtx,
		cancel:   tabCancel,
		logger:   b.logger,
	}

	if b.config.BlockResources {
		session.filter = NewNetworkFilter(b.config.ExtraBlockedTokens, b.logger)
		if err := session.filter.Install(tabCtx); err != nil {
			tabCancel()
			return nil, fmt.Errorf("failed to install network filter: %w", err)
		}
	}

	return session, nil
}

// chromedpSession is one isolated browser context
type chromedpSession struct {
	id        string
	platform  string
	ctx       context.Context
	cancel    context.CancelFunc
	filter    *NetworkFilter
	logger    arbor.ILogger
	closeOnce sync.Once
	closeErr  error
}

func (s *chromedpSession) ID() string       { return s.id }
func (s *chromedpSession) Platform() string { return s.platform }

// Healthy reports whether the underlying target is still alive
func (s *chromedpSession) Healthy() bool {
	return s.ctx.Err() == nil
}

// LoadHTML navigates with a hard timeout, waits for DOMContentLoaded and body
// and returns the document markup. Subresources may still be loading.
func (s *chromedpSession) LoadHTML(ctx context.Context, url string, timeout time.Duration) (string, error) {
	var (
		loadCtx context.Context
		cancel  context.CancelFunc
	)
	if timeout > 0 {
		loadCtx, cancel = context.WithTimeout(s.ctx, timeout)
	} else {
		loadCtx, cancel = context.WithCancel(s.ctx)
	}
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	var html string
	err := chromedp.Run(loadCtx,
		navigateDOMContent(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", fmt.Errorf("failed to load %s: %w", url, err)
	}

	return html, nil
}

// navigateDOMContent starts a navigation and returns once the new document
// fires DOMContentLoaded, without waiting for the load event.
func navigateDOMContent(url string) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		listenCtx, cancel := context.WithCancel(ctx)
		defer cancel()

		fired := make(chan struct{})
		var once sync.Once
		chromedp.ListenTarget(listenCtx, func(ev interface{}) {
			if _, ok := ev.(*page.EventDomContentEventFired); ok {
				once.Do(func() { close(fired) })
			}
		})

		var res page.NavigateReturns
		if err := cdp.Execute(ctx, page.CommandNavigate, page.Navigate(url), &res); err != nil {
			return err
		}
		if res.ErrorText != "" {
			return fmt.Errorf("page load error %s", res.ErrorText)
		}

		select {
		case <-fired:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
}

// Close disposes the browser context
func (s *chromedpSession) Close() error {
	s.closeOnce.Do(func() {
		if s.filter != nil {
			allowed, blocked := s.filter.Counts()
			s.logger.Debug().
				Str("session_id", s.id).
				Int64("requests_allowed", allowed).
				Int64("requests_blocked", blocked).
				Msg("Closing browsing context")
		}
		s.closeErr = chromedp.Cancel(s.ctx)
		s.cancel()
	})
	return s.closeErr
}
