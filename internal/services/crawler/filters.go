package crawler

import (
	"context"
	"net/url"
	"strings"
	"sync/atomic"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/fetch"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/ternarybob/arbor"
)

// DefaultBlockedTokens are host substrings of analytics, advertising and tracking services
var DefaultBlockedTokens = []string{
	"analytics",
	"tracking",
	"ads",
	"facebook",
	"google-analytics",
	"googletagmanager",
	"doubleclick",
}

// heavyImageTokens marks image requests worth aborting
var heavyImageTokens = []string{".jpg", ".jpeg", ".png", ".webp", ".gif"}

// FilterDecision is the outcome of evaluating one outgoing request
type FilterDecision struct {
	Block  bool
	Reason string
}

// NetworkFilter aborts requests that do not contribute to the search listing markup
type NetworkFilter struct {
	blockedTokens []string
	allowed       atomic.Int64
	blocked       atomic.Int64
	logger        arbor.ILogger
}

// NewNetworkFilter creates a filter using the default tracker tokens plus extra
func NewNetworkFilter(extra []string, logger arbor.ILogger) *NetworkFilter {
	tokens := make([]string, 0, len(DefaultBlockedTokens)+len(extra))
	tokens = append(tokens, DefaultBlockedTokens...)
	for _, token := range extra {
		token = strings.ToLower(strings.TrimSpace(token))
		if token != "" {
			tokens = append(tokens, token)
		}
	}

	return &NetworkFilter{
		blockedTokens: tokens,
		logger:        logger,
	}
}

// Decide evaluates a request URL and resource type without touching the browser.
// Documents are never blocked; tracker tokens are matched against the host only.
func (f *NetworkFilter) Decide(rawURL string, resourceType network.ResourceType) FilterDecision {
	switch resourceType {
	case network.ResourceTypeDocument:
		return FilterDecision{}
	case network.ResourceTypeFont:
		return FilterDecision{Block: true, Reason: "font"}
	case network.ResourceTypeImage:
		lower := strings.ToLower(rawURL)
		for _, token := range heavyImageTokens {
			if strings.Contains(lower, token) {
				return FilterDecision{Block: true, Reason: "image"}
			}
		}
	}

	host := requestHostname(rawURL)
	if host == "" {
		return FilterDecision{}
	}
	for _, token := range f.blockedTokens {
		if strings.Contains(host, token) {
			return FilterDecision{Block: true, Reason: "tracker:" + token}
		}
	}

	return FilterDecision{}
}

// requestHostname returns the lower-cased host of rawURL without port, or ""
func requestHostname(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

// Install enables request interception on the session's target.
// Must be called with a chromedp context whose target already exists.
func (f *NetworkFilter) Install(ctx context.Context) error {
	chromedp.ListenTarget(ctx, func(ev interface{}) {
		paused, ok := ev.(*fetch.EventRequestPaused)
		if !ok {
			return
		}

		decision := f.Decide(paused.Request.URL, paused.ResourceType)
		if decision.Block {
			f.blocked.Add(1)
		} else {
			f.allowed.Add(1)
		}

		// Answering from inside the listener would deadlock the event loop
		go func() {
			c := chromedp.FromContext(ctx)
			if c == nil || c.Target == nil {
				return
			}
			execCtx := cdp.WithExecutor(ctx, c.Target)

			var err error
			if decision.Block {
				err = fetch.FailRequest(paused.RequestID, network.ErrorReasonBlockedByClient).Do(execCtx)
			} else {
				err = fetch.ContinueRequest(paused.RequestID).Do(execCtx)
			}
			if err != nil && ctx.Err() == nil {
				f.logger.Trace().
					Err(err).
					Str("url", paused.Request.URL).
					Msg("Failed to answer paused request")
			}
		}()
	})

	return chromedp.Run(ctx, fetch.Enable().WithPatterns([]*fetch.RequestPattern{{URLPattern: "*"}}))
}

// Counts returns the number of allowed and blocked requests seen so far
func (f *NetworkFilter) Counts() (allowed, blocked int64) {
	return f.allowed.Load(), f.blocked.Load()
}
