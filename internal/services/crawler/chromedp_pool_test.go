//go:build e2e

package crawler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
)

// Requires a local Chrome or Chromium: go test -tags e2e ./internal/services/crawler/...
func TestBrowser_LoadsListingThroughPooledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(`<html><body>
			<a href="/vp/products/111">a</a>
			<a href="/products/8470784672">b</a>
			<script>document.body.setAttribute('data-webdriver', String(navigator.webdriver));</script>
		</body></html>`))
	}))
	defer server.Close()

	logger := arbor.NewLogger()
	browser := NewBrowser(DefaultBrowserConfig(), logger)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	require.NoError(t, browser.Start(ctx))
	defer browser.Shutdown()

	session, err := browser.Acquire(ctx, "coupang")
	require.NoError(t, err)

	html, err := session.LoadHTML(ctx, server.URL, 10*time.Second)
	require.NoError(t, err)
	assert.Contains(t, html, `data-webdriver="false"`)

	candidates, err := ExtractCandidates(html, CoupangStrategies())
	require.NoError(t, err)
	assert.Equal(t, []string{"111", "8470784672"}, CandidateIDs(candidates))

	browser.Release(session)
	again, err := browser.Acquire(ctx, "coupang")
	require.NoError(t, err)
	assert.Equal(t, session.ID(), again.ID())
	browser.Release(again)

	require.NoError(t, browser.Shutdown())
	assert.False(t, browser.IsStarted())

	_, err = browser.Acquire(ctx, "coupang")
	assert.ErrorIs(t, err, ErrBrowserNotStarted)
}

func TestBrowser_LoadHTMLReturnsBeforeSlowSubresources(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(`<html><body>
			<a href="/vp/products/222">a</a>
			<img src="/slow">
		</body></html>`))
	})
	mux.HandleFunc("/slow", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(5 * time.Second):
		case <-r.Context().Done():
		}
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	browser := NewBrowser(DefaultBrowserConfig(), arbor.NewLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	require.NoError(t, browser.Start(ctx))
	defer browser.Shutdown()

	session, err := browser.Acquire(ctx, "coupang")
	require.NoError(t, err)
	defer browser.Release(session)

	html, elapsed, err := MeasureTime(func() (string, error) {
		return session.LoadHTML(ctx, server.URL, 2*time.Second)
	})
	require.NoError(t, err)
	assert.Less(t, elapsed, 2*time.Second)
	assert.Contains(t, html, "/vp/products/222")
}
