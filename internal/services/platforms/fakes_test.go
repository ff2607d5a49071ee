package platforms

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ternarybob/rankscout/internal/interfaces"
)

var errNavigation = errors.New("net::ERR_TIMED_OUT")

// listingHTML renders product links the way a search listing does
func listingHTML(ids ...string) string {
	var b strings.Builder
	b.WriteString("<html><body><ul>")
	for _, id := range ids {
		fmt.Fprintf(&b, `<li><a href="/vp/products/%s?itemId=1">item</a></li>`, id)
	}
	b.WriteString("</ul></body></html>")
	return b.String()
}

// attrListingHTML renders ids as data-product-id attributes
func attrListingHTML(ids ...string) string {
	var b strings.Builder
	b.WriteString("<html><body>")
	for _, id := range ids {
		fmt.Fprintf(&b, `<div data-product-id="%s"></div>`, id)
	}
	b.WriteString("</body></html>")
	return b.String()
}

type scriptedSession struct {
	pages    map[int]string
	failures map[int]int // page -> number of loads that fail (-1 always)
	onLoad   func(pageNumber int)

	mu    sync.Mutex
	loads []string
}

func (s *scriptedSession) ID() string       { return "scripted" }
func (s *scriptedSession) Platform() string { return "coupang" }
func (s *scriptedSession) Close() error     { return nil }

func (s *scriptedSession) LoadHTML(ctx context.Context, url string, timeout time.Duration) (string, error) {
	page := pageNumberOf(url)

	s.mu.Lock()
	s.loads = append(s.loads, url)
	failing := s.failures[page]
	if failing > 0 {
		s.failures[page] = failing - 1
	}
	s.mu.Unlock()

	if s.onLoad != nil {
		s.onLoad(page)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if failing != 0 {
		return "", errNavigation
	}
	return s.pages[page], nil
}

func (s *scriptedSession) loadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.loads)
}

func pageNumberOf(url string) int {
	i := strings.Index(url, "&page=")
	if i < 0 {
		return 1
	}
	n, err := strconv.Atoi(url[i+len("&page="):])
	if err != nil {
		return 0
	}
	return n
}

type fakeProvider struct {
	session interfaces.PageSession
	err     error

	mu       sync.Mutex
	acquired int
	released int
}

func (p *fakeProvider) Acquire(ctx context.Context, platform string) (interfaces.PageSession, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return nil, p.err
	}
	p.acquired++
	return p.session, nil
}

func (p *fakeProvider) Release(session interfaces.PageSession) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.released++
}
