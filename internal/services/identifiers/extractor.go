// -----------------------------------------------------------------------
// Package identifiers resolves canonical product identifiers from
// marketplace product URLs and recognises which marketplace a URL belongs to.
// -----------------------------------------------------------------------

package identifiers

import (
	"net/url"
	"regexp"
	"strings"
)

// Platform keys understood by the extractor
const (
	PlatformCoupang = "coupang"
	PlatformNaver   = "naver"
	Platform11st    = "11st"
)

// hostRule maps a hostname fragment to a platform key
type hostRule struct {
	platform string
	hosts    []string
}

// ProductExtractor extracts product ids from product page URLs.
// All methods are pure and safe for concurrent use.
type ProductExtractor struct {
	patterns  map[string][]*regexp.Regexp
	hostRules []hostRule
}

// NewProductExtractor creates an extractor with the built-in marketplace patterns
func NewProductExtractor() *ProductExtractor {
	return &ProductExtractor{
		// Path-segment patterns first, query parameters after.
		// The first capturing match wins.
		patterns: map[string][]*regexp.Regexp{
			// https://www.coupang.com/vp/products/8473798698?itemId=24519876305
			PlatformCoupang: {
				regexp.MustCompile(`/products/(\d+)`),
				regexp.MustCompile(`/vp/products/(\d+)`),
				regexp.MustCompile(`[?&]productId=(\d+)`),
				regexp.MustCompile(`[?&]itemId=(\d+)`),
			},
			// https://search.shopping.naver.com/catalog/12345678901
			PlatformNaver: {
				regexp.MustCompile(`/catalog/(\d+)`),
				regexp.MustCompile(`/products/(\d+)`),
				regexp.MustCompile(`[?&]nv_mid=(\d+)`),
				regexp.MustCompile(`[?&]productId=(\d+)`),
				regexp.MustCompile(`[?&]itemId=(\d+)`),
			},
			// https://www.11st.co.kr/products/1234567890/share
			Platform11st: {
				regexp.MustCompile(`/products/(\d+)`),
				regexp.MustCompile(`[?&]productId=(\d+)`),
				regexp.MustCompile(`[?&]itemId=(\d+)`),
				regexp.MustCompile(`[?&]prdNo=(\d+)`),
			},
		},
		hostRules: []hostRule{
			{platform: PlatformCoupang, hosts: []string{"coupang.com"}},
			{platform: PlatformNaver, hosts: []string{"shopping.naver.com", "naver.com"}},
			{platform: Platform11st, hosts: []string{"11st.co.kr"}},
		},
	}
}

// Extract returns the product id embedded in rawURL for the given platform.
// Returns false when the URL is empty, the platform is unknown or no pattern matches.
func (e *ProductExtractor) Extract(rawURL, platform string) (string, bool) {
	if strings.TrimSpace(rawURL) == "" {
		return "", false
	}

	patterns, ok := e.patterns[strings.ToLower(platform)]
	if !ok {
		return "", false
	}

	for _, pattern := range patterns {
		match := pattern.FindStringSubmatch(rawURL)
		if len(match) > 1 && match[1] != "" {
			return match[1], true
		}
	}

	return "", false
}

// SupportedPlatforms returns the platform keys with extraction patterns, in detection order
func (e *ProductExtractor) SupportedPlatforms() []string {
	platforms := make([]string, 0, len(e.hostRules))
	for _, rule := range e.hostRules {
		platforms = append(platforms, rule.platform)
	}
	return platforms
}

// IsValidURL checks that rawURL is an absolute URL with a scheme and host
func (e *ProductExtractor) IsValidURL(rawURL string) bool {
	_, ok := parseAbsolute(rawURL)
	return ok
}

// IsValidPlatformURL checks that rawURL is valid and its host belongs to platform
func (e *ProductExtractor) IsValidPlatformURL(rawURL, platform string) bool {
	parsed, ok := parseAbsolute(rawURL)
	if !ok {
		return false
	}

	hostname := strings.ToLower(parsed.Hostname())
	for _, rule := range e.hostRules {
		if rule.platform != strings.ToLower(platform) {
			continue
		}
		return matchesAnyHost(hostname, rule.hosts)
	}

	return false
}

// DetectPlatform infers the platform from the URL host. The first matching rule wins.
func (e *ProductExtractor) DetectPlatform(rawURL string) (string, bool) {
	parsed, ok := parseAbsolute(rawURL)
	if !ok {
		return "", false
	}

	hostname := strings.ToLower(parsed.Hostname())
	for _, rule := range e.hostRules {
		if matchesAnyHost(hostname, rule.hosts) {
			return rule.platform, true
		}
	}

	return "", false
}

// NormalizeURL strips the query string and fragment for canonical comparison.
// Invalid URLs are returned unchanged.
func (e *ProductExtractor) NormalizeURL(rawURL string) string {
	parsed, ok := parseAbsolute(rawURL)
	if !ok {
		return rawURL
	}

	parsed.RawQuery = ""
	parsed.ForceQuery = false
	parsed.Fragment = ""
	parsed.RawFragment = ""
	return parsed.String()
}

func parseAbsolute(rawURL string) (*url.URL, bool) {
	if strings.TrimSpace(rawURL) == "" {
		return nil, false
	}

	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, false
	}

	return parsed, true
}

func matchesAnyHost(hostname string, hosts []string) bool {
	for _, host := range hosts {
		if strings.Contains(hostname, host) {
			return true
		}
	}
	return false
}
