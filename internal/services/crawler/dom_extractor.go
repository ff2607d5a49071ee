package crawler

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ternarybob/rankscout/internal/models"
)

// SelectorStrategy reads a product id from every element matching Selector.
// Attrs are tried in order and the first non-empty value is used; when
// Pattern is set its first capture group must match for the element to count.
type SelectorStrategy struct {
	Name     string
	Selector string
	Attrs    []string
	Pattern  *regexp.Regexp
}

// productLinkPattern matches both the current and legacy product page paths
var productLinkPattern = regexp.MustCompile(`/(?:vp/)?products/(\d+)`)

// identifierAttrs are the element attributes that carry a product id
var identifierAttrs = []string{"data-product-id", "data-vendor-item-id", "data-item-id"}

// CoupangStrategies returns the selector strategies for a Coupang search listing
func CoupangStrategies() []SelectorStrategy {
	return []SelectorStrategy{
		{Name: "product-link", Selector: `a[href*="/products/"]`, Attrs: []string{"href"}, Pattern: productLinkPattern},
		{Name: "vp-product-link", Selector: `a[href*="/vp/products/"]`, Attrs: []string{"href"}, Pattern: productLinkPattern},
		{Name: "product-id-attr", Selector: "[data-product-id]", Attrs: identifierAttrs},
		{Name: "vendor-item-attr", Selector: "[data-vendor-item-id]", Attrs: identifierAttrs},
		{Name: "item-id-attr", Selector: "[data-item-id]", Attrs: identifierAttrs},
	}
}

// ExtractCandidates parses rendered HTML and applies each strategy in order.
// The first occurrence of an id within the page wins; PageRank is 1-based.
func ExtractCandidates(html string, strategies []SelectorStrategy) ([]models.CandidateProduct, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	seen := make(map[string]struct{})
	candidates := make([]models.CandidateProduct, 0)

	for _, strategy := range strategies {
		doc.Find(strategy.Selector).Each(func(_ int, sel *goquery.Selection) {
			id := strategy.productID(sel)
			if id == "" {
				return
			}
			if _, ok := seen[id]; ok {
				return
			}
			seen[id] = struct{}{}
			candidates = append(candidates, models.CandidateProduct{
				ProductID: id,
				PageRank:  len(candidates) + 1,
			})
		})
	}

	return candidates, nil
}

func (s SelectorStrategy) productID(sel *goquery.Selection) string {
	for _, attr := range s.Attrs {
		value, ok := sel.Attr(attr)
		value = strings.TrimSpace(value)
		if !ok || value == "" {
			continue
		}
		if s.Pattern == nil {
			return value
		}
		if match := s.Pattern.FindStringSubmatch(value); len(match) > 1 {
			return match[1]
		}
		return ""
	}
	return ""
}

// ContainsProduct reports whether id is among the candidates
func ContainsProduct(candidates []models.CandidateProduct, id string) bool {
	for _, c := range candidates {
		if c.ProductID == id {
			return true
		}
	}
	return false
}

// CandidateIDs returns the candidate ids in page order
func CandidateIDs(candidates []models.CandidateProduct) []string {
	ids := make([]string, len(candidates))
	for i, c := range candidates {
		ids[i] = c.ProductID
	}
	return ids
}
