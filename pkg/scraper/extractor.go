package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-pkgz/lgr"

	"github.com/umputun/adscope/pkg/domain"
)

// Extractor pulls listing candidates out of rendered marketplace HTML.
// The markup carries no stable classes, listings are recognized by their
// shape: an anchor wrapping a clamped title span and a price span.
type Extractor struct{}

// NewExtractor creates an extractor
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract parses the page and returns all candidates whose price looks
// like a real listing price, i.e. starts with the currency marker or says
// free. Relative listing hrefs are made absolute on baseURL, the target's
// scheme://host. Bad HTML never fails, it just yields nothing.
func (e *Extractor) Extract(html, baseURL, currency string) []domain.Candidate {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		lgr.Printf("[WARN] failed to parse page: %v", err)
		return nil
	}

	var ads []domain.Candidate
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		if !ok || href == "" {
			return
		}

		title := findTitle(a)
		price := findPrice(a)
		if title == "" || price == "" {
			return
		}

		if !priceMatches(price, currency) {
			return
		}

		ads = append(ads, domain.Candidate{
			Title: title,
			Price: price,
			URL:   canonicalURL(href, baseURL),
		})
	})
	return ads
}

// canonicalURL strips the query string and forces relative URLs onto the
// base host, tracking parameters would otherwise give the same listing a
// new identity on every fetch
func canonicalURL(href, baseURL string) string {
	if i := strings.IndexByte(href, '?'); i >= 0 {
		href = href[:i]
	}
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	if !strings.HasPrefix(href, "/") {
		href = "/" + href
	}
	return strings.TrimRight(baseURL, "/") + href
}

// findTitle locates the listing title: the span the marketplace clamps to
// a fixed number of lines
func findTitle(a *goquery.Selection) string {
	var title string
	a.Find("span").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		style, ok := s.Attr("style")
		if ok && strings.Contains(style, "-webkit-line-clamp") {
			title = strings.TrimSpace(s.Text())
			return false
		}
		return true
	})
	return title
}

// findPrice locates the first auto-direction span, which holds the price
func findPrice(a *goquery.Selection) string {
	var price string
	a.Find(`span[dir="auto"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		price = strings.TrimSpace(s.Text())
		return false
	})
	return price
}

// priceMatches gates on the currency marker so navigation links with
// clamped text don't register as listings
func priceMatches(price, currency string) bool {
	return strings.HasPrefix(price, currency) ||
		strings.Contains(strings.ToLower(price), "free")
}
