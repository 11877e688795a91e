// Package feed renders recently seen ads into an RSS 2.0 document.
package feed

import (
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/umputun/adscope/pkg/domain"
)

// Generator creates RSS feeds from ad records
type Generator struct {
	baseURL string
	title   string
}

// NewGenerator creates a new feed generator
func NewGenerator(baseURL, title string) *Generator {
	if title == "" {
		title = "Marketplace Ad Feed"
	}
	return &Generator{
		baseURL: strings.TrimRight(baseURL, "/"),
		title:   title,
	}
}

// Generate creates an RSS 2.0 feed from ad records. Callers pass the
// store's recent records directly, the generator keeps no state of its
// own so every request reflects the latest committed rows.
func (g *Generator) Generate(ads []domain.Ad) (string, error) {
	rssItems := make([]*RSSItem, 0, len(ads))
	for _, ad := range ads {
		rssItems = append(rssItems, g.convertToRSSItem(ad))
	}

	feed := &RSS{
		Version: "2.0",
		Atom:    "http://www.w3.org/2005/Atom",
		Channel: &RSSChannel{
			Title:         g.title,
			Link:          g.baseURL + "/",
			Description:   "New marketplace listings matching the configured filters",
			AtomLink:      &AtomLink{Href: g.baseURL + "/rss", Rel: "self", Type: "application/rss+xml"},
			LastBuildDate: time.Now().UTC().Format(time.RFC1123Z),
			Items:         rssItems,
		},
	}

	output, err := xml.MarshalIndent(feed, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal RSS: %w", err)
	}

	return xml.Header + string(output), nil
}

// convertToRSSItem converts an ad record to an RSS item. The guid is the
// ad's content-hash id, the publish timestamp is its last sighting.
func (g *Generator) convertToRSSItem(ad domain.Ad) *RSSItem {
	return &RSSItem{
		Title:       fmt.Sprintf("%s - %s", ad.Title, ad.Price),
		Link:        ad.URL,
		GUID:        &RSSGUID{Value: ad.ID, IsPermaLink: "false"},
		Description: fmt.Sprintf("Price: %s | Title: %s", ad.Price, ad.Title),
		PubDate:     ad.LastChecked.Format(time.RFC1123Z),
	}
}
