package server

import (
	"log"
	"net/http"
	"time"

	"github.com/umputun/adscope/pkg/feed"
)

// rssHandler serves the RSS feed of recently seen ads. The document is
// rebuilt from the store on every request so it always reflects the last
// committed state, whichever goroutine served it.
func (s *Server) rssHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cfg := s.config.Snapshot()

	since := time.Now().UTC().Add(-cfg.FeedWindow())
	ads, err := s.store.Recent(ctx, since, cfg.Poll.FeedLimit)
	if err != nil {
		log.Printf("[ERROR] failed to get ads for RSS: %v", err)
		http.Error(w, "Failed to generate RSS feed", http.StatusInternalServerError)
		return
	}

	baseURL := cfg.Server.BaseURL
	if baseURL == "" {
		baseURL = "http://" + r.Host
	}

	generator := feed.NewGenerator(baseURL, "Marketplace Ad Feed")
	rss, err := generator.Generate(ads)
	if err != nil {
		log.Printf("[ERROR] failed to generate RSS feed: %v", err)
		http.Error(w, "Failed to generate RSS feed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	if _, err := w.Write([]byte(rss)); err != nil {
		log.Printf("[ERROR] failed to write RSS response: %v", err)
	}
}
