// Package scraper fetches marketplace search pages through a controlled
// browser session and extracts listing candidates from the raw HTML.
package scraper

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"

	"github.com/umputun/adscope/pkg/config"
)

// BrowserFetcher retrieves fully rendered pages via a CDP-controlled
// browser. The marketplace builds its result list client-side, a plain
// HTTP GET returns an empty shell.
type BrowserFetcher struct {
	cfg config.BrowserConfig

	mu       sync.Mutex
	browser  *rod.Browser
	launcher *launcher.Launcher
}

// NewBrowserFetcher creates a fetcher, the browser is connected lazily on
// the first fetch
func NewBrowserFetcher(cfg config.BrowserConfig) *BrowserFetcher {
	return &BrowserFetcher{cfg: cfg}
}

// connect establishes the browser session. Remote control URL from config
// wins; without one a local headless instance is launched.
func (f *BrowserFetcher) connect() (*rod.Browser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.browser != nil {
		return f.browser, nil
	}

	controlURL := f.cfg.RemoteURL
	if controlURL == "" {
		l := launcher.New().Headless(true).
			Set("no-sandbox").
			Set("disable-dev-shm-usage").
			Set("disable-gpu")
		var err error
		controlURL, err = l.Launch()
		if err != nil {
			return nil, fmt.Errorf("launch browser: %w", err)
		}
		f.launcher = l
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connect browser: %w", err)
	}

	f.browser = browser
	return browser, nil
}

// Fetch navigates to the url, waits for the results container and returns
// the rendered HTML. The whole operation is bounded by the configured
// timeout so a hung page cannot wedge the poll cycle.
func (f *BrowserFetcher) Fetch(ctx context.Context, url string) (string, error) {
	browser, err := f.connect()
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, f.cfg.Timeout)
	defer cancel()

	var html string
	err = rod.Try(func() {
		page := browser.Context(ctx).MustPage(url)
		defer page.MustClose()

		page.MustWaitLoad()
		if f.cfg.WaitSelector != "" {
			page.MustElement(f.cfg.WaitSelector)
		}
		html = page.MustHTML()
	})
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", url, err)
	}
	return html, nil
}

// Close releases the browser session and the local launcher if one was
// started
func (f *BrowserFetcher) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.browser != nil {
		_ = f.browser.Close()
		f.browser = nil
	}
	if f.launcher != nil {
		f.launcher.Cleanup()
		f.launcher = nil
	}
}
