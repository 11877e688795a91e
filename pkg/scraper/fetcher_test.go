package scraper

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/adscope/pkg/config"
)

func TestNewBrowserFetcher(t *testing.T) {
	f := NewBrowserFetcher(config.BrowserConfig{Timeout: 5 * time.Second})
	require.NotNil(t, f)

	// close before any fetch is a no-op
	f.Close()
	f.Close()
}

func TestBrowserFetcher_Fetch_BadRemote(t *testing.T) {
	// unreachable control URL fails fast instead of launching a local browser
	f := NewBrowserFetcher(config.BrowserConfig{
		RemoteURL: "ws://127.0.0.1:1/unreachable",
		Timeout:   2 * time.Second,
	})
	defer f.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := f.Fetch(ctx, "https://example.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connect browser")
}
