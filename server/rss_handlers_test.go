package server

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/adscope/pkg/domain"
)

func TestServer_RSS(t *testing.T) {
	cfgService, store := defaultMocks()

	checked := time.Now().UTC().Add(-time.Hour)
	store.RecentFunc = func(ctx context.Context, since time.Time, limit int) ([]domain.Ad, error) {
		return []domain.Ad{{
			ID:          domain.AdID("https://example.com/marketplace/item/1"),
			URL:         "https://example.com/marketplace/item/1",
			Title:       "Leather sofa",
			Price:       "$150",
			FirstSeen:   checked,
			LastChecked: checked,
		}}, nil
	}

	srv := newTestServer(cfgService, store)
	ts := httptest.NewServer(srv.router)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/rss")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/rss+xml; charset=utf-8", resp.Header.Get("Content-Type"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "<title>Leather sofa - $150</title>")
	assert.Contains(t, string(body), `<rss version="2.0"`)

	// the query window and cap come straight from the snapshot
	require.Len(t, store.RecentCalls(), 1)
	assert.Equal(t, 100, store.RecentCalls()[0].Limit)
	windowAgo := time.Now().UTC().Add(-7 * 24 * time.Hour)
	assert.WithinDuration(t, windowAgo, store.RecentCalls()[0].Since, time.Minute)
}

func TestServer_RSS_BaseURLFromRequest(t *testing.T) {
	// without a configured base url the self link falls back to the host header
	cfgService, store := defaultMocks()
	srv := newTestServer(cfgService, store)
	ts := httptest.NewServer(srv.router)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/rss")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), ts.URL+"/rss")
}

func TestServer_RSS_ConfiguredBaseURL(t *testing.T) {
	cfgService, store := defaultMocks()
	cfg := testConfig()
	cfg.Server.BaseURL = "https://ads.example.com"
	cfgService.SnapshotFunc = cfg.Clone

	srv := newTestServer(cfgService, store)
	ts := httptest.NewServer(srv.router)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/rss")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `href="https://ads.example.com/rss"`)
}

func TestServer_RSS_StoreError(t *testing.T) {
	cfgService, store := defaultMocks()
	store.RecentFunc = func(ctx context.Context, since time.Time, limit int) ([]domain.Ad, error) {
		return nil, assert.AnError
	}

	srv := newTestServer(cfgService, store)
	ts := httptest.NewServer(srv.router)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/rss")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}
