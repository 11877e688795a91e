package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/adscope/pkg/config"
	"github.com/umputun/adscope/pkg/domain"
	"github.com/umputun/adscope/server/mocks"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Server.Listen = "127.0.0.1:0"
	cfg.Server.Timeout = 30 * time.Second
	cfg.Poll.IntervalMinutes = 15
	cfg.Poll.RetentionDays = 14
	cfg.Poll.FeedWindowDays = 7
	cfg.Poll.FeedLimit = 100
	cfg.Currency = "$"
	return cfg
}

func newTestServer(cfgService ConfigService, store Store) *Server {
	return New(cfgService, store, "test", false)
}

func defaultMocks() (*mocks.ConfigServiceMock, *mocks.StoreMock) {
	cfg := testConfig()
	cfgService := &mocks.ConfigServiceMock{
		SnapshotFunc: cfg.Clone,
		GetServerConfigFunc: func() (string, time.Duration) {
			return cfg.Server.Listen, cfg.Server.Timeout
		},
	}
	store := &mocks.StoreMock{
		RecentFunc: func(ctx context.Context, since time.Time, limit int) ([]domain.Ad, error) {
			return nil, nil
		},
		CountFunc: func(ctx context.Context) (int64, error) { return 0, nil },
		PingFunc:  func(ctx context.Context) error { return nil },
	}
	return cfgService, store
}

func TestServer_Ping(t *testing.T) {
	cfgService, store := defaultMocks()
	srv := newTestServer(cfgService, store)

	ts := httptest.NewServer(srv.router)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/ping")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "pong", string(body))
}

func TestServer_Status(t *testing.T) {
	cfgService, store := defaultMocks()
	store.CountFunc = func(ctx context.Context) (int64, error) { return 42, nil }
	srv := newTestServer(cfgService, store)

	ts := httptest.NewServer(srv.router)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/v1/status")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var status map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
	assert.Equal(t, "ok", status["status"])
	assert.Equal(t, "test", status["version"])
	assert.InDelta(t, 42, status["tracked_ads"], 0.01)
}

func TestServer_Status_Degraded(t *testing.T) {
	cfgService, store := defaultMocks()
	store.PingFunc = func(ctx context.Context) error { return assert.AnError }
	srv := newTestServer(cfgService, store)

	ts := httptest.NewServer(srv.router)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/v1/status")
	require.NoError(t, err)
	defer resp.Body.Close()

	var status map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
	assert.Equal(t, "degraded", status["status"])
	assert.NotEmpty(t, status["database"])
	assert.NotContains(t, status, "tracked_ads")
}

func TestServer_RunAndShutdown(t *testing.T) {
	cfgService, store := defaultMocks()
	cfgService.GetServerConfigFunc = func() (string, time.Duration) {
		return "127.0.0.1:18899", 10 * time.Second
	}
	srv := newTestServer(cfgService, store)

	ctx, cancel := context.WithCancel(context.Background())
	finished := make(chan error, 1)
	go func() { finished <- srv.Run(ctx) }()

	// wait for the listener to come up
	require.Eventually(t, func() bool {
		resp, err := http.Get("http://127.0.0.1:18899/ping")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-finished:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestRenderError(t *testing.T) {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whatever", http.NoBody)

	RenderError(rr, req, assert.AnError, http.StatusTeapot)

	assert.Equal(t, http.StatusTeapot, rr.Code)
	assert.Contains(t, rr.Body.String(), assert.AnError.Error())

	rr = httptest.NewRecorder()
	RenderError(rr, req, nil, http.StatusBadRequest)
	assert.Contains(t, rr.Body.String(), "unknown error")
}
