package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/adscope/pkg/config"
)

func TestServer_GetConfig(t *testing.T) {
	cfgService, store := defaultMocks()
	srv := newTestServer(cfgService, store)
	ts := httptest.NewServer(srv.router)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/v1/config")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var got config.Config
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, "127.0.0.1:0", got.Server.Listen)
	assert.Equal(t, "$", got.Currency)
}

func TestServer_UpdateConfig(t *testing.T) {
	cfgService, store := defaultMocks()
	cfgService.ApplyUpdateFunc = func(candidate *config.Config) config.UpdateResult {
		return config.UpdateResult{
			Accepted: true,
			Message:  "configuration saved",
			Changes:  []config.FieldChange{{Field: "poll.interval_minutes", Effect: config.EffectLive}},
		}
	}

	srv := newTestServer(cfgService, store)
	ts := httptest.NewServer(srv.router)
	defer ts.Close()

	body := `{"poll":{"interval_minutes":30},"currency":"$","server":{"listen":":5000","timeout":30000000000}}`
	resp, err := http.Post(ts.URL+"/api/v1/config", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var result config.UpdateResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.True(t, result.Accepted)
	require.Len(t, result.Changes, 1)
	assert.Equal(t, "poll.interval_minutes", result.Changes[0].Field)

	// the decoded candidate reached the manager
	require.Len(t, cfgService.ApplyUpdateCalls(), 1)
	assert.Equal(t, 30, cfgService.ApplyUpdateCalls()[0].Candidate.Poll.IntervalMinutes)
}

func TestServer_UpdateConfig_Rejected(t *testing.T) {
	cfgService, store := defaultMocks()
	cfgService.ApplyUpdateFunc = func(candidate *config.Config) config.UpdateResult {
		return config.UpdateResult{Accepted: false, Message: "poll.interval_minutes must be positive"}
	}

	srv := newTestServer(cfgService, store)
	ts := httptest.NewServer(srv.router)
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/api/v1/config", "application/json", strings.NewReader(`{"poll":{"interval_minutes":-1}}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var result config.UpdateResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.False(t, result.Accepted)
	assert.Contains(t, result.Message, "must be positive")
}

func TestServer_UpdateConfig_RollbackFailed(t *testing.T) {
	cfgService, store := defaultMocks()
	cfgService.ApplyUpdateFunc = func(candidate *config.Config) config.UpdateResult {
		return config.UpdateResult{Accepted: false, Message: "operator attention required", RollbackFailed: true}
	}

	srv := newTestServer(cfgService, store)
	ts := httptest.NewServer(srv.router)
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/api/v1/config", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	var result config.UpdateResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.True(t, result.RollbackFailed)
}

func TestServer_UpdateConfig_BadJSON(t *testing.T) {
	cfgService, store := defaultMocks()
	srv := newTestServer(cfgService, store)
	ts := httptest.NewServer(srv.router)
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/api/v1/config", "application/json", strings.NewReader(`{not json`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Empty(t, cfgService.ApplyUpdateCalls(), "manager must not see a malformed document")

	var errResp map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&errResp))
	assert.Contains(t, errResp["error"], "invalid config document")
}
