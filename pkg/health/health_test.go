package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunWorstStatusWins(t *testing.T) {
	c := NewChecker()
	c.Register("dataset", StaticCheck(func() bool { return true }, "6236 verses"))
	c.Register("redis", PingCheck(nil, false))

	report := c.Run(context.Background())
	assert.Equal(t, StatusDegraded, report.Status)
	assert.Equal(t, StatusUp, report.Components["dataset"].Status)
	assert.Equal(t, "not configured", report.Components["redis"].Message)

	c.Register("postgres", PingCheck(func(context.Context) error { return errors.New("refused") }, true))
	assert.Equal(t, StatusDown, c.Run(context.Background()).Status)
}

func TestReadyHandler(t *testing.T) {
	c := NewChecker()
	c.Register("redis", PingCheck(func(context.Context) error { return errors.New("timeout") }, false))

	rec := httptest.NewRecorder()
	c.ReadyHandler()(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	var report Report
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&report))
	assert.Equal(t, StatusDegraded, report.Status)

	c.Register("dataset", StaticCheck(func() bool { return false }, "not loaded"))
	rec = httptest.NewRecorder()
	c.ReadyHandler()(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestLiveHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	NewChecker().LiveHandler()(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "alive")
}

func TestRunWithNoChecks(t *testing.T) {
	report := NewChecker().Run(context.Background())
	assert.Equal(t, StatusUp, report.Status)
	assert.Empty(t, report.Components)
}

func TestRegisterReplacesCheck(t *testing.T) {
	c := NewChecker()
	c.Register("dataset", StaticCheck(func() bool { return false }, "not loaded"))
	c.Register("dataset", StaticCheck(func() bool { return true }, "loaded"))

	report := c.Run(context.Background())
	require.Len(t, report.Components, 1)
	assert.Equal(t, StatusUp, report.Status)
	assert.Equal(t, "loaded", report.Components["dataset"].Message)
	assert.NotEmpty(t, report.Components["dataset"].Latency)
}
