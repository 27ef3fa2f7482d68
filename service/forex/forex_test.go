package forex

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(url string) Config {
	return Config{
		BaseURL:           url + "/",
		APIKey:            "secret",
		RequestsPerSecond: 1000,
		Burst:             100,
		Retries:           2,
		Backoff:           time.Millisecond,
		Timeout:           time.Second,
	}
}

func TestFetchRates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/latest", r.URL.Path)
		assert.Equal(t, "EUR", r.URL.Query().Get("base"))
		assert.Equal(t, "secret", r.URL.Query().Get("api_key"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"amount":1.0,"base":"EUR","date":"2026-10-16","rates":{"USD":1.1793,"GBP":0.869}}`))
	}))
	defer srv.Close()

	c, err := New(testConfig(srv.URL))
	require.NoError(t, err)

	resp, err := c.FetchRates(context.Background(), "EUR")
	require.NoError(t, err)

	assert.Equal(t, "EUR", resp.Pivot)
	assert.Equal(t, map[string]float64{"USD": 1.1793, "GBP": 0.869}, resp.Rates)
}

func TestFetchRates_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"base":"EUR","rates":{"USD":1.2}}`))
	}))
	defer srv.Close()

	c, err := New(testConfig(srv.URL))
	require.NoError(t, err)

	resp, err := c.FetchRates(context.Background(), "EUR")
	require.NoError(t, err)
	assert.Equal(t, 1.2, resp.Rates["USD"])
	assert.Equal(t, int32(3), calls.Load())
}

func TestFetchRates_ClientErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c, err := New(testConfig(srv.URL))
	require.NoError(t, err)

	_, err = c.FetchRates(context.Background(), "EUR")
	assert.ErrorIs(t, err, ErrUnexpectedStatus)
	assert.Equal(t, int32(1), calls.Load())
}

func TestFetchRates_MalformedBody(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"base":`))
	}))
	defer srv.Close()

	c, err := New(testConfig(srv.URL))
	require.NoError(t, err)

	_, err = c.FetchRates(context.Background(), "EUR")
	assert.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestFetchRates_BaseDefaultsToPivot(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"rates":{"USD":1.2}}`))
	}))
	defer srv.Close()

	c, err := New(testConfig(srv.URL))
	require.NoError(t, err)

	resp, err := c.FetchRates(context.Background(), "EUR")
	require.NoError(t, err)
	assert.Equal(t, "EUR", resp.Pivot)
}

func TestFetchRates_ZeroRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.Retries = 0
	c, err := New(cfg)
	require.NoError(t, err)

	_, err = c.FetchRates(context.Background(), "EUR")
	assert.ErrorIs(t, err, ErrUnexpectedStatus)
	assert.Equal(t, int32(1), calls.Load())
}
