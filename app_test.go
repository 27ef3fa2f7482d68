package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/kylycht/fxpad/model"
	"github.com/kylycht/fxpad/service/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testApplication(t *testing.T) (*Application, *state.Machine) {
	t.Helper()

	cfg, err := loadConfig("")
	require.NoError(t, err)
	cfg.Storage.Dir = t.TempDir()

	a, err := open(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(a.close)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	catalog := model.DefaultCatalog()
	m := state.NewMachine(state.New(catalog, a.rates.Rates(), a.prefs.Load(ctx)))
	go m.Run(ctx)

	a.fiberApp = fiber.New()
	a.buildRoutes(m, catalog)
	return a, m
}

func get(t *testing.T, app *fiber.App, target string) (int, string) {
	t.Helper()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, target, nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestRoutes(t *testing.T) {
	a, _ := testApplication(t)

	code, body := get(t, a.fiberApp, "/metrics")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "fxpad_rate_timestamp_seconds")

	code, body = get(t, a.fiberApp, "/state")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, `"anchor":"EUR"`)

	code, body = get(t, a.fiberApp, "/swagger/doc.json")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "/keypad/digit/{digit}")
}

func TestOpenUnreachableRedis(t *testing.T) {
	cfg, err := loadConfig("")
	require.NoError(t, err)
	cfg.Storage.Backend = backendRedis
	cfg.Storage.RedisAddr = "127.0.0.1:1"

	_, err = open(context.Background(), cfg)
	assert.Error(t, err)
}
