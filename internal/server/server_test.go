package server

import (
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/h9zdev/wiretapper/internal/config"
	"github.com/h9zdev/wiretapper/internal/core"
	"github.com/h9zdev/wiretapper/internal/core/cache"
	"github.com/h9zdev/wiretapper/internal/core/engine"
	"github.com/h9zdev/wiretapper/internal/core/provider"
	"github.com/h9zdev/wiretapper/internal/core/ratelimit"
	apperrors "github.com/h9zdev/wiretapper/internal/errors"
	"github.com/h9zdev/wiretapper/internal/server/handlers"
)

func testSettings() *config.Settings {
	return &config.Settings{
		Host:         "127.0.0.1",
		Port:         0,
		RateLimitRPM: 60,
		CacheNearbyS: 45,
		CacheSearchS: 60,
		CacheTowersS: 120,
		LogLevel:     "info",
	}
}

func newTestServer(settings *config.Settings, agg *engine.Aggregator) *Server {
	store := cache.New(nil)
	if agg == nil {
		agg = &engine.Aggregator{
			Cache:     store,
			NearbyTTL: settings.NearbyTTL(),
			SearchTTL: settings.SearchTTL(),
			TowersTTL: settings.TowersTTL(),
			Rand:      rand.New(rand.NewSource(1)),
		}
	}
	api := &handlers.API{
		Settings: settings,
		Engine:   agg,
		Limiter:  ratelimit.New(nil),
		Cache:    agg.Cache,
	}
	return New(settings, api)
}

func get(t *testing.T, srv *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.RemoteAddr = "203.0.113.50:4242"
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) apperrors.HTTPErrorResponse {
	t.Helper()
	var body apperrors.HTTPErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestServerUsesStandardErrorHandlers(t *testing.T) {
	srv := newTestServer(testSettings(), nil)

	rec := get(t, srv, "/does-not-exist")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "NOT_FOUND", decodeError(t, rec).Error.Code)
}

func TestNearbyWithoutCredentialsServesFallback(t *testing.T) {
	srv := newTestServer(testSettings(), nil)

	rec := get(t, srv, "/nearby?lat=51.505&lon=-0.09")
	require.Equal(t, http.StatusOK, rec.Code)

	var body handlers.NearbyResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Len(t, body.Devices, 3)
	require.False(t, body.Meta.Cached)
}

func TestNearbyMissingCoordinates(t *testing.T) {
	srv := newTestServer(testSettings(), nil)

	for _, target := range []string{"/nearby", "/nearby?lat=51.505", "/nearby?lat=abc&lon=-0.09"} {
		rec := get(t, srv, target)
		require.Equal(t, http.StatusBadRequest, rec.Code, target)
		require.Equal(t, "INVALID_INPUT", decodeError(t, rec).Error.Code, target)
	}
}

func TestNearbyRateLimited(t *testing.T) {
	settings := testSettings()
	settings.RateLimitRPM = 2
	srv := newTestServer(settings, nil)

	for i := 0; i < 2; i++ {
		rec := get(t, srv, "/nearby?lat=51.505&lon=-0.09")
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := get(t, srv, "/nearby?lat=51.505&lon=-0.09")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.Equal(t, "RATE_LIMITED", decodeError(t, rec).Error.Code)
}

func TestSearchSampleMatch(t *testing.T) {
	srv := newTestServer(testSettings(), nil)

	rec := get(t, srv, "/searchzz?type=ssid&query=TestWiFi")
	require.Equal(t, http.StatusOK, rec.Code)

	var body handlers.SearchResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Len(t, body.Devices, 1)
	require.Equal(t, "TestWiFi", body.Devices[0].SSID)
	require.Equal(t, "00:14:22:01:23:45", body.Devices[0].BSSID)
	require.Equal(t, "router", body.Devices[0].Type)
}

func TestSearchNoMatchReturnsEmptyArray(t *testing.T) {
	srv := newTestServer(testSettings(), nil)

	rec := get(t, srv, "/searchzz?type=ssid&query=NoSuchNetwork")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"devices":[]}`, rec.Body.String())
}

func TestSearchMissingParameters(t *testing.T) {
	srv := newTestServer(testSettings(), nil)

	for _, target := range []string{"/searchzz", "/searchzz?type=ssid", "/searchzz?query=x"} {
		rec := get(t, srv, target)
		require.Equal(t, http.StatusBadRequest, rec.Code, target)
	}
}

func TestSearchInvalidLocationQuery(t *testing.T) {
	srv := newTestServer(testSettings(), nil)

	rec := get(t, srv, "/searchzz?type=location&query=garbage")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "INVALID_INPUT", decodeError(t, rec).Error.Code)
}

func TestTowersRequiresOpenCellIDKey(t *testing.T) {
	srv := newTestServer(testSettings(), nil)

	rec := get(t, srv, "/api/geo/towers")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "INVALID_INPUT", decodeError(t, rec).Error.Code)
}

type fixedCells struct {
	area []core.Tower
	ajax []core.Tower
}

func (f *fixedCells) Process(context.Context, float64, float64) (*provider.ProcessResponse, error) {
	return &provider.ProcessResponse{Status: "error"}, nil
}

func (f *fixedCells) GetInArea(context.Context, string) ([]core.Tower, error) {
	return f.area, nil
}

func (f *fixedCells) AjaxCells(context.Context, string) ([]core.Tower, error) {
	return f.ajax, nil
}

func TestTowersServesBareArray(t *testing.T) {
	settings := testSettings()
	settings.OpenCellIDAPIKey = "key"

	agg := &engine.Aggregator{
		Cache:     cache.New(nil),
		Cells:     &fixedCells{area: []core.Tower{{ID: "42", Lat: 51.5, Lon: -0.1, Radio: "lte"}}},
		TowersTTL: 120 * time.Second,
	}
	srv := newTestServer(settings, agg)

	rec := get(t, srv, "/api/geo/towers?lat=51.505&lon=-0.09")
	require.Equal(t, http.StatusOK, rec.Code)

	var towers []core.Tower
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&towers))
	require.Len(t, towers, 1)
	require.Equal(t, "42", towers[0].ID)
}

func TestCellTowerNilPayloadIs502(t *testing.T) {
	agg := &engine.Aggregator{
		Cache:     cache.New(nil),
		Ajax:      &fixedCells{ajax: nil},
		TowersTTL: 120 * time.Second,
	}
	srv := newTestServer(testSettings(), agg)

	rec := get(t, srv, "/api/geo/celltower?lat=51.505&lon=-0.09")
	require.Equal(t, http.StatusBadGateway, rec.Code)
	require.Equal(t, "UPSTREAM_ERROR", decodeError(t, rec).Error.Code)
}

func TestCellTowerServesWithoutCredentials(t *testing.T) {
	// The ajax layer is keyless: the endpoint must answer on a server with no
	// provider credentials configured.
	agg := &engine.Aggregator{
		Cache:     cache.New(nil),
		Ajax:      &fixedCells{ajax: []core.Tower{{ID: "7", Lat: 51.5, Lon: -0.09, Radio: "umts"}}},
		TowersTTL: 120 * time.Second,
	}
	srv := newTestServer(testSettings(), agg)

	rec := get(t, srv, "/api/geo/celltower?lat=51.505&lon=-0.09")
	require.Equal(t, http.StatusOK, rec.Code)

	var towers []core.Tower
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&towers))
	require.Len(t, towers, 1)
	require.Equal(t, "7", towers[0].ID)
}

func TestCellTowerMissingCoordinates(t *testing.T) {
	srv := newTestServer(testSettings(), nil)

	rec := get(t, srv, "/api/geo/celltower")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStatusReportsProviderConfiguration(t *testing.T) {
	settings := testSettings()
	settings.WigleAPIName = "name"
	// Token missing: wigle must report unconfigured.
	settings.ShodanAPIKey = "key"
	srv := newTestServer(settings, nil)

	rec := get(t, srv, "/api/status")
	require.Equal(t, http.StatusOK, rec.Code)

	var body handlers.StatusResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.False(t, body.Providers.Wigle)
	require.False(t, body.Providers.OpenCellID)
	require.True(t, body.Providers.Shodan)
	require.Equal(t, 60, body.Limits.RateLimitRPM)
	require.Equal(t, 45, body.CacheTTLs.Nearby)
}

func TestRequestIDEchoed(t *testing.T) {
	srv := newTestServer(testSettings(), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	req.Header.Set("X-Request-ID", "test-request-id")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, "test-request-id", rec.Header().Get("X-Request-ID"))
}

func TestRequestIDGenerated(t *testing.T) {
	srv := newTestServer(testSettings(), nil)

	rec := get(t, srv, "/api/status")
	require.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestMapPageServed(t *testing.T) {
	srv := newTestServer(testSettings(), nil)

	rec := get(t, srv, "/map-w")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	require.Contains(t, rec.Body.String(), "leaflet")
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(testSettings(), nil)

	for _, target := range []string{"/health", "/health/live", "/health/ready"} {
		rec := get(t, srv, target)
		require.Equal(t, http.StatusOK, rec.Code, target)
	}
}
