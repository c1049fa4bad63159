package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/tiered-discount/internal/config"
	"github.com/noah-isme/tiered-discount/internal/discount"
	"github.com/noah-isme/tiered-discount/internal/obs"
	"github.com/noah-isme/tiered-discount/internal/ratelimit"
)

const tieredCart = `{"cart":{"lines":[{"id":"gid://shopify/CartLine/9","quantity":12,"merchandise":{"__typename":"ProductVariant","product":{"hasAnyTag":true,"metafield":{"value":"[{\"quantity\":5,\"discount\":10},{\"quantity\":10,\"discount\":20}]"}}}}]}}`

func testConfig() *config.Config {
	return &config.Config{
		AppEnv:          "test",
		TierPolicy:      discount.PolicyBestMatch,
		RateLimitMax:    2,
		RateLimitWindow: time.Minute,
		BodyLimitBytes:  4096,
		SecurityHeaders: true,
	}
}

func newTestRouter(t *testing.T, cfg *config.Config) http.Handler {
	t.Helper()
	return newRouter(routerDeps{
		Config:      cfg,
		Logger:      zerolog.Nop(),
		Evaluator:   discount.Evaluator{Policy: cfg.TierPolicy},
		Limiter:     ratelimit.NewMemory(),
		HTTPMetrics: obs.NewHTTPMetrics("test", nil, prometheus.NewRegistry()),
	})
}

func serve(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.RemoteAddr = "192.0.2.10:5555"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRouterRunsDiscounts(t *testing.T) {
	router := newTestRouter(t, testConfig())

	rec := serve(router, http.MethodPost, "/api/v1/discounts/run", tieredCart)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"discountApplicationStrategy":"FIRST","discounts":[{"targets":[{"cartLine":{"id":"gid://shopify/CartLine/9"}}],"value":{"percentage":{"value":"20"}}}]}`, rec.Body.String())
	require.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	require.Equal(t, "1", rec.Header().Get("X-RateLimit-Remaining"))
}

func TestRouterRateLimitsAPI(t *testing.T) {
	router := newTestRouter(t, testConfig())

	for i := 0; i < 2; i++ {
		rec := serve(router, http.MethodPost, "/api/v1/tiers/validate", `{"value":"[]"}`)
		require.Equal(t, http.StatusOK, rec.Code)
	}
	rec := serve(router, http.MethodPost, "/api/v1/tiers/validate", `{"value":"[]"}`)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)

	health := serve(router, http.MethodGet, "/health/live", "")
	require.Equal(t, http.StatusOK, health.Code)
}

func TestRouterRejectsOversizedBody(t *testing.T) {
	cfg := testConfig()
	cfg.BodyLimitBytes = 16
	router := newTestRouter(t, cfg)

	rec := serve(router, http.MethodPost, "/api/v1/discounts/run", tieredCart)
	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestRouterCORSPreflight(t *testing.T) {
	router := newTestRouter(t, testConfig())

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/discounts/run", nil)
	req.Header.Set("Origin", "https://admin.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouterExposesMetrics(t *testing.T) {
	router := newTestRouter(t, testConfig())
	rec := serve(router, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
}
