package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/restaurant-assistant/internal/config"
	"github.com/iliyamo/restaurant-assistant/internal/utils"
)

func TestCachedPayloadRoundTrip(t *testing.T) {
	in := cachedResponse{
		Status: http.StatusOK,
		Header: http.Header{"Content-Type": {"application/json"}},
		Body:   []byte(`{"items":[]}`),
	}
	raw, err := encodeCached(in)
	require.NoError(t, err)
	out, ok := decodeCached(raw)
	require.True(t, ok)
	assert.Equal(t, in, out)

	_, ok = decodeCached([]byte("garbage"))
	assert.False(t, ok)
}

func TestBodyRecorderStopsAtLimit(t *testing.T) {
	rec := &bodyRecorder{ResponseWriter: httptest.NewRecorder(), limit: 8}
	_, _ = rec.Write([]byte("1234"))
	assert.False(t, rec.overflow)
	_, _ = rec.Write([]byte("56789"))
	assert.True(t, rec.overflow)
	assert.Zero(t, rec.buf.Len())
}

func TestCacheKey(t *testing.T) {
	e := echo.New()
	cfg := config.CacheConfig{Prefix: "bv:cache", KeyStrategy: "route_query"}
	key := func(target, version string) string {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, target, nil), httptest.NewRecorder())
		return cacheKey(cfg, version, c)
	}
	assert.Equal(t, key("/v1/menu/search?q=lobster", "v1"), key("/v1/menu/search?q=lobster", "v1"))
	assert.NotEqual(t, key("/v1/menu/search?q=lobster", "v1"), key("/v1/menu/search?q=salmon", "v1"))
	assert.NotEqual(t, key("/v1/menu", "v1"), key("/v1/menu", "v2"))
	assert.Contains(t, key("/v1/menu", "v1"), "bv:cache:v1:")
}

func TestDisabledMiddlewaresPassThrough(t *testing.T) {
	e := echo.New()
	h := func(c echo.Context) error { return c.String(http.StatusOK, "ok") }
	for _, mw := range []echo.MiddlewareFunc{
		NewTokenBucket(config.RateLimitConfig{Enabled: true}, nil),
		NewResponseCache(config.CacheConfig{Enabled: true}, nil, "v"),
	} {
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
		require.NoError(t, mw(h)(c))
		assert.Equal(t, "ok", rec.Body.String())
	}
}

func TestRateKeyUsesSession(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/chat", nil)
	req.Header.Set(SessionHeader, "6f1c1f8e-3c57-4a59-9b43-3c1f3a7c2a10")
	req.Header.Set(echo.HeaderXRealIP, "10.0.0.1")
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/v1/chat")

	cfg := config.RateLimitConfig{Prefix: "bv:rl", KeyStrategy: "ip_session_route"}
	assert.Equal(t, "bv:rl:ip:10.0.0.1:session:6f1c1f8e-3c57-4a59-9b43-3c1f3a7c2a10:route:POST /v1/chat", rateKey(cfg, c))

	req.Header.Set(SessionHeader, "not-a-uuid")
	assert.Equal(t, "bv:rl:anon", rateKey(config.RateLimitConfig{Prefix: "bv:rl", KeyStrategy: "session"}, c))

	c.Set(ctxStaffID, uint64(9))
	assert.Equal(t, "bv:rl:staff:9", rateKey(config.RateLimitConfig{Prefix: "bv:rl", KeyStrategy: "session"}, c))
}

func TestJWTAuthAndRequireRole(t *testing.T) {
	e := echo.New()
	h := JWTAuth("secret")(RequireRole("MANAGER")(func(c echo.Context) error {
		id, ok := StaffID(c)
		require.True(t, ok)
		return c.JSON(http.StatusOK, echo.Map{"id": id})
	}))
	call := func(auth string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if auth != "" {
			req.Header.Set("Authorization", auth)
		}
		rec := httptest.NewRecorder()
		require.NoError(t, h(e.NewContext(req, rec)))
		return rec.Code
	}

	manager, _ := utils.NewAccessToken("secret", 3, "MANAGER", 5)
	staff, _ := utils.NewAccessToken("secret", 4, "STAFF", 5)
	assert.Equal(t, http.StatusOK, call("Bearer "+manager.Token))
	assert.Equal(t, http.StatusForbidden, call("Bearer "+staff.Token))
	assert.Equal(t, http.StatusUnauthorized, call("Bearer nonsense"))
	assert.Equal(t, http.StatusUnauthorized, call(""))
}
