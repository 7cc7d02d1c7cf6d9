package middleware

import (
    "bytes"
    "context"
    "crypto/sha1"
    "encoding/json"
    "fmt"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/restaurant-assistant/internal/config"
)

// cachedResponse is what the response cache stores per key.
type cachedResponse struct {
    Status int         `json:"s"`
    Header http.Header `json:"h"`
    Body   []byte      `json:"b"`
}

// bodyRecorder tees the response body while it is written to the client.
// Once more than limit bytes pass through, recording stops and the response
// is marked as too large to cache.
type bodyRecorder struct {
    http.ResponseWriter
    status   int
    buf      bytes.Buffer
    limit    int
    overflow bool
}

func (r *bodyRecorder) WriteHeader(code int) {
    r.status = code
    r.ResponseWriter.WriteHeader(code)
}

func (r *bodyRecorder) Write(b []byte) (int, error) {
    if !r.overflow {
        if r.limit > 0 && r.buf.Len()+len(b) > r.limit {
            r.overflow = true
            r.buf.Reset()
        } else {
            r.buf.Write(b)
        }
    }
    return r.ResponseWriter.Write(b)
}

// NewResponseCache caches successful responses in Redis.  version is mixed
// into every key so that loading different restaurant data starts from an
// empty cache.  With caching disabled or no Redis client it is a no-op.
func NewResponseCache(cfg config.CacheConfig, rdb *redis.Client, version string) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return passThrough
    }
    ttl := cfg.TTL
    if ttl <= 0 {
        ttl = 5 * time.Minute
    }
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if !cfg.Methods[strings.ToUpper(c.Request().Method)] {
                return next(c)
            }
            ctx := c.Request().Context()
            key := cacheKey(cfg, version, c)

            if raw, err := rdb.Get(ctx, key).Bytes(); err == nil {
                if cr, ok := decodeCached(raw); ok {
                    h := c.Response().Header()
                    for k, vals := range cr.Header {
                        if strings.EqualFold(k, echo.HeaderContentLength) {
                            continue
                        }
                        h[k] = vals
                    }
                    h.Set("X-Cache", "HIT")
                    c.Response().WriteHeader(cr.Status)
                    _, _ = c.Response().Write(cr.Body)
                    return nil
                }
            }

            rec := &bodyRecorder{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: cfg.MaxBodyBytes}
            c.Response().Writer = rec
            c.Response().Header().Set("X-Cache", "MISS")
            if err := next(c); err != nil {
                return err
            }
            if rec.status != http.StatusOK || rec.overflow {
                return nil
            }
            hdr := c.Response().Header().Clone()
            hdr.Del("X-Cache")
            if raw, err := encodeCached(cachedResponse{Status: rec.status, Header: hdr, Body: rec.buf.Bytes()}); err == nil {
                if err := rdb.Set(context.Background(), key, raw, ttl).Err(); err != nil {
                    c.Logger().Warnf("cache: store %s: %v", key, err)
                }
            }
            return nil
        }
    }
}

// cacheKey hashes the request parts named by cfg.KeyStrategy.
func cacheKey(cfg config.CacheConfig, version string, c echo.Context) string {
    r := c.Request()
    var parts []string
    switch strings.ToLower(cfg.KeyStrategy) {
    case "route":
        parts = []string{c.Path()}
    case "method_route":
        parts = []string{r.Method, c.Path()}
    case "path":
        parts = []string{r.URL.Path}
    default: // route_query; the concrete path is included because routes carry params
        parts = []string{r.URL.Path, r.URL.RawQuery}
    }
    sum := sha1.Sum([]byte(strings.Join(parts, "\x00")))
    return fmt.Sprintf("%s:%s:%x", cfg.Prefix, version, sum[:])
}

func encodeCached(cr cachedResponse) ([]byte, error) { return json.Marshal(cr) }

func decodeCached(raw []byte) (cachedResponse, bool) {
    var cr cachedResponse
    if err := json.Unmarshal(raw, &cr); err != nil || cr.Status == 0 {
        return cachedResponse{}, false
    }
    return cr, true
}
