package middleware

import (
    "bytes"
    "context"
    "crypto/sha256"
    "encoding/hex"
    "encoding/json"
    "net/http"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/table-reservation/internal/config"
)

// HeaderCache reports HIT or MISS on cached routes.
const HeaderCache = "X-Cache"

type cachedResponse struct {
    Status int         `json:"status"`
    Header http.Header `json:"header"`
    Body   []byte      `json:"body"`
}

// recorder forwards the response while keeping a copy of the body, up
// to max bytes.
type recorder struct {
    http.ResponseWriter
    status   int
    body     bytes.Buffer
    max      int
    overflow bool
}

func (r *recorder) WriteHeader(code int) {
    r.status = code
    r.ResponseWriter.WriteHeader(code)
}

func (r *recorder) Write(b []byte) (int, error) {
    if !r.overflow {
        if r.max > 0 && r.body.Len()+len(b) > r.max {
            r.overflow = true
            r.body.Reset()
        } else {
            r.body.Write(b)
        }
    }
    return r.ResponseWriter.Write(b)
}

// cacheKey hashes the concrete path and the sorted query, so
// /v1/restaurants/1 and /v1/restaurants/2 never share an entry.
func cacheKey(prefix string, r *http.Request) string {
    sum := sha256.Sum256([]byte(r.URL.Path + "?" + r.URL.Query().Encode()))
    return prefix + ":" + hex.EncodeToString(sum[:])
}

// NewRedisCache caches 200 responses of GET requests for cfg.TTL.  The
// status, headers and body are stored together so a hit replays the
// original response.  Without Redis the middleware is a pass-through.
func NewRedisCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return passThrough
    }
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            req := c.Request()
            if req.Method != http.MethodGet {
                return next(c)
            }
            ctx := req.Context()
            key := cacheKey(cfg.Prefix, req)

            if raw, err := rdb.Get(ctx, key).Bytes(); err == nil {
                var hit cachedResponse
                if json.Unmarshal(raw, &hit) == nil {
                    return replay(c, hit)
                }
            }

            rec := &recorder{ResponseWriter: c.Response().Writer, status: http.StatusOK, max: cfg.MaxBodyBytes}
            c.Response().Writer = rec
            c.Response().Header().Set(HeaderCache, "MISS")
            if err := next(c); err != nil {
                return err
            }
            if rec.status != http.StatusOK || rec.overflow {
                return nil
            }

            hdr := c.Response().Header().Clone()
            hdr.Del(echo.HeaderContentLength)
            hdr.Del(HeaderCache)
            hdr.Del(echo.HeaderXRequestID)
            payload, err := json.Marshal(cachedResponse{Status: rec.status, Header: hdr, Body: rec.body.Bytes()})
            if err == nil {
                // the client may already be gone; the entry is still worth keeping
                _ = rdb.Set(context.WithoutCancel(ctx), key, payload, cfg.TTL).Err()
            }
            return nil
        }
    }
}

func replay(c echo.Context, r cachedResponse) error {
    h := c.Response().Header()
    for k, vs := range r.Header {
        for _, v := range vs {
            h.Add(k, v)
        }
    }
    h.Set(HeaderCache, "HIT")
    c.Response().WriteHeader(r.Status)
    _, err := c.Response().Write(r.Body)
    return err
}
