package middleware

import (
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"
    "go.uber.org/zap"

    "github.com/iliyamo/table-reservation/internal/config"
)

// takeToken refills the bucket in KEYS[1] for the time elapsed since its
// last use, then tries to take one token.  Tokens are fractional so a
// slow trickle of requests is never rounded away.
//
// ARGV: burst, refill interval ms, now ms, idle ttl ms
// returns {allowed 0|1, whole tokens left, ms until next token}
var takeToken = redis.NewScript(`
local burst    = tonumber(ARGV[1])
local every_ms = tonumber(ARGV[2])
local now_ms   = tonumber(ARGV[3])
local idle_ms  = tonumber(ARGV[4])

local state  = redis.call('HMGET', KEYS[1], 'tokens', 'ts')
local tokens = tonumber(state[1]) or burst
local ts     = tonumber(state[2]) or now_ms

if now_ms > ts then
    tokens = math.min(burst, tokens + (now_ms - ts) / every_ms)
    ts = now_ms
end

local allowed, wait_ms = 0, 0
if tokens >= 1 then
    tokens = tokens - 1
    allowed = 1
else
    wait_ms = math.ceil((1 - tokens) * every_ms)
end

redis.call('HSET', KEYS[1], 'tokens', tokens, 'ts', ts)
redis.call('PEXPIRE', KEYS[1], idle_ms)
return {allowed, math.floor(tokens), wait_ms}
`)

// NewTokenBucket limits requests per caller with a token bucket kept in
// Redis.  Without Redis, or when a Redis call fails, requests pass
// through unthrottled.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client, logger *zap.Logger) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return passThrough
    }
    if logger == nil {
        logger = zap.NewNop()
    }
    log := logger.Named("ratelimit")
    burst := strconv.Itoa(cfg.Burst)

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            key := rateKey(cfg, c)
            res, err := takeToken.Run(c.Request().Context(), rdb, []string{key},
                cfg.Burst, cfg.Every.Milliseconds(), time.Now().UnixMilli(), cfg.IdleTTL.Milliseconds(),
            ).Int64Slice()
            if err != nil || len(res) != 3 {
                log.Warn("token bucket unavailable; allowing request", zap.String("key", key), zap.Error(err))
                return next(c)
            }
            allowed, left, waitMs := res[0] == 1, res[1], res[2]

            h := c.Response().Header()
            h.Set("X-RateLimit-Limit", burst)
            h.Set("X-RateLimit-Remaining", strconv.FormatInt(left, 10))
            if allowed {
                return next(c)
            }

            retry := (waitMs + 999) / 1000
            h.Set("Retry-After", strconv.FormatInt(retry, 10))
            log.Debug("rate limited", zap.String("key", key), zap.Int64("retry_after_s", retry))
            return c.JSON(http.StatusTooManyRequests, echo.Map{
                "success":     false,
                "error":       "rate limit exceeded",
                "code":        "too_many_requests",
                "retry_after": retry,
            })
        }
    }
}

// rateKey names the bucket for the request.  Anonymous callers share
// the "anon" user bucket of their IP.
func rateKey(cfg config.RateLimitConfig, c echo.Context) string {
    ip := c.RealIP()
    if ip == "" {
        ip = "unknown"
    }
    parts := []string{cfg.Prefix}
    switch strings.ToLower(cfg.Key) {
    case config.RateKeyIP:
        parts = append(parts, "ip", ip)
    case config.RateKeyUser:
        parts = append(parts, "user", userKey(c))
    default:
        parts = append(parts, "ip", ip, "user", userKey(c))
    }
    return strings.Join(parts, ":")
}

func passThrough(next echo.HandlerFunc) echo.HandlerFunc { return next }
