package config

import "time"

// Rate limit key strategies.
const (
    RateKeyIP     = "ip"
    RateKeyUser   = "user"
    RateKeyIPUser = "ip_user"
)

// RateLimitConfig configures the Redis token bucket in front of /v1.
// A bucket holds Burst tokens and regains one every Every.
type RateLimitConfig struct {
    Enabled bool          // RATE_LIMIT_ENABLED
    Burst   int           // RATE_LIMIT_BURST
    Every   time.Duration // RATE_LIMIT_EVERY
    IdleTTL time.Duration // RATE_LIMIT_IDLE_TTL, expiry of an untouched bucket
    Key     string        // RATE_LIMIT_KEY: ip, user or ip_user
    Prefix  string        // RATE_LIMIT_PREFIX
}

// LoadRateLimitConfig reads RATE_LIMIT_* and clamps the values so that
// the bucket always admits at least one request and never expires
// before it could have refilled.
func LoadRateLimitConfig() RateLimitConfig {
    cfg := RateLimitConfig{
        Enabled: envBool("RATE_LIMIT_ENABLED", true),
        Burst:   envInt("RATE_LIMIT_BURST", 60),
        Every:   envDur("RATE_LIMIT_EVERY", time.Second),
        IdleTTL: envDur("RATE_LIMIT_IDLE_TTL", 10*time.Minute),
        Key:     getenv("RATE_LIMIT_KEY", RateKeyIPUser),
        Prefix:  getenv("RATE_LIMIT_PREFIX", "rl"),
    }
    if cfg.Burst < 1 {
        cfg.Burst = 1
    }
    if cfg.Every <= 0 {
        cfg.Every = time.Second
    }
    if full := time.Duration(cfg.Burst) * cfg.Every; cfg.IdleTTL < full {
        cfg.IdleTTL = full
    }
    return cfg
}
