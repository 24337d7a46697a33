package config

import "time"

// CacheConfig controls the Redis response cache mounted on catalog
// reads.  Responses larger than MaxBodyBytes are served but not stored.
type CacheConfig struct {
    Enabled      bool          // CACHE_ENABLED
    TTL          time.Duration // CACHE_TTL
    Prefix       string        // CACHE_PREFIX
    MaxBodyBytes int           // CACHE_MAX_BODY_BYTES, 0 means no limit
}

// LoadCacheConfig reads CACHE_*.
func LoadCacheConfig() CacheConfig {
    cfg := CacheConfig{
        Enabled:      envBool("CACHE_ENABLED", true),
        TTL:          envDur("CACHE_TTL", 5*time.Minute),
        Prefix:       getenv("CACHE_PREFIX", "cache"),
        MaxBodyBytes: envInt("CACHE_MAX_BODY_BYTES", 1<<20),
    }
    if cfg.TTL <= 0 {
        cfg.TTL = 5 * time.Minute
    }
    return cfg
}
