package config

import (
    "testing"
    "time"

    "github.com/stretchr/testify/require"
)

func TestLoadMemoryStoreDefaults(t *testing.T) {
    t.Setenv("STORE", "memory")
    t.Setenv("RABBITMQ_URL", "")
    t.Setenv("AMQP_URL", "amqp://broker:5672/")
    t.Setenv("SLOT_STEP", "30m")
    t.Setenv("RATE_LIMIT_BURST", "5")

    cfg, err := Load()
    require.NoError(t, err)
    require.Equal(t, StoreMemory, cfg.Store)
    require.Equal(t, "amqp://broker:5672/", cfg.AMQPURL)
    require.Equal(t, 30*time.Minute, cfg.Engine.SlotStep)
    require.Equal(t, 3*time.Hour, cfg.Engine.SlotLookahead)
    require.Equal(t, 6, cfg.Engine.TableSize)
    require.Equal(t, 5, cfg.RateLimit.Burst)
    require.Equal(t, 5*time.Minute, cfg.Cache.TTL)
}

func TestLoadMySQLRequiresCredentials(t *testing.T) {
    t.Setenv("STORE", "mysql")
    t.Setenv("DB_USER", "")
    t.Setenv("DB_NAME", "")
    _, err := Load()
    require.ErrorContains(t, err, "DB_NAME, DB_USER")

    t.Setenv("DB_USER", "app")
    t.Setenv("DB_NAME", "goodfoods")
    cfg, err := Load()
    require.NoError(t, err)
    require.Equal(t, "3306", cfg.DBPort)
}

func TestLoadRejectsUnknownStore(t *testing.T) {
    t.Setenv("STORE", "cassandra")
    _, err := Load()
    require.Error(t, err)
}

func TestRateLimitConfigClamps(t *testing.T) {
    t.Setenv("RATE_LIMIT_BURST", "0")
    t.Setenv("RATE_LIMIT_EVERY", "2s")
    t.Setenv("RATE_LIMIT_IDLE_TTL", "1s")
    cfg := LoadRateLimitConfig()
    require.Equal(t, 1, cfg.Burst)
    require.Equal(t, 2*time.Second, cfg.IdleTTL)

    t.Setenv("RATE_LIMIT_BURST", "10")
    t.Setenv("RATE_LIMIT_IDLE_TTL", "1h")
    cfg = LoadRateLimitConfig()
    require.Equal(t, time.Hour, cfg.IdleTTL)
}

func TestEnvBool(t *testing.T) {
    for v, want := range map[string]bool{"yes": true, "ON": true, "1": true, "off": false, "FALSE": false, "maybe": true} {
        t.Setenv("FLAG", v)
        require.Equal(t, want, envBool("FLAG", true), v)
    }
}

func TestRedisConfigHostPortWins(t *testing.T) {
    t.Setenv("REDIS_ADDR", "cache:6380")
    t.Setenv("REDIS_HOST", "")
    require.Equal(t, "cache:6380", LoadRedisConfig().Addr)

    t.Setenv("REDIS_HOST", "redis")
    t.Setenv("REDIS_PORT", "6379")
    t.Setenv("REDIS_TLS", "1")
    cfg := LoadRedisConfig()
    require.Equal(t, "redis:6379", cfg.Addr)
    require.True(t, cfg.TLS)
}
