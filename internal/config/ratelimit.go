package config

import (
    "time"
)

// RateLimitConfig configures one Redis token bucket.  The service runs two
// buckets: a general one for all API traffic and a tighter one in front of
// ticket purchases.
type RateLimitConfig struct {
    Enabled        bool
    Capacity       int
    RefillTokens   int
    RefillInterval time.Duration
    TTL            time.Duration
    KeyStrategy    string
    Prefix         string
    Debug          bool
}

// LoadRateLimitConfig reads the general bucket from RATE_LIMIT_*.
func LoadRateLimitConfig() RateLimitConfig {
    return loadRateLimit("RATE_LIMIT", RateLimitConfig{
        Enabled:        true,
        Capacity:       60,
        RefillTokens:   1,
        RefillInterval: time.Second,
        TTL:            10 * time.Minute,
        KeyStrategy:    "ip_user_route",
        Prefix:         "rl",
    })
}

// LoadPurchaseRateLimitConfig reads the purchase bucket from
// PURCHASE_RATE_LIMIT_*.  It is keyed per customer by default.
func LoadPurchaseRateLimitConfig() RateLimitConfig {
    return loadRateLimit("PURCHASE_RATE_LIMIT", RateLimitConfig{
        Enabled:        true,
        Capacity:       5,
        RefillTokens:   1,
        RefillInterval: 10 * time.Second,
        TTL:            10 * time.Minute,
        KeyStrategy:    "user",
        Prefix:         "rl:purchase",
    })
}

func loadRateLimit(scope string, def RateLimitConfig) RateLimitConfig {
    cfg := RateLimitConfig{
        Enabled:        envBool(scope+"_ENABLED", def.Enabled),
        Capacity:       envInt(scope+"_CAPACITY", def.Capacity),
        RefillTokens:   envInt(scope+"_REFILL_TOKENS", def.RefillTokens),
        RefillInterval: envDur(scope+"_REFILL_INTERVAL", def.RefillInterval),
        TTL:            envDur(scope+"_TTL", def.TTL),
        KeyStrategy:    envStr(scope+"_KEY_STRATEGY", def.KeyStrategy),
        Prefix:         envStr(scope+"_PREFIX", def.Prefix),
        Debug:          envBool(scope+"_DEBUG", def.Debug),
    }
    if every := envDur(scope+"_REFILL_EVERY", 0); every > 0 {
        cfg.RefillTokens = 1
        cfg.RefillInterval = every
    }
    if cfg.Capacity < 1 {
        cfg.Capacity = 1
    }
    if cfg.RefillTokens < 1 {
        cfg.RefillTokens = 1
    }
    if cfg.RefillInterval <= 0 {
        cfg.RefillInterval = time.Second
    }
    // keep idle buckets long enough to refill completely
    if minTTL := refillSpan(cfg); cfg.TTL < minTTL {
        cfg.TTL = minTTL
    }
    return cfg
}

// refillSpan is how long an empty bucket takes to fill up again.
func refillSpan(cfg RateLimitConfig) time.Duration {
    steps := (cfg.Capacity + cfg.RefillTokens - 1) / cfg.RefillTokens
    return time.Duration(steps) * cfg.RefillInterval
}
