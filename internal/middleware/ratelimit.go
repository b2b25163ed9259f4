package middleware

import (
    "fmt"
    "math"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"
    "github.com/sirupsen/logrus"

    "github.com/iliyamo/airline-reservation/internal/config"
)

// tokenBucketScript refills in whole intervals, then tries to take one
// token.  ARGV: now_ms, capacity, refill, interval_ms, ttl_s.  Reply:
// {allowed 0|1, tokens left, wait_ms}.
var tokenBucketScript = redis.NewScript(`
    local now, cap, refill, every, ttl =
        tonumber(ARGV[1]), tonumber(ARGV[2]), tonumber(ARGV[3]), tonumber(ARGV[4]), tonumber(ARGV[5])

    local b = redis.call('HMGET', KEYS[1], 'tokens', 'last_refill_ms')
    local left, since = tonumber(b[1]), tonumber(b[2])
    if not left or not since then
        left, since = cap, now
    end

    if every > 0 and refill > 0 and now > since then
        local n = math.floor((now - since) / every)
        if n > 0 then
            left = math.min(cap, left + n * refill)
            since = since + n * every
        end
    end

    local ok, wait = 0, 0
    if left >= 1 then
        ok, left = 1, left - 1
    else
        wait = math.max(0, every - (now - since))
    end

    redis.call('HSET', KEYS[1], 'tokens', left, 'last_refill_ms', since)
    redis.call('EXPIRE', KEYS[1], ttl)
    return { ok, left, wait }
`)

func passthrough(next echo.HandlerFunc) echo.HandlerFunc { return next }

// NewTokenBucket limits requests with a Redis-backed token bucket keyed by
// cfg.KeyStrategy.  It is a no-op when disabled or when rdb is nil, and
// fails open when Redis errors.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client, log logrus.FieldLogger) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return passthrough
    }
    log = log.WithField("component", "ratelimit").WithField("scope", cfg.Prefix)

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            key := buildRateKey(cfg, c)
            vals, err := tokenBucketScript.Run(c.Request().Context(), rdb, []string{key},
                time.Now().UnixMilli(),
                cfg.Capacity,
                cfg.RefillTokens,
                cfg.RefillInterval.Milliseconds(),
                int64(cfg.TTL/time.Second),
            ).Result()
            if err != nil {
                log.WithError(err).WithField("key", key).Warn("redis error; request not limited")
                return next(c)
            }
            allowed, remaining, retryMs, ok := parseBucketResult(vals)
            if !ok {
                log.WithField("key", key).Warnf("unexpected script result %#v", vals)
                return next(c)
            }

            h := c.Response().Header()
            h.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
            h.Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
            if cfg.Debug {
                h.Set("X-RateLimit-Key", key)
            }
            if !allowed {
                secs := RetryAfterSeconds(retryMs)
                h.Set("Retry-After", strconv.Itoa(secs))
                if cfg.Debug {
                    log.WithField("key", key).Infof("blocked; retry in %dms", retryMs)
                }
                return c.JSON(http.StatusTooManyRequests, echo.Map{
                    "error":       "rate limit exceeded",
                    "error_kind":  KindRateLimited,
                    "retry_after": secs,
                })
            }
            return next(c)
        }
    }
}

// RetryAfterSeconds rounds a millisecond wait up to whole seconds.
func RetryAfterSeconds(ms int64) int {
    if ms <= 0 {
        return 0
    }
    return int(math.Ceil(float64(ms) / 1000.0))
}

func parseBucketResult(v interface{}) (allowed bool, remaining, retryMs int64, ok bool) {
    arr, isArr := v.([]interface{})
    if !isArr || len(arr) != 3 {
        return false, 0, 0, false
    }
    return asInt64(arr[0]) == 1, asInt64(arr[1]), asInt64(arr[2]), true
}

func asInt64(v interface{}) int64 {
    switch t := v.(type) {
    case int64:
        return t
    case int:
        return int64(t)
    case float64:
        return int64(t)
    case string:
        if n, err := strconv.ParseInt(t, 10, 64); err == nil {
            return n
        }
    }
    n, _ := strconv.ParseInt(fmt.Sprint(v), 10, 64)
    return n
}

// buildRateKey joins the key components named by cfg.KeyStrategy
// ("ip", "user", "route" joined with "_").  An unknown strategy uses all
// three.  The "user" strategy keys anonymous callers by address.
func buildRateKey(cfg config.RateLimitConfig, c echo.Context) string {
    ip := c.RealIP()
    if ip == "" {
        ip = "unknown"
    }
    uid := userID(c)

    strategy := strings.ToLower(cfg.KeyStrategy)
    if strategy == "user" && uid == "anon" {
        strategy = "ip"
    }
    if !knownStrategies[strategy] {
        strategy = "ip_user_route"
    }

    key := []string{cfg.Prefix}
    for _, part := range strings.Split(strategy, "_") {
        switch part {
        case "ip":
            key = append(key, "ip", ip)
        case "user":
            key = append(key, "user", uid)
        case "route":
            key = append(key, "route", c.Request().Method+" "+c.Path())
        }
    }
    return strings.Join(key, ":")
}

var knownStrategies = map[string]bool{
    "ip": true, "user": true, "route": true,
    "ip_user": true, "ip_route": true, "user_route": true, "ip_user_route": true,
}
