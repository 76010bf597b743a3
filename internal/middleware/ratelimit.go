package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/iliyamo/restaurant-reservation/internal/config"
)

// takeToken tops the bucket up by whole refill periods since it was last
// stamped, then spends one token if there is one. The bucket is a hash with
// fields n (tokens) and at (stamp in ms). Reply: {granted, left, wait_ms}.
var takeToken = redis.NewScript(`
local cap, per, period, ttl = tonumber(ARGV[2]), tonumber(ARGV[3]), tonumber(ARGV[4]), tonumber(ARGV[5])
local now = tonumber(ARGV[1])
local n = tonumber(redis.call('HGET', KEYS[1], 'n') or cap)
local at = tonumber(redis.call('HGET', KEYS[1], 'at') or now)

if period > 0 and per > 0 and now > at then
	local periods = math.floor((now - at) / period)
	n = math.min(cap, n + periods * per)
	at = at + periods * period
end

local granted, wait = 0, 0
if n >= 1 then
	granted, n = 1, n - 1
elseif period > 0 then
	wait = math.max(0, at + period - now)
end

redis.call('HSET', KEYS[1], 'n', n, 'at', at)
redis.call('EXPIRE', KEYS[1], ttl)
return {granted, n, wait}
`)

// bucketState is one spend attempt against a key's bucket.
type bucketState struct {
	Granted bool
	Left    int64
	Wait    time.Duration
}

// bucketSource spends a token for key at now.
type bucketSource interface {
	take(ctx context.Context, key string, now time.Time) (bucketState, error)
}

type redisBuckets struct {
	rdb *redis.Client
	cfg config.RateLimitConfig
}

func (b redisBuckets) take(ctx context.Context, key string, now time.Time) (bucketState, error) {
	reply, err := takeToken.Run(ctx, b.rdb, []string{key},
		now.UnixMilli(),
		b.cfg.Capacity,
		b.cfg.RefillTokens,
		b.cfg.RefillInterval.Milliseconds(),
		int64(b.cfg.TTL/time.Second),
	).Int64Slice()
	if err != nil {
		return bucketState{}, err
	}
	return decodeBucket(reply)
}

func decodeBucket(reply []int64) (bucketState, error) {
	if len(reply) != 3 {
		return bucketState{}, fmt.Errorf("ratelimit: want 3 values, got %d", len(reply))
	}
	return bucketState{
		Granted: reply[0] == 1,
		Left:    reply[1],
		Wait:    time.Duration(reply[2]) * time.Millisecond,
	}, nil
}

// NewTokenBucket limits requests per key with a Redis token bucket. When
// disabled or without Redis it passes everything through; Redis errors fail
// open.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client, logger *log.Entry) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return passThrough
	}
	return limitWith(cfg, redisBuckets{rdb: rdb, cfg: cfg}, time.Now, logger)
}

func limitWith(cfg config.RateLimitConfig, buckets bucketSource, now func() time.Time, logger *log.Entry) echo.MiddlewareFunc {
	limit := strconv.Itoa(cfg.Capacity)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := rateKey(cfg.Prefix, cfg.KeyStrategy, c)
			st, err := buckets.take(c.Request().Context(), key, now())
			if err != nil {
				logger.WithError(err).WithField("key", key).Warn("ratelimit: bucket unavailable, letting request through")
				return next(c)
			}

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", limit)
			h.Set("X-RateLimit-Remaining", strconv.FormatInt(st.Left, 10))
			if st.Granted {
				return next(c)
			}

			h.Set("Retry-After", strconv.FormatInt(retryAfterSeconds(st.Wait), 10))
			logger.WithFields(log.Fields{"key": key, "wait": st.Wait}).Debug("ratelimit: blocked")
			return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
		}
	}
}

// retryAfterSeconds rounds wait up to whole seconds.
func retryAfterSeconds(wait time.Duration) int64 {
	if wait <= 0 {
		return 0
	}
	return int64((wait + time.Second - 1) / time.Second)
}

// rateKey names the bucket for a request. Unknown strategies fall back to
// ip_route.
func rateKey(prefix, strategy string, c echo.Context) string {
	ip := c.RealIP()
	if ip == "" {
		ip = "unknown"
	}
	key := []string{prefix, "ip", ip}
	route := c.Request().Method + " " + c.Path()
	switch strings.ToLower(strategy) {
	case "ip":
	case "ip_user_route":
		key = append(key, "user", currentUser(c), "route", route)
	default:
		key = append(key, "route", route)
	}
	return strings.Join(key, ":")
}

func passThrough(next echo.HandlerFunc) echo.HandlerFunc { return next }
