package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/futureofgaming-backend/internal/platform/logger"
)

// slidingWindow trims the window, counts, and records the hit only when it
// is admitted. Returns {allowed, remaining, oldest_ms}.
var slidingWindow = goredis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
local member = ARGV[4]
redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
local count = redis.call('ZCARD', key)
local allowed = 0
if count < limit then
	redis.call('ZADD', key, now, member)
	count = count + 1
	allowed = 1
end
redis.call('PEXPIRE', key, window)
local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
local oldestScore = now
if oldest[2] then
	oldestScore = tonumber(oldest[2])
end
return {allowed, limit - count, oldestScore}
`)

type LimitResult struct {
	Allowed   bool
	Remaining int
	Reset     time.Time
	// FailedOpen is set when Redis could not be consulted.
	FailedOpen bool
}

type RateLimiter interface {
	Limit(ctx context.Context, identifier string) LimitResult
}

type SlidingWindowLimiter struct {
	log    *logger.Logger
	rdb    goredis.Scripter
	prefix string
	limit  int
	window time.Duration
	now    func() time.Time
}

func NewSlidingWindowLimiter(log *logger.Logger, rdb goredis.Scripter, prefix string, limit int, window time.Duration) *SlidingWindowLimiter {
	if limit <= 0 {
		limit = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &SlidingWindowLimiter{
		log:    log.With("service", "RateLimiter", "prefix", prefix),
		rdb:    rdb,
		prefix: prefix,
		limit:  limit,
		window: window,
		now:    time.Now,
	}
}

func (l *SlidingWindowLimiter) Key(identifier string) string {
	return l.prefix + ":" + identifier
}

// Limit records one hit for identifier. Redis errors admit the request.
func (l *SlidingWindowLimiter) Limit(ctx context.Context, identifier string) LimitResult {
	now := l.now()
	if l.rdb == nil {
		return l.failOpen(now, fmt.Errorf("redis client not configured"))
	}
	nowMs := now.UnixMilli()
	member := strconv.FormatInt(nowMs, 10) + "-" + uuid.NewString()
	res, err := slidingWindow.Run(ctx, l.rdb, []string{l.Key(identifier)},
		nowMs, l.window.Milliseconds(), l.limit, member).Int64Slice()
	if err != nil || len(res) != 3 {
		if err == nil {
			err = fmt.Errorf("unexpected script reply %v", res)
		}
		return l.failOpen(now, err)
	}
	remaining := int(res[1])
	if remaining < 0 {
		remaining = 0
	}
	return LimitResult{
		Allowed:   res[0] == 1,
		Remaining: remaining,
		Reset:     time.UnixMilli(res[2]).Add(l.window),
	}
}

func (l *SlidingWindowLimiter) failOpen(now time.Time, err error) LimitResult {
	l.log.Error("Rate limit check failed, allowing request", "error", err)
	return LimitResult{Allowed: true, Remaining: l.limit, Reset: now.Add(l.window), FailedOpen: true}
}
