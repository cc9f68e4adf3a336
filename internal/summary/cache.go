package summary

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"jjc-attendance/internal/attendance"
	"jjc-attendance/internal/logger"
	"jjc-attendance/internal/metrics"
)

const (
	cachePrefix = "summary:mine:"
	genPrefix   = "summary:gen:"
)

// setIfCurrent stores ARGV[2] under KEYS[2] only while the generation in
// KEYS[1] still equals ARGV[1]. ARGV[3] is the TTL in milliseconds, 0 for none.
var setIfCurrent = redis.NewScript(`
local gen = redis.call('GET', KEYS[1]) or '0'
if gen ~= ARGV[1] then
	return 0
end
if ARGV[3] == '0' then
	redis.call('SET', KEYS[2], ARGV[2])
else
	redis.call('SET', KEYS[2], ARGV[2], 'PX', ARGV[3])
end
return 1
`)

// Cache keeps per-user summaries in Redis. Lookups that fail for any reason
// are treated as misses. Every write to a user's records bumps a generation
// counter; a summary computed before the bump is never stored.
type Cache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewCache creates a cache whose entries expire after ttl.
func NewCache(client redis.UniversalClient, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

func cacheKey(userID string) string {
	return cachePrefix + userID
}

func genKey(userID string) string {
	return genPrefix + userID
}

// Generation returns the current write generation of userID. ok is false
// when it cannot be read, in which case nothing should be cached.
func (c *Cache) Generation(ctx context.Context, userID string) (gen int64, ok bool) {
	gen, err := c.client.Get(ctx, genKey(userID)).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		logger.Warningf("summary cache generation %s: %v", userID, err)
		return 0, false
	}
	return gen, true
}

// Get returns the cached summary of userID.
func (c *Cache) Get(ctx context.Context, userID string) ([]MonthSummary, bool) {
	b, err := c.client.Get(ctx, cacheKey(userID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Warningf("summary cache get %s: %v", userID, err)
			metrics.SummaryCache.WithLabelValues("error").Inc()
		} else {
			metrics.SummaryCache.WithLabelValues("miss").Inc()
		}
		return nil, false
	}
	var res []MonthSummary
	if err := json.Unmarshal(b, &res); err != nil {
		logger.Warningf("summary cache decode %s: %v", userID, err)
		metrics.SummaryCache.WithLabelValues("error").Inc()
		return nil, false
	}
	metrics.SummaryCache.WithLabelValues("hit").Inc()
	return res, true
}

// Set stores the summary of userID computed at generation gen. It reports
// whether the entry was written; a newer generation discards it.
func (c *Cache) Set(ctx context.Context, userID string, gen int64, res []MonthSummary) bool {
	b, err := json.Marshal(res)
	if err != nil {
		logger.Warningf("summary cache encode %s: %v", userID, err)
		return false
	}
	stored, err := setIfCurrent.Run(ctx, c.client,
		[]string{genKey(userID), cacheKey(userID)},
		strconv.FormatInt(gen, 10), b, c.ttl.Milliseconds()).Int()
	if err != nil {
		logger.Warningf("summary cache set %s: %v", userID, err)
		return false
	}
	if stored == 0 {
		metrics.SummaryCache.WithLabelValues("stale").Inc()
		logger.Debugf("summary cache set %s skipped: generation %d is outdated", userID, gen)
	}
	return stored == 1
}

// Invalidate bumps the generation of userID and drops its cached summary.
func (c *Cache) Invalidate(ctx context.Context, userID string) {
	pipe := c.client.TxPipeline()
	pipe.Incr(ctx, genKey(userID))
	pipe.Del(ctx, cacheKey(userID))
	if _, err := pipe.Exec(ctx); err != nil {
		logger.Warningf("summary cache invalidate %s: %v", userID, err)
	}
}

// Recorded implements attendance.Notifier.
func (c *Cache) Recorded(ctx context.Context, rec attendance.Record) {
	if rec.UserID != "" {
		c.Invalidate(ctx, rec.UserID)
	}
}
