package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Event is one allow/deny decision.
type Event struct {
	Key     string
	Allowed bool
	Method  string
	Path    string
	At      time.Time
}

// StatsRecorder receives rate-limit decisions for later inspection.
type StatsRecorder interface {
	Record(ctx context.Context, ev Event) error
}

// RedisStats accumulates decision counters in Redis: a cumulative total hash,
// a per-minute hash with TTL and a per-route hash.
type RedisStats struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisStats(rdb *redis.Client) *RedisStats {
	return &RedisStats{
		rdb:    rdb,
		prefix: "produto:ratelimit",
		ttl:    24 * time.Hour,
	}
}

func (s *RedisStats) Record(ctx context.Context, ev Event) error {
	if s == nil || s.rdb == nil {
		return nil
	}

	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}

	field := "denied"
	if ev.Allowed {
		field = "allowed"
	}

	pipe := s.rdb.Pipeline()
	pipe.HIncrBy(ctx, s.prefix+":total", field, 1)

	bucketKey := fmt.Sprintf("%s:minute:%s", s.prefix, at.UTC().Format("200601021504"))
	pipe.HIncrBy(ctx, bucketKey, field, 1)
	pipe.Expire(ctx, bucketKey, s.ttl)

	route := strings.TrimSpace(ev.Method + " " + ev.Path)
	if route != "" {
		pipe.HIncrBy(ctx, s.prefix+":route", route+":"+field, 1)
	}

	_, err := pipe.Exec(ctx)
	return err
}
