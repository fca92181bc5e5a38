package ratelimit

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

type Options struct {
	Store        *Store
	Stats        StatsRecorder
	RejectStatus int
	RetryAfter   time.Duration
	Logger       *zap.Logger
}

// Middleware rejects requests whose client key has exhausted its bucket.
// Stats recording is best-effort and never blocks the decision.
func Middleware(opts Options) func(http.Handler) http.Handler {
	if opts.RejectStatus == 0 {
		opts.RejectStatus = http.StatusTooManyRequests
	}
	if opts.RetryAfter == 0 {
		opts.RetryAfter = time.Second
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientKey(r)
			allowed := opts.Store.Allow(key)

			if opts.Stats != nil {
				if err := opts.Stats.Record(r.Context(), Event{
					Key:     key,
					Allowed: allowed,
					Method:  r.Method,
					Path:    r.URL.Path,
					At:      time.Now(),
				}); err != nil {
					opts.Logger.Warn("failed to record rate-limit stats", zap.Error(err))
				}
			}

			if !allowed {
				w.Header().Set("Retry-After", formatSeconds(opts.RetryAfter))
				http.Error(w, http.StatusText(opts.RejectStatus), opts.RejectStatus)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientKey identifies the caller: first X-Forwarded-For hop, then RemoteAddr.
func clientKey(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if first := strings.TrimSpace(strings.Split(xff, ",")[0]); first != "" {
			return first
		}
	}

	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil && host != "" {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return "unknown"
}

func formatSeconds(d time.Duration) string {
	secs := int(d.Seconds())
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}
