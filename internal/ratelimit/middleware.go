package ratelimit

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/noah-isme/ytf-quote/internal/common"
)

// Limiter reports the state of a key's quota.
type Limiter interface {
	Get(ctx context.Context, key string) (limiter.Context, error)
}

// NewMemoryLimiter returns a per-process limiter allowing perMinute requests per key.
// Forwarding headers are only consulted for the client address when trustForwardHeader is set,
// which is safe only behind a proxy that overwrites them.
func NewMemoryLimiter(perMinute int64, trustForwardHeader bool) *limiter.Limiter {
	store := memory.NewStoreWithOptions(limiter.StoreOptions{
		Prefix:          "ytf-quote",
		CleanUpInterval: time.Minute,
	})
	return limiter.New(store, limiter.Rate{Period: time.Minute, Limit: perMinute},
		limiter.WithTrustForwardHeader(trustForwardHeader))
}

// Handler enforces rate limits before delegating to the next handler.
type Handler struct {
	Limiter Limiter
	Key     func(*http.Request) string
	OnError func(error)
	Now     func() time.Time
}

// Middleware implements the http.Handler middleware interface.
func (h Handler) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.Limiter == nil {
			next.ServeHTTP(w, r)
			return
		}
		keyFn := h.key()
		state, err := h.Limiter.Get(r.Context(), keyFn(r))
		if err != nil {
			if h.OnError != nil {
				h.OnError(err)
			}
			next.ServeHTTP(w, r)
			return
		}

		headers := w.Header()
		headers.Set("X-RateLimit-Limit", strconv.FormatInt(state.Limit, 10))
		headers.Set("X-RateLimit-Remaining", strconv.FormatInt(state.Remaining, 10))
		headers.Set("X-RateLimit-Reset", strconv.FormatInt(state.Reset, 10))

		if state.Reached {
			retryAfter := state.Reset - h.now().Unix()
			if retryAfter < 0 {
				retryAfter = 0
			}
			headers.Set("Retry-After", strconv.FormatInt(retryAfter, 10))
			common.JSONError(w, http.StatusTooManyRequests, "RATE_LIMITED", "rate limit exceeded", nil)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// key defaults to the limiter's own client address resolution, which honours its
// forward-header trust setting.
func (h Handler) key() func(*http.Request) string {
	if h.Key != nil {
		return h.Key
	}
	if l, ok := h.Limiter.(*limiter.Limiter); ok {
		return l.GetIPKey
	}
	return func(r *http.Request) string {
		return limiter.GetIPWithMask(r).String()
	}
}

func (h Handler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}
