package common

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"sync"
	"time"
)

// Idem provides an Idempotency-Key middleware backed by an in-process key set.
type Idem struct {
	TTL time.Duration
	Now func() time.Time

	mu   sync.Mutex
	keys map[string]time.Time
}

// NewIdem returns an idempotency guard whose keys expire after ttl.
func NewIdem(ttl time.Duration) *Idem {
	return &Idem{TTL: ttl, keys: make(map[string]time.Time)}
}

func hashKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return "idem:" + hex.EncodeToString(sum[:])
}

func (i *Idem) now() time.Time {
	if i.Now != nil {
		return i.Now()
	}
	return time.Now()
}

// acquire reserves key and reports whether it was free.
func (i *Idem) acquire(key string) bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.keys == nil {
		i.keys = make(map[string]time.Time)
	}
	now := i.now()
	if exp, ok := i.keys[key]; ok && now.Before(exp) {
		return false
	}
	i.keys[key] = now.Add(i.TTL)
	// sweep expired keys while holding the lock
	for k, exp := range i.keys {
		if !now.Before(exp) {
			delete(i.keys, k)
		}
	}
	return true
}

func (i *Idem) release(key string) {
	i.mu.Lock()
	delete(i.keys, key)
	i.mu.Unlock()
}

// Middleware enforces idempotency semantics for write endpoints. Keys are
// released when the wrapped handler fails so the client may retry.
func (i *Idem) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Idempotency-Key")
		if header == "" || i == nil {
			next.ServeHTTP(w, r)
			return
		}
		key := hashKey(r.Method + " " + r.URL.Path + " " + header)
		if !i.acquire(key) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusConflict)
			_, _ = io.WriteString(w, "{\"error\":{\"code\":\"IDEMPOTENT_REPLAY\",\"message\":\"duplicate request\"}}")
			return
		}
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		completed := false
		defer func() {
			if !completed || sw.status >= http.StatusBadRequest {
				i.release(key)
			}
		}()
		next.ServeHTTP(sw, r)
		completed = true
	})
}

type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.status = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.wroteHeader = true
	}
	return w.ResponseWriter.Write(b)
}
