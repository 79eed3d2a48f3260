package cache

import (
	"bytes"
	"net/http"
)

// Observer is notified of every cache lookup made by the middleware.
type Observer interface {
	ObserveCacheLookup(cache string, hit bool)
}

type captureWriter struct {
	http.ResponseWriter
	statusCode int
	body       bytes.Buffer
}

func (w *captureWriter) WriteHeader(code int) {
	if w.statusCode == 0 {
		w.statusCode = code
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *captureWriter) Write(b []byte) (int, error) {
	if w.statusCode == 0 {
		w.statusCode = http.StatusOK
	}
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// CacheMiddleware caches successful GET responses in c, keyed by request
// URI. Hits are answered with X-Cache: HIT, misses with X-Cache: MISS. Only
// 200 responses are stored. name labels the cache for obs, which may be nil.
func CacheMiddleware(c *LRUCache, name string, obs Observer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				next.ServeHTTP(w, r)
				return
			}

			key := r.URL.RequestURI()
			if cached, ok := c.Get(key); ok {
				if obs != nil {
					obs.ObserveCacheLookup(name, true)
				}
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("X-Cache", "HIT")
				w.WriteHeader(http.StatusOK)
				_, _ = w.Write(cached)
				return
			}
			if obs != nil {
				obs.ObserveCacheLookup(name, false)
			}

			cw := &captureWriter{ResponseWriter: w}
			cw.Header().Set("X-Cache", "MISS")
			next.ServeHTTP(cw, r)

			if cw.statusCode == http.StatusOK {
				c.Set(key, bytes.Clone(cw.body.Bytes()))
			}
		})
	}
}
