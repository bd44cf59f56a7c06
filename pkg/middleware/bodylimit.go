package middleware

import "net/http"

// BodyLimit returns middleware that caps request bodies at limit bytes.
// Requests declaring a larger Content-Length are rejected with 413 before
// the handler runs; streamed bodies fail on read once the limit is crossed.
func BodyLimit(limit int64) Middleware {
	return New("body_limit", func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > limit {
				http.Error(w, http.StatusText(http.StatusRequestEntityTooLarge), http.StatusRequestEntityTooLarge)
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	})
}
