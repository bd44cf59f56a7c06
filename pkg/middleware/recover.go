package middleware

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/route-lab/pkg/handlers"
)

// Recover returns middleware that converts handler panics into a JSON
// 500 response. http.ErrAbortHandler is re-raised so the server can abort
// the connection as it normally would.
func Recover(logger *slog.Logger) Middleware {
	return New("recover", func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				handlers.RespondError(
					w,
					logger.With("method", r.Method, "uri", r.URL.RequestURI()),
					http.StatusInternalServerError,
					fmt.Errorf("panic: %v", rec),
				)
			}()
			next.ServeHTTP(w, r)
		})
	})
}
