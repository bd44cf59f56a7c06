package middleware

import (
	"net/http"
	"strings"
)

// AddSlash returns middleware that redirects requests without trailing slashes
// to their canonical form with a slash, unless the path has a file extension.
func AddSlash() Middleware {
	return New("add_slash", func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.HasSuffix(r.URL.Path, "/") && !hasFileExtension(r.URL.Path) {
				redirect(w, r, r.URL.Path+"/")
				return
			}
			next.ServeHTTP(w, r)
		})
	})
}

// TrimSlash returns middleware that redirects requests with trailing slashes
// to their canonical form without the slash. The root path "/" is preserved.
func TrimSlash() Middleware {
	return New("trim_slash", func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(r.URL.Path) > 1 && strings.HasSuffix(r.URL.Path, "/") {
				redirect(w, r, strings.TrimRight(r.URL.Path, "/"))
				return
			}
			next.ServeHTTP(w, r)
		})
	})
}

func redirect(w http.ResponseWriter, r *http.Request, target string) {
	if target == "" {
		target = "/"
	}
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}
	http.Redirect(w, r, target, http.StatusMovedPermanently)
}

func hasFileExtension(path string) bool {
	lastSlash := strings.LastIndex(path, "/")
	lastDot := strings.LastIndex(path, ".")
	return lastDot > lastSlash
}
