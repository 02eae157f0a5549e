package middleware

import (
	"net/http"
	"strings"
)

// SecurityHeaders adds conservative security headers to every response.
// Images and JSON are consumed cross-origin by the frontend, so the
// resource policy stays cross-origin.
func SecurityHeaders() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https") {
				w.Header().Set("Strict-Transport-Security", "max-age=15552000; includeSubDomains")
			}
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
			w.Header().Set("Cross-Origin-Resource-Policy", "cross-origin")

			next.ServeHTTP(w, r)
		})
	}
}
