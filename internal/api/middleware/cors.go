package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// CORS returns a middleware that answers preflights and sets
// Cross-Origin Resource Sharing headers for the allowed origins.
// An empty list falls back to the local development origins; "*" allows any.
func CORS(allowedOrigins []string, allowCredentials bool) func(http.Handler) http.Handler {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:3000", "http://localhost:3001"}
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization", HeaderRequestID},
		ExposedHeaders:   []string{HeaderRequestID, "X-Image-Source", "X-Image-Size"},
		AllowCredentials: allowCredentials,
		MaxAge:           600,
	})
	return c.Handler
}
