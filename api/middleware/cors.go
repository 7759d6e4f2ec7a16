package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS returns middleware allowing the storefront front-ends in origins.
func CORS(origins []string) func(http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", ProfileHeader, requestIDHeader, IdempotencyHeader},
		ExposedHeaders:   []string{requestIDHeader, replayedHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}).Handler
}
