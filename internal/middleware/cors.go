package middleware

import (
	"net/http"
	"slices"

	"github.com/rs/cors"
)

// CORS admits browser clients from origins; "*" or an empty list admits any.
// Credentials travel in the Authorization header, never in cookies, so
// credentialed CORS stays off.
func CORS(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 || slices.Contains(origins, "*") {
		origins = []string{"*"}
	}

	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete,
		},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID", "Retry-After"},
		MaxAge:         600,
	}).Handler
}
