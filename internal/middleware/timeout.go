package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"inventory-api/internal/model"
)

const defaultRequestTimeout = 30 * time.Second

// Timeout cancels the request context after timeout and answers 503 with the
// standard error envelope. Handlers see the deadline through r.Context(), so
// store calls made with it are abandoned as well.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	body, _ := json.Marshal(model.APIResponse{
		Success: false,
		Error: &model.APIError{
			Code:    "REQUEST_TIMEOUT",
			Message: "request timed out",
			Details: map[string]string{"timeout": timeout.String()},
		},
	})

	return func(next http.Handler) http.Handler {
		guarded := http.TimeoutHandler(next, timeout, string(body))
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			guarded.ServeHTTP(w, r)
		})
	}
}
