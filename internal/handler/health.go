package handler

import (
	"encoding/json"
	"net/http"
	"time"
)

// Health reports the service as healthy. It has no failure mode and consults
// no dependencies.
func Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status":    "healthy",
			"timestamp": time.Now().Format(time.RFC3339),
		})
	}
}
