package handlers

import "net/http"

// Health handles GET /health. It reports process liveness only and never
// contacts the calculation service.
func Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
