package mw

import (
	"net/http"
)

// RequireReady answers 503 until ready reports true. It keeps clients from
// reading or writing the default state while the stored one is still
// loading.
func RequireReady(ready func() bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !ready() {
				w.Header().Set("Retry-After", "1")
				http.Error(w, "catalog initializing", http.StatusServiceUnavailable)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
