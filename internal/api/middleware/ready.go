package middleware

import (
	"net/http"

	"github.com/cloo-solutions/aula/internal/api"
	"github.com/cloo-solutions/aula/internal/domain"
)

// ReadinessChecker reports whether the document index is loaded.
type ReadinessChecker interface {
	Ready() bool
}

// RequireReady answers 503 INDEX_UNAVAILABLE until checker is ready.
func RequireReady(checker ReadinessChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !checker.Ready() {
				w.Header().Set("Retry-After", "30")
				api.HandleError(w, domain.IndexUnavailable("document index is not loaded", nil))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
