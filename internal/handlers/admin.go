package handlers

import (
	"net/http"

	"github.com/forumhub/apiserver/internal/logging"
	"github.com/forumhub/apiserver/internal/services"
)

// RequireAdmin admits only identities whose stored role is admin. It must
// be composed after RequireAuth.
func RequireAdmin(policy *services.AccessPolicy, log logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			email, _ := identityFromContext(r.Context())
			if err := policy.RequireAdmin(r.Context(), email); err != nil {
				writeServiceError(w, r, log, err, "user not found")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
