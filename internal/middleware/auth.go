package middleware

import (
	"net/http"

	"github.com/s/investorAcademy/internal/apperr"
	"github.com/s/investorAcademy/internal/handlers"
)

// RequiredRole lets a request through only when the session user exists and
// holds one of roles. The resolved user id is put on the request context so
// handlers do not read the session again.
func RequiredRole(h *handlers.Handler, roles ...uint) func(next http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			userID, ok := h.GetAuthenticatedUserID(r)
			if !ok {
				h.WriteError(w, r, apperr.Newf(apperr.KindUnauthenticated, "middleware.role", "no active session"))
				return
			}

			user, err := h.Repo.Users.GetByID(r.Context(), nil, userID)
			if err != nil {
				if apperr.Is(err, apperr.KindNotFound) {
					err = apperr.Newf(apperr.KindUnauthenticated, "middleware.role", "session user %d no longer exists", userID)
				}
				h.WriteError(w, r, err)
				return
			}

			allowed := false
			for _, role := range roles {
				if user.RoleID == role {
					allowed = true
					break
				}
			}
			if !allowed {
				h.WriteError(w, r, apperr.Newf(apperr.KindForbidden, "middleware.role", "role %d may not %s %s", user.RoleID, r.Method, r.URL.Path))
				return
			}

			next.ServeHTTP(w, r.WithContext(handlers.WithUserID(r.Context(), userID)))
		}
	}
}
