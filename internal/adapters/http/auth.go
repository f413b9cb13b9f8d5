package httpadapter

import (
	"net/http"
	"strings"
)

// GuestUserID identifies unauthenticated requests when guest access is on.
const GuestUserID = "guest"

type userHandler func(w http.ResponseWriter, r *http.Request, userID string)

func (rt *Router) requireUser(next userHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := strings.TrimSpace(r.Header.Get("Authorization"))
		if header == "" {
			if rt.opts.AllowGuestAccess {
				next(w, r, GuestUserID)
				return
			}
			if rt.deps.Metrics != nil {
				rt.deps.Metrics.RecordAuthFailure(serviceName, "missing_token")
			}
			writeJSON(w, http.StatusUnauthorized, errorBody("authorization required"))
			return
		}

		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			writeJSON(w, http.StatusUnauthorized, errorBody("authorization header must be 'Bearer <token>'"))
			return
		}

		userID, err := rt.deps.Tokens.Parse(strings.TrimSpace(token))
		if err != nil {
			if rt.deps.Metrics != nil {
				rt.deps.Metrics.RecordAuthFailure(serviceName, "invalid_token")
			}
			writeJSON(w, http.StatusUnauthorized, errorBody("invalid or expired token"))
			return
		}
		next(w, r, userID)
	})
}
