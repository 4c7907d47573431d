package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	autherrors "github.com/northstack/auth-service/internal/errors"
	"github.com/northstack/auth-service/users"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

// ContextKeyUserID stores the authenticated user ID
const ContextKeyUserID ContextKey = "user_id"

// UserIDFromContext returns the authenticated subject id set by the
// Authenticate middleware.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ContextKeyUserID).(string)
	return id, ok
}

func bearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}
	return parts[1]
}

// Authenticate is the per-request session state machine: a valid bearer
// access token wins outright; otherwise a valid refresh cookie mints a
// rotated token pair (new cookie, new Authorization response header)
// before the request proceeds. Rotation happens only on the refresh
// path. With no usable credential the request is rejected at the gate.
func (s *Server) Authenticate(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if tokenStr := bearerToken(r); tokenStr != "" {
			if subject, err := s.auth.VerifyAccess(tokenStr); err == nil {
				ctx := context.WithValue(r.Context(), ContextKeyUserID, subject)
				next(w, r.WithContext(ctx))
				return
			}
		}

		// Access token invalid or absent: fall back to the refresh cookie.
		if cookie, err := r.Cookie(refreshCookieName); err == nil && cookie.Value != "" {
			subject, pair, err := s.auth.Refresh(r.Context(), cookie.Value)
			if err == nil {
				s.setRefreshCookie(w, pair.RefreshToken)
				w.Header().Set("Authorization", "Bearer "+pair.AccessToken)

				ctx := context.WithValue(r.Context(), ContextKeyUserID, subject)
				next(w, r.WithContext(ctx))
				return
			}
		}

		writeError(w, http.StatusForbidden, "invalid or expired token")
	}
}

// RequireRoles permits continuation only when the authenticated user's
// role set intersects the required roles. It loads roles from the user
// repo and never re-verifies tokens. Chain after Authenticate.
func (s *Server) RequireRoles(roles ...users.RoleType) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			userID, ok := UserIDFromContext(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, "user id not found in request")
				return
			}

			user, err := s.users.GetByID(r.Context(), userID)
			if err != nil {
				if autherrors.Is(err, autherrors.ErrUserNotFound) {
					writeError(w, http.StatusForbidden, "you do not have permission to access this resource")
					return
				}
				log.Err(err).Str("user_id", userID).Msg("role lookup failed")
				writeError(w, http.StatusInternalServerError, "server error")
				return
			}

			if !user.HasAnyRole(roles...) {
				writeError(w, http.StatusForbidden, "you do not have permission to access this resource")
				return
			}

			next(w, r)
		}
	}
}
