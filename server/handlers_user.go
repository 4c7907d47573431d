package server

import (
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	autherrors "github.com/northstack/auth-service/internal/errors"
	"github.com/northstack/auth-service/users"
)

type usersResponse struct {
	Users []*users.User `json:"users"`
}

// ProfileHandler returns the authenticated principal's own record.
func (s *Server) ProfileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := UserIDFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "user id not found in request")
			return
		}

		user, err := s.users.GetByID(r.Context(), userID)
		if err != nil {
			if autherrors.Is(err, autherrors.ErrUserNotFound) {
				writeError(w, http.StatusNotFound, "user does not exist")
				return
			}
			log.Err(err).Str("user_id", userID).Msg("profile lookup failed")
			writeError(w, http.StatusInternalServerError, "server error")
			return
		}

		writeJSON(w, http.StatusOK, user)
	}
}

// ListUsersHandler lists principals. Admin only.
func (s *Server) ListUsersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

		all, err := s.users.List(r.Context(), offset, limit)
		if err != nil {
			log.Err(err).Msg("user list failed")
			writeError(w, http.StatusInternalServerError, "server error")
			return
		}

		writeJSON(w, http.StatusOK, usersResponse{Users: all})
	}
}

// GetUserHandler fetches a single principal by id. Admin only.
func (s *Server) GetUserHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")

		user, err := s.users.GetByID(r.Context(), id)
		if err != nil {
			if autherrors.Is(err, autherrors.ErrUserNotFound) {
				writeError(w, http.StatusNotFound, "user does not exist")
				return
			}
			log.Err(err).Str("user_id", id).Msg("user lookup failed")
			writeError(w, http.StatusInternalServerError, "server error")
			return
		}

		writeJSON(w, http.StatusOK, user)
	}
}
