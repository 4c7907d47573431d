package server

import (
	"net/http"

	"github.com/rs/zerolog/log"

	autherrors "github.com/northstack/auth-service/internal/errors"
	"github.com/northstack/auth-service/users"
)

type signupRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type verifyResetCodeRequest struct {
	UserID      string `json:"user_id"`
	EnteredCode string `json:"entered_code"`
}

type resetPasswordRequest struct {
	NewPassword string `json:"new_password"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type signupResponse struct {
	Message string      `json:"message"`
	User    *users.User `json:"user"`
}

// SignupHandler creates a new principal and issues its first token pair.
func (s *Server) SignupHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req signupRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Email == "" || req.Username == "" {
			writeError(w, http.StatusBadRequest, "email and username are required")
			return
		}
		if err := users.ValidatePasswordStrength(req.Password); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		user, pair, err := s.auth.Signup(r.Context(), req.Email, req.Username, req.Password)
		if err != nil {
			if autherrors.Is(err, autherrors.ErrDuplicateUser) {
				writeError(w, http.StatusConflict, "user already exists with this email")
				return
			}
			log.Err(err).Str("email", req.Email).Msg("signup failed")
			writeError(w, http.StatusInternalServerError, "can't create user")
			return
		}

		s.setRefreshCookie(w, pair.RefreshToken)
		w.Header().Set("Authorization", "Bearer "+pair.AccessToken)
		writeJSON(w, http.StatusCreated, signupResponse{Message: "user created successfully", User: user})
	}
}

// LoginHandler verifies the credential and issues a token pair.
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		_, pair, err := s.auth.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			if autherrors.Is(err, autherrors.ErrInvalidCredentials) {
				writeError(w, http.StatusUnauthorized, "invalid email or password")
				return
			}
			log.Err(err).Str("email", req.Email).Msg("login failed")
			writeError(w, http.StatusInternalServerError, "can't login user")
			return
		}

		s.setRefreshCookie(w, pair.RefreshToken)
		w.Header().Set("Authorization", "Bearer "+pair.AccessToken)
		writeJSON(w, http.StatusOK, messageResponse{Message: "user logged in successfully"})
	}
}

// LogoutHandler clears the refresh cookie. The access token is the
// client's to discard; there is no server-side revocation.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.clearRefreshCookie(w)
		writeJSON(w, http.StatusOK, messageResponse{Message: "logged out successfully"})
	}
}

// RefreshHandler rotates the token pair presented via the refresh cookie.
func (s *Server) RefreshHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(refreshCookieName)
		if err != nil || cookie.Value == "" {
			writeError(w, http.StatusUnauthorized, "can't verify refresh token")
			return
		}

		_, pair, err := s.auth.Refresh(r.Context(), cookie.Value)
		if err != nil {
			switch {
			case autherrors.Is(err, autherrors.ErrTokenExpired),
				autherrors.Is(err, autherrors.ErrTokenMalformed),
				autherrors.Is(err, autherrors.ErrTokenKindMismatch):
				writeError(w, http.StatusUnauthorized, "can't verify refresh token")
			default:
				log.Err(err).Msg("token refresh failed")
				writeError(w, http.StatusInternalServerError, "server error")
			}
			return
		}

		s.setRefreshCookie(w, pair.RefreshToken)
		w.Header().Set("Authorization", "Bearer "+pair.AccessToken)
		writeJSON(w, http.StatusOK, messageResponse{Message: "successfully refreshed tokens"})
	}
}

// ForgotPasswordHandler issues a reset challenge and emails the code.
func (s *Server) ForgotPasswordHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req forgotPasswordRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		if _, _, err := s.auth.RequestReset(r.Context(), req.Email); err != nil {
			if autherrors.Is(err, autherrors.ErrUserNotFound) {
				writeError(w, http.StatusNotFound, "user does not exist")
				return
			}
			log.Err(err).Str("email", req.Email).Msg("forgot password failed")
			writeError(w, http.StatusInternalServerError, "can't process forgot password request")
			return
		}

		writeJSON(w, http.StatusOK, messageResponse{Message: "reset code sent to your email"})
	}
}

// VerifyResetCodeHandler validates the challenge and, on success, places
// a reset token cookie scoping the subsequent password change.
func (s *Server) VerifyResetCodeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req verifyResetCodeRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		resetToken, err := s.auth.VerifyReset(r.Context(), req.UserID, req.EnteredCode)
		if err != nil {
			switch {
			case autherrors.Is(err, autherrors.ErrChallengeNotFound):
				writeError(w, http.StatusNotFound, "no reset code found")
			case autherrors.Is(err, autherrors.ErrChallengeMismatch),
				autherrors.Is(err, autherrors.ErrChallengeExpired):
				writeError(w, http.StatusBadRequest, "invalid or expired reset code")
			default:
				log.Err(err).Str("user_id", req.UserID).Msg("verify reset code failed")
				writeError(w, http.StatusInternalServerError, "can't verify reset code")
			}
			return
		}

		s.setResetCookie(w, resetToken)
		writeJSON(w, http.StatusOK, messageResponse{Message: "reset code verified"})
	}
}

// ResetPasswordHandler consumes the reset token cookie and updates the
// credential, then clears the cookie.
func (s *Server) ResetPasswordHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(resetCookieName)
		if err != nil || cookie.Value == "" {
			writeError(w, http.StatusUnauthorized, "reset token not found or expired")
			return
		}

		var req resetPasswordRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := users.ValidatePasswordStrength(req.NewPassword); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		if err := s.auth.ResetPassword(r.Context(), cookie.Value, req.NewPassword); err != nil {
			switch {
			case autherrors.Is(err, autherrors.ErrTokenExpired),
				autherrors.Is(err, autherrors.ErrTokenMalformed),
				autherrors.Is(err, autherrors.ErrTokenKindMismatch):
				writeError(w, http.StatusUnauthorized, "invalid or expired reset token")
			case autherrors.Is(err, autherrors.ErrUserNotFound):
				writeError(w, http.StatusNotFound, "user does not exist")
			default:
				log.Err(err).Msg("reset password failed")
				writeError(w, http.StatusInternalServerError, "server error")
			}
			return
		}

		s.clearResetCookie(w)
		writeJSON(w, http.StatusOK, messageResponse{Message: "password reset successfully"})
	}
}
