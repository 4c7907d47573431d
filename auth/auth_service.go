// Package auth implements the credential lifecycle: signup and login
// issue token pairs, refresh rotates them, and the reset flow proves email
// ownership before a password change.
package auth

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/northstack/auth-service/internal/config"
	autherrors "github.com/northstack/auth-service/internal/errors"
	"github.com/northstack/auth-service/mailer"
	"github.com/northstack/auth-service/password"
	"github.com/northstack/auth-service/resetcode"
	"github.com/northstack/auth-service/token"
	"github.com/northstack/auth-service/users"
)

// TokenPair is the result of a successful authentication: a short-lived
// access token and the refresh token that can mint the next pair.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Service coordinates the user repo, the reset-code store, the token
// codec, and the mailer. It holds no per-request state.
type Service struct {
	users   users.UserRepo
	resets  resetcode.Store
	codec   *token.Codec
	mailer  mailer.Mailer
	config  config.TokenConfig
	nowTime func() time.Time
}

// ServiceOption defines a function type to modify the Service instance.
type ServiceOption func(*Service)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ServiceOption {
	return func(s *Service) {
		s.nowTime = nowFunc
	}
}

// NewService initializes a new Service with required dependencies.
func NewService(
	userRepo users.UserRepo,
	resetStore resetcode.Store,
	codec *token.Codec,
	m mailer.Mailer,
	cfg config.TokenConfig,
	options ...ServiceOption,
) (*Service, error) {
	if userRepo == nil {
		return nil, errors.New("[NewService] user repo is required")
	}
	if resetStore == nil {
		return nil, errors.New("[NewService] reset store is required")
	}
	if codec == nil {
		return nil, errors.New("[NewService] token codec is required")
	}
	if m == nil {
		return nil, errors.New("[NewService] mailer is required")
	}
	if cfg == nil {
		return nil, errors.New("[NewService] token config is required")
	}

	s := &Service{
		users:   userRepo,
		resets:  resetStore,
		codec:   codec,
		mailer:  m,
		config:  cfg,
		nowTime: time.Now,
	}

	for _, opt := range options {
		opt(s)
	}

	return s, nil
}

// Signup creates a new principal and issues its first token pair. The
// welcome email is best-effort: a delivery failure is logged and the
// signup still succeeds.
func (s *Service) Signup(ctx context.Context, email, username, plaintext string) (*users.User, *TokenPair, error) {
	_, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		return nil, nil, autherrors.ErrDuplicateUser
	}
	if !errors.Is(err, autherrors.ErrUserNotFound) {
		return nil, nil, errors.Wrap(err, "Service.Signup GetByEmail")
	}

	hash, err := password.Hash(plaintext)
	if err != nil {
		return nil, nil, errors.Wrap(err, "Service.Signup Hash")
	}

	user := &users.User{
		Email:        email,
		Username:     username,
		PasswordHash: hash,
		Roles:        []users.RoleType{users.RoleUser},
		DateJoined:   s.nowTime(),
	}
	if err := s.users.Upsert(ctx, user); err != nil {
		return nil, nil, errors.Wrap(err, "Service.Signup Upsert")
	}

	if err := s.mailer.SendWelcome(ctx, email, username); err != nil {
		log.Err(err).Str("email", email).Msg("failed to send welcome email")
	}

	pair, err := s.IssuePair(user.ID)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// Login verifies the credential and issues a fresh token pair. Unknown
// email and wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, plaintext string) (*users.User, *TokenPair, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, autherrors.ErrUserNotFound) {
			return nil, nil, autherrors.ErrInvalidCredentials
		}
		return nil, nil, errors.Wrap(err, "Service.Login GetByEmail")
	}

	ok, err := password.Verify(plaintext, user.PasswordHash)
	if err != nil {
		return nil, nil, errors.Wrap(err, "Service.Login Verify")
	}
	if !ok {
		return nil, nil, autherrors.ErrInvalidCredentials
	}

	pair, err := s.IssuePair(user.ID)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// Refresh rotates the token pair: a valid refresh token yields a new
// access token and a new refresh token. The presented refresh token is
// never echoed back.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, *TokenPair, error) {
	subject, err := s.codec.Verify(refreshToken, token.KindRefresh)
	if err != nil {
		return "", nil, err
	}

	pair, err := s.IssuePair(subject)
	if err != nil {
		return "", nil, err
	}
	return subject, pair, nil
}

// IssuePair mints an access/refresh pair for the subject using the
// configured clock budgets.
func (s *Service) IssuePair(subject string) (*TokenPair, error) {
	accessToken, err := s.codec.Issue(token.KindAccess, subject, s.config.GetAccessTokenExpiry())
	if err != nil {
		return nil, errors.Wrap(err, "Service.IssuePair access")
	}

	refreshToken, err := s.codec.Issue(token.KindRefresh, subject, s.config.GetRefreshTokenExpiry())
	if err != nil {
		return nil, errors.Wrap(err, "Service.IssuePair refresh")
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// VerifyAccess checks a bearer access token and returns the subject.
func (s *Service) VerifyAccess(tokenStr string) (string, error) {
	return s.codec.Verify(tokenStr, token.KindAccess)
}
