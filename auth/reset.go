package auth

import (
	"context"

	"github.com/pkg/errors"

	"github.com/northstack/auth-service/password"
	"github.com/northstack/auth-service/resetcode"
	"github.com/northstack/auth-service/token"
)

// RequestReset starts the forgot-password flow: it generates a fresh
// 6-digit code, stores it as the user's only live challenge (replacing
// any prior one), and emails it. The code is also returned so callers can
// surface it through other out-of-band channels.
func (s *Service) RequestReset(ctx context.Context, email string) (string, string, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return "", "", err
	}

	code, err := resetcode.NewCode()
	if err != nil {
		return "", "", err
	}

	ttl := s.config.GetResetCodeExpiry()
	challenge := resetcode.Challenge{
		UserID:    user.ID,
		Code:      code,
		ExpiresAt: s.nowTime().Add(ttl),
	}
	if err := s.resets.Save(ctx, challenge, ttl); err != nil {
		return "", "", errors.Wrap(err, "Service.RequestReset Save")
	}

	if err := s.mailer.SendResetCode(ctx, email, code); err != nil {
		return "", "", errors.Wrap(err, "Service.RequestReset SendResetCode")
	}

	return user.ID, code, nil
}

// VerifyReset consumes the user's live challenge. On success the
// challenge is already deleted and a reset token scoping the password
// change to this user is returned. On failure the challenge is left
// intact (unless it was never there).
func (s *Service) VerifyReset(ctx context.Context, userID, enteredCode string) (string, error) {
	if err := s.resets.Consume(ctx, userID, enteredCode); err != nil {
		return "", err
	}

	resetToken, err := s.codec.Issue(token.KindReset, userID, s.config.GetResetTokenExpiry())
	if err != nil {
		return "", errors.Wrap(err, "Service.VerifyReset Issue")
	}
	return resetToken, nil
}

// ResetPassword consumes a reset token and replaces the user's
// credential. A missing, expired, or wrong-kind token fails closed.
func (s *Service) ResetPassword(ctx context.Context, resetToken, newPassword string) error {
	subject, err := s.codec.Verify(resetToken, token.KindReset)
	if err != nil {
		return err
	}

	hash, err := password.Hash(newPassword)
	if err != nil {
		return errors.Wrap(err, "Service.ResetPassword Hash")
	}

	if err := s.users.UpdatePassword(ctx, subject, hash); err != nil {
		return errors.Wrap(err, "Service.ResetPassword UpdatePassword")
	}
	return nil
}
