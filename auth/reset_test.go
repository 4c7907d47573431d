package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	autherrors "github.com/northstack/auth-service/internal/errors"
	"github.com/northstack/auth-service/token"
)

func TestRequestResetUnknownEmail(t *testing.T) {
	f := setupTestFixture(t)

	_, _, err := f.service.RequestReset(context.Background(), "nobody@example.com")
	require.ErrorIs(t, err, autherrors.ErrUserNotFound)
}

func TestRequestResetEmailsCode(t *testing.T) {
	f := setupTestFixture(t)
	user := f.signupTestUser(t)

	userID, code, err := f.service.RequestReset(context.Background(), testUserEmail)
	require.NoError(t, err)
	require.Equal(t, user.ID, userID)
	require.Len(t, code, 6)
	require.Equal(t, code, f.mailer.resetCodes[testUserEmail])
}

func TestRequestResetFailsWhenEmailFails(t *testing.T) {
	f := setupTestFixture(t)
	f.signupTestUser(t)
	f.mailer.failNext = autherrors.ErrStoreUnavailable

	_, _, err := f.service.RequestReset(context.Background(), testUserEmail)
	require.Error(t, err)
}

func TestSecondRequestSupersedesFirst(t *testing.T) {
	f := setupTestFixture(t)
	f.signupTestUser(t)
	ctx := context.Background()

	userID, firstCode, err := f.service.RequestReset(ctx, testUserEmail)
	require.NoError(t, err)

	_, secondCode, err := f.service.RequestReset(ctx, testUserEmail)
	require.NoError(t, err)

	if firstCode != secondCode {
		_, err = f.service.VerifyReset(ctx, userID, firstCode)
		require.ErrorIs(t, err, autherrors.ErrChallengeMismatch)
	}

	_, err = f.service.VerifyReset(ctx, userID, secondCode)
	require.NoError(t, err)
}

func TestVerifyResetIsSingleUse(t *testing.T) {
	f := setupTestFixture(t)
	user := f.signupTestUser(t)
	ctx := context.Background()

	_, code, err := f.service.RequestReset(ctx, testUserEmail)
	require.NoError(t, err)

	resetToken, err := f.service.VerifyReset(ctx, user.ID, code)
	require.NoError(t, err)

	subject, err := f.codec.Verify(resetToken, token.KindReset)
	require.NoError(t, err)
	require.Equal(t, user.ID, subject)

	// The challenge was deleted before VerifyReset returned.
	_, err = f.service.VerifyReset(ctx, user.ID, code)
	require.ErrorIs(t, err, autherrors.ErrChallengeNotFound)
}

func TestVerifyResetWrongCodeKeepsChallenge(t *testing.T) {
	f := setupTestFixture(t)
	user := f.signupTestUser(t)
	ctx := context.Background()

	_, code, err := f.service.RequestReset(ctx, testUserEmail)
	require.NoError(t, err)

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}
	_, err = f.service.VerifyReset(ctx, user.ID, wrong)
	require.ErrorIs(t, err, autherrors.ErrChallengeMismatch)

	// The real code still works after a mistyped attempt.
	_, err = f.service.VerifyReset(ctx, user.ID, code)
	require.NoError(t, err)
}

func TestVerifyResetExpired(t *testing.T) {
	f := setupTestFixture(t)
	user := f.signupTestUser(t)
	ctx := context.Background()

	_, code, err := f.service.RequestReset(ctx, testUserEmail)
	require.NoError(t, err)

	f.now = f.now.Add(5 * time.Minute)
	_, err = f.service.VerifyReset(ctx, user.ID, code)
	require.ErrorIs(t, err, autherrors.ErrChallengeExpired)
}

func TestVerifyResetWithoutChallenge(t *testing.T) {
	f := setupTestFixture(t)
	user := f.signupTestUser(t)

	_, err := f.service.VerifyReset(context.Background(), user.ID, "123456")
	require.ErrorIs(t, err, autherrors.ErrChallengeNotFound)
}

func TestResetPasswordFlow(t *testing.T) {
	f := setupTestFixture(t)
	user := f.signupTestUser(t)
	ctx := context.Background()

	_, code, err := f.service.RequestReset(ctx, testUserEmail)
	require.NoError(t, err)

	resetToken, err := f.service.VerifyReset(ctx, user.ID, code)
	require.NoError(t, err)

	const newPassword = "NewPassword2"
	require.NoError(t, f.service.ResetPassword(ctx, resetToken, newPassword))

	_, _, err = f.service.Login(ctx, testUserEmail, testUserPassword)
	require.ErrorIs(t, err, autherrors.ErrInvalidCredentials)

	_, _, err = f.service.Login(ctx, testUserEmail, newPassword)
	require.NoError(t, err)
}

func TestResetPasswordRejectsAccessToken(t *testing.T) {
	f := setupTestFixture(t)
	f.signupTestUser(t)
	ctx := context.Background()

	_, pair, err := f.service.Login(ctx, testUserEmail, testUserPassword)
	require.NoError(t, err)

	err = f.service.ResetPassword(ctx, pair.AccessToken, "NewPassword2")
	require.ErrorIs(t, err, autherrors.ErrTokenKindMismatch)
}

func TestResetPasswordExpiredToken(t *testing.T) {
	f := setupTestFixture(t)
	user := f.signupTestUser(t)
	ctx := context.Background()

	_, code, err := f.service.RequestReset(ctx, testUserEmail)
	require.NoError(t, err)

	resetToken, err := f.service.VerifyReset(ctx, user.ID, code)
	require.NoError(t, err)

	f.now = f.now.Add(11 * time.Minute)
	err = f.service.ResetPassword(ctx, resetToken, "NewPassword2")
	require.ErrorIs(t, err, autherrors.ErrTokenExpired)
}
