// Package resetcode persists password-reset challenges: one outstanding
// numeric code per user, expiring five minutes after issuance and consumed
// at most once.
package resetcode

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/pkg/errors"
)

// Challenge binds a one-time code to a user and an expiry.
type Challenge struct {
	UserID    string    `json:"user_id"`
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Store is the narrow contract the reset protocol depends on. Save
// overwrites any prior challenge for the user. Consume validates and
// deletes in one step: a matching, unexpired code is deleted before
// Consume returns nil, so two concurrent attempts with the same code
// yield at most one success. Mismatched or expired codes leave the
// challenge in place and return ErrChallengeMismatch or
// ErrChallengeExpired from internal/errors; a missing challenge returns
// ErrChallengeNotFound.
type Store interface {
	Save(ctx context.Context, challenge Challenge, ttl time.Duration) error
	Get(ctx context.Context, userID string) (*Challenge, error)
	Consume(ctx context.Context, userID, code string) error
}

const (
	codeMin  = 100000
	codeSpan = 900000
)

// NewCode generates a uniformly random 6-digit code in [100000, 999999].
// crypto/rand.Int rejection-samples, so no modulo bias.
func NewCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeSpan))
	if err != nil {
		return "", errors.Wrap(err, "resetcode.NewCode rand.Int")
	}
	return fmt.Sprintf("%d", n.Int64()+codeMin), nil
}
