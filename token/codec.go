package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	autherrors "github.com/northstack/auth-service/internal/errors"
)

// Kind identifies which credential a token string represents. The kind
// decides the signing secret and the clock budget that applies, and a
// verified token is only accepted where its kind is expected.
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
	KindReset   Kind = "reset"
)

// Secrets holds the two process-held signing secrets. Access and reset
// tokens share the access secret; refresh tokens are signed independently
// so a leaked access secret cannot forge refresh credentials.
type Secrets struct {
	Access  []byte
	Refresh []byte
}

// Claims is the payload carried by every token the codec issues. The
// subject is the only claim callers may trust; the kind claim exists so
// cross-kind presentation is rejected even when the signature verifies.
type Claims struct {
	Kind Kind `json:"kind"`
	jwt.RegisteredClaims
}

// Codec signs and verifies the service's bearer tokens. It holds no
// mutable state beyond the injected secrets and is safe for concurrent use.
type Codec struct {
	secrets Secrets
	nowFunc func() time.Time
}

// CodecOption defines a function type to modify the Codec instance.
type CodecOption func(*Codec)

// WithNowFunc sets the time source (primarily for testing expiry)
func WithNowFunc(now func() time.Time) CodecOption {
	return func(c *Codec) {
		c.nowFunc = now
	}
}

// NewCodec initializes a Codec with the given signing secrets.
func NewCodec(secrets Secrets, options ...CodecOption) (*Codec, error) {
	if len(secrets.Access) == 0 {
		return nil, errors.New("[NewCodec] access secret is required")
	}
	if len(secrets.Refresh) == 0 {
		return nil, errors.New("[NewCodec] refresh secret is required")
	}

	c := &Codec{
		secrets: secrets,
		nowFunc: time.Now,
	}

	for _, opt := range options {
		opt(c)
	}

	return c, nil
}

// Issue creates a signed token of the given kind for the subject, valid
// for ttl from now.
func (c *Codec) Issue(kind Kind, subject string, ttl time.Duration) (string, error) {
	secret, err := c.secretFor(kind)
	if err != nil {
		return "", err
	}

	now := c.nowFunc()
	claims := Claims{
		Kind: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.New().String(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", errors.Wrap(err, "Codec.Issue SignedString")
	}
	return signed, nil
}

// Verify parses tokenStr against the secret for the expected kind and
// returns the subject. Failures are normalized to the token error
// taxonomy; the raw parse error never crosses this boundary.
func (c *Codec) Verify(tokenStr string, expected Kind) (string, error) {
	secret, err := c.secretFor(expected)
	if err != nil {
		return "", err
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.nowFunc),
	)

	parsed, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", autherrors.ErrTokenExpired
		}
		return "", autherrors.ErrTokenMalformed
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return "", autherrors.ErrTokenMalformed
	}
	if claims.Kind != expected {
		return "", autherrors.ErrTokenKindMismatch
	}
	if claims.Subject == "" {
		return "", autherrors.ErrTokenMalformed
	}

	return claims.Subject, nil
}

func (c *Codec) secretFor(kind Kind) ([]byte, error) {
	switch kind {
	case KindAccess, KindReset:
		return c.secrets.Access, nil
	case KindRefresh:
		return c.secrets.Refresh, nil
	default:
		return nil, errors.Errorf("unknown token kind %q", kind)
	}
}
