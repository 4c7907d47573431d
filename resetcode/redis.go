package resetcode

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	autherrors "github.com/northstack/auth-service/internal/errors"
)

var _ Store = (*RedisStore)(nil)

// RedisStore keeps one challenge per user under a prefixed key with a TTL
// matching the challenge expiry. Consume runs under WATCH so the
// read-compare-delete is atomic with respect to a concurrent consume of
// the same key.
type RedisStore struct {
	redis   redis.UniversalClient
	prefix  string
	nowFunc func() time.Time
}

// RedisStoreOption defines a function type to modify the RedisStore instance.
type RedisStoreOption func(*RedisStore)

// WithNowFunc sets the time source (primarily for testing expiry)
func WithNowFunc(now func() time.Time) RedisStoreOption {
	return func(s *RedisStore) {
		s.nowFunc = now
	}
}

func NewRedisStore(redisClient redis.UniversalClient, prefix string, options ...RedisStoreOption) *RedisStore {
	if prefix == "" {
		prefix = "rst"
	}
	s := &RedisStore{
		redis:   redisClient,
		prefix:  prefix,
		nowFunc: time.Now,
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

func (s *RedisStore) key(userID string) string {
	return s.prefix + ":" + userID
}

func (s *RedisStore) Save(ctx context.Context, challenge Challenge, ttl time.Duration) error {
	data, err := json.Marshal(challenge)
	if err != nil {
		return errors.Wrap(err, "RedisStore.Save marshal")
	}

	if err := s.redis.Set(ctx, s.key(challenge.UserID), data, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", autherrors.ErrStoreUnavailable, err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, userID string) (*Challenge, error) {
	data, err := s.redis.Get(ctx, s.key(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, autherrors.ErrChallengeNotFound
		}
		return nil, fmt.Errorf("%w: %v", autherrors.ErrStoreUnavailable, err)
	}

	var challenge Challenge
	if err := json.Unmarshal(data, &challenge); err != nil {
		return nil, errors.Wrap(err, "RedisStore.Get unmarshal")
	}
	return &challenge, nil
}

func (s *RedisStore) Consume(ctx context.Context, userID, code string) error {
	const maxRetries = 4
	key := s.key(userID)

	for i := 0; i < maxRetries; i++ {
		err := s.redis.Watch(ctx, func(tx *redis.Tx) error {
			data, err := tx.Get(ctx, key).Bytes()
			if err != nil {
				return err
			}

			var challenge Challenge
			if err := json.Unmarshal(data, &challenge); err != nil {
				return err
			}

			// Validation failures must not burn the challenge: the user
			// keeps their one outstanding code until it expires or matches.
			if subtle.ConstantTimeCompare([]byte(challenge.Code), []byte(code)) != 1 {
				return autherrors.ErrChallengeMismatch
			}
			if !s.nowFunc().Before(challenge.ExpiresAt) {
				return autherrors.ErrChallengeExpired
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Del(ctx, key)
				return nil
			})
			return err
		}, key)

		if err == redis.TxFailedErr {
			continue // key changed under us, retry
		}
		if err != nil {
			switch {
			case errors.Is(err, redis.Nil):
				return autherrors.ErrChallengeNotFound
			case errors.Is(err, autherrors.ErrChallengeMismatch),
				errors.Is(err, autherrors.ErrChallengeExpired):
				return err
			default:
				return fmt.Errorf("%w: %v", autherrors.ErrStoreUnavailable, err)
			}
		}
		return nil
	}

	return fmt.Errorf("%w: consume retries exhausted for user %s", autherrors.ErrStoreUnavailable, userID)
}
