package resetcode_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	autherrors "github.com/northstack/auth-service/internal/errors"
	"github.com/northstack/auth-service/resetcode"
)

func newRedisStore(t *testing.T, options ...resetcode.RedisStoreOption) *resetcode.RedisStore {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return resetcode.NewRedisStore(rdb, "rst", options...)
}

func TestRedisSaveAndGet(t *testing.T) {
	store := newRedisStore(t)
	ctx := context.Background()

	challenge := resetcode.Challenge{
		UserID:    "user-1",
		Code:      "123456",
		ExpiresAt: time.Now().Add(5 * time.Minute),
	}
	require.NoError(t, store.Save(ctx, challenge, 5*time.Minute))

	got, err := store.Get(ctx, "user-1")
	require.NoError(t, err)
	require.Equal(t, "123456", got.Code)

	_, err = store.Get(ctx, "user-2")
	require.ErrorIs(t, err, autherrors.ErrChallengeNotFound)
}

func TestRedisSaveOverwritesPriorChallenge(t *testing.T) {
	store := newRedisStore(t)
	ctx := context.Background()
	expiry := time.Now().Add(5 * time.Minute)

	require.NoError(t, store.Save(ctx, resetcode.Challenge{UserID: "user-1", Code: "111111", ExpiresAt: expiry}, 5*time.Minute))
	require.NoError(t, store.Save(ctx, resetcode.Challenge{UserID: "user-1", Code: "222222", ExpiresAt: expiry}, 5*time.Minute))

	// Only the second code is live; the first must no longer verify.
	require.ErrorIs(t, store.Consume(ctx, "user-1", "111111"), autherrors.ErrChallengeMismatch)
	require.NoError(t, store.Consume(ctx, "user-1", "222222"))
}

func TestRedisConsumeIsSingleUse(t *testing.T) {
	store := newRedisStore(t)
	ctx := context.Background()

	challenge := resetcode.Challenge{
		UserID:    "user-1",
		Code:      "123456",
		ExpiresAt: time.Now().Add(5 * time.Minute),
	}
	require.NoError(t, store.Save(ctx, challenge, 5*time.Minute))

	require.NoError(t, store.Consume(ctx, "user-1", "123456"))
	require.ErrorIs(t, store.Consume(ctx, "user-1", "123456"), autherrors.ErrChallengeNotFound)
}

func TestRedisConsumeMismatchLeavesChallenge(t *testing.T) {
	store := newRedisStore(t)
	ctx := context.Background()

	challenge := resetcode.Challenge{
		UserID:    "user-1",
		Code:      "123456",
		ExpiresAt: time.Now().Add(5 * time.Minute),
	}
	require.NoError(t, store.Save(ctx, challenge, 5*time.Minute))

	// A mistyped code must not burn the outstanding challenge.
	require.ErrorIs(t, store.Consume(ctx, "user-1", "654321"), autherrors.ErrChallengeMismatch)
	require.NoError(t, store.Consume(ctx, "user-1", "123456"))
}

func TestRedisConsumeExpired(t *testing.T) {
	now := time.Now()
	store := newRedisStore(t, resetcode.WithNowFunc(func() time.Time { return now }))
	ctx := context.Background()

	challenge := resetcode.Challenge{
		UserID:    "user-1",
		Code:      "123456",
		ExpiresAt: now.Add(5 * time.Minute),
	}
	require.NoError(t, store.Save(ctx, challenge, time.Hour))

	now = now.Add(5 * time.Minute)
	require.ErrorIs(t, store.Consume(ctx, "user-1", "123456"), autherrors.ErrChallengeExpired)

	// Expired is distinct from absent: the record is still there until the
	// store reaps it.
	_, err := store.Get(ctx, "user-1")
	require.NoError(t, err)
}

func TestRedisConsumeContentionIsNotChallengeNotFound(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	// The clock is read inside the watched transaction, so rewriting the key
	// from the hook aborts every attempt the way a concurrent writer would.
	clash := func() time.Time {
		val, err := mr.Get("rst:user-1")
		require.NoError(t, err)
		require.NoError(t, mr.Set("rst:user-1", val))
		return time.Now()
	}
	store := resetcode.NewRedisStore(rdb, "rst", resetcode.WithNowFunc(clash))
	ctx := context.Background()

	challenge := resetcode.Challenge{
		UserID:    "user-1",
		Code:      "123456",
		ExpiresAt: time.Now().Add(5 * time.Minute),
	}
	require.NoError(t, store.Save(ctx, challenge, 5*time.Minute))

	err = store.Consume(ctx, "user-1", "123456")
	require.ErrorIs(t, err, autherrors.ErrStoreUnavailable)
	require.NotErrorIs(t, err, autherrors.ErrChallengeNotFound)

	// The challenge survives a contended consume.
	_, err = store.Get(ctx, "user-1")
	require.NoError(t, err)
}

func TestRedisConsumeConcurrentSingleSuccess(t *testing.T) {
	store := newRedisStore(t)
	ctx := context.Background()

	challenge := resetcode.Challenge{
		UserID:    "user-1",
		Code:      "123456",
		ExpiresAt: time.Now().Add(5 * time.Minute),
	}
	require.NoError(t, store.Save(ctx, challenge, 5*time.Minute))

	const attempts = 8
	var wg sync.WaitGroup
	results := make([]error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = store.Consume(ctx, "user-1", "123456")
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range results {
		if err == nil {
			successes++
		} else {
			require.ErrorIs(t, err, autherrors.ErrChallengeNotFound)
		}
	}
	require.Equal(t, 1, successes)
}
