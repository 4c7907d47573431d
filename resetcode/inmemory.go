package resetcode

import (
	"context"
	"crypto/subtle"
	"sync"
	"time"

	autherrors "github.com/northstack/auth-service/internal/errors"
)

var _ Store = (*InMemoryStore)(nil)

// InMemoryStore is a map-backed Store for tests and single-process
// deployments. The mutex makes consume atomic for concurrent attempts.
type InMemoryStore struct {
	challenges map[string]Challenge
	lock       sync.Mutex
	nowFunc    func() time.Time
}

// InMemoryStoreOption defines a function type to modify the InMemoryStore instance.
type InMemoryStoreOption func(*InMemoryStore)

// WithInMemoryNowFunc sets the time source (primarily for testing expiry)
func WithInMemoryNowFunc(now func() time.Time) InMemoryStoreOption {
	return func(s *InMemoryStore) {
		s.nowFunc = now
	}
}

func NewInMemoryStore(options ...InMemoryStoreOption) *InMemoryStore {
	s := &InMemoryStore{
		challenges: make(map[string]Challenge),
		nowFunc:    time.Now,
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

func (s *InMemoryStore) Save(ctx context.Context, challenge Challenge, ttl time.Duration) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.challenges[challenge.UserID] = challenge
	return nil
}

func (s *InMemoryStore) Get(ctx context.Context, userID string) (*Challenge, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	challenge, ok := s.challenges[userID]
	if !ok {
		return nil, autherrors.ErrChallengeNotFound
	}
	return &challenge, nil
}

func (s *InMemoryStore) Consume(ctx context.Context, userID, code string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	challenge, ok := s.challenges[userID]
	if !ok {
		return autherrors.ErrChallengeNotFound
	}
	if subtle.ConstantTimeCompare([]byte(challenge.Code), []byte(code)) != 1 {
		return autherrors.ErrChallengeMismatch
	}
	if !s.nowFunc().Before(challenge.ExpiresAt) {
		return autherrors.ErrChallengeExpired
	}

	delete(s.challenges, userID)
	return nil
}
