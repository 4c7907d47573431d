package redisrepo

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	autherrors "github.com/northstack/auth-service/internal/errors"
	"github.com/northstack/auth-service/users"
)

var _ users.UserRepo = (*UserRepo)(nil)

// UserRepo persists user records in Redis. Records are stored as JSON
// under an id key, with a secondary email index and a membership set for
// listing.
type UserRepo struct {
	redis  redis.UniversalClient
	prefix string
}

func NewUserRepo(redisClient redis.UniversalClient, prefix string) *UserRepo {
	if prefix == "" {
		prefix = "usr"
	}
	return &UserRepo{
		redis:  redisClient,
		prefix: prefix,
	}
}

func (r *UserRepo) idKey(id string) string {
	return r.prefix + ":id:" + id
}

func (r *UserRepo) emailKey(email string) string {
	return r.prefix + ":email:" + email
}

func (r *UserRepo) allKey() string {
	return r.prefix + ":all"
}

// record is the stored shape; the public User type never serializes the
// password hash, so persistence needs its own envelope.
type record struct {
	users.User
	PasswordHash string `json:"password_hash"`
}

func (r *UserRepo) Upsert(ctx context.Context, user *users.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}

	data, err := json.Marshal(record{User: *user, PasswordHash: user.PasswordHash})
	if err != nil {
		return errors.Wrap(err, "UserRepo.Upsert marshal")
	}

	_, err = r.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, r.idKey(user.ID), data, 0)
		pipe.Set(ctx, r.emailKey(user.Email), user.ID, 0)
		pipe.SAdd(ctx, r.allKey(), user.ID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", autherrors.ErrStoreUnavailable, err)
	}
	return nil
}

func (r *UserRepo) Delete(ctx context.Context, email string) error {
	user, err := r.GetByEmail(ctx, email)
	if err != nil {
		return err
	}

	_, err = r.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, r.idKey(user.ID))
		pipe.Del(ctx, r.emailKey(email))
		pipe.SRem(ctx, r.allKey(), user.ID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", autherrors.ErrStoreUnavailable, err)
	}
	return nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*users.User, error) {
	id, err := r.redis.Get(ctx, r.emailKey(email)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, autherrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("%w: %v", autherrors.ErrStoreUnavailable, err)
	}
	return r.GetByID(ctx, id)
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (*users.User, error) {
	data, err := r.redis.Get(ctx, r.idKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, autherrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("%w: %v", autherrors.ErrStoreUnavailable, err)
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, errors.Wrap(err, "UserRepo.GetByID unmarshal")
	}

	user := rec.User
	user.PasswordHash = rec.PasswordHash
	return &user, nil
}

func (r *UserRepo) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	user, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	user.PasswordHash = passwordHash
	return r.Upsert(ctx, user)
}

func (r *UserRepo) List(ctx context.Context, offset, limit int) ([]*users.User, error) {
	ids, err := r.redis.SMembers(ctx, r.allKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", autherrors.ErrStoreUnavailable, err)
	}

	all := make([]*users.User, 0, len(ids))
	for _, id := range ids {
		user, err := r.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, autherrors.ErrUserNotFound) {
				continue // removed between SMembers and Get
			}
			return nil, err
		}
		all = append(all, user)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Email < all[j].Email })

	if offset < 0 {
		offset = 0
	}
	if offset >= len(all) {
		return []*users.User{}, nil
	}
	end := len(all)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return all[offset:end], nil
}
