package users

import "context"

// UserRepo is the narrow CRUD contract the auth core depends on. Lookups
// for missing users return errors.ErrUserNotFound from internal/errors.
type UserRepo interface {
	Upsert(ctx context.Context, user *User) error
	Delete(ctx context.Context, email string) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	List(ctx context.Context, offset, limit int) ([]*User, error)
}
