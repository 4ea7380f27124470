package repository

import (
	"context"

	"github.com/sakif/users-api/internal/model"
)

// UserRepository is the record store behind the users API.
//
// GetByID and GetByEmail return apperror.ErrNotFound for a missing row.
// Create and Update return apperror.ErrConflict when the email unique
// constraint rejects the write. IDs arrive as the raw path segment; the
// implementation converts them and treats an unconvertible id as missing.
type UserRepository interface {
	List(ctx context.Context) ([]model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Create(ctx context.Context, user *model.User) error
	Update(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, id int64) error
}

// Store is a UserRepository that owns a connection pool.
type Store interface {
	UserRepository
	Ping(ctx context.Context) error
	Close() error
}
