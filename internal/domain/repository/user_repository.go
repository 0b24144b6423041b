package repository

import (
	"context"
	"errors"

	"github.com/oksasatya/go-user-orders-api/internal/domain/entity"
)

var (
	// ErrNotFound is returned when no active user matches the key.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateKey is returned when a write collides with a unique field
	// (userId, username or email).
	ErrDuplicateKey = errors.New("duplicate key")
)

// UserRepository defines the persistence operations for users.
// Every read only sees active users and never returns the password hash.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	FindByUserID(ctx context.Context, userID int64) (*entity.User, error)
	FindAll(ctx context.Context) ([]entity.User, error)
	Update(ctx context.Context, userID int64, patch entity.UserPatch) (*entity.User, error)
	Delete(ctx context.Context, userID int64) (int64, error)
	OrdersByUserID(ctx context.Context, userID int64) ([]entity.Order, error)
	TotalOrderPrice(ctx context.Context, userID int64) (float64, error)
}
