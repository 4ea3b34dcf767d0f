package repository

import (
	"context"
	"errors"

	"github.com/oksasatya/user-account-service/internal/domain/entity"
)

var (
	// ErrNotFound is returned when no record matches a lookup.
	ErrNotFound = errors.New("user not found")
	// ErrDuplicateEmail is returned when the storage unique index on email rejects a write.
	ErrDuplicateEmail = errors.New("email already stored")
)

// UserRepository defines the persistence operations for user records.
// Lookups by id and listing exclude soft-deleted rows; FindByEmail includes
// them only when includeDeleted is set.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string, includeDeleted bool) (*entity.User, error)
	FindByID(ctx context.Context, id string) (*entity.User, error)
	Create(ctx context.Context, u *entity.User) error
	Save(ctx context.Context, u *entity.User) error
	SoftDelete(ctx context.Context, u *entity.User) error
	ListAll(ctx context.Context) ([]*entity.User, error)
}
