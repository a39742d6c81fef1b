package ports

import (
	"context"

	"github.com/shopfront/store-api/internal/core/domain"
)

// UserRepository is the credential store. Lookups return domain.ErrUserNotFound
// when no record matches and Create returns domain.ErrDuplicateHandle when the
// handle is taken.
type UserRepository interface {
	FindByHandle(ctx context.Context, handle string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
}
