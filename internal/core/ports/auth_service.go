package ports

import (
	"context"

	"github.com/shopfront/store-api/internal/core/domain"
)

// RegisterInput carries the fields accepted at sign-up.
type RegisterInput struct {
	Handle         string
	Secret         string
	ContactAddress string
	Role           domain.Role
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	Login(ctx context.Context, handle, secret string) (string, *domain.User, error)
	Profile(ctx context.Context, userID string) (*domain.User, error)
}

// TokenIssuer signs identity tokens.
type TokenIssuer interface {
	Issue(subjectID string, role domain.Role) (string, error)
}

// TokenVerifier checks a token's signature and expiry and returns its identity.
type TokenVerifier interface {
	Verify(token string) (domain.Identity, error)
}
