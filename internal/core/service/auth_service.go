package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/shopfront/store-api/internal/core/domain"
	"github.com/shopfront/store-api/internal/core/ports"
)

// AuthService implements registration and login.
type AuthService struct {
	repo             ports.UserRepository
	tokens           ports.TokenIssuer
	allowAdminSignup bool
	log              zerolog.Logger
}

// AuthOption customises an AuthService.
type AuthOption func(*AuthService)

// WithAdminSignup lets Register create admin accounts.
func WithAdminSignup(allowed bool) AuthOption {
	return func(s *AuthService) { s.allowAdminSignup = allowed }
}

// WithAuthLogger attaches a logger.
func WithAuthLogger(log zerolog.Logger) AuthOption {
	return func(s *AuthService) { s.log = log }
}

func NewAuthService(repo ports.UserRepository, tokens ports.TokenIssuer, opts ...AuthOption) *AuthService {
	s := &AuthService{repo: repo, tokens: tokens, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	handle := strings.TrimSpace(in.Handle)
	if handle == "" || in.Secret == "" || strings.TrimSpace(in.ContactAddress) == "" {
		return nil, domain.ErrInvalidInput
	}

	role := in.Role
	if role == "" {
		role = domain.RoleUser
	}
	if !role.Valid() {
		return nil, domain.ErrInvalidInput
	}
	if role == domain.RoleAdmin && !s.allowAdminSignup {
		return nil, domain.ErrForbidden
	}

	return s.create(ctx, handle, in.Secret, strings.TrimSpace(in.ContactAddress), role)
}

func (s *AuthService) Login(ctx context.Context, handle, secret string) (string, *domain.User, error) {
	if handle == "" || secret == "" {
		return "", nil, domain.ErrBadCredentials
	}

	user, err := s.repo.FindByHandle(ctx, handle)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			burnComparison(secret)
		}
		return "", nil, err
	}

	if !VerifySecret(user.PasswordHash, secret) {
		s.log.Info().Str("handle", handle).Msg("login rejected")
		return "", nil, domain.ErrBadCredentials
	}

	token, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return "", nil, err
	}

	return token, user, nil
}

// Profile returns the stored account for userID.
func (s *AuthService) Profile(ctx context.Context, userID string) (*domain.User, error) {
	return s.repo.FindByID(ctx, userID)
}

// EnsureAdmin creates an admin account for handle unless one already exists.
func (s *AuthService) EnsureAdmin(ctx context.Context, handle, secret, email string) error {
	if handle == "" || secret == "" {
		return domain.ErrInvalidInput
	}
	if _, err := s.repo.FindByHandle(ctx, handle); err == nil {
		return nil
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return err
	}

	_, err := s.create(ctx, handle, secret, email, domain.RoleAdmin)
	if errors.Is(err, domain.ErrDuplicateHandle) {
		return nil
	}
	return err
}

func (s *AuthService) create(ctx context.Context, handle, secret, email string, role domain.Role) (*domain.User, error) {
	hash, err := HashSecret(secret)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		Handle:       handle,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("user_id", created.ID).Str("role", string(role)).Msg("user registered")
	return created, nil
}
