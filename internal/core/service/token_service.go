package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/shopfront/store-api/internal/core/domain"
)

const defaultTokenTTL = 24 * time.Hour

// TokenConfig holds the process-wide signing settings.
type TokenConfig struct {
	Secret string
	TTL    time.Duration
	Issuer string
}

type tokenClaims struct {
	Role domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies HS256-signed identity tokens.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

func NewTokenService(cfg TokenConfig) *TokenService {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &TokenService{
		secret: []byte(cfg.Secret),
		ttl:    ttl,
		issuer: cfg.Issuer,
		now:    time.Now,
	}
}

// Issue signs a token for subjectID that expires after the configured TTL.
func (s *TokenService) Issue(subjectID string, role domain.Role) (string, error) {
	if subjectID == "" || !role.Valid() {
		return "", domain.ErrInvalidInput
	}

	now := s.now()
	claims := tokenClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.secret)
}

// Verify checks the signature first and only then the expiry and the
// embedded claims.
func (s *TokenService) Verify(token string) (domain.Identity, error) {
	if token == "" {
		return domain.Identity{}, domain.ErrMissingToken
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	var claims tokenClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		return domain.Identity{}, classifyTokenError(err)
	}
	if !parsed.Valid || claims.Subject == "" || !claims.Role.Valid() {
		return domain.Identity{}, domain.ErrInvalidToken
	}

	return domain.Identity{SubjectID: claims.Subject, Role: claims.Role}, nil
}

func classifyTokenError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return domain.ErrBadSignature
	case errors.Is(err, jwt.ErrTokenExpired):
		return domain.ErrExpiredToken
	default:
		return domain.ErrInvalidToken
	}
}
