package domain

import "time"

// Role is the authorization level carried by a user and embedded in tokens.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// ParseRole converts s into a Role, defaulting to RoleUser when s is empty.
func ParseRole(s string) (Role, error) {
	if s == "" {
		return RoleUser, nil
	}
	r := Role(s)
	if !r.Valid() {
		return "", ErrInvalidInput
	}
	return r, nil
}

// User models an account in the credential store.
type User struct {
	ID           string    `json:"id"`
	Handle       string    `json:"handle"`
	Email        string    `json:"contactAddress"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Identity is the verified payload of a token.
type Identity struct {
	SubjectID string `json:"userId"`
	Role      Role   `json:"role"`
}
