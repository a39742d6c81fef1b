package service

import (
	"golang.org/x/crypto/bcrypt"
)

// dummyHash is compared against when a handle is unknown so a failed lookup
// costs roughly the same time as a failed password check.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("store-api/dummy-secret"), bcrypt.DefaultCost)

// HashSecret returns the bcrypt hash of secret.
func HashSecret(secret string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifySecret reports whether presented matches hash. bcrypt compares in
// constant time.
func VerifySecret(hash, presented string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(presented)) == nil
}

func burnComparison(presented string) {
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(presented))
}
