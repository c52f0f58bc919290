// Package crypto provides cryptographic utilities for password hashing and verification.
package crypto

import (
	"golang.org/x/crypto/bcrypt"
)

// MaxPasswordLength is the longest input bcrypt hashes without truncation.
const MaxPasswordLength = 72

var cost = bcrypt.DefaultCost

// SetCost changes the bcrypt work factor used by HashPasswordAsBcrypt.
// Values outside bcrypt's range reset it to bcrypt.DefaultCost.
func SetCost(c int) {
	if c < bcrypt.MinCost || c > bcrypt.MaxCost {
		c = bcrypt.DefaultCost
	}
	cost = c
}

// HashPasswordAsBcrypt generates a salted bcrypt hash of the given password.
// Two calls with the same input return different hashes.
func HashPasswordAsBcrypt(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	return string(hash), err
}

// CheckPasswordHash reports whether password produced hash. The comparison
// is constant-time; a malformed hash yields false. Inputs longer than
// MaxPasswordLength never match, since bcrypt would ignore the excess.
func CheckPasswordHash(hash, password string) bool {
	if len(password) > MaxPasswordLength {
		return false
	}
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
