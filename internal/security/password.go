package security

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// bcryptCost defines the bcrypt work factor.
const bcryptCost = 12

// MinPasswordLength is the shortest password accepted for new credentials.
const MinPasswordLength = 8

// ErrWeakPassword is returned for passwords shorter than MinPasswordLength.
var ErrWeakPassword = errors.New("password too short")

// HashPassword hashes a plaintext password using bcrypt.
func HashPassword(password string) (string, error) {
	if len(password) < MinPasswordLength {
		return "", ErrWeakPassword
	}
	return HashPasswordUnchecked(password)
}

// HashPasswordUnchecked hashes password without the length rule. Only used when
// re-hashing an already accepted legacy credential.
func HashPasswordUnchecked(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// PasswordChecker verifies stored hashes. Salt is only used for legacy SHA-256 hashes
// imported from the previous tool.
type PasswordChecker struct {
	LegacySalt string
}

// Check compares a stored hash with a plaintext password. needsUpgrade is true when the
// hash is a legacy SHA-256 digest that should be replaced by a bcrypt hash.
func (p PasswordChecker) Check(hash, password string) (ok bool, needsUpgrade bool) {
	if IsLegacyHash(hash) {
		if p.LegacySalt == "" {
			return false, false
		}
		sum := sha256.Sum256([]byte(password + p.LegacySalt))
		expected := hex.EncodeToString(sum[:])
		match := subtle.ConstantTimeCompare([]byte(strings.ToLower(hash)), []byte(expected)) == 1
		return match, match
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil, false
}

// IsLegacyHash reports whether hash looks like a hex SHA-256 digest.
func IsLegacyHash(hash string) bool {
	if len(hash) != sha256.Size*2 {
		return false
	}
	_, err := hex.DecodeString(hash)
	return err == nil
}
