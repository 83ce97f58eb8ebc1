package crypto

import (
	"crypto/rand"
	"crypto/subtle"
	"errors"

	"golang.org/x/crypto/argon2"
)

var ErrEmptyPassword = errors.New("password cannot be empty")

// Argon2Params defines parameters for Argon2id credential hashing
type Argon2Params struct {
	Memory      uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultParams sets secure defaults for Argon2
var DefaultParams = Argon2Params{
	Memory:      64 * 1024, // 64 MB
	Iterations:  3,
	Parallelism: 4,
	SaltLength:  16,
	KeyLength:   32, // 256-bit key
}

// HashPassword derives the stored credential for password under a fresh
// random salt. It returns the hash followed by the salt.
func HashPassword(password string, params Argon2Params) ([]byte, []byte, error) {
	if password == "" {
		return nil, nil, ErrEmptyPassword
	}

	salt := make([]byte, params.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, nil, err
	}

	return deriveKey(password, salt, params), salt, nil
}

// VerifyPassword reports whether password matches storedKey under salt.
func VerifyPassword(password string, salt, storedKey []byte, params Argon2Params) (bool, error) {
	if len(password) == 0 || len(salt) == 0 || len(storedKey) == 0 {
		return false, errors.New("invalid input parameters")
	}

	key := deriveKey(password, salt, params)
	defer ClearBytes(key)

	return subtle.ConstantTimeCompare(key, storedKey) == 1, nil
}

func deriveKey(password string, salt []byte, params Argon2Params) []byte {
	return argon2.IDKey(
		[]byte(password),
		salt,
		params.Iterations,
		params.Memory,
		params.Parallelism,
		params.KeyLength,
	)
}
