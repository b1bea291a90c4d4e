package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const (
	pbkdf2Prefix     = "pbkdf2_sha256"
	saltBytes        = 32
	keyBytes         = 32
	legacyIterations = 100000

	// DefaultPasswordIterations is the PBKDF2 work factor for new hashes.
	DefaultPasswordIterations = 600000
)

var errMalformedHash = errors.New("malformed password hash")

// PasswordHasher hashes and checks passwords with PBKDF2-HMAC-SHA256.
// New hashes are encoded as pbkdf2_sha256$<iterations>$<salt hex>$<key hex>.
// Hashes in the older "<salt hex>:<key hex>" form are verified with 100000 iterations.
type PasswordHasher struct {
	Iterations int
}

// NewPasswordHasher returns a hasher using the default work factor.
func NewPasswordHasher() *PasswordHasher {
	return &PasswordHasher{Iterations: DefaultPasswordIterations}
}

// Hash derives a new salted hash for password.
func (h *PasswordHasher) Hash(password string) (string, error) {
	iter := h.Iterations
	if iter <= 0 {
		iter = DefaultPasswordIterations
	}
	salt := make([]byte, saltBytes)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to read salt: %w", err)
	}
	key := pbkdf2.Key([]byte(password), salt, iter, keyBytes, sha256.New)
	return fmt.Sprintf("%s$%d$%s$%s", pbkdf2Prefix, iter, hex.EncodeToString(salt), hex.EncodeToString(key)), nil
}

// Verify reports whether password matches encoded. Malformed hashes never match.
func (h *PasswordHasher) Verify(password, encoded string) bool {
	salt, want, iter, err := decodeHash(encoded)
	if err != nil {
		return false
	}
	got := pbkdf2.Key([]byte(password), salt, iter, len(want), sha256.New)
	return subtle.ConstantTimeCompare(got, want) == 1
}

func decodeHash(encoded string) (salt, key []byte, iter int, err error) {
	var saltHex, keyHex string
	if rest, ok := strings.CutPrefix(encoded, pbkdf2Prefix+"$"); ok {
		parts := strings.Split(rest, "$")
		if len(parts) != 3 {
			return nil, nil, 0, errMalformedHash
		}
		iter, err = strconv.Atoi(parts[0])
		if err != nil || iter <= 0 {
			return nil, nil, 0, errMalformedHash
		}
		saltHex, keyHex = parts[1], parts[2]
	} else {
		var found bool
		saltHex, keyHex, found = strings.Cut(encoded, ":")
		if !found {
			return nil, nil, 0, errMalformedHash
		}
		iter = legacyIterations
	}
	if salt, err = hex.DecodeString(saltHex); err != nil || len(salt) == 0 {
		return nil, nil, 0, errMalformedHash
	}
	if key, err = hex.DecodeString(keyHex); err != nil || len(key) == 0 {
		return nil, nil, 0, errMalformedHash
	}
	return salt, key, iter, nil
}
