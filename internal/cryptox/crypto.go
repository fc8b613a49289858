// Package cryptox hashes and verifies user secrets (login passwords and PINs).
//
// Stored values have the form "<salt>:<key>", where salt is 16 random bytes in
// hex and key is the hex-encoded 64-byte scrypt derivation of the secret
// using the salt string as KDF salt.
package cryptox

import (
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/dmitrijs2005/budgetkeeper/internal/common"
	"golang.org/x/crypto/scrypt"
)

const (
	saltSize  = 16
	keyLength = 64
	separator = ":"

	scryptN = 16384
	scryptR = 8
	scryptP = 1
)

// ErrMalformedHash is returned by VerifySecret when the stored value cannot be parsed.
var ErrMalformedHash = errors.New("malformed secret hash")

// DeriveKey runs scrypt over secret with the given salt.
func DeriveKey(secret, salt []byte) ([]byte, error) {
	return scrypt.Key(secret, salt, scryptN, scryptR, scryptP, keyLength)
}

// HashSecret returns a salted scrypt hash suitable for storage.
// Hashing the same secret twice yields different values.
func HashSecret(secret string) (string, error) {
	salt, err := common.MakeRandHexString(saltSize)
	if err != nil {
		return "", err
	}

	key, err := DeriveKey([]byte(secret), []byte(salt))
	if err != nil {
		return "", err
	}

	return salt + separator + hex.EncodeToString(key), nil
}

// VerifySecret recomputes the derivation with the stored salt and compares
// the result in constant time.
func VerifySecret(secret, stored string) (bool, error) {
	salt, keyHex, ok := strings.Cut(stored, separator)
	if !ok || salt == "" {
		return false, ErrMalformedHash
	}

	want, err := hex.DecodeString(keyHex)
	if err != nil || len(want) != keyLength {
		return false, ErrMalformedHash
	}

	got, err := DeriveKey([]byte(secret), []byte(salt))
	if err != nil {
		return false, err
	}
	defer common.WipeByteArray(got)

	return subtle.ConstantTimeCompare(got, want) == 1, nil
}
