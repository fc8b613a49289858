package cryptox

import (
	"bytes"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveKey_Deterministic(t *testing.T) {
	secret := []byte("secret-password")
	salt := []byte("fixed-salt")

	key1, err := DeriveKey(secret, salt)
	require.NoError(t, err)
	key2, err := DeriveKey(secret, salt)
	require.NoError(t, err)

	if !bytes.Equal(key1, key2) {
		t.Errorf("expected same result for same inputs, got different")
	}
	assert.Len(t, key1, keyLength)
}

func TestDeriveKey_DifferentSalts(t *testing.T) {
	secret := []byte("secret-password")

	key1, err := DeriveKey(secret, []byte("salt-1"))
	require.NoError(t, err)
	key2, err := DeriveKey(secret, []byte("salt-2"))
	require.NoError(t, err)

	if bytes.Equal(key1, key2) {
		t.Errorf("expected different results for different salts, got same")
	}
}

func TestHashSecret_Format(t *testing.T) {
	h, err := HashSecret("x")
	require.NoError(t, err)

	salt, key, ok := strings.Cut(h, ":")
	require.True(t, ok)
	assert.Len(t, salt, saltSize*2)

	raw, err := hex.DecodeString(key)
	require.NoError(t, err)
	assert.Len(t, raw, keyLength)
}

func TestHashSecret_DistinctSaltsBothVerify(t *testing.T) {
	h1, err := HashSecret("hunter2")
	require.NoError(t, err)
	h2, err := HashSecret("hunter2")
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)

	for _, h := range []string{h1, h2} {
		ok, err := VerifySecret("hunter2", h)
		require.NoError(t, err)
		assert.True(t, ok)
	}
}

func TestVerifySecret_WrongSecret(t *testing.T) {
	h, err := HashSecret("1234")
	require.NoError(t, err)

	ok, err := VerifySecret("4321", h)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifySecret_Malformed(t *testing.T) {
	tests := []struct {
		name   string
		stored string
	}{
		{name: "no separator", stored: "abcdef"},
		{name: "empty salt", stored: ":abcd"},
		{name: "non-hex key", stored: "salt:zzzz"},
		{name: "short key", stored: "salt:abcd"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := VerifySecret("x", tt.stored)
			assert.ErrorIs(t, err, ErrMalformedHash)
			assert.False(t, ok)
		})
	}
}
