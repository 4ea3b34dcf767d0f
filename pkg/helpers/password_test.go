package helpers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasherUsesWorkFactor12(t *testing.T) {
	h := NewBcryptHasher()
	assert.Equal(t, 12, h.Cost)

	hash, err := h.Hash("L1m1t3dAcc355")
	require.NoError(t, err)
	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, PasswordCost, cost)
}

func TestBcryptHasherVerify(t *testing.T) {
	h := &BcryptHasher{Cost: bcrypt.MinCost}

	hash, err := h.Hash("pw")
	require.NoError(t, err)
	assert.NotEqual(t, "pw", hash)

	assert.True(t, h.Verify("pw", hash))
	assert.False(t, h.Verify("wrong", hash))
	assert.False(t, h.Verify("pw", "not-a-bcrypt-hash"))
	assert.False(t, h.Verify("pw", ""))
}

func TestBcryptHasherHashFailure(t *testing.T) {
	h := &BcryptHasher{Cost: bcrypt.MinCost}
	// bcrypt rejects inputs longer than 72 bytes
	_, err := h.Hash(strings.Repeat("x", 73))
	assert.Error(t, err)
}
