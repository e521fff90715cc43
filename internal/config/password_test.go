package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordConfig_HashAndVerify(t *testing.T) {
	cfg := &PasswordConfig{BcryptCost: 10}

	hash, err := cfg.HashPassword("testpassword123")
	require.NoError(t, err)
	assert.NotEqual(t, "testpassword123", hash)
	assert.True(t, strings.HasPrefix(hash, "$2a$10$"))

	assert.True(t, cfg.VerifyPassword("testpassword123", hash))
	assert.False(t, cfg.VerifyPassword("wrongpassword", hash))
}

func TestPasswordConfig_Pepper(t *testing.T) {
	peppered := &PasswordConfig{BcryptCost: 10, Pepper: "pepper-1"}
	plain := &PasswordConfig{BcryptCost: 10}

	hash, err := peppered.HashPassword("secret")
	require.NoError(t, err)

	assert.True(t, peppered.VerifyPassword("secret", hash))
	assert.False(t, plain.VerifyPassword("secret", hash), "hash must depend on the pepper")

	rotated := &PasswordConfig{BcryptCost: 10, Pepper: "pepper-2"}
	assert.False(t, rotated.VerifyPassword("secret", hash))
}

func TestPasswordConfig_SaltUniqueness(t *testing.T) {
	cfg := &PasswordConfig{BcryptCost: 10}

	h1, err := cfg.HashPassword("same")
	require.NoError(t, err)
	h2, err := cfg.HashPassword("same")
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
	assert.True(t, cfg.VerifyPassword("same", h1))
	assert.True(t, cfg.VerifyPassword("same", h2))
}

func TestPasswordConfig_EmptyStoredHashNeverVerifies(t *testing.T) {
	cfg := &PasswordConfig{BcryptCost: 10}
	assert.False(t, cfg.VerifyPassword("", ""))
	assert.False(t, cfg.VerifyPassword("anything", ""))
}

func TestPasswordConfig_InvalidCost(t *testing.T) {
	for _, cost := range []int{0, 9, 15} {
		cfg := &PasswordConfig{BcryptCost: cost}
		_, err := cfg.HashPassword("pw")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bcrypt cost out of range")
	}
}

func TestPasswordConfig_TooLong(t *testing.T) {
	cfg := &PasswordConfig{BcryptCost: 10}
	_, err := cfg.HashPassword(strings.Repeat("a", 73))
	assert.Error(t, err)
}
