package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordHashingLifecycle(t *testing.T) {
	hash, err := HashPassword("S3curePass!")
	require.NoError(t, err)
	require.NotEmpty(t, hash)

	assert.NoError(t, VerifyPassword(hash, "S3curePass!"))
	assert.Error(t, VerifyPassword(hash, "wrong"))
	assert.True(t, IsValidPassword(hash, "S3curePass!"))
	assert.False(t, IsValidPassword("", "S3curePass!"))
}

func TestHashPasswordRejectsBlank(t *testing.T) {
	_, err := HashPassword("   ")
	assert.ErrorIs(t, err, ErrEmptyPassword)
}
