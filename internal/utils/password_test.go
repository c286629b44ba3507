package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("s3nh4-forte", bcrypt.MinCost)
	require.NoError(t, err)

	assert.True(t, VerifyPassword(hash, "s3nh4-forte"))
	assert.False(t, VerifyPassword(hash, "senha-errada"))
	assert.False(t, VerifyPassword("not-a-hash", "s3nh4-forte"))
}
