package utils_test

import (
	"testing"

	"github.com/sahabattani/backend/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHasher(t *testing.T) {
	h := utils.NewPasswordHasher(bcrypt.MinCost)

	t.Run("Success - round trip", func(t *testing.T) {
		for _, pw := range []string{"secret", "p@ssw0rd!", "kata sandi panjang sekali"} {
			digest, err := h.Hash(pw)
			require.NoError(t, err)
			assert.NotEqual(t, pw, digest)

			ok, err := h.Verify(pw, digest)
			require.NoError(t, err)
			assert.True(t, ok)
		}
	})

	t.Run("Success - salted", func(t *testing.T) {
		a, _ := h.Hash("secret")
		b, _ := h.Hash("secret")
		assert.NotEqual(t, a, b)
	})

	t.Run("Error - mismatch is not an error", func(t *testing.T) {
		digest, _ := h.Hash("secret")
		ok, err := h.Verify("secret2", digest)
		assert.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Error - malformed digest", func(t *testing.T) {
		ok, err := h.Verify("secret", "not-a-hash")
		assert.Error(t, err)
		assert.False(t, ok)
	})

	t.Run("Error - too long", func(t *testing.T) {
		long := make([]byte, 100)
		for i := range long {
			long[i] = 'a'
		}
		_, err := h.Hash(string(long))
		assert.ErrorIs(t, err, utils.ErrHashing)
	})
}

func TestHashToken(t *testing.T) {
	assert.Equal(t, utils.HashToken("abc"), utils.HashToken("abc"))
	assert.NotEqual(t, utils.HashToken("abc"), utils.HashToken("abd"))
	assert.Len(t, utils.HashToken("abc"), 64)

	s, err := utils.RandomString(32)
	require.NoError(t, err)
	assert.Len(t, s, 32)
}
