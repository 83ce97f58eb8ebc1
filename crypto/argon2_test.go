package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fastParams keeps argon2 cheap enough for unit tests.
var fastParams = Argon2Params{
	Memory:      8 * 1024,
	Iterations:  1,
	Parallelism: 1,
	SaltLength:  16,
	KeyLength:   32,
}

func TestHashAndVerify(t *testing.T) {
	hash, salt, err := HashPassword("correct horse battery", fastParams)
	require.NoError(t, err)
	assert.Len(t, hash, 32)
	assert.Len(t, salt, 16)

	ok, err := VerifyPassword("correct horse battery", salt, hash, fastParams)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("wrong horse battery", salt, hash, fastParams)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashPasswordUsesFreshSalt(t *testing.T) {
	h1, s1, err := HashPassword("same password", fastParams)
	require.NoError(t, err)
	h2, s2, err := HashPassword("same password", fastParams)
	require.NoError(t, err)

	assert.NotEqual(t, s1, s2)
	assert.NotEqual(t, h1, h2)
}

func TestHashPasswordEmpty(t *testing.T) {
	_, _, err := HashPassword("", fastParams)
	assert.ErrorIs(t, err, ErrEmptyPassword)
}

func TestVerifyPasswordInvalidInput(t *testing.T) {
	_, err := VerifyPassword("pw", nil, []byte("k"), fastParams)
	assert.Error(t, err)
	_, err = VerifyPassword("", []byte("s"), []byte("k"), fastParams)
	assert.Error(t, err)
}

func TestClearBytes(t *testing.T) {
	b := []byte("secret")
	ClearBytes(b)
	assert.Equal(t, make([]byte, 6), b)
	ClearBytes(nil)
}
