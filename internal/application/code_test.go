package application

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fastParams = Argon2idParams{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 8, KeyLength: 16}

func TestGenerateCodeShape(t *testing.T) {
	pattern := regexp.MustCompile(`^[A-Z0-9]{6}$`)
	for i := 0; i < 20; i++ {
		code, err := GenerateCode()
		require.NoError(t, err)
		assert.Regexp(t, pattern, code)
	}
}

func TestHashAndVerifyCode(t *testing.T) {
	hash, err := HashCode("ab12cd", fastParams)
	require.NoError(t, err)
	assert.Contains(t, hash, "$argon2id$")

	assert.NoError(t, VerifyCode(hash, "AB12CD"))
	assert.NoError(t, VerifyCode(hash, " ab12cd "))
	assert.ErrorIs(t, VerifyCode(hash, "AB12CE"), ErrInvalidCode)
	assert.ErrorIs(t, VerifyCode("not-a-hash", "AB12CD"), ErrInvalidCodeHash)
}

func TestCodeStoreExpiresAndPurges(t *testing.T) {
	now := time.Date(2025, time.March, 3, 9, 0, 0, 0, time.UTC)
	store := newCodeStore(2, func() time.Time { return now })

	store.Put("a@campus.edu", "hash-a", time.Minute)
	hash, ok := store.Get("a@campus.edu")
	require.True(t, ok)
	assert.Equal(t, "hash-a", hash)

	store.Put("a@campus.edu", "hash-a2", time.Minute)
	hash, _ = store.Get("a@campus.edu")
	assert.Equal(t, "hash-a2", hash)

	now = now.Add(time.Minute)
	_, ok = store.Get("a@campus.edu")
	assert.False(t, ok)
	assert.Equal(t, 0, store.Len())
}

func TestCodeStoreEvictsOldestWhenFull(t *testing.T) {
	now := time.Date(2025, time.March, 3, 9, 0, 0, 0, time.UTC)
	store := newCodeStore(2, func() time.Time { return now })

	store.Put("a", "1", time.Minute)
	store.Put("b", "2", 2*time.Minute)
	store.Put("c", "3", 3*time.Minute)

	_, ok := store.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 2, store.Len())

	store.Delete("b")
	_, ok = store.Get("b")
	assert.False(t, ok)
}
