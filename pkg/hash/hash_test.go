package hash

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHasher_HashAndCheck(t *testing.T) {
	t.Parallel()

	h := NewHasher(bcrypt.MinCost)
	hashed, err := h.HashPassword("pw12345")
	require.NoError(t, err)

	assert.NotEqual(t, "pw12345", hashed)
	assert.True(t, h.CheckPassword(hashed, "pw12345"))
	assert.False(t, h.CheckPassword(hashed, "pw12346"))
	assert.False(t, h.CheckPassword("not-a-hash", "pw12345"))
}

func TestHasher_SaltsEveryHash(t *testing.T) {
	t.Parallel()

	h := NewHasher(bcrypt.MinCost)
	a, err := h.HashPassword("same")
	require.NoError(t, err)
	b, err := h.HashPassword("same")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestHasher_RejectsLongPasswords(t *testing.T) {
	t.Parallel()

	h := NewHasher(bcrypt.MinCost)
	_, err := h.HashPassword(strings.Repeat("a", MaxPasswordLen+1))
	require.ErrorIs(t, err, ErrPasswordTooLong)
}

func TestNewHasher_OutOfRangeCostFallsBack(t *testing.T) {
	t.Parallel()

	assert.Equal(t, bcrypt.DefaultCost, NewHasher(0).Cost)
	assert.Equal(t, bcrypt.DefaultCost, NewHasher(99).Cost)
	assert.Equal(t, 12, NewHasher(12).Cost)
}

func TestHasher_DummyCheckUsesConfiguredCost(t *testing.T) {
	t.Parallel()

	h := NewHasher(bcrypt.MinCost)
	h.DummyCheck("anything")

	cost, err := bcrypt.Cost(h.dummy)
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost, cost)
}
