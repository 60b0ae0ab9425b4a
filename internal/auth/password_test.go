package auth

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHasherRoundTrip(t *testing.T) {
	h := NewHasher(4)

	digest, err := h.Hash("Passw0rd!")
	require.NoError(t, err)
	require.NotEmpty(t, digest)
	require.NotEqual(t, "Passw0rd!", digest)

	require.True(t, h.Verify(digest, "Passw0rd!"))
	require.False(t, h.Verify(digest, "wrong-password"))
}

func TestHasherMalformedDigest(t *testing.T) {
	h := NewHasher(4)
	require.False(t, h.Verify("not-a-bcrypt-digest", "anything"))
	require.False(t, h.Verify("", "anything"))
}

func TestNewHasherClampsCost(t *testing.T) {
	require.Equal(t, 10, NewHasher(99).Cost) // bcrypt.DefaultCost
	require.Equal(t, 10, NewHasher(0).Cost)
	require.Equal(t, 12, NewHasher(12).Cost)
}
