package signature

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSignerIsDeterministic(
	t *testing.T,
) {
	a, err := NewSigner("secret")
	require.NoError(t, err)
	b, err := NewSigner("secret")
	require.NoError(t, err)

	assert.Equal(t, a.PublicKey(), b.PublicKey())

	c, err := NewSigner("other")
	require.NoError(t, err)
	assert.NotEqual(t, a.PublicKey(), c.PublicKey())
}

func TestNewSignerRequiresSecret(
	t *testing.T,
) {
	_, err := NewSigner("")
	assert.Error(t, err)
}

func TestSignVerify(
	t *testing.T,
) {
	signer, err := NewSigner("secret")
	require.NoError(t, err)

	payload := []byte("uuid|asset|wallet|weak|100|1000|1709294400000000000")
	sig := signer.Sign(payload)

	assert.True(t, signer.Verify(payload, sig))
	assert.False(t, signer.Verify([]byte("tampered"), sig))
	assert.False(t, signer.Verify(payload, "deadbeef"))
	assert.False(t, signer.Verify(payload, "not hex"))

	other, err := NewSigner("other")
	require.NoError(t, err)
	assert.False(t, other.Verify(payload, sig))
}
