package secretbox_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vendidero/shiptastic-ups/pkg/secretbox"
)

func TestBox_SealOpen(t *testing.T) {
	box, err := secretbox.New("correct horse battery staple", "test")
	require.NoError(t, err)

	sealed, err := box.Seal([]byte("access-token-123"))
	require.NoError(t, err)
	assert.NotContains(t, sealed, "access-token-123")

	plain, err := box.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, "access-token-123", string(plain))
}

func TestBox_SealUsesFreshNonce(t *testing.T) {
	box, err := secretbox.New("secret", "test")
	require.NoError(t, err)

	a, err := box.Seal([]byte("same"))
	require.NoError(t, err)
	b, err := box.Seal([]byte("same"))
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestBox_OpenWithOtherKeyFails(t *testing.T) {
	box, err := secretbox.New("secret-a", "test")
	require.NoError(t, err)
	other, err := secretbox.New("secret-b", "test")
	require.NoError(t, err)

	sealed, err := box.Seal([]byte("token"))
	require.NoError(t, err)

	_, err = other.Open(sealed)
	assert.ErrorIs(t, err, secretbox.ErrDecrypt)
}

func TestBox_OpenGarbage(t *testing.T) {
	box, err := secretbox.New("secret", "test")
	require.NoError(t, err)

	for _, in := range []string{"", "not base64!", "c2hvcnQ="} {
		_, err := box.Open(in)
		assert.ErrorIs(t, err, secretbox.ErrDecrypt, "input %q", in)
	}
}

func TestNew_EmptySecret(t *testing.T) {
	_, err := secretbox.New("", "test")
	assert.ErrorIs(t, err, secretbox.ErrEmptySecret)
}
