package crypto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey(t *testing.T) []byte {
	t.Helper()
	key, err := KeyFromHex(strings.Repeat("0f", 32))
	require.NoError(t, err)
	return key
}

func TestSealOpen(t *testing.T) {
	key := testKey(t)
	plain := []byte(`{"store":"leads","records":[]}`)

	sealed, err := Seal(key, plain)
	require.NoError(t, err)
	assert.NotContains(t, string(sealed), "leads")

	again, err := Seal(key, plain)
	require.NoError(t, err)
	assert.NotEqual(t, sealed, again, "nonce must differ")

	got, err := Open(key, sealed)
	require.NoError(t, err)
	assert.Equal(t, plain, got)
}

func TestOpen_Failures(t *testing.T) {
	key := testKey(t)
	sealed, err := Seal(key, []byte("secret"))
	require.NoError(t, err)

	other, err := KeyFromHex(strings.Repeat("aa", 32))
	require.NoError(t, err)
	_, err = Open(other, sealed)
	assert.Error(t, err)

	tampered := append([]byte(nil), sealed...)
	tampered[len(tampered)-1] ^= 0xff
	_, err = Open(key, tampered)
	assert.Error(t, err)

	_, err = Open(key, []byte("plain json"))
	assert.ErrorIs(t, err, ErrNotSealed)

	_, err = Open(key, []byte("HIX1abc"))
	assert.ErrorIs(t, err, ErrCiphertextTooShort)
}

func TestKeyFromHex(t *testing.T) {
	_, err := KeyFromHex("abcd")
	assert.ErrorIs(t, err, ErrInvalidKey)
	_, err = KeyFromHex("zz")
	assert.Error(t, err)
	_, err = Seal([]byte("short"), []byte("x"))
	assert.ErrorIs(t, err, ErrInvalidKey)
}
