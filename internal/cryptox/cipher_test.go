package cryptox

import (
	"bytes"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCipher(t *testing.T) *Cipher {
	t.Helper()
	key := make([]byte, KeySize)
	_, err := rand.Read(key)
	require.NoError(t, err)

	c, err := New(key)
	require.NoError(t, err)
	return c
}

func TestNew_RejectsWrongKeySize(t *testing.T) {
	for _, n := range []int{0, 16, 31, 33, 64} {
		_, err := New(make([]byte, n))
		assert.ErrorIs(t, err, ErrKeySize, "key size %d", n)
	}
}

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	c := newTestCipher(t)

	inputs := [][]byte{
		{},
		[]byte("a"),
		[]byte("exactly sixteen!"),
		[]byte(`{"email":"a@x.com","secret_at_issuance":"abc","expires_at":1000}`),
		bytes.Repeat([]byte{0xFF}, 1000),
	}
	for _, p := range inputs {
		blob, err := c.Encrypt(p)
		require.NoError(t, err)

		got, err := c.Decrypt(blob)
		require.NoError(t, err)
		assert.Equal(t, p, got)
	}
}

func TestEncrypt_RandomIV(t *testing.T) {
	c := newTestCipher(t)
	p := []byte("same plaintext every time")

	first, err := c.Encrypt(p)
	require.NoError(t, err)
	second, err := c.Encrypt(p)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestDecrypt_AnyFlippedByteFails(t *testing.T) {
	c := newTestCipher(t)

	blob, err := c.Encrypt([]byte(`{"email":"a@x.com"}`))
	require.NoError(t, err)
	raw, err := encoding.DecodeString(blob)
	require.NoError(t, err)

	for i := range raw {
		tampered := bytes.Clone(raw)
		tampered[i] ^= 0x01

		_, err := c.Decrypt(encoding.EncodeToString(tampered))
		assert.ErrorIs(t, err, ErrDecrypt, "byte %d", i)
	}
}

func TestDecrypt_WrongKeyFails(t *testing.T) {
	blob, err := newTestCipher(t).Encrypt([]byte("secret"))
	require.NoError(t, err)

	_, err = newTestCipher(t).Decrypt(blob)
	assert.ErrorIs(t, err, ErrDecrypt)
}

func TestDecrypt_MalformedInput(t *testing.T) {
	c := newTestCipher(t)

	blob, err := c.Encrypt([]byte("payload"))
	require.NoError(t, err)
	raw, err := encoding.DecodeString(blob)
	require.NoError(t, err)

	cases := map[string]string{
		"empty":         "",
		"not base64":    "!!!not-base64!!!",
		"std padding":   blob + "==",
		"only iv":       encoding.EncodeToString(raw[:ivSize]),
		"truncated":     encoding.EncodeToString(raw[:len(raw)-1]),
		"extra byte":    encoding.EncodeToString(append(bytes.Clone(raw), 0x00)),
		"missing block": encoding.EncodeToString(append(bytes.Clone(raw[:ivSize]), raw[len(raw)-tagSize:]...)),
	}
	for name, in := range cases {
		got, err := c.Decrypt(in)
		assert.ErrorIs(t, err, ErrDecrypt, name)
		assert.Nil(t, got, name)
	}
}

func TestUnpad(t *testing.T) {
	_, ok := unpad([]byte{1, 2, 3, 0})
	assert.False(t, ok, "zero pad byte")

	_, ok = unpad([]byte{1, 2, 3, 17})
	assert.False(t, ok, "pad larger than block")

	_, ok = unpad([]byte{1, 3, 2, 2, 3})
	assert.False(t, ok, "inconsistent pad bytes")

	out, ok := unpad([]byte{'a', 'b', 2, 2})
	assert.True(t, ok)
	assert.Equal(t, []byte("ab"), out)
}
