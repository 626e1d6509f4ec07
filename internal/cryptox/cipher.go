// Package cryptox holds the symmetric cipher that seals shadow session
// payloads stored in the "auth" cookie.
package cryptox

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// KeySize is the length of the master key in bytes (AES-256).
const KeySize = 32

var (
	// ErrDecrypt is the only error Decrypt returns. Bad encoding, truncation,
	// a MAC mismatch and bad padding all look the same to callers.
	ErrDecrypt = errors.New("decryption failed")

	ErrKeySize = fmt.Errorf("cipher key must be %d bytes", KeySize)
)

var encoding = base64.RawURLEncoding.Strict()

const (
	ivSize  = aes.BlockSize
	tagSize = sha256.Size
)

// Cipher encrypts with AES-256-CBC under a random IV and authenticates
// IV||ciphertext with HMAC-SHA256 (encrypt-then-MAC). Output is
// base64url(IV || ciphertext || tag).
//
// A Cipher is immutable and safe for concurrent use.
type Cipher struct {
	block  cipher.Block
	macKey []byte
}

// New derives independent encryption and MAC keys from key with HKDF.
func New(key []byte) (*Cipher, error) {
	if len(key) != KeySize {
		return nil, ErrKeySize
	}

	encKey, err := derive(key, "companydesk/shadow/enc")
	if err != nil {
		return nil, err
	}
	macKey, err := derive(key, "companydesk/shadow/mac")
	if err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(encKey)
	if err != nil {
		return nil, fmt.Errorf("new aes cipher: %w", err)
	}
	return &Cipher{block: block, macKey: macKey}, nil
}

func derive(key []byte, info string) ([]byte, error) {
	out := make([]byte, KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, key, nil, []byte(info)), out); err != nil {
		return nil, fmt.Errorf("derive %s: %w", info, err)
	}
	return out, nil
}

// Encrypt seals plaintext. Two calls with the same input never produce the
// same output.
func (c *Cipher) Encrypt(plaintext []byte) (string, error) {
	padded := pad(plaintext)
	bodyEnd := ivSize + len(padded)
	out := make([]byte, bodyEnd+tagSize)

	iv := out[:ivSize]
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return "", fmt.Errorf("generate iv: %w", err)
	}

	cipher.NewCBCEncrypter(c.block, iv).CryptBlocks(out[ivSize:bodyEnd], padded)
	copy(out[bodyEnd:], c.tag(out[:bodyEnd]))

	return encoding.EncodeToString(out), nil
}

// Decrypt opens a blob produced by Encrypt.
func (c *Cipher) Decrypt(blob string) ([]byte, error) {
	raw, err := encoding.DecodeString(blob)
	if err != nil {
		return nil, ErrDecrypt
	}

	// at least one block of ciphertext
	if len(raw) < ivSize+aes.BlockSize+tagSize {
		return nil, ErrDecrypt
	}
	bodyEnd := len(raw) - tagSize
	if (bodyEnd-ivSize)%aes.BlockSize != 0 {
		return nil, ErrDecrypt
	}

	if !hmac.Equal(raw[bodyEnd:], c.tag(raw[:bodyEnd])) {
		return nil, ErrDecrypt
	}

	plain := make([]byte, bodyEnd-ivSize)
	cipher.NewCBCDecrypter(c.block, raw[:ivSize]).CryptBlocks(plain, raw[ivSize:bodyEnd])

	out, ok := unpad(plain)
	if !ok {
		return nil, ErrDecrypt
	}
	return out, nil
}

func (c *Cipher) tag(b []byte) []byte {
	m := hmac.New(sha256.New, c.macKey)
	m.Write(b)
	return m.Sum(nil)
}

// pad applies PKCS#7.
func pad(b []byte) []byte {
	n := aes.BlockSize - len(b)%aes.BlockSize
	return append(bytes.Clone(b), bytes.Repeat([]byte{byte(n)}, n)...)
}

func unpad(b []byte) ([]byte, bool) {
	if len(b) == 0 {
		return nil, false
	}
	n := int(b[len(b)-1])
	if n == 0 || n > aes.BlockSize || n > len(b) {
		return nil, false
	}
	for _, p := range b[len(b)-n:] {
		if int(p) != n {
			return nil, false
		}
	}
	return b[:len(b)-n], true
}
