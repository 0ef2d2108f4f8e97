package aeswrapper

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncryptDecryptCycle(t *testing.T) {
	h := New()
	key := []byte("0123456789abcdef0123456789abcdef")
	data := []byte("wallet gob representation")

	sealed, err := h.Encrypt(key, data)
	assert.Nil(t, err)
	assert.NotEqual(t, data, sealed)

	opened, err := h.Decrypt(key, sealed)
	assert.Nil(t, err)
	assert.Equal(t, data, opened)
}

func TestDecryptWrongKey(t *testing.T) {
	h := New()
	sealed, err := h.Encrypt([]byte("0123456789abcdef"), []byte("secret"))
	assert.Nil(t, err)

	_, err = h.Decrypt([]byte("fedcba9876543210"), sealed)
	assert.ErrorIs(t, err, ErrOpenFailure)
}

func TestInvalidKeyLength(t *testing.T) {
	h := New()
	_, err := h.Encrypt([]byte("short"), []byte("secret"))
	assert.ErrorIs(t, err, ErrInvalidKeyLength)
}
