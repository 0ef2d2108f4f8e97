package aeswrapper

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"io"
)

var (
	ErrInvalidKeyLength = errors.New("key length must be 16, 24 or 32 bytes")
	ErrCipherFailure    = errors.New("cipher creation failed")
	ErrSealFailure      = errors.New("sealing data failed")
	ErrOpenFailure      = errors.New("opening sealed data failed")
)

// Helper wraps AES-GCM encryption of byte slices.
// Helper satisfies the fileoperations Sealer interface.
type Helper struct{}

// New creates new AES Helper.
func New() Helper {
	return Helper{}
}

// Encrypt seals data with the given key using AES-GCM with a random nonce.
func (h Helper) Encrypt(key, data []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, errors.Join(ErrSealFailure, err)
	}
	return gcm.Seal(nonce, nonce, data, nil), nil
}

// Decrypt opens data sealed by Encrypt with the same key.
func (h Helper) Decrypt(key, data []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(data) < gcm.NonceSize() {
		return nil, ErrOpenFailure
	}
	nonce, sealed := data[:gcm.NonceSize()], data[gcm.NonceSize():]
	opened, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, errors.Join(ErrOpenFailure, err)
	}
	return opened, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	switch len(key) {
	case 16, 24, 32:
	default:
		return nil, ErrInvalidKeyLength
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, errors.Join(ErrCipherFailure, err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, errors.Join(ErrCipherFailure, err)
	}
	return gcm, nil
}
