package wallet

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCreateWallet(t *testing.T) {
	w, err := New()
	assert.Nil(t, err)
	assert.NotNil(t, w.Private)
	assert.NotNil(t, w.Public)
}

func TestGobEncodingDecoding(t *testing.T) {
	w, err := New()
	assert.Nil(t, err)

	b, err := w.EncodeGOB()
	assert.Nil(t, err)
	assert.NotNil(t, b)

	nw, err := DecodeGOBWallet(b)
	assert.Nil(t, err)
	assert.Equal(t, nw.Private, w.Private)
	assert.Equal(t, nw.Public, w.Public)
}

func TestSignVerifySuccess(t *testing.T) {
	w, err := New()
	assert.Nil(t, err)

	message := []byte("This is test message.")

	hash, sig := w.Sign(message)
	assert.True(t, w.Verify(message, sig, hash))
}

func TestSignVerifyFail(t *testing.T) {
	w, err := New()
	assert.Nil(t, err)

	message := []byte("This is test message.")

	nw, err := New()
	assert.Nil(t, err)
	hash, sig := nw.Sign(message)
	assert.False(t, w.Verify(message, sig, hash))
}

func TestPemEncodingDecoding(t *testing.T) {
	w, err := New()
	assert.Nil(t, err)

	path := filepath.Join(t.TempDir(), "wallet")
	assert.Nil(t, w.SaveToPem(path))

	nw, err := ReadFromPem(path)
	assert.Nil(t, err)
	assert.Equal(t, w.Private, nw.Private)
	assert.Equal(t, w.Public, nw.Public)
	assert.Equal(t, w.Address(), nw.Address())
}

func TestVerifierByAddress(t *testing.T) {
	w, err := New()
	assert.Nil(t, err)

	message := []byte("payment intent data")
	hash, sig := w.Sign(message)

	v := NewVerifier()
	assert.Nil(t, v.Verify(message, sig, hash, w.Address()))

	other, err := New()
	assert.Nil(t, err)
	assert.NotNil(t, v.Verify(message, sig, hash, other.Address()))
}
