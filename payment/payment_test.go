package payment

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bartossh/Mercantis/listing"
	"github.com/bartossh/Mercantis/wallet"
)

func testPayload(addr string) listing.Payload {
	return listing.Payload{
		Kind:          listing.KindJob,
		Title:         "Rust Engineer",
		Company:       "Acme",
		WalletAddress: addr,
		DurationDays:  30,
	}
}

func TestIntentSignVerify(t *testing.T) {
	w, err := wallet.New()
	assert.Nil(t, err)

	p := testPayload(w.Address())
	intent, err := NewIntent(&p, 1000, &w)
	assert.Nil(t, err)
	assert.Equal(t, w.Address(), intent.WalletAddress)

	assert.Nil(t, intent.Verify(&p, wallet.NewVerifier()))
}

func TestIntentVerifyWalletMismatch(t *testing.T) {
	w, err := wallet.New()
	assert.Nil(t, err)

	p := testPayload(w.Address())
	intent, err := NewIntent(&p, 1000, &w)
	assert.Nil(t, err)

	p.WalletAddress = "someone-else"
	err = intent.Verify(&p, wallet.NewVerifier())
	assert.ErrorIs(t, err, ErrWalletMismatch)
}

func TestIntentVerifyTamperedPayload(t *testing.T) {
	w, err := wallet.New()
	assert.Nil(t, err)

	p := testPayload(w.Address())
	intent, err := NewIntent(&p, 1000, &w)
	assert.Nil(t, err)

	p.Title = "Free Listing"
	err = intent.Verify(&p, wallet.NewVerifier())
	assert.ErrorIs(t, err, ErrIntentCorrupted)
}

func TestIntentVerifyNotSigned(t *testing.T) {
	w, err := wallet.New()
	assert.Nil(t, err)

	p := testPayload(w.Address())
	intent := Intent{WalletAddress: w.Address()}
	err = intent.Verify(&p, wallet.NewVerifier())
	assert.ErrorIs(t, err, ErrIntentNotSigned)
}
