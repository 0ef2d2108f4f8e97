package emulator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bartossh/Mercantis/listing"
	"github.com/bartossh/Mercantis/payment"
	"github.com/bartossh/Mercantis/wallet"
)

func signedIntent(t *testing.T, amount int64) payment.Intent {
	w, err := wallet.New()
	assert.Nil(t, err)
	p := listing.Payload{
		Kind: listing.KindJob, Title: "Go Engineer", Company: "Acme",
		WalletAddress: w.Address(), DurationDays: 30,
	}
	intent, err := payment.NewIntent(&p, amount, &w)
	assert.Nil(t, err)
	return intent
}

func TestSubmitAndConfirmAfterPolls(t *testing.T) {
	ctx := context.Background()
	l := NewLedger(Config{ConfirmAfterPolls: 3}, wallet.NewVerifier())

	intent := signedIntent(t, 1000)
	id, err := l.SubmitPayment(ctx, &intent)
	assert.Nil(t, err)
	assert.NotEmpty(t, id)

	for i := 0; i < 2; i++ {
		status, err := l.TransactionStatus(ctx, id)
		assert.Nil(t, err)
		assert.Equal(t, payment.TrxUnknown, status)
	}
	status, err := l.TransactionStatus(ctx, id)
	assert.Nil(t, err)
	assert.Equal(t, payment.TrxConfirmed, status)
}

func TestSubmitBelowAmountFails(t *testing.T) {
	ctx := context.Background()
	l := NewLedger(Config{ConfirmAfterPolls: 1, RejectBelowAmount: 500}, wallet.NewVerifier())

	intent := signedIntent(t, 100)
	id, err := l.SubmitPayment(ctx, &intent)
	assert.Nil(t, err)

	status, err := l.TransactionStatus(ctx, id)
	assert.Nil(t, err)
	assert.Equal(t, payment.TrxFailed, status)
}

func TestSubmitTamperedIntentRejected(t *testing.T) {
	ctx := context.Background()
	l := NewLedger(Config{}, wallet.NewVerifier())

	intent := signedIntent(t, 1000)
	intent.Data = append(intent.Data, byte(' '))
	_, err := l.SubmitPayment(ctx, &intent)
	assert.ErrorIs(t, err, ErrIntentRejected)
}

func TestStatusOfUnknownTransaction(t *testing.T) {
	ctx := context.Background()
	l := NewLedger(Config{}, wallet.NewVerifier())

	_, err := l.TransactionStatus(ctx, "no-such-trx")
	assert.ErrorIs(t, err, ErrUnknownTransaction)
}
