package emulator

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"

	"github.com/bartossh/Mercantis/payment"
)

var (
	ErrIntentRejected     = errors.New("intent rejected")
	ErrUnknownTransaction = errors.New("unknown transaction")
)

// Config contains configuration of the ledger emulator.
type Config struct {
	Port              int   `yaml:"port"`                // port of the emulator gateway HTTP surface
	ConfirmAfterPolls int   `yaml:"confirm_after_polls"` // status lookups before a transaction confirms
	RejectBelowAmount int64 `yaml:"reject_below_amount"` // intents below this amount end up failed
}

type verifier interface {
	Verify(message, signature []byte, hash [32]byte, address string) error
}

type trxRecord struct {
	amount int64
	polls  int
	failed bool
}

// Ledger emulates the external ledger gateway in process.
// A submitted payment stays unknown for a configured number of status lookups
// and then confirms, or fails when the paid amount is below the accepted fee.
type Ledger struct {
	mux  sync.Mutex
	cfg  Config
	ver  verifier
	trxs map[string]*trxRecord
	seq  int
}

// NewLedger creates a new ledger emulator.
func NewLedger(cfg Config, ver verifier) *Ledger {
	if cfg.ConfirmAfterPolls < 1 {
		cfg.ConfirmAfterPolls = 3
	}
	return &Ledger{cfg: cfg, ver: ver, trxs: make(map[string]*trxRecord)}
}

// SubmitPayment accepts a signed payment intent and returns the assigned transaction id.
// Unsigned or tampered intents are rejected before a transaction id is assigned.
func (l *Ledger) SubmitPayment(ctx context.Context, intent *payment.Intent) (string, error) {
	if err := l.ver.Verify(intent.Data, intent.Signature, intent.Hash, intent.WalletAddress); err != nil {
		return "", errors.Join(ErrIntentRejected, err)
	}
	l.mux.Lock()
	defer l.mux.Unlock()
	l.seq++
	id := fmt.Sprintf("%s-%v", hex.EncodeToString(intent.Hash[:8]), l.seq)
	l.trxs[id] = &trxRecord{
		amount: intent.Amount,
		failed: intent.Amount < l.cfg.RejectBelowAmount,
	}
	return id, nil
}

// TransactionStatus answers the confirmation lookup for given transaction id.
func (l *Ledger) TransactionStatus(ctx context.Context, transactionID string) (payment.TrxStatus, error) {
	l.mux.Lock()
	defer l.mux.Unlock()
	rec, ok := l.trxs[transactionID]
	if !ok {
		return payment.TrxUnknown, errors.Join(ErrUnknownTransaction, fmt.Errorf("transaction id [ %s ]", transactionID))
	}
	rec.polls++
	if rec.polls < l.cfg.ConfirmAfterPolls {
		return payment.TrxUnknown, nil
	}
	if rec.failed {
		return payment.TrxFailed, nil
	}
	return payment.TrxConfirmed, nil
}
