package payment

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/bartossh/Mercantis/listing"
)

var (
	ErrWalletMismatch   = errors.New("intent wallet address does not match payload wallet address")
	ErrIntentNotSigned  = errors.New("intent is not signed")
	ErrIntentCorrupted  = errors.New("intent data are corrupted")
	ErrSignatureInvalid = errors.New("intent signature is invalid")
)

type signer interface {
	Sign(message []byte) (digest [32]byte, signature []byte)
	Address() string
}

type verifier interface {
	Verify(message, signature []byte, hash [32]byte, address string) error
}

// Status describes the stage of the pending payment state machine.
// StatusSubmitted is the only non terminal status.
type Status string

const (
	StatusSubmitted Status = "submitted"
	StatusConfirmed Status = "confirmed"
	StatusFailed    Status = "failed"
	StatusTimedOut  Status = "timed_out"
)

// TrxStatus is the answer of the ledger gateway for a transaction lookup.
type TrxStatus string

const (
	TrxConfirmed TrxStatus = "confirmed"
	TrxFailed    TrxStatus = "failed"
	TrxUnknown   TrxStatus = "unknown"
)

// Intent is the payment order signed by the wallet owner.
// Data holds the canonical JSON of the listing payload the payment pays for,
// so the signature covers what will be materialized.
type Intent struct {
	WalletAddress string    `json:"wallet_address"`
	Amount        int64     `json:"amount"`
	Data          []byte    `json:"data"`
	Hash          [32]byte  `json:"hash"`
	Signature     []byte    `json:"signature"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewIntent creates an intent for given payload signed by the issuer wallet.
func NewIntent(p *listing.Payload, amount int64, issuer signer) (Intent, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return Intent{}, errors.Join(ErrIntentCorrupted, err)
	}
	hash, signature := issuer.Sign(data)
	return Intent{
		WalletAddress: issuer.Address(),
		Amount:        amount,
		Data:          data,
		Hash:          hash,
		Signature:     signature,
		CreatedAt:     time.Now(),
	}, nil
}

// Verify checks the intent signature and that the signing wallet owns the payload.
func (i *Intent) Verify(p *listing.Payload, v verifier) error {
	if len(i.Signature) == 0 {
		return ErrIntentNotSigned
	}
	if i.WalletAddress != p.WalletAddress {
		return ErrWalletMismatch
	}
	if err := v.Verify(i.Data, i.Signature, i.Hash, i.WalletAddress); err != nil {
		return errors.Join(ErrSignatureInvalid, err)
	}
	var signed listing.Payload
	if err := json.Unmarshal(i.Data, &signed); err != nil {
		return errors.Join(ErrIntentCorrupted, err)
	}
	if signed != *p {
		return ErrIntentCorrupted
	}
	return nil
}

// PendingTransaction is the durable anchor of a payment in flight.
// At most one exists per wallet address. It survives restarts and is removed
// only after the listing is materialized or the owner abandons the attempt.
type PendingTransaction struct {
	WalletAddress string          `json:"wallet_address" db:"wallet_address"`
	TransactionID string          `json:"transaction_id" db:"transaction_id"`
	Payload       listing.Payload `json:"payload"        db:"payload"`
	Status        Status          `json:"status"         db:"status"`
	CreatedAt     time.Time       `json:"created_at"     db:"created_at"`
}
