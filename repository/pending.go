package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/bartossh/Mercantis/payment"
)

// WritePendingTransaction writes the pending transaction to the storage.
// An existing record for the same wallet address is overwritten,
// at most one payment per wallet can be in flight.
func (db DataBase) WritePendingTransaction(ctx context.Context, pt *payment.PendingTransaction) error {
	raw, err := json.Marshal(&pt.Payload)
	if err != nil {
		return errors.Join(ErrMarshalFailed, err)
	}
	timestamp := pt.CreatedAt.UnixMicro()
	_, err = db.inner.ExecContext(
		ctx,
		`INSERT INTO
			pending_transactions(wallet_address, transaction_id, payload, status, created_at)
			VALUES($1, $2, $3, $4, $5)
			ON CONFLICT (wallet_address) DO UPDATE
			SET transaction_id = $2, payload = $3, status = $4, created_at = $5`,
		pt.WalletAddress, pt.TransactionID, raw, string(pt.Status), timestamp)
	if err != nil {
		return errors.Join(ErrInsertFailed, err)
	}
	return nil
}

// ReadPendingTransaction reads the pending transaction for given wallet address.
// The second returned value tells if the record exists.
func (db DataBase) ReadPendingTransaction(ctx context.Context, walletAddress string) (payment.PendingTransaction, bool, error) {
	var pt payment.PendingTransaction
	var raw []byte
	var status string
	var timestamp int64
	err := db.inner.QueryRowContext(ctx,
		`SELECT wallet_address, transaction_id, payload, status, created_at
			FROM pending_transactions WHERE wallet_address = $1`, walletAddress).
		Scan(&pt.WalletAddress, &pt.TransactionID, &raw, &status, &timestamp)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return payment.PendingTransaction{}, false, nil
	case err != nil:
		return payment.PendingTransaction{}, false, errors.Join(ErrSelectFailed, err)
	}
	if err := json.Unmarshal(raw, &pt.Payload); err != nil {
		return payment.PendingTransaction{}, false, errors.Join(ErrUnmarshalFailed, err)
	}
	pt.Status = payment.Status(status)
	pt.CreatedAt = time.UnixMicro(timestamp)
	return pt, true, nil
}

// UpdatePendingTransactionStatus updates status of the pending transaction for given wallet address.
func (db DataBase) UpdatePendingTransactionStatus(ctx context.Context, walletAddress string, status payment.Status) error {
	_, err := db.inner.ExecContext(ctx,
		"UPDATE pending_transactions SET status = $1 WHERE wallet_address = $2", string(status), walletAddress)
	if err != nil {
		return errors.Join(ErrUpdateFailed, err)
	}
	return nil
}

// ClearPendingTransaction removes the pending transaction for given wallet address.
func (db DataBase) ClearPendingTransaction(ctx context.Context, walletAddress string) error {
	_, err := db.inner.ExecContext(ctx,
		"DELETE FROM pending_transactions WHERE wallet_address = $1", walletAddress)
	if err != nil {
		return errors.Join(ErrRemoveFailed, err)
	}
	return nil
}

// ReadUnresolvedPendingTransactions reads all pending transactions that await a ledger
// answer or a retried listing creation. Used by the monitor supervisor to resume after restart.
func (db DataBase) ReadUnresolvedPendingTransactions(ctx context.Context) ([]payment.PendingTransaction, error) {
	rows, err := db.inner.QueryContext(ctx,
		`SELECT wallet_address, transaction_id, payload, status, created_at
			FROM pending_transactions WHERE status = $1 OR status = $2`,
		string(payment.StatusSubmitted), string(payment.StatusConfirmed))
	if err != nil {
		return nil, errors.Join(ErrSelectFailed, err)
	}
	defer rows.Close()

	var pts []payment.PendingTransaction
	for rows.Next() {
		var pt payment.PendingTransaction
		var raw []byte
		var status string
		var timestamp int64
		err := rows.Scan(&pt.WalletAddress, &pt.TransactionID, &raw, &status, &timestamp)
		if err != nil {
			return nil, errors.Join(ErrScanFailed, err)
		}
		if err := json.Unmarshal(raw, &pt.Payload); err != nil {
			return nil, errors.Join(ErrUnmarshalFailed, err)
		}
		pt.Status = payment.Status(status)
		pt.CreatedAt = time.UnixMicro(timestamp)
		pts = append(pts, pt)
	}
	return pts, nil
}
