package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bartossh/Mercantis/listing"
)

const listingColumns = `id, transaction_id, kind, title, company, description, category,
	contact_email, website_url, wallet_address, status, created_at, expires_at`

// WriteListing inserts the listing and sets its generated id.
// Returns ErrListingExists when a listing with the same transaction id already exists,
// the unique constraint makes concurrent double inserts impossible.
func (db DataBase) WriteListing(ctx context.Context, l *listing.Listing) error {
	err := db.inner.QueryRowContext(
		ctx,
		`INSERT INTO
			listings(
				transaction_id, kind, title, company, description, category,
				contact_email, website_url, wallet_address, status, created_at, expires_at
			) VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12) RETURNING id`,
		l.TransactionID, string(l.Kind), l.Title, l.Company, l.Description, l.Category,
		l.ContactEmail, l.WebsiteURL, l.WalletAddress, string(l.Status),
		l.CreatedAt.UnixMicro(), l.ExpiresAt.UnixMicro()).Scan(&l.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return errors.Join(ErrListingExists, err)
		}
		return errors.Join(ErrInsertFailed, err)
	}
	return nil
}

// ReadListingByTransactionID reads the listing materialized for given transaction id.
// The second returned value tells if the listing exists.
func (db DataBase) ReadListingByTransactionID(ctx context.Context, transactionID string) (listing.Listing, bool, error) {
	row := db.inner.QueryRowContext(ctx,
		fmt.Sprintf("SELECT %s FROM listings WHERE transaction_id = $1", listingColumns), transactionID)
	l, err := scanListing(row)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return listing.Listing{}, false, nil
	case err != nil:
		return listing.Listing{}, false, errors.Join(ErrSelectFailed, err)
	}
	return l, true, nil
}

// ReadListings reads listings matching the filters ordered by id.
func (db DataBase) ReadListings(ctx context.Context, f *listing.Filters) ([]listing.Listing, error) {
	query := fmt.Sprintf("SELECT %s FROM listings", listingColumns)
	var conditions []string
	var args []any
	appendCondition := func(column string, value any) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf("%s = $%v", column, len(args)))
	}
	if f.ID != 0 {
		appendCondition("id", f.ID)
	}
	if f.WalletAddress != "" {
		appendCondition("wallet_address", f.WalletAddress)
	}
	if f.Kind != "" {
		appendCondition("kind", string(f.Kind))
	}
	if f.Status != "" {
		appendCondition("status", string(f.Status))
	}
	if f.Category != "" {
		appendCondition("category", f.Category)
	}
	if f.ActiveOnly {
		args = append(args, string(listing.StatusConfirmed))
		conditions = append(conditions, fmt.Sprintf("status = $%v", len(args)))
		args = append(args, time.Now().UnixMicro())
		conditions = append(conditions, fmt.Sprintf("expires_at > $%v", len(args)))
	}
	if len(conditions) != 0 {
		query = fmt.Sprintf("%s WHERE %s", query, strings.Join(conditions, " AND "))
	}
	query = fmt.Sprintf("%s ORDER BY id ASC", query)

	rows, err := db.inner.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Join(ErrSelectFailed, err)
	}
	defer rows.Close()

	var listings []listing.Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, errors.Join(ErrScanFailed, err)
		}
		listings = append(listings, l)
	}
	return listings, nil
}

// ReadAllListings reads all listings ordered by id. Used by the deduplication guard.
func (db DataBase) ReadAllListings(ctx context.Context) ([]listing.Listing, error) {
	return db.ReadListings(ctx, &listing.Filters{})
}

// RemoveListings removes listings with given ids.
func (db DataBase) RemoveListings(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	var err error
	var tx *sql.Tx
	tx, err = db.inner.BeginTx(ctx, nil)
	if err != nil {
		return errors.Join(ErrTrxBeginFailed, err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	for _, id := range ids {
		if _, err = tx.ExecContext(ctx, "DELETE FROM listings WHERE id = $1", id); err != nil {
			return errors.Join(ErrRemoveFailed, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return errors.Join(ErrCommitFailed, err)
	}
	return nil
}

// CheckProjectOwned tells if the wallet owns a confirmed project listing with given name.
func (db DataBase) CheckProjectOwned(ctx context.Context, walletAddress, name string) (bool, error) {
	var count int
	err := db.inner.QueryRowContext(ctx,
		"SELECT COUNT(id) FROM listings WHERE kind = $1 AND title = $2 AND wallet_address = $3 AND status = $4",
		string(listing.KindProject), name, walletAddress, string(listing.StatusConfirmed)).Scan(&count)
	if err != nil {
		return false, errors.Join(ErrSelectFailed, err)
	}
	return count > 0, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanListing(s scanner) (listing.Listing, error) {
	var l listing.Listing
	var kind, status string
	var createdAt, expiresAt int64
	err := s.Scan(
		&l.ID, &l.TransactionID, &kind, &l.Title, &l.Company, &l.Description, &l.Category,
		&l.ContactEmail, &l.WebsiteURL, &l.WalletAddress, &status, &createdAt, &expiresAt)
	if err != nil {
		return listing.Listing{}, err
	}
	l.Kind = listing.Kind(kind)
	l.Status = listing.Status(status)
	l.CreatedAt = time.UnixMicro(createdAt)
	l.ExpiresAt = time.UnixMicro(expiresAt)
	return l, nil
}
