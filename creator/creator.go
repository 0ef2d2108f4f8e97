package creator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bartossh/Mercantis/listing"
	"github.com/bartossh/Mercantis/logger"
)

var (
	ErrValidation         = errors.New("listing payload validation failed")
	ErrCompanyNotVerified = errors.New("company does not match a verified project owned by the wallet")
	ErrCreateFailed       = errors.New("listing creation failed")
)

// ListingReadWriter abstracts the storage the creator materializes listings in to.
// WriteListing is required to reject a duplicated transaction id atomically.
type ListingReadWriter interface {
	ReadListingByTransactionID(ctx context.Context, transactionID string) (listing.Listing, bool, error)
	WriteListing(ctx context.Context, l *listing.Listing) error
	CheckProjectOwned(ctx context.Context, walletAddress, name string) (bool, error)
}

// Creator materializes a confirmed payment in to a listing exactly once.
type Creator struct {
	store ListingReadWriter
	log   logger.Logger
}

// New creates new Creator.
func New(store ListingReadWriter, log logger.Logger) *Creator {
	return &Creator{store: store, log: log}
}

// Create inserts the listing paid by the transaction.
// Calling Create again with the same transaction id returns the already
// materialized listing instead of creating a second one.
// A validation failure is returned wrapped in ErrValidation so the caller
// keeps the pending transaction, the payment already happened.
func (c *Creator) Create(ctx context.Context, p *listing.Payload, transactionID string) (listing.Listing, error) {
	existing, ok, err := c.store.ReadListingByTransactionID(ctx, transactionID)
	if err != nil {
		return listing.Listing{}, errors.Join(ErrCreateFailed, err)
	}
	if ok {
		c.log.Debug(fmt.Sprintf("creator: transaction [ %s ] is already materialized as listing [ %v ]", transactionID, existing.ID))
		return existing, nil
	}

	if err := p.Validate(); err != nil {
		return listing.Listing{}, errors.Join(ErrValidation, err)
	}
	if p.Kind == listing.KindJob && p.Company != listing.IndependentCompany {
		owned, err := c.store.CheckProjectOwned(ctx, p.WalletAddress, p.Company)
		if err != nil {
			return listing.Listing{}, errors.Join(ErrCreateFailed, err)
		}
		if !owned {
			return listing.Listing{}, errors.Join(ErrValidation, ErrCompanyNotVerified,
				fmt.Errorf("company [ %s ] wallet [ %s ]", p.Company, p.WalletAddress))
		}
	}

	l := listing.FromPayload(p, transactionID, time.Now())
	if err := c.store.WriteListing(ctx, &l); err != nil {
		// lost the insert race, the winner row is the listing for this payment
		winner, ok, readErr := c.store.ReadListingByTransactionID(ctx, transactionID)
		if readErr == nil && ok {
			return winner, nil
		}
		return listing.Listing{}, errors.Join(ErrCreateFailed, err)
	}
	c.log.Info(fmt.Sprintf("creator: materialized %s listing [ %v ] for transaction [ %s ]", l.Kind, l.ID, transactionID))
	return l, nil
}

// IsValidationError tells if the creation failed on payload validation,
// in which case the pending transaction must be preserved.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidation)
}
