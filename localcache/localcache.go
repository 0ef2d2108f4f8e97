package localcache

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/bartossh/Mercantis/listing"
	"github.com/bartossh/Mercantis/payment"
)

var (
	ErrListingExists   = errors.New("listing with given transaction id exists")
	ErrPendingNotFound = errors.New("pending transaction not found")
)

// Store keeps pending transactions and listings in process memory.
// It mirrors the repository surface so monitors, creators and servers can run
// without a database in tests and development setups. It is not durable.
type Store struct {
	mux      sync.RWMutex
	pendings map[string]payment.PendingTransaction
	listings map[int64]listing.Listing
	byTrxID  map[string]int64
	nextID   int64
}

// NewStore creates a new in-memory Store.
func NewStore() *Store {
	return &Store{
		pendings: make(map[string]payment.PendingTransaction),
		listings: make(map[int64]listing.Listing),
		byTrxID:  make(map[string]int64),
		nextID:   1,
	}
}

// WritePendingTransaction overwrites the pending transaction for the wallet address.
func (s *Store) WritePendingTransaction(_ context.Context, pt *payment.PendingTransaction) error {
	s.mux.Lock()
	defer s.mux.Unlock()
	s.pendings[pt.WalletAddress] = *pt
	return nil
}

// ReadPendingTransaction reads the pending transaction for given wallet address.
func (s *Store) ReadPendingTransaction(_ context.Context, walletAddress string) (payment.PendingTransaction, bool, error) {
	s.mux.RLock()
	defer s.mux.RUnlock()
	pt, ok := s.pendings[walletAddress]
	return pt, ok, nil
}

// UpdatePendingTransactionStatus updates status of the wallet pending transaction.
func (s *Store) UpdatePendingTransactionStatus(_ context.Context, walletAddress string, status payment.Status) error {
	s.mux.Lock()
	defer s.mux.Unlock()
	pt, ok := s.pendings[walletAddress]
	if !ok {
		return errors.Join(ErrPendingNotFound, fmt.Errorf("wallet address [ %s ]", walletAddress))
	}
	pt.Status = status
	s.pendings[walletAddress] = pt
	return nil
}

// ClearPendingTransaction removes the pending transaction for given wallet address.
func (s *Store) ClearPendingTransaction(_ context.Context, walletAddress string) error {
	s.mux.Lock()
	defer s.mux.Unlock()
	delete(s.pendings, walletAddress)
	return nil
}

// ReadUnresolvedPendingTransactions reads pending transactions awaiting a ledger
// answer or a retried listing creation.
func (s *Store) ReadUnresolvedPendingTransactions(_ context.Context) ([]payment.PendingTransaction, error) {
	s.mux.RLock()
	defer s.mux.RUnlock()
	var pts []payment.PendingTransaction
	for _, pt := range s.pendings {
		if pt.Status == payment.StatusSubmitted || pt.Status == payment.StatusConfirmed {
			pts = append(pts, pt)
		}
	}
	return pts, nil
}

// WriteListing inserts the listing assigning it the next id.
// Returns ErrListingExists when the transaction id is already materialized.
func (s *Store) WriteListing(_ context.Context, l *listing.Listing) error {
	s.mux.Lock()
	defer s.mux.Unlock()
	if _, ok := s.byTrxID[l.TransactionID]; ok {
		return errors.Join(ErrListingExists, fmt.Errorf("transaction id [ %s ]", l.TransactionID))
	}
	l.ID = s.nextID
	s.nextID++
	s.listings[l.ID] = *l
	s.byTrxID[l.TransactionID] = l.ID
	return nil
}

// ReadListingByTransactionID reads the listing materialized for given transaction id.
func (s *Store) ReadListingByTransactionID(_ context.Context, transactionID string) (listing.Listing, bool, error) {
	s.mux.RLock()
	defer s.mux.RUnlock()
	id, ok := s.byTrxID[transactionID]
	if !ok {
		return listing.Listing{}, false, nil
	}
	return s.listings[id], true, nil
}

// ReadListings reads listings matching the filters ordered by id.
func (s *Store) ReadListings(_ context.Context, f *listing.Filters) ([]listing.Listing, error) {
	s.mux.RLock()
	defer s.mux.RUnlock()
	nowMicro := time.Now().UnixMicro()
	var listings []listing.Listing
	for _, l := range s.listings {
		l := l
		if f.Match(&l, nowMicro) {
			listings = append(listings, l)
		}
	}
	sort.Slice(listings, func(i, j int) bool { return listings[i].ID < listings[j].ID })
	return listings, nil
}

// ReadAllListings reads all listings ordered by id.
func (s *Store) ReadAllListings(ctx context.Context) ([]listing.Listing, error) {
	return s.ReadListings(ctx, &listing.Filters{})
}

// RemoveListings removes listings with given ids.
func (s *Store) RemoveListings(_ context.Context, ids []int64) error {
	s.mux.Lock()
	defer s.mux.Unlock()
	for _, id := range ids {
		l, ok := s.listings[id]
		if !ok {
			continue
		}
		delete(s.listings, id)
		if s.byTrxID[l.TransactionID] == id {
			delete(s.byTrxID, l.TransactionID)
		}
	}
	return nil
}

// CheckProjectOwned tells if the wallet owns a confirmed project listing with given name.
func (s *Store) CheckProjectOwned(_ context.Context, walletAddress, name string) (bool, error) {
	s.mux.RLock()
	defer s.mux.RUnlock()
	for _, l := range s.listings {
		if l.Kind == listing.KindProject && l.Title == name &&
			l.WalletAddress == walletAddress && l.Status == listing.StatusConfirmed {
			return true, nil
		}
	}
	return false, nil
}
