package localcache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/bartossh/Mercantis/listing"
	"github.com/bartossh/Mercantis/payment"
)

func TestPendingOverwriteKeepsSingleRecord(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	first := payment.PendingTransaction{
		WalletAddress: "addr1",
		TransactionID: "trx-1",
		Status:        payment.StatusSubmitted,
		CreatedAt:     time.Now(),
	}
	assert.Nil(t, s.WritePendingTransaction(ctx, &first))

	second := first
	second.TransactionID = "trx-2"
	assert.Nil(t, s.WritePendingTransaction(ctx, &second))

	read, ok, err := s.ReadPendingTransaction(ctx, "addr1")
	assert.Nil(t, err)
	assert.True(t, ok)
	assert.Equal(t, "trx-2", read.TransactionID)

	pts, err := s.ReadUnresolvedPendingTransactions(ctx)
	assert.Nil(t, err)
	assert.Len(t, pts, 1)
}

func TestPendingStatusUpdateAndClear(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	pt := payment.PendingTransaction{WalletAddress: "addr1", TransactionID: "trx-1", Status: payment.StatusSubmitted}
	assert.Nil(t, s.WritePendingTransaction(ctx, &pt))
	assert.Nil(t, s.UpdatePendingTransactionStatus(ctx, "addr1", payment.StatusTimedOut))

	read, ok, err := s.ReadPendingTransaction(ctx, "addr1")
	assert.Nil(t, err)
	assert.True(t, ok)
	assert.Equal(t, payment.StatusTimedOut, read.Status)

	pts, err := s.ReadUnresolvedPendingTransactions(ctx)
	assert.Nil(t, err)
	assert.Len(t, pts, 0)

	assert.Nil(t, s.ClearPendingTransaction(ctx, "addr1"))
	_, ok, err = s.ReadPendingTransaction(ctx, "addr1")
	assert.Nil(t, err)
	assert.False(t, ok)

	assert.ErrorIs(t, s.UpdatePendingTransactionStatus(ctx, "addr1", payment.StatusFailed), ErrPendingNotFound)
}

func TestWriteListingUniqueTransactionID(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	l := listing.Listing{TransactionID: "trx-1", Kind: listing.KindJob, Title: "Go Engineer", Company: "Acme", WalletAddress: "addr1", Status: listing.StatusConfirmed}
	assert.Nil(t, s.WriteListing(ctx, &l))
	assert.Equal(t, int64(1), l.ID)

	second := listing.Listing{TransactionID: "trx-1"}
	assert.ErrorIs(t, s.WriteListing(ctx, &second), ErrListingExists)

	read, ok, err := s.ReadListingByTransactionID(ctx, "trx-1")
	assert.Nil(t, err)
	assert.True(t, ok)
	assert.Equal(t, l.ID, read.ID)
}

func TestReadListingsFilters(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	now := time.Now()

	listings := []listing.Listing{
		{TransactionID: "t1", Kind: listing.KindJob, Title: "A", Company: "Acme", Category: "eng", WalletAddress: "addr1", Status: listing.StatusConfirmed, ExpiresAt: now.Add(time.Hour)},
		{TransactionID: "t2", Kind: listing.KindJob, Title: "B", Company: "Acme", Category: "ops", WalletAddress: "addr2", Status: listing.StatusConfirmed, ExpiresAt: now.Add(-time.Hour)},
		{TransactionID: "t3", Kind: listing.KindProject, Title: "Acme", Company: "Acme", WalletAddress: "addr1", Status: listing.StatusPaused, ExpiresAt: now.Add(time.Hour)},
	}
	for i := range listings {
		assert.Nil(t, s.WriteListing(ctx, &listings[i]))
	}

	byWallet, err := s.ReadListings(ctx, &listing.Filters{WalletAddress: "addr1"})
	assert.Nil(t, err)
	assert.Len(t, byWallet, 2)

	active, err := s.ReadListings(ctx, &listing.Filters{ActiveOnly: true})
	assert.Nil(t, err)
	assert.Len(t, active, 1)
	assert.Equal(t, "t1", active[0].TransactionID)

	byCategory, err := s.ReadListings(ctx, &listing.Filters{Category: "ops"})
	assert.Nil(t, err)
	assert.Len(t, byCategory, 1)
}

func TestCheckProjectOwned(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	now := time.Now()

	p := listing.Listing{TransactionID: "t1", Kind: listing.KindProject, Title: "Acme", Company: "Acme", WalletAddress: "addr1", Status: listing.StatusConfirmed, ExpiresAt: now.Add(time.Hour)}
	assert.Nil(t, s.WriteListing(ctx, &p))

	ok, err := s.CheckProjectOwned(ctx, "addr1", "Acme")
	assert.Nil(t, err)
	assert.True(t, ok)

	ok, err = s.CheckProjectOwned(ctx, "addr2", "Acme")
	assert.Nil(t, err)
	assert.False(t, ok)
}
