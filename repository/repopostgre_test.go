//go:build integration

package repository

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"

	"github.com/bartossh/Mercantis/listing"
	"github.com/bartossh/Mercantis/payment"
)

func connectTestDB(t *testing.T, ctx context.Context) *DataBase {
	godotenv.Load("../.env")
	user := os.Getenv("POSTGRES_DB_USER")
	passwd := os.Getenv("POSTGRES_DB_PASSWORD")
	dbName := os.Getenv("POSTGRES_DB_NAME")

	db, err := Connect(ctx, DBConfig{
		ConnStr:      fmt.Sprintf("postgres://%s:%s@localhost:5432", user, passwd),
		DatabaseName: dbName,
	})
	assert.Nil(t, err)
	assert.Nil(t, db.Ping(ctx))
	assert.Nil(t, db.RunMigration(ctx))
	return db
}

func TestConnection(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db := connectTestDB(t, ctx)
	defer db.Disconnect(ctx)
}

func TestPendingTransactionCycle(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db := connectTestDB(t, ctx)
	defer db.Disconnect(ctx)

	wallet := fmt.Sprintf("test-wallet-%v", time.Now().UnixNano())
	pt := payment.PendingTransaction{
		WalletAddress: wallet,
		TransactionID: fmt.Sprintf("trx-%v", time.Now().UnixNano()),
		Payload: listing.Payload{
			Kind: listing.KindJob, Title: "Go Engineer", Company: listing.IndependentCompany,
			WalletAddress: wallet, DurationDays: 30,
		},
		Status:    payment.StatusSubmitted,
		CreatedAt: time.Now(),
	}
	assert.Nil(t, db.WritePendingTransaction(ctx, &pt))

	read, ok, err := db.ReadPendingTransaction(ctx, wallet)
	assert.Nil(t, err)
	assert.True(t, ok)
	assert.Equal(t, pt.TransactionID, read.TransactionID)
	assert.Equal(t, pt.Payload, read.Payload)

	// overwrite keeps a single record per wallet
	pt.TransactionID = fmt.Sprintf("trx-%v", time.Now().UnixNano())
	assert.Nil(t, db.WritePendingTransaction(ctx, &pt))
	read, ok, err = db.ReadPendingTransaction(ctx, wallet)
	assert.Nil(t, err)
	assert.True(t, ok)
	assert.Equal(t, pt.TransactionID, read.TransactionID)

	assert.Nil(t, db.ClearPendingTransaction(ctx, wallet))
	_, ok, err = db.ReadPendingTransaction(ctx, wallet)
	assert.Nil(t, err)
	assert.False(t, ok)
}

func TestListingUniqueTransactionID(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db := connectTestDB(t, ctx)
	defer db.Disconnect(ctx)

	now := time.Now()
	l := listing.Listing{
		TransactionID: fmt.Sprintf("trx-%v", now.UnixNano()),
		Kind:          listing.KindJob,
		Title:         "Go Engineer",
		Company:       listing.IndependentCompany,
		WalletAddress: "test-wallet",
		Status:        listing.StatusConfirmed,
		CreatedAt:     now,
		ExpiresAt:     now.Add(30 * 24 * time.Hour),
	}
	assert.Nil(t, db.WriteListing(ctx, &l))
	assert.NotZero(t, l.ID)

	second := l
	second.ID = 0
	err := db.WriteListing(ctx, &second)
	assert.ErrorIs(t, err, ErrListingExists)
}
