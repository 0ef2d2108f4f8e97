package creator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/bartossh/Mercantis/listing"
	"github.com/bartossh/Mercantis/localcache"
)

type nopLogger struct{}

func (nopLogger) Debug(msg string) {}
func (nopLogger) Info(msg string)  {}
func (nopLogger) Warn(msg string)  {}
func (nopLogger) Error(msg string) {}
func (nopLogger) Fatal(msg string) {}

func jobPayload(company string) listing.Payload {
	return listing.Payload{
		Kind:          listing.KindJob,
		Title:         "Rust Engineer",
		Company:       company,
		Category:      "engineering",
		WalletAddress: "addr1",
		DurationDays:  30,
	}
}

func TestCreateIdempotentByTransactionID(t *testing.T) {
	ctx := context.Background()
	store := localcache.NewStore()
	c := New(store, nopLogger{})

	p := jobPayload(listing.IndependentCompany)
	first, err := c.Create(ctx, &p, "trx-1")
	assert.Nil(t, err)
	assert.NotZero(t, first.ID)
	assert.Equal(t, listing.StatusConfirmed, first.Status)

	second, err := c.Create(ctx, &p, "trx-1")
	assert.Nil(t, err)
	assert.Equal(t, first.ID, second.ID)

	all, err := store.ReadAllListings(ctx)
	assert.Nil(t, err)
	assert.Len(t, all, 1)
}

func TestCreateDerivesExpiry(t *testing.T) {
	ctx := context.Background()
	c := New(localcache.NewStore(), nopLogger{})

	p := jobPayload(listing.IndependentCompany)
	p.DurationDays = 7
	l, err := c.Create(ctx, &p, "trx-1")
	assert.Nil(t, err)
	assert.InDelta(t, 7*24*time.Hour, l.ExpiresAt.Sub(l.CreatedAt), float64(time.Minute))
}

func TestCreateCompanyMustBeVerifiedProject(t *testing.T) {
	ctx := context.Background()
	store := localcache.NewStore()
	c := New(store, nopLogger{})

	p := jobPayload("Acme")
	_, err := c.Create(ctx, &p, "trx-1")
	assert.True(t, IsValidationError(err))
	assert.ErrorIs(t, err, ErrCompanyNotVerified)

	// materialize the project first, owned by the same wallet
	project := listing.Payload{
		Kind: listing.KindProject, Title: "Acme", Company: "Acme",
		WalletAddress: "addr1", DurationDays: 90,
	}
	_, err = c.Create(ctx, &project, "trx-project")
	assert.Nil(t, err)

	l, err := c.Create(ctx, &p, "trx-1")
	assert.Nil(t, err)
	assert.NotZero(t, l.ID)
}

func TestCreateCompanyOwnedByOtherWalletRejected(t *testing.T) {
	ctx := context.Background()
	store := localcache.NewStore()
	c := New(store, nopLogger{})

	project := listing.Payload{
		Kind: listing.KindProject, Title: "Acme", Company: "Acme",
		WalletAddress: "addr2", DurationDays: 90,
	}
	_, err := c.Create(ctx, &project, "trx-project")
	assert.Nil(t, err)

	p := jobPayload("Acme") // owned by addr1
	_, err = c.Create(ctx, &p, "trx-1")
	assert.True(t, IsValidationError(err))
}

func TestCreateInvalidPayload(t *testing.T) {
	ctx := context.Background()
	c := New(localcache.NewStore(), nopLogger{})

	p := jobPayload(listing.IndependentCompany)
	p.Title = ""
	_, err := c.Create(ctx, &p, "trx-1")
	assert.True(t, IsValidationError(err))
}
