package dedup

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/bartossh/Mercantis/listing"
)

type nopLogger struct{}

func (nopLogger) Debug(msg string) {}
func (nopLogger) Info(msg string)  {}
func (nopLogger) Warn(msg string)  {}
func (nopLogger) Error(msg string) {}
func (nopLogger) Fatal(msg string) {}

// fakeStore allows seeding rows the real storage constraints would reject,
// which is exactly the corrupted state the guard exists to repair.
type fakeStore struct {
	rows []listing.Listing
}

func (s *fakeStore) ReadAllListings(_ context.Context) ([]listing.Listing, error) {
	out := make([]listing.Listing, len(s.rows))
	copy(out, s.rows)
	return out, nil
}

func (s *fakeStore) RemoveListings(_ context.Context, ids []int64) error {
	gone := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		gone[id] = struct{}{}
	}
	kept := s.rows[:0]
	for _, l := range s.rows {
		if _, ok := gone[l.ID]; !ok {
			kept = append(kept, l)
		}
	}
	s.rows = kept
	return nil
}

func row(id int64, trxID, title string, createdAt time.Time) listing.Listing {
	return listing.Listing{
		ID:            id,
		TransactionID: trxID,
		Kind:          listing.KindJob,
		Title:         title,
		Company:       listing.IndependentCompany,
		WalletAddress: "addr1",
		Status:        listing.StatusConfirmed,
		CreatedAt:     createdAt,
		ExpiresAt:     createdAt.Add(30 * 24 * time.Hour),
	}
}

func ids(rows []listing.Listing) []int64 {
	out := make([]int64, 0, len(rows))
	for _, l := range rows {
		out = append(out, l.ID)
	}
	return out
}

func TestSweepExactPassKeepsLowestID(t *testing.T) {
	now := time.Now()
	store := &fakeStore{rows: []listing.Listing{
		row(3, "trx-1", "Rust Engineer", now.Add(2*time.Minute)),
		row(1, "trx-1", "Rust Engineer", now),
		row(2, "trx-1", "Rust Engineer", now.Add(time.Minute)),
	}}

	g := NewGuard(Config{}, store, nopLogger{})
	report, err := g.Sweep(context.Background())
	assert.Nil(t, err)
	assert.Equal(t, 2, report.RemovedByTransaction)
	assert.Equal(t, 0, report.RemovedByContent)
	assert.Equal(t, []int64{1}, ids(store.rows))
}

func TestSweepContentPassCollapsesWithinWindow(t *testing.T) {
	now := time.Now()
	store := &fakeStore{rows: []listing.Listing{
		row(1, "trx-1", "Rust Engineer", now),
		row(2, "trx-2", "Rust Engineer", now.Add(2*time.Minute)),
	}}

	g := NewGuard(Config{WindowMinutes: 5}, store, nopLogger{})
	report, err := g.Sweep(context.Background())
	assert.Nil(t, err)
	assert.Equal(t, 0, report.RemovedByTransaction)
	assert.Equal(t, 1, report.RemovedByContent)
	assert.Equal(t, []int64{1}, ids(store.rows))
}

func TestSweepContentPassKeepsRepostsOutsideWindow(t *testing.T) {
	now := time.Now()
	store := &fakeStore{rows: []listing.Listing{
		row(1, "trx-1", "Rust Engineer", now),
		row(2, "trx-2", "Rust Engineer", now.Add(10*time.Minute)),
	}}

	g := NewGuard(Config{WindowMinutes: 5}, store, nopLogger{})
	report, err := g.Sweep(context.Background())
	assert.Nil(t, err)
	assert.Equal(t, Report{}, report)
	assert.Len(t, store.rows, 2)
}

func TestSweepExactWinnerAnchorsContentPass(t *testing.T) {
	now := time.Now()
	// rows 1 and 2 share a transaction, row 3 repeats the content of the winner
	store := &fakeStore{rows: []listing.Listing{
		row(1, "trx-1", "Rust Engineer", now),
		row(2, "trx-1", "Rust Engineer", now.Add(time.Minute)),
		row(3, "trx-2", "Rust Engineer", now.Add(2*time.Minute)),
	}}

	g := NewGuard(Config{WindowMinutes: 5}, store, nopLogger{})
	report, err := g.Sweep(context.Background())
	assert.Nil(t, err)
	assert.Equal(t, 1, report.RemovedByTransaction)
	assert.Equal(t, 1, report.RemovedByContent)
	assert.Equal(t, []int64{1}, ids(store.rows))
}

func TestSweepDifferentContentUntouched(t *testing.T) {
	now := time.Now()
	store := &fakeStore{rows: []listing.Listing{
		row(1, "trx-1", "Rust Engineer", now),
		row(2, "trx-2", "Go Engineer", now.Add(time.Minute)),
	}}

	g := NewGuard(Config{}, store, nopLogger{})
	report, err := g.Sweep(context.Background())
	assert.Nil(t, err)
	assert.Equal(t, Report{}, report)
	assert.Len(t, store.rows, 2)
}
