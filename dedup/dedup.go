package dedup

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/bartossh/Mercantis/listing"
	"github.com/bartossh/Mercantis/logger"
	"github.com/bartossh/Mercantis/telemetry"
)

var ErrSweepFailed = errors.New("deduplication sweep failed")

// ListingsReadRemover abstracts the storage the guard sweeps over.
type ListingsReadRemover interface {
	ReadAllListings(ctx context.Context) ([]listing.Listing, error)
	RemoveListings(ctx context.Context, ids []int64) error
}

// Config contains configuration of the deduplication guard.
type Config struct {
	WindowMinutes int64 `yaml:"window_minutes"` // near-simultaneous window of the content pass
}

// Report summarizes a single sweep.
type Report struct {
	RemovedByTransaction int `json:"removed_by_transaction"`
	RemovedByContent     int `json:"removed_by_content"`
}

// Guard removes duplicated listings in two passes. The exact pass collapses
// listings sharing a transaction id, keeping the row with the lowest id.
// The content pass collapses listings with the same title, company and wallet
// created within the configured window, keeping the earliest.
type Guard struct {
	window int64 // microseconds
	store  ListingsReadRemover
	log    logger.Logger
}

// NewGuard creates a new deduplication Guard.
func NewGuard(cfg Config, store ListingsReadRemover, log logger.Logger) *Guard {
	if cfg.WindowMinutes < 1 {
		cfg.WindowMinutes = 5
	}
	return &Guard{window: cfg.WindowMinutes * 60 * 1_000_000, store: store, log: log}
}

// Sweep runs both deduplication passes over the whole listings storage.
func (g *Guard) Sweep(ctx context.Context) (Report, error) {
	all, err := g.store.ReadAllListings(ctx)
	if err != nil {
		return Report{}, errors.Join(ErrSweepFailed, err)
	}

	exact := g.exactPass(all)
	survivors := prune(all, exact)
	content := g.contentPass(survivors)

	var report Report
	if len(exact) != 0 {
		if err := g.store.RemoveListings(ctx, exact); err != nil {
			return report, errors.Join(ErrSweepFailed, err)
		}
		report.RemovedByTransaction = len(exact)
	}
	if len(content) != 0 {
		if err := g.store.RemoveListings(ctx, content); err != nil {
			return report, errors.Join(ErrSweepFailed, err)
		}
		report.RemovedByContent = len(content)
	}

	removed := report.RemovedByTransaction + report.RemovedByContent
	if removed != 0 {
		telemetry.AddDuplicatesRemoved(removed)
		g.log.Info(fmt.Sprintf(
			"dedup: sweep removed [ %v ] duplicated listings, [ %v ] by transaction id, [ %v ] by content",
			removed, report.RemovedByTransaction, report.RemovedByContent))
	}
	return report, nil
}

// exactPass finds listings sharing a transaction id and marks all but the
// lowest id row for removal.
func (g *Guard) exactPass(all []listing.Listing) []int64 {
	groups := make(map[string][]listing.Listing)
	for _, l := range all {
		groups[l.TransactionID] = append(groups[l.TransactionID], l)
	}

	var remove []int64
	for _, group := range groups {
		if len(group) < 2 {
			continue
		}
		sort.Slice(group, func(i, j int) bool { return group[i].ID < group[j].ID })
		for _, l := range group[1:] {
			remove = append(remove, l.ID)
		}
	}
	return remove
}

// contentPass finds listings with matching content created within the window
// and marks all but the earliest for removal. Listings spread wider than the
// window are legitimate reposts and stay.
func (g *Guard) contentPass(all []listing.Listing) []int64 {
	groups := make(map[string][]listing.Listing)
	for _, l := range all {
		k := contentKey(&l)
		groups[k] = append(groups[k], l)
	}

	var remove []int64
	for _, group := range groups {
		if len(group) < 2 {
			continue
		}
		sort.Slice(group, func(i, j int) bool {
			return group[i].CreatedAt.Before(group[j].CreatedAt)
		})
		earliest := group[0]
		for _, l := range group[1:] {
			if l.CreatedAt.Sub(earliest.CreatedAt).Microseconds() >= g.window {
				earliest = l
				continue
			}
			remove = append(remove, l.ID)
		}
	}
	return remove
}

func contentKey(l *listing.Listing) string {
	return strings.Join([]string{string(l.Kind), l.Title, l.Company, l.WalletAddress}, "|")
}

func prune(all []listing.Listing, removed []int64) []listing.Listing {
	if len(removed) == 0 {
		return all
	}
	gone := make(map[int64]struct{}, len(removed))
	for _, id := range removed {
		gone[id] = struct{}{}
	}
	survivors := make([]listing.Listing, 0, len(all))
	for _, l := range all {
		if _, ok := gone[l.ID]; ok {
			continue
		}
		survivors = append(survivors, l)
	}
	return survivors
}
