package monitor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bartossh/Mercantis/creator"
	"github.com/bartossh/Mercantis/listing"
	"github.com/bartossh/Mercantis/logger"
	"github.com/bartossh/Mercantis/payment"
	"github.com/bartossh/Mercantis/reactive"
	"github.com/bartossh/Mercantis/telemetry"
)

var (
	ErrAlreadyConfirmed = errors.New("payment is already confirmed, abandonment has no effect")
)

const eventsBufferSize = 100

// PendingReadWriteClearer abstracts the durable pending transaction store.
// The store is the recovery anchor, the supervisor reads it back after restart.
type PendingReadWriteClearer interface {
	WritePendingTransaction(ctx context.Context, pt *payment.PendingTransaction) error
	ReadPendingTransaction(ctx context.Context, walletAddress string) (payment.PendingTransaction, bool, error)
	UpdatePendingTransactionStatus(ctx context.Context, walletAddress string, status payment.Status) error
	ClearPendingTransaction(ctx context.Context, walletAddress string) error
	ReadUnresolvedPendingTransactions(ctx context.Context) ([]payment.PendingTransaction, error)
}

// StatusChecker abstracts the ledger gateway confirmation lookup.
type StatusChecker interface {
	TransactionStatus(ctx context.Context, transactionID string) (payment.TrxStatus, error)
}

// ListingCreator abstracts the idempotent listing materialization step.
type ListingCreator interface {
	Create(ctx context.Context, p *listing.Payload, transactionID string) (listing.Listing, error)
}

// Config contains configuration of the monitor supervisor.
type Config struct {
	PollIntervalSeconds int64 `yaml:"poll_interval_seconds"` // interval between ledger lookups
	MaxWaitMinutes      int64 `yaml:"max_wait_minutes"`      // wall clock budget for a confirmation
}

type watchEntry struct {
	cancel context.CancelFunc
	gen    uint64
}

// Supervisor runs one polling task per wallet with a payment in flight.
// Each task advances the pending transaction state machine from submitted
// to confirmed, failed or timed out, and materializes the listing on
// confirmation. At most one task is active per wallet, starting a new one
// replaces the previous. Outcomes are published to subscribers.
type Supervisor struct {
	pollInterval time.Duration
	maxWait      time.Duration
	store        PendingReadWriteClearer
	checker      StatusChecker
	creator      ListingCreator
	log          logger.Logger
	obs          *reactive.Observable[payment.Event]
	mux          sync.Mutex
	watchers     map[string]watchEntry
	gen          uint64
}

// NewSupervisor creates a new monitor Supervisor.
func NewSupervisor(cfg Config, store PendingReadWriteClearer, checker StatusChecker, crt ListingCreator, log logger.Logger) *Supervisor {
	if cfg.PollIntervalSeconds < 1 {
		cfg.PollIntervalSeconds = 5
	}
	if cfg.MaxWaitMinutes < 1 {
		cfg.MaxWaitMinutes = 30
	}
	return &Supervisor{
		pollInterval: time.Duration(cfg.PollIntervalSeconds) * time.Second,
		maxWait:      time.Duration(cfg.MaxWaitMinutes) * time.Minute,
		store:        store,
		checker:      checker,
		creator:      crt,
		log:          log,
		obs:          reactive.New[payment.Event](eventsBufferSize),
		watchers:     make(map[string]watchEntry),
	}
}

// Events returns the observable of payment lifecycle events.
// Subscribe before starting watchers to not miss outcomes.
func (s *Supervisor) Events() *reactive.Observable[payment.Event] {
	return s.obs
}

// Resume scans the store for unresolved pending transactions and restarts
// a watcher for each of them. Elapsed timeout accounting continues from the
// persisted creation time, not from the restart.
func (s *Supervisor) Resume(ctx context.Context) error {
	pts, err := s.store.ReadUnresolvedPendingTransactions(ctx)
	if err != nil {
		return err
	}
	for _, pt := range pts {
		s.Watch(ctx, pt)
	}
	s.log.Info(fmt.Sprintf("monitor: resumed [ %v ] pending transaction watchers", len(pts)))
	return nil
}

// Watch starts a polling task for the pending transaction.
// An active watcher for the same wallet address is replaced.
func (s *Supervisor) Watch(ctx context.Context, pt payment.PendingTransaction) {
	ctxx, cancel := context.WithCancel(ctx)
	s.mux.Lock()
	if entry, ok := s.watchers[pt.WalletAddress]; ok {
		entry.cancel()
	}
	s.gen++
	gen := s.gen
	s.watchers[pt.WalletAddress] = watchEntry{cancel: cancel, gen: gen}
	s.mux.Unlock()

	go s.watch(ctxx, gen, pt)
}

// Abandon stops the watcher and clears the pending transaction for the wallet.
// It only takes effect before the payment confirms, a confirmed payment is
// always materialized.
func (s *Supervisor) Abandon(ctx context.Context, walletAddress string) (bool, error) {
	pt, ok, err := s.store.ReadPendingTransaction(ctx, walletAddress)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	if pt.Status == payment.StatusConfirmed {
		return false, ErrAlreadyConfirmed
	}
	s.mux.Lock()
	if entry, ok := s.watchers[walletAddress]; ok {
		entry.cancel()
		delete(s.watchers, walletAddress)
	}
	s.mux.Unlock()
	if err := s.store.ClearPendingTransaction(ctx, walletAddress); err != nil {
		return false, err
	}
	s.log.Info(fmt.Sprintf("monitor: wallet [ %s ] abandoned pending transaction [ %s ]", walletAddress, pt.TransactionID))
	return true, nil
}

func (s *Supervisor) release(walletAddress string, gen uint64) {
	s.mux.Lock()
	defer s.mux.Unlock()
	if entry, ok := s.watchers[walletAddress]; ok && entry.gen == gen {
		delete(s.watchers, walletAddress)
	}
}

func (s *Supervisor) watch(ctx context.Context, gen uint64, pt payment.PendingTransaction) {
	defer s.release(pt.WalletAddress, gen)

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	deadline := pt.CreatedAt.Add(s.maxWait)
	confirmed := pt.Status == payment.StatusConfirmed

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if !confirmed {
			if s.pollLedger(ctx, &pt, deadline, &confirmed) {
				return
			}
			if !confirmed {
				continue
			}
		}

		if s.materialize(ctx, &pt) {
			return
		}
	}
}

// pollLedger advances the state machine by one ledger lookup.
// Returns true when the watcher reached a terminal state. When the payment
// confirms it flips the confirmed flag and reports false so materialization
// happens within the same tick.
func (s *Supervisor) pollLedger(ctx context.Context, pt *payment.PendingTransaction, deadline time.Time, confirmed *bool) bool {
	if !time.Now().Before(deadline) {
		if err := s.store.UpdatePendingTransactionStatus(ctx, pt.WalletAddress, payment.StatusTimedOut); err != nil {
			s.log.Error(fmt.Sprintf("monitor: wallet [ %s ] timeout status update failed, %s", pt.WalletAddress, err.Error()))
		}
		s.log.Warn(fmt.Sprintf("monitor: wallet [ %s ] transaction [ %s ] timed out waiting for confirmation", pt.WalletAddress, pt.TransactionID))
		s.publish(payment.Event{
			Kind:          payment.EventPaymentTimedOut,
			WalletAddress: pt.WalletAddress,
			TransactionID: pt.TransactionID,
			CreatedAt:     time.Now(),
		})
		return true
	}

	telemetry.IncPoll()
	status, err := s.checker.TransactionStatus(ctx, pt.TransactionID)
	if err != nil {
		// transient by policy, keep polling until the deadline
		telemetry.IncTransientError()
		s.log.Warn(fmt.Sprintf("monitor: wallet [ %s ] transaction lookup failed, %s", pt.WalletAddress, err.Error()))
		return false
	}

	switch status {
	case payment.TrxFailed:
		if err := s.store.UpdatePendingTransactionStatus(ctx, pt.WalletAddress, payment.StatusFailed); err != nil {
			s.log.Error(fmt.Sprintf("monitor: wallet [ %s ] failed status update failed, %s", pt.WalletAddress, err.Error()))
		}
		s.publish(payment.Event{
			Kind:          payment.EventPaymentFailed,
			WalletAddress: pt.WalletAddress,
			TransactionID: pt.TransactionID,
			Reason:        "payment rejected by the ledger",
			CreatedAt:     time.Now(),
		})
		return true
	case payment.TrxConfirmed:
		if err := s.store.UpdatePendingTransactionStatus(ctx, pt.WalletAddress, payment.StatusConfirmed); err != nil {
			s.log.Error(fmt.Sprintf("monitor: wallet [ %s ] confirmed status update failed, %s", pt.WalletAddress, err.Error()))
		}
		pt.Status = payment.StatusConfirmed
		*confirmed = true
	}
	return false
}

// materialize runs the idempotent listing creation for a confirmed payment.
// Returns true when the watcher is finished. Creation failures other than
// validation are retried on the next tick, a confirmed payment is never dropped.
func (s *Supervisor) materialize(ctx context.Context, pt *payment.PendingTransaction) bool {
	l, err := s.creator.Create(ctx, &pt.Payload, pt.TransactionID)
	if err != nil {
		if creator.IsValidationError(err) {
			s.log.Error(fmt.Sprintf(
				"monitor: wallet [ %s ] transaction [ %s ] payload rejected, pending transaction preserved for reconciliation, %s",
				pt.WalletAddress, pt.TransactionID, err.Error()))
			s.publish(payment.Event{
				Kind:          payment.EventPaymentFailed,
				WalletAddress: pt.WalletAddress,
				TransactionID: pt.TransactionID,
				Reason:        err.Error(),
				CreatedAt:     time.Now(),
			})
			return true
		}
		s.log.Error(fmt.Sprintf("monitor: wallet [ %s ] listing creation failed, retrying, %s", pt.WalletAddress, err.Error()))
		return false
	}

	if err := s.store.ClearPendingTransaction(ctx, pt.WalletAddress); err != nil {
		// the listing exists, creator idempotency makes the retried clear safe
		s.log.Error(fmt.Sprintf("monitor: wallet [ %s ] pending transaction clear failed, %s", pt.WalletAddress, err.Error()))
		return false
	}

	telemetry.IncListingCreated()
	s.log.Info(fmt.Sprintf("monitor: wallet [ %s ] transaction [ %s ] materialized listing [ %v ]", pt.WalletAddress, pt.TransactionID, l.ID))
	s.publish(payment.Event{
		Kind:          payment.EventListingCreated,
		WalletAddress: pt.WalletAddress,
		TransactionID: pt.TransactionID,
		ListingKind:   l.Kind,
		ListingID:     l.ID,
		CreatedAt:     time.Now(),
	})
	return true
}

func (s *Supervisor) publish(ev payment.Event) {
	s.obs.Publish(ev)
}
