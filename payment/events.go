package payment

import (
	"time"

	"github.com/bartossh/Mercantis/listing"
)

// EventKind names the terminal outcomes of the payment pipeline.
type EventKind string

const (
	EventListingCreated  EventKind = "listing_created"
	EventPaymentFailed   EventKind = "payment_failed"
	EventPaymentTimedOut EventKind = "payment_timed_out"
)

// Event is a payment lifecycle notification delivered to subscribers.
// Events are delivered at least once to active subscribers and are not durable,
// the pending transaction and listing stores remain the source of truth.
type Event struct {
	Kind          EventKind    `json:"kind"`
	WalletAddress string       `json:"wallet_address"`
	TransactionID string       `json:"transaction_id"`
	ListingKind   listing.Kind `json:"listing_kind,omitempty"`
	ListingID     int64        `json:"listing_id,omitempty"`
	Reason        string       `json:"reason,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
}
