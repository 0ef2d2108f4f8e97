package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
)

const (
	minReconnectInterval = 5 * time.Second
	maxReconnectInterval = 30 * time.Second
)

const actionInsert = "INSERT"

// ListingNotification describes a listing inserted in to the storage.
// Delivered through the database NOTIFY channel, so every node observes
// listings materialized by its peers.
type ListingNotification struct {
	Table  string `json:"table"`
	Action string `json:"action"`
	Data   struct {
		ID            int64  `json:"id"`
		TransactionID string `json:"transaction_id"`
		WalletAddress string `json:"wallet_address"`
	} `json:"data"`
}

// Listener wraps listener for notifications from database.
// Provides methods for listening and closing.
type Listener struct {
	inner *pq.Listener
}

// Listen creates Listener for notifications from database.
func Listen(conn string, report func(ev pq.ListenerEventType, err error)) (Listener, error) {
	listener := pq.NewListener(fmt.Sprintf("%s?sslmode=disable", conn), minReconnectInterval, maxReconnectInterval, report)
	err := listener.Listen("events")
	if err != nil {
		return Listener{}, errors.Join(ErrListenFailed, err)
	}
	return Listener{inner: listener}, nil
}

// SubscribeToListingInserts forwards listing insert notifications to the channel.
// The channel is closed when ctx is canceled.
func (l Listener) SubscribeToListingInserts(ctx context.Context, c chan<- ListingNotification) {
	go func(ctx context.Context, inner *pq.Listener, c chan<- ListingNotification) {
		for {
			select {
			case n := <-inner.Notify:
				if n == nil {
					continue
				}
				var notification ListingNotification
				if err := json.Unmarshal([]byte(n.Extra), &notification); err != nil {
					continue
				}
				if notification.Table != "listings" || notification.Action != actionInsert {
					continue
				}
				c <- notification
			case <-ctx.Done():
				close(c)
				return
			}
		}
	}(ctx, l.inner, c)
}

// Close closes listener.
func (l Listener) Close() {
	l.inner.Close()
}
