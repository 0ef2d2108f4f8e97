package server

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/bartossh/Mercantis/dedup"
	"github.com/bartossh/Mercantis/listing"
	"github.com/bartossh/Mercantis/logger"
	"github.com/bartossh/Mercantis/payment"
	"github.com/bartossh/Mercantis/webhooks"
)

const (
	ApiVersion = "1.0.0"
	Header     = "Mercantis-Node"
)

const (
	paymentGroupURL = "/payment"
	searchGroupURL  = "/search"
	adminGroupURL   = "/admin"
	webhookGroupURL = "/webhook"
	createURL       = "/create"
	statusURL       = "/status"
	abandonURL      = "/abandon"
	listingsURL     = "/listings"
	deduplicateURL  = "/deduplicate"
	removeURL       = "/remove"
)

const (
	AliveURL          = "/alive"                        // URL to check if server is alive and version.
	CreatePaymentURL  = paymentGroupURL + createURL     // URL to submit a signed payment intent for a listing.
	PaymentStatusURL  = paymentGroupURL + statusURL     // URL to read the pending transaction of a wallet.
	PaymentAbandonURL = paymentGroupURL + abandonURL    // URL to abandon an unconfirmed payment attempt.
	SearchListingsURL = searchGroupURL + listingsURL    // URL to search listings by filters.
	DeduplicateURL    = adminGroupURL + deduplicateURL  // URL to run the deduplication sweep.
	CreateWebhookURL  = webhookGroupURL + createURL     // URL to register a payment event webhook.
	RemoveWebhookURL  = webhookGroupURL + removeURL     // URL to remove a payment event webhook.
)

var (
	ErrWrongPortSpecified = errors.New("port must be between 1 and 65535")
)

// PaymentGateway abstracts the ledger the payments are submitted to.
type PaymentGateway interface {
	SubmitPayment(ctx context.Context, intent *payment.Intent) (string, error)
}

// PendingReadWriter abstracts the durable pending transaction store.
type PendingReadWriter interface {
	WritePendingTransaction(ctx context.Context, pt *payment.PendingTransaction) error
	ReadPendingTransaction(ctx context.Context, walletAddress string) (payment.PendingTransaction, bool, error)
}

// ListingsReader abstracts the listings search.
type ListingsReader interface {
	ReadListings(ctx context.Context, f *listing.Filters) ([]listing.Listing, error)
}

// PaymentWatcher abstracts the monitor supervising payments in flight.
type PaymentWatcher interface {
	Watch(ctx context.Context, pt payment.PendingTransaction)
	Abandon(ctx context.Context, walletAddress string) (bool, error)
}

// Deduplicator abstracts the guard removing duplicated listings.
type Deduplicator interface {
	Sweep(ctx context.Context) (dedup.Report, error)
}

// WebhookCreateRemover abstracts registration of payment event webhooks.
type WebhookCreateRemover interface {
	CreateWebhook(trigger byte, walletAddress string, h webhooks.Hook) error
	RemoveWebhook(trigger byte, walletAddress string) error
}

// Verifier provides methods to verify the signature of the message.
type Verifier interface {
	Verify(message, signature []byte, hash [32]byte, address string) error
}

// Config contains configuration of the server.
type Config struct {
	Port int `yaml:"port"` // Port to listen on.
}

type server struct {
	watchCtx context.Context
	gateway  PaymentGateway
	store    PendingReadWriter
	listings ListingsReader
	watcher  PaymentWatcher
	dedup    Deduplicator
	hooks    WebhookCreateRemover
	verifier Verifier
	log      logger.Logger
}

// Run initializes routing and runs the server. To stop the server cancel the context.
// It blocks until the context is canceled.
func Run(
	ctx context.Context, c Config, gateway PaymentGateway, store PendingReadWriter,
	listings ListingsReader, watcher PaymentWatcher, deduplicator Deduplicator,
	hooks WebhookCreateRemover, v Verifier, log logger.Logger,
) error {
	var err error
	ctxx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := validateConfig(&c); err != nil {
		return err
	}

	s := &server{
		watchCtx: ctxx,
		gateway:  gateway,
		store:    store,
		listings: listings,
		watcher:  watcher,
		dedup:    deduplicator,
		hooks:    hooks,
		verifier: v,
		log:      log,
	}

	router := fiber.New(fiber.Config{
		Prefork:       false,
		CaseSensitive: true,
		StrictRouting: true,
		ReadTimeout:   time.Second * 5,
		WriteTimeout:  time.Second * 5,
		ServerHeader:  Header,
		AppName:       ApiVersion,
		Concurrency:   4096,
	})
	router.Use(recover.New())

	router.Get(AliveURL, s.alive)

	paymentGroup := router.Group(paymentGroupURL)
	paymentGroup.Post(createURL, s.paymentCreate)
	paymentGroup.Post(statusURL, s.paymentStatus)
	paymentGroup.Post(abandonURL, s.paymentAbandon)

	search := router.Group(searchGroupURL)
	search.Post(listingsURL, s.searchListings)

	admin := router.Group(adminGroupURL)
	admin.Post(deduplicateURL, s.deduplicate)

	webhook := router.Group(webhookGroupURL)
	webhook.Post(createURL, s.webhookCreate)
	webhook.Post(removeURL, s.webhookRemove)

	go func() {
		err = router.Listen(fmt.Sprintf("0.0.0.0:%v", c.Port))
		if err != nil {
			cancel()
		}
	}()

	<-ctxx.Done()

	if errx := router.Shutdown(); errx != nil {
		err = errors.Join(err, errx)
	}

	return err
}

func validateConfig(c *Config) error {
	if c.Port == 0 || c.Port > 65535 {
		return ErrWrongPortSpecified
	}
	return nil
}
