package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"

	"github.com/bartossh/Mercantis/configuration"
	"github.com/bartossh/Mercantis/creator"
	"github.com/bartossh/Mercantis/dedup"
	"github.com/bartossh/Mercantis/ledgerclient"
	"github.com/bartossh/Mercantis/listing"
	"github.com/bartossh/Mercantis/localcache"
	"github.com/bartossh/Mercantis/logging"
	"github.com/bartossh/Mercantis/logo"
	"github.com/bartossh/Mercantis/monitor"
	"github.com/bartossh/Mercantis/natsclient"
	"github.com/bartossh/Mercantis/payment"
	"github.com/bartossh/Mercantis/repository"
	"github.com/bartossh/Mercantis/server"
	"github.com/bartossh/Mercantis/stdoutwriter"
	"github.com/bartossh/Mercantis/telemetry"
	"github.com/bartossh/Mercantis/wallet"
	"github.com/bartossh/Mercantis/webhooks"
)

const usage = `The Mercantis node accepts signed payment intents for job and project listings,
tracks the payment on the ledger until it confirms and materializes the paid listing exactly once.
It serves the listings search, payment status, abandonment, deduplication and webhook REST API.`

const dedupSweepInterval = time.Hour

// storage is the union of the store surfaces the node wires together.
// Both the postgres repository and the in-memory cache satisfy it.
type storage interface {
	WritePendingTransaction(ctx context.Context, pt *payment.PendingTransaction) error
	ReadPendingTransaction(ctx context.Context, walletAddress string) (payment.PendingTransaction, bool, error)
	UpdatePendingTransactionStatus(ctx context.Context, walletAddress string, status payment.Status) error
	ClearPendingTransaction(ctx context.Context, walletAddress string) error
	ReadUnresolvedPendingTransactions(ctx context.Context) ([]payment.PendingTransaction, error)
	WriteListing(ctx context.Context, l *listing.Listing) error
	ReadListingByTransactionID(ctx context.Context, transactionID string) (listing.Listing, bool, error)
	ReadListings(ctx context.Context, f *listing.Filters) ([]listing.Listing, error)
	ReadAllListings(ctx context.Context) ([]listing.Listing, error)
	RemoveListings(ctx context.Context, ids []int64) error
	CheckProjectOwned(ctx context.Context, walletAddress, name string) (bool, error)
}

func main() {
	logo.Display()

	var file string
	configurator := func() (configuration.Configuration, error) {
		if file == "" {
			return configuration.Configuration{}, errors.New("please specify configuration file path with -c <path to file>")
		}

		cfg, err := configuration.Read(file)
		if err != nil {
			return cfg, err
		}

		return cfg, nil
	}

	app := &cli.App{
		Name:  "node",
		Usage: usage,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Load configuration from `FILE`",
				Destination: &file,
			},
		},
		Action: func(cCtx *cli.Context) error {
			cfg, err := configurator()
			if err != nil {
				return err
			}
			run(cfg)
			return nil
		},
	}

	if err := app.Run(os.Args); err != nil {
		pterm.Error.Println(err.Error())
	}
}

func run(cfg configuration.Configuration) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)

	go func() {
		<-c
		cancel()
	}()

	callbackOnErr := func(err error) {
		fmt.Println("logger error: ", err)
	}

	log := logging.New(callbackOnErr, stdoutwriter.Logger{})

	var store storage = localcache.NewStore()
	if cfg.Database.ConnStr != "" {
		db, err := repository.Connect(ctx, cfg.Database)
		if err != nil {
			fmt.Println(err)
			c <- os.Interrupt
			return
		}
		ctxx, cancelClose := context.WithTimeout(context.Background(), time.Second*1)
		defer cancelClose()
		defer db.Disconnect(ctxx)
		if err := db.RunMigration(ctx); err != nil {
			fmt.Println(err)
			c <- os.Interrupt
			return
		}
		store = db

		listener, err := repository.Subscribe(ctx, cfg.Database)
		if err != nil {
			fmt.Println(err)
			c <- os.Interrupt
			return
		}
		defer listener.Close()
		notifications := make(chan repository.ListingNotification, 100)
		listener.SubscribeToListingInserts(ctx, notifications)
		go func() {
			for n := range notifications {
				log.Info(fmt.Sprintf("node: listing [ %v ] inserted for transaction [ %s ]", n.Data.ID, n.Data.TransactionID))
			}
		}()
	}

	verify := wallet.NewVerifier()
	ledger := ledgerclient.NewClient(cfg.Ledger)
	crt := creator.New(store, log)
	supervisor := monitor.NewSupervisor(cfg.Monitor, store, ledger, crt, log)
	guard := dedup.NewGuard(cfg.Dedup, store, log)
	wh := webhooks.New(log)

	var pub *natsclient.Publisher
	if cfg.Nats.Address != "" {
		var err error
		pub, err = natsclient.PublisherConnect(cfg.Nats)
		if err != nil {
			fmt.Println(err)
			c <- os.Interrupt
			return
		}
		defer pub.Disconnect()
	}

	sub := supervisor.Events().Subscribe()
	defer sub.Cancel()
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case ev := <-sub.Channel():
				wh.PostWebhookEvent(&ev)
				if pub != nil {
					if err := pub.PublishPaymentEvent(&ev); err != nil {
						log.Error(fmt.Sprintf("node: failed to publish payment event: %s", err.Error()))
					}
				}
			}
		}
	}()

	if cfg.Telemetry.Port != 0 {
		go func() {
			if err := telemetry.Run(ctx, cancel, cfg.Telemetry.Port); err != nil {
				log.Error(err.Error())
			}
		}()
	}

	go func() {
		tc := time.NewTicker(dedupSweepInterval)
		defer tc.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-tc.C:
				if _, err := guard.Sweep(ctx); err != nil {
					log.Error(err.Error())
				}
			}
		}
	}()

	if err := supervisor.Resume(ctx); err != nil {
		fmt.Println(err)
		c <- os.Interrupt
		return
	}

	if err := server.Run(ctx, cfg.Server, ledger, store, store, supervisor, guard, wh, verify, log); err != nil {
		log.Error(err.Error())
	}
}
