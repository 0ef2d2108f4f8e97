package main

import (
	"errors"
	"os"
	"time"

	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"

	"github.com/bartossh/Mercantis/aeswrapper"
	"github.com/bartossh/Mercantis/apiclient"
	"github.com/bartossh/Mercantis/configuration"
	"github.com/bartossh/Mercantis/fileoperations"
	"github.com/bartossh/Mercantis/listing"
	"github.com/bartossh/Mercantis/logo"
	"github.com/bartossh/Mercantis/wallet"
)

const clientTimeout = 5 * time.Second

const usage = `Client CLI tool pays for job and project listings with the local wallet and tracks the payment
until the listing is published. The wallet is kept in an encrypted GOBINARY file.`

func main() {
	logo.Display()

	var config, apiRoot string
	var payload listing.Payload
	var amount int64

	configurator := func() (configuration.Configuration, error) {
		if config == "" {
			return configuration.Configuration{}, errors.New("please specify configuration file path with -c <path to file>")
		}

		cfg, err := configuration.Read(config)
		if err != nil {
			return cfg, err
		}

		return cfg, nil
	}

	clientCreator := func() (*apiclient.Client, error) {
		cfg, err := configurator()
		if err != nil {
			return nil, err
		}
		fo := fileoperations.New(cfg.FileOperator, aeswrapper.New())
		c := apiclient.NewClient(apiRoot, clientTimeout, fo, wallet.New)
		if err := c.ValidateApiVersion(); err != nil {
			return nil, err
		}
		return c, nil
	}

	app := &cli.App{
		Name:  "client",
		Usage: usage,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Load configuration from `FILE`",
				Destination: &config,
			},
			&cli.StringFlag{
				Name:        "node",
				Aliases:     []string{"n"},
				Usage:       "Node API root `URL`",
				Value:       "http://localhost:8080",
				Destination: &apiRoot,
			},
		},
		Commands: []*cli.Command{
			{
				Name:    "wallet",
				Aliases: []string{"w"},
				Usage:   "Creates new wallet and saves it to encrypted GOBINARY file.",
				Action: func(_ *cli.Context) error {
					cfg, err := configurator()
					if err != nil {
						return err
					}
					w, err := wallet.New()
					if err != nil {
						return err
					}
					fo := fileoperations.New(cfg.FileOperator, aeswrapper.New())
					if err := fo.SaveWallet(w); err != nil {
						return err
					}
					pterm.Info.Printfln("wallet address: %s", w.Address())
					return nil
				},
			},
			{
				Name:    "create",
				Aliases: []string{"cr"},
				Usage:   "Pays for a new listing and returns the transaction id tracking the payment.",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "kind", Usage: "listing kind, job or project", Value: string(listing.KindJob)},
					&cli.StringFlag{Name: "title", Usage: "listing title", Required: true},
					&cli.StringFlag{Name: "company", Usage: "company name, verified project or Independent", Value: listing.IndependentCompany},
					&cli.StringFlag{Name: "description", Usage: "listing description"},
					&cli.StringFlag{Name: "category", Usage: "listing category"},
					&cli.StringFlag{Name: "email", Usage: "contact email"},
					&cli.StringFlag{Name: "website", Usage: "website url"},
					&cli.IntFlag{Name: "days", Usage: "duration in days", Value: 30},
					&cli.Int64Flag{Name: "amount", Usage: "payment amount", Required: true},
				},
				Action: func(cCtx *cli.Context) error {
					payload = listing.Payload{
						Kind:         listing.Kind(cCtx.String("kind")),
						Title:        cCtx.String("title"),
						Company:      cCtx.String("company"),
						Description:  cCtx.String("description"),
						Category:     cCtx.String("category"),
						ContactEmail: cCtx.String("email"),
						WebsiteURL:   cCtx.String("website"),
						DurationDays: cCtx.Int("days"),
					}
					amount = cCtx.Int64("amount")

					c, err := clientCreator()
					if err != nil {
						return err
					}
					if err := c.ReadWalletFromFile(); err != nil {
						return err
					}
					id, err := c.CreateListing(payload, amount)
					if err != nil {
						return err
					}
					pterm.Info.Printfln("payment submitted, transaction id: %s", id)
					return nil
				},
			},
			{
				Name:    "status",
				Aliases: []string{"s"},
				Usage:   "Reads the pending payment of the local wallet.",
				Action: func(_ *cli.Context) error {
					c, err := clientCreator()
					if err != nil {
						return err
					}
					if err := c.ReadWalletFromFile(); err != nil {
						return err
					}
					pt, ok, err := c.PendingStatus()
					if err != nil {
						return err
					}
					if !ok {
						pterm.Info.Println("no payment in flight")
						return nil
					}
					pterm.Info.Printfln("transaction %s is %s since %s", pt.TransactionID, pt.Status, pt.CreatedAt.Format(time.RFC3339))
					return nil
				},
			},
			{
				Name:    "abandon",
				Aliases: []string{"a"},
				Usage:   "Gives up on the unconfirmed payment of the local wallet.",
				Action: func(_ *cli.Context) error {
					c, err := clientCreator()
					if err != nil {
						return err
					}
					if err := c.ReadWalletFromFile(); err != nil {
						return err
					}
					abandoned, err := c.Abandon()
					if err != nil {
						return err
					}
					if !abandoned {
						pterm.Info.Println("nothing to abandon")
						return nil
					}
					pterm.Info.Println("payment abandoned")
					return nil
				},
			},
			{
				Name:    "listings",
				Aliases: []string{"l"},
				Usage:   "Searches active listings.",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "kind", Usage: "filter by listing kind"},
					&cli.StringFlag{Name: "category", Usage: "filter by category"},
				},
				Action: func(cCtx *cli.Context) error {
					c, err := clientCreator()
					if err != nil {
						return err
					}
					results, err := c.Listings(listing.Filters{
						Kind:       listing.Kind(cCtx.String("kind")),
						Category:   cCtx.String("category"),
						ActiveOnly: true,
					})
					if err != nil {
						return err
					}
					for _, l := range results {
						pterm.Info.Printfln("[ %v ] %s | %s | %s | expires %s", l.ID, l.Kind, l.Title, l.Company, l.ExpiresAt.Format(time.RFC3339))
					}
					pterm.Info.Printfln("found %v listings", len(results))
					return nil
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		pterm.Error.Println(err.Error())
	}
}
