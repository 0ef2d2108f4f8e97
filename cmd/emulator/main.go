package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"

	"github.com/bartossh/Mercantis/configuration"
	"github.com/bartossh/Mercantis/emulator"
	"github.com/bartossh/Mercantis/logging"
	"github.com/bartossh/Mercantis/logo"
	"github.com/bartossh/Mercantis/stdoutwriter"
	"github.com/bartossh/Mercantis/wallet"
)

const usage = `The ledger emulator stands in for the external payment ledger in development setups.
Submitted payment intents confirm after a configured number of status lookups or fail when the paid
amount is below the accepted fee.`

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
		Name:  "emulator",
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

	ledger := emulator.NewLedger(cfg.Emulator, wallet.NewVerifier())

	if err := emulator.Run(ctx, cfg.Emulator, ledger, log); err != nil {
		log.Error(err.Error())
	}
}
