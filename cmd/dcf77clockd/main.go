package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ceigel/dcf77/pkg/app"
	"github.com/ceigel/dcf77/pkg/app/config"

	"github.com/urfave/cli/v2"
	"github.com/womat/debug"
)

const defaultConfigFile = "/opt/dcf77clockd/config/" + app.MODULE + ".yaml"

func main() {
	os.Exit(run())
}

func run() int {
	debug.SetDebug(os.Stderr, debug.Standard)
	cfg := config.NewConfig()

	application := &cli.App{
		Name:  app.MODULE,
		Usage: "DCF77 radio clock daemon",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Usage:       "config file",
				Value:       defaultConfigFile,
				Destination: &cfg.Flag.ConfigFile,
			},
			&cli.StringFlag{
				Name:        "log",
				Usage:       "log level (fatal | error | warning | info | debug | trace)",
				Destination: &cfg.Flag.LogLevel,
			},
		},
		Action: func(c *cli.Context) error {
			return serve(cfg)
		},
	}

	if err := application.Run(os.Args); err != nil {
		fmt.Println(err)
		return 1
	}
	return 0
}

func serve(cfg *config.Config) error {
	if err := cfg.LoadConfig(); err != nil {
		return err
	}

	debug.SetDebug(cfg.Log.File, cfg.Log.Flag)
	defer func() {
		debug.InfoLog.Printf("closing log file %s", cfg.Log.FileString)
		_ = cfg.Log.File.Close()
	}()

	debug.InfoLog.Printf("starting %s", app.Version())
	a, err := app.New(cfg)
	if err != nil {
		debug.FatalLog.Print(err)
		return err
	}
	defer func() {
		debug.InfoLog.Printf("closing %s", app.Version())
		_ = a.Close()
	}()

	if err := a.Run(); err != nil {
		debug.FatalLog.Print(err)
		return err
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	sig := <-quit
	debug.InfoLog.Printf("got %s signal, shutting down", sig)
	return nil
}
