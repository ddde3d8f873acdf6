package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"github.com/urfave/cli/v2"

	"github.com/webitel/floorqueue/config"
)

const (
	ServiceName      = "floorqueue"
	ServiceNamespace = "webitel"
)

var (
	version        = "0.0.0"
	commit         = "hash"
	commitDate     = time.Now().String()
	branch         = "branch"
	buildTimestamp = ""
)

func Run() error {
	app := &cli.App{
		Name:  ServiceName,
		Usage: "Real-time queueing and hand-off coordination for dealership shopper/representative calls",
		Commands: []*cli.Command{
			serverCmd(),
			statusCmd(),
		},
	}

	return app.Run(os.Args)
}

func serverCmd() *cli.Command {
	return &cli.Command{
		Name:    "server",
		Aliases: []string{"s"},
		Usage:   "Run the queueing service",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "host", Usage: "listen host"},
			&cli.IntFlag{Name: "port", Usage: "listen port"},
		},
		Action: func(c *cli.Context) error {
			flags := pflag.NewFlagSet(ServiceName, pflag.ContinueOnError)
			flags.String("host", c.String("host"), "listen host")
			flags.Int("port", c.Int("port"), "listen port")
			// viper only lets a flag outrank its defaults once the flag is
			// marked changed, so copy over the values actually given.
			if c.IsSet("host") {
				_ = flags.Set("host", c.String("host"))
			}
			if c.IsSet("port") {
				_ = flags.Set("port", strconv.Itoa(c.Int("port")))
			}

			cfg, err := config.Load(flags)
			if err != nil {
				return err
			}

			app := NewApp(cfg)

			if err := app.Start(c.Context); err != nil {
				return err
			}

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
			<-stop

			slog.Info("Shutting down...")
			return app.Stop(context.Background())
		},
	}
}
