package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/booknest/internal/buildinfo"
	"github.com/dmitrijs2005/booknest/internal/client/cli"
	"github.com/dmitrijs2005/booknest/internal/client/client"
	"github.com/dmitrijs2005/booknest/internal/client/config"
	"github.com/dmitrijs2005/booknest/internal/client/services"
	"github.com/dmitrijs2005/booknest/internal/client/store"
	"github.com/dmitrijs2005/booknest/internal/logging"
)

func main() {
	buildinfo.PrintBuildData(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Fatalf("%v", err)
	}
	var logOut io.Writer = os.Stderr
	if cfg.LogFile != "" {
		f := logging.RotatingFile(cfg.LogFile)
		defer f.Close()
		logOut = f
	}
	logger := logging.New(logOut, level)

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error(ctx, "client stopped", "error", err)
		log.Fatalf("%v", err)
	}
}

func run(ctx context.Context, cfg *config.Config, logger logging.Logger) error {
	db, err := store.InitDatabase(ctx, cfg.StateDSN)
	if err != nil {
		return err
	}
	defer db.Close()

	var storeOpts []store.Option
	if cfg.SealPassphrase != "" {
		sealer, err := store.SealerFromPassphrase(ctx, db, []byte(cfg.SealPassphrase))
		if err != nil {
			return err
		}
		storeOpts = append(storeOpts, store.WithSealer(sealer))
	}
	sessions := store.NewSQLiteStore(db, storeOpts...)

	gw, err := client.NewGateway(cfg.APIBaseURL, client.WithLogger(logger))
	if err != nil {
		return err
	}
	api := client.NewRESTClient(gw)

	controller := services.NewSessionController(api, sessions,
		services.WithLogger(logger),
		services.WithNotifier(gw),
	)
	gw.Bind(controller)

	// A broken state database must not keep the storefront from opening.
	if _, err := controller.Initialize(ctx); err != nil {
		logger.Warn(ctx, "session restore failed", "error", err)
	}

	app := cli.NewApp(controller, api,
		cli.WithLogger(logger),
		cli.WithTimeout(cfg.RequestTimeout),
	)
	gw.Subscribe(app.OnLoginRequired)

	app.Run(ctx)
	return nil
}
