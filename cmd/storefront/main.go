package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/talkincode/storefront/config"
	"github.com/talkincode/storefront/internal/api"
	"github.com/talkincode/storefront/internal/app"
	"github.com/talkincode/storefront/internal/checkout"
	"github.com/talkincode/storefront/internal/repository"
	"github.com/talkincode/storefront/internal/webserver"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	version = "develop"

	h        = flag.Bool("h", false, "help usage")
	showVer  = flag.Bool("v", false, "show version")
	conffile = flag.String("c", "", "config yaml file")
	initdb   = flag.Bool("initdb", false, "migrate the database schema and exit")
)

func main() {
	flag.Parse()

	if *showVer {
		fmt.Println(version)
		return
	}
	if *h {
		flag.Usage()
		return
	}

	cfg, err := config.LoadConfig(*conffile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	application := app.NewApplication(cfg)
	if err := application.Init(cfg); err != nil {
		zap.L().Fatal("application init failed", zap.Error(err))
	}
	defer application.Release()

	if *initdb {
		zap.L().Info("database schema migrated")
		return
	}

	if err := run(application); err != nil {
		zap.L().Error("storefront stopped with error", zap.Error(err))
		application.Release()
		os.Exit(1)
	}
}

func run(application *app.Application) error {
	cfg := application.Config()
	db := application.DB()

	placer := checkout.NewPlacer(repository.NewGormOrderStore(db), cfg.Checkout.Timeout)
	server := webserver.NewWebServer(cfg, api.NewHandler(db, placer))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(server.Start)
	g.Go(func() error {
		<-gctx.Done()
		zap.L().Info("shutting down http server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
