package main

import (
	"agencychat/app/api"
	"agencychat/app/client/completion"
	"agencychat/app/client/langchain"
	"agencychat/app/config"
	"agencychat/app/service/alert"
	"agencychat/app/service/conversation"
	"agencychat/app/service/session"
	"agencychat/app/util/mylog"
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2/log"
	"github.com/samber/do"
	"golang.org/x/sync/errgroup"
)

func main() {
	di := do.New()
	defer di.Shutdown()
	defer log.Info("Waiting for services to finish...")

	mylog.Preinit()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	do.ProvideValue(di, appCtx)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	do.ProvideValue(di, cfg)

	if err = mylog.Init(cfg); err != nil {
		log.Fatalf("logging init failed: %v", err)
	}

	do.Provide(di, newGenerator)
	do.Provide(di, alert.New)
	do.Provide(di, newNotifier)
	do.Provide(di, conversation.New)
	do.Provide(di, session.New)
	do.Provide(di, api.New)

	slog.Info("Service started", "provider", cfg.LLM.Provider, "model", cfg.LLM.Model)

	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
		<-sigint

		log.Info("Shutting down...")

		cancel()
	}()

	server := do.MustInvoke[*api.Server](di)
	dispatcher := do.MustInvoke[*alert.Dispatcher](di)

	g, ctx := errgroup.WithContext(appCtx)

	g.Go(func() error {
		dispatcher.Run(ctx)
		return nil
	})

	g.Go(func() error {
		return server.Run(ctx)
	})

	if cfg.MCP.Stdio {
		g.Go(func() error {
			return server.ServeMCP(ctx, os.Stdin, os.Stdout)
		})
	}

	if err = g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("Service stopped with error", "error", err)
	}
}

func newGenerator(di *do.Injector) (conversation.Generator, error) {
	cfg := do.MustInvoke[*config.Config](di)

	switch cfg.LLM.Provider {
	case "langchain":
		client, err := langchain.New(cfg.LLM)
		if err != nil {
			return nil, err
		}

		return client, nil
	default:
		return completion.New(cfg.LLM), nil
	}
}

func newNotifier(di *do.Injector) (conversation.Notifier, error) {
	return do.MustInvoke[*alert.Dispatcher](di), nil
}
