package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/DoyleJ11/battleship-backend/internal/config"
	"github.com/DoyleJ11/battleship-backend/internal/httpapi"
	"github.com/DoyleJ11/battleship-backend/internal/registry"
	"github.com/DoyleJ11/battleship-backend/internal/session"
	"github.com/DoyleJ11/battleship-backend/internal/store"
)

func main() {
	cfg := config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var results store.ResultStore = store.Nop{}
	if cfg.DatabaseURL != "" {
		pg, err := store.OpenPostgres(cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("open result store", zap.Error(err))
		}
		results = pg
	}

	reg := registry.New(ctx, registry.Config{
		Session: session.Config{
			SetupTimeout: cfg.SetupTimeout,
			ShotTimeout:  cfg.ShotTimeout,
		},
		FinishedTTL: cfg.FinishedTTL,
	}, results, nil, logger)

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: httpapi.SetupRoutes(reg, cfg.LobbyRefresh, logger),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", zap.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		reg.Inbox() <- registry.Shutdown{}
		return srv.Shutdown(context.Background())
	})

	if err := g.Wait(); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}
