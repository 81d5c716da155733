package main

import (
	"context"
	"donation-matching-service/internal/adapters/events"
	"donation-matching-service/internal/api"
	"donation-matching-service/internal/platform/db"
	"donation-matching-service/internal/services"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var serveCommand = &cli.Command{
	Name:   "serve",
	Usage:  "Start the HTTP server",
	Action: serve,
}

func serve(cCtx *cli.Context) error {
	ctx, stop := signal.NotifyContext(cCtx.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	logger := rt.logger
	cfg := rt.cfg

	// Matching answers 503 until a load succeeds, so a failed first load is
	// not fatal.
	if _, err := rt.snapshots.Reload(ctx); err != nil {
		logger.WithError(err).Error("initial organization load failed")
	}

	if cfg.RefreshSchedule != "" {
		refresher := services.NewRefresher(rt.snapshots, logger)
		if err := refresher.Schedule(cfg.RefreshSchedule); err != nil {
			return err
		}
		refresher.Start()
		defer refresher.Stop()
		logger.WithFields(logrus.Fields{
			"schedule": cfg.RefreshSchedule,
			"next":     refresher.Next(),
		}).Info("snapshot refresh scheduled")
	}

	if cfg.RedisURL != "" {
		client, err := db.ConnectRedis(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer client.Close()

		listener := events.NewRedisReloadListener(client, cfg.ReloadChannel, func(ctx context.Context) error {
			_, err := rt.snapshots.Reload(ctx)
			return err
		}, logger)

		go func() {
			if err := listener.Run(ctx); err != nil {
				logger.WithError(err).Error("reload listener stopped")
			}
		}()
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           api.NewRouter(rt.snapshots, rt.matcher, logger),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.WithField("port", cfg.Port).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
