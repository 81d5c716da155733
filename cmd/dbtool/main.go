package main

import (
	"context"
	"donation-matching-service/internal/adapters/events"
	"donation-matching-service/internal/adapters/repositories"
	"donation-matching-service/internal/app"
	"donation-matching-service/internal/config"
	"donation-matching-service/internal/platform/db"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func main() {
	tool := &cli.App{
		Name:  "dbtool",
		Usage: "Prepare and seed the organization store selected by ORG_SOURCE",
		Commands: []*cli.Command{
			{
				Name:   "init",
				Usage:  "Create tables or indexes",
				Action: initStore,
			},
			{
				Name:  "seed",
				Usage: "Load organizations and receipts from a YAML file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "file",
						Usage: "Seed file; defaults to SEED_PATH",
					},
					&cli.BoolFlag{
						Name:  "notify",
						Usage: "Publish a reload notification when REDIS_URL is set",
						Value: true,
					},
				},
				Action: seedStore,
			},
		},
	}

	if err := tool.Run(os.Args); err != nil {
		logrus.WithError(err).Fatal("dbtool failed")
	}
}

func open(ctx context.Context) (*config.Config, *logrus.Logger, *app.Store, error) {
	cfg, err := config.Load(logrus.StandardLogger())
	if err != nil {
		return nil, nil, nil, err
	}

	logger, err := cfg.NewLogger()
	if err != nil {
		return nil, nil, nil, err
	}

	store, err := app.OpenStore(ctx, cfg, logger)
	if err != nil {
		return nil, nil, nil, err
	}

	return cfg, logger, store, nil
}

func initStore(cCtx *cli.Context) error {
	_, logger, store, err := open(cCtx.Context)
	if err != nil {
		return err
	}
	defer store.Close()

	logger.WithField("source", store.Kind).Info("initializing schema")
	if err := store.InitSchema(cCtx.Context); err != nil {
		return fmt.Errorf("schema initialization failed: %w", err)
	}
	logger.Info("schema ready")

	return nil
}

func seedStore(cCtx *cli.Context) error {
	ctx := cCtx.Context

	cfg, logger, store, err := open(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	path := cCtx.String("file")
	if path == "" {
		path = cfg.SeedPath
	}

	seed, err := repositories.LoadSeedFile(path)
	if err != nil {
		return err
	}

	if err := store.InitSchema(ctx); err != nil {
		return fmt.Errorf("schema initialization failed: %w", err)
	}

	entry := logger.WithFields(logrus.Fields{
		"source":        store.Kind,
		"file":          path,
		"organizations": len(seed.Organizations),
		"receipts":      len(seed.Receipts),
	})
	entry.Info("seeding organizations")
	if err := store.Seed(ctx, seed); err != nil {
		return fmt.Errorf("seeding failed: %w", err)
	}
	entry.Info("seeding complete")

	if !cCtx.Bool("notify") || cfg.RedisURL == "" {
		return nil
	}

	client, err := db.ConnectRedis(ctx, cfg.RedisURL)
	if err != nil {
		return err
	}
	defer client.Close()

	n, err := events.PublishReload(ctx, client, cfg.ReloadChannel, "dbtool seed")
	if err != nil {
		return err
	}
	logger.WithFields(logrus.Fields{"channel": cfg.ReloadChannel, "listeners": n}).Info("reload notification published")

	return nil
}
