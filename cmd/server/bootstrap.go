package main

import (
	"context"
	"donation-matching-service/internal/app"
	"donation-matching-service/internal/config"
	"donation-matching-service/internal/services"

	"github.com/sirupsen/logrus"
)

type runtime struct {
	cfg       *config.Config
	logger    *logrus.Logger
	store     *app.Store
	snapshots *services.SnapshotStore
	matcher   *services.Matcher
}

func (r *runtime) Close() {
	r.store.Close()
}

// bootstrap loads configuration and wires the organization store, geocoder,
// snapshot and matcher shared by every command.
func bootstrap(ctx context.Context) (*runtime, error) {
	cfg, err := config.Load(logrus.StandardLogger())
	if err != nil {
		return nil, err
	}

	logger, err := cfg.NewLogger()
	if err != nil {
		return nil, err
	}

	store, err := app.OpenStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	geocoder, err := app.NewGeocoder(cfg, logger)
	if err != nil {
		store.Close()
		return nil, err
	}

	snapshots := services.NewSnapshotStore(store.Source, logger)

	matcher := services.NewMatcher(snapshots, geocoder, logger)
	matcher.GeocodeTimeout = cfg.GeocodeTimeout
	matcher.TopN = cfg.TopN

	return &runtime{
		cfg:       cfg,
		logger:    logger,
		store:     store,
		snapshots: snapshots,
		matcher:   matcher,
	}, nil
}
