package app

import (
	"context"
	"database/sql"
	"donation-matching-service/internal/adapters/geocode"
	"donation-matching-service/internal/adapters/repositories"
	"donation-matching-service/internal/config"
	"donation-matching-service/internal/platform/db"
	"donation-matching-service/internal/ports"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

var errReadOnlySource = errors.New("file source is read-only; edit the seed file instead")

// Store is an opened organization store: the read port the matcher uses plus
// the maintenance operations dbtool runs against the same backend.
type Store struct {
	Kind   string
	Source ports.OrganizationSource

	InitSchema func(ctx context.Context) error
	Seed       func(ctx context.Context, seed *repositories.Seed) error

	close func()
}

func (s *Store) Close() {
	if s.close != nil {
		s.close()
	}
}

// OpenStore connects to the backend selected by ORG_SOURCE.
func OpenStore(ctx context.Context, cfg *config.Config, logger logrus.FieldLogger) (*Store, error) {
	switch cfg.OrgSource {
	case config.SourceSQLite:
		conn, err := db.OpenSQLite(ctx, cfg.DBPath)
		if err != nil {
			return nil, err
		}
		return &Store{
			Kind:   cfg.OrgSource,
			Source: repositories.NewSqliteOrganizationRepository(conn),
			InitSchema: func(ctx context.Context) error {
				return repositories.InitSchema(ctx, conn)
			},
			Seed: func(ctx context.Context, seed *repositories.Seed) error {
				return repositories.SeedSQLite(ctx, conn, seed)
			},
			close: closeSQL(conn, logger),
		}, nil

	case config.SourcePostgres:
		pool, err := db.ConnectPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		repo := repositories.NewPostgresOrganizationRepository(pool)
		return &Store{
			Kind:       cfg.OrgSource,
			Source:     repo,
			InitSchema: repo.InitSchema,
			Seed:       repo.Seed,
			close:      pool.Close,
		}, nil

	case config.SourceMongo:
		client, database, err := db.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		repo := repositories.NewMongoOrganizationRepository(database)
		return &Store{
			Kind:       cfg.OrgSource,
			Source:     repo,
			InitSchema: repo.EnsureIndexes,
			Seed:       repo.Seed,
			close: func() {
				if err := client.Disconnect(context.Background()); err != nil {
					logger.WithError(err).Warn("disconnect mongodb")
				}
			},
		}, nil

	case config.SourceFile:
		return &Store{
			Kind:       cfg.OrgSource,
			Source:     repositories.NewFileSource(cfg.SeedPath),
			InitSchema: func(context.Context) error { return nil },
			Seed: func(context.Context, *repositories.Seed) error {
				return errReadOnlySource
			},
		}, nil

	default:
		return nil, fmt.Errorf("open store: unknown source %q", cfg.OrgSource)
	}
}

func closeSQL(conn *sql.DB, logger logrus.FieldLogger) func() {
	return func() {
		if err := conn.Close(); err != nil {
			logger.WithError(err).Warn("close sqlite")
		}
	}
}

// NewGeocoder builds the provider selected by GEOCODER.
func NewGeocoder(cfg *config.Config, logger logrus.FieldLogger) (ports.Geocoder, error) {
	switch cfg.Geocoder {
	case config.GeocoderNominatim:
		g, err := geocode.NewNominatimGeocoder(cfg.NominatimURL, cfg.GeocoderUserAgent, cfg.GeocodeTimeout, logger)
		if err != nil {
			return nil, fmt.Errorf("new geocoder: %w", err)
		}
		return g, nil
	case config.GeocoderORS:
		g, err := geocode.NewORSGeocoder(cfg.ORSAPIKey, cfg.GeocodeTimeout, logger)
		if err != nil {
			return nil, fmt.Errorf("new geocoder: %w", err)
		}
		return g, nil
	default:
		return nil, fmt.Errorf("new geocoder: unknown provider %q", cfg.Geocoder)
	}
}
