package repositories

import (
	"context"
	"donation-matching-service/internal/domain"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	organizationTableName = "organizations"
	receiptTableName      = "donation_receipts"
)

type postgresOrganizationRow struct {
	ID                string     `db:"id"`
	Name              string     `db:"name"`
	Address           *string    `db:"address"`
	Lat               *float64   `db:"lat"`
	Lng               *float64   `db:"lng"`
	AcceptedFoodTypes []string   `db:"accepted_food_types"`
	CapacityMin       *float64   `db:"capacity_min"`
	CapacityMax       *float64   `db:"capacity_max"`
	UrgencyPreference *bool      `db:"urgency_preference"`
	CurrentNeeds      []string   `db:"current_needs"`
	LastDonationAt    *time.Time `db:"last_donation_at"`
}

func (r postgresOrganizationRow) record() organizationRecord {
	rec := organizationRecord{
		ID:                r.ID,
		Name:              r.Name,
		Lat:               r.Lat,
		Lng:               r.Lng,
		LastDonationAt:    r.LastDonationAt,
		AcceptedFoodTypes: r.AcceptedFoodTypes,
		CapacityMin:       r.CapacityMin,
		CapacityMax:       r.CapacityMax,
		UrgencyPreference: r.UrgencyPreference,
		CurrentNeeds:      r.CurrentNeeds,
	}
	if r.Address != nil {
		rec.Address = *r.Address
	}
	return rec
}

func psql() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
}

// Postgres-backed implementation of the OrganizationSource port.
type PostgresOrganizationRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresOrganizationRepository(pool *pgxpool.Pool) *PostgresOrganizationRepository {
	return &PostgresOrganizationRepository{pool: pool}
}

// listOrganizationsQuery joins receipts so the latest one becomes
// last_donation_at.
func listOrganizationsQuery() (string, []any, error) {
	return psql().
		Select(
			"o.id",
			"o.name",
			"o.address",
			"o.lat",
			"o.lng",
			"o.accepted_food_types",
			"o.capacity_min",
			"o.capacity_max",
			"o.urgency_preference",
			"o.current_needs",
			"MAX(r.received_at) AS last_donation_at",
		).
		From(organizationTableName + " o").
		LeftJoin(receiptTableName + " r ON r.organization_id = o.id").
		GroupBy("o.id").
		OrderBy("o.id ASC").
		ToSql()
}

func (r *PostgresOrganizationRepository) ListOrganizations(ctx context.Context) ([]*domain.Organization, error) {
	if r.pool == nil {
		return nil, errors.New("postgres organization repository: pool is nil")
	}

	query, args, err := listOrganizationsQuery()
	if err != nil {
		return nil, fmt.Errorf("failed to generate organizations query: %w", err)
	}

	var rows []*postgresOrganizationRow
	if err := pgxscan.Select(ctx, r.pool, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to fetch organizations: %w", err)
	}

	orgs := make([]*domain.Organization, 0, len(rows))
	for _, row := range rows {
		orgs = append(orgs, row.record().toDomain())
	}

	return orgs, nil
}

// InitSchema creates the organization tables if they do not exist.
func (r *PostgresOrganizationRepository) InitSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS organizations (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT,
			address TEXT,
			lat DOUBLE PRECISION,
			lng DOUBLE PRECISION,
			accepted_food_types TEXT[],
			capacity_min DOUBLE PRECISION,
			capacity_max DOUBLE PRECISION,
			urgency_preference BOOLEAN,
			current_needs TEXT[]
		);`,
		`CREATE TABLE IF NOT EXISTS donation_receipts (
			id BIGSERIAL PRIMARY KEY,
			organization_id TEXT NOT NULL REFERENCES organizations(id) ON DELETE CASCADE,
			received_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
		`CREATE INDEX IF NOT EXISTS idx_donation_receipts_organization
			ON donation_receipts(organization_id, received_at DESC);`,
	}

	for i, stmt := range statements {
		if _, err := r.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	return nil
}

// Seed upserts the fixture organizations and replaces their receipts.
func (r *PostgresOrganizationRepository) Seed(ctx context.Context, seed *Seed) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}

		for _, o := range seed.Organizations {
			query, args, err := psql().
				Insert(organizationTableName).
				Columns(
					"id", "name", "email", "address", "lat", "lng",
					"accepted_food_types", "capacity_min", "capacity_max",
					"urgency_preference", "current_needs",
				).
				Values(
					o.ID, o.Name, o.Email, o.Address, o.Lat, o.Lng,
					o.AcceptedFoodTypes, o.CapacityMin, o.CapacityMax,
					o.UrgencyPreference, o.CurrentNeeds,
				).
				Suffix(`ON CONFLICT (id) DO UPDATE SET
					name = EXCLUDED.name,
					email = EXCLUDED.email,
					address = EXCLUDED.address,
					lat = EXCLUDED.lat,
					lng = EXCLUDED.lng,
					accepted_food_types = EXCLUDED.accepted_food_types,
					capacity_min = EXCLUDED.capacity_min,
					capacity_max = EXCLUDED.capacity_max,
					urgency_preference = EXCLUDED.urgency_preference,
					current_needs = EXCLUDED.current_needs`).
				ToSql()
			if err != nil {
				return fmt.Errorf("failed to generate organization upsert: %w", err)
			}
			batch.Queue(query, args...)

			query, args, err = psql().
				Delete(receiptTableName).
				Where(sq.Eq{"organization_id": o.ID}).
				ToSql()
			if err != nil {
				return fmt.Errorf("failed to generate receipt delete: %w", err)
			}
			batch.Queue(query, args...)
		}

		for _, rc := range seed.Receipts {
			query, args, err := psql().
				Insert(receiptTableName).
				Columns("organization_id", "received_at").
				Values(rc.OrganizationID, rc.ReceivedAt).
				ToSql()
			if err != nil {
				return fmt.Errorf("failed to generate receipt insert: %w", err)
			}
			batch.Queue(query, args...)
		}

		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("seed organizations: %w", err)
		}
		return nil
	})
}
