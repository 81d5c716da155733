package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// sqliteTimeLayout keeps received_at lexically sortable so MAX() works on text.
const sqliteTimeLayout = "2006-01-02T15:04:05Z"

// Initialize the SQLite database schema.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createOrganizationsQuery := `
	CREATE TABLE IF NOT EXISTS organizations (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT,
		address TEXT,
		lat REAL,
		lng REAL,
		accepted_food_types TEXT,
		capacity_min REAL,
		capacity_max REAL,
		urgency_preference INTEGER,
		current_needs TEXT
	);
	`

	createReceiptsQuery := `
	CREATE TABLE IF NOT EXISTS donation_receipts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		organization_id TEXT NOT NULL REFERENCES organizations(id),
		received_at TEXT NOT NULL
	);
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_donation_receipts_organization
	ON donation_receipts(organization_id, received_at);
	`

	statements := []string{
		createOrganizationsQuery,
		createReceiptsQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

// Populate the SQLite database from seed fixtures. Organizations are
// upserted; receipts of seeded organizations are replaced.
func SeedSQLite(ctx context.Context, db *sql.DB, seed *Seed) error {
	if db == nil {
		return errors.New("seed organizations: DB is nil")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed organizations: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	orgStmt, err := tx.PrepareContext(ctx, `
	INSERT OR REPLACE INTO organizations (
		id,
		name,
		email,
		address,
		lat,
		lng,
		accepted_food_types,
		capacity_min,
		capacity_max,
		urgency_preference,
		current_needs
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
	`)
	if err != nil {
		return fmt.Errorf("seed organizations: prepare insert: %w", err)
	}
	defer orgStmt.Close()

	for _, o := range seed.Organizations {
		accepted, err := jsonList(o.AcceptedFoodTypes)
		if err != nil {
			return fmt.Errorf("seed organizations: id=%s: %w", o.ID, err)
		}
		needs, err := jsonList(o.CurrentNeeds)
		if err != nil {
			return fmt.Errorf("seed organizations: id=%s: %w", o.ID, err)
		}

		var urgency any
		if o.UrgencyPreference != nil {
			urgency = *o.UrgencyPreference
		}

		if _, err := orgStmt.ExecContext(ctx,
			o.ID, o.Name, o.Email, o.Address,
			nullFloat(o.Lat), nullFloat(o.Lng),
			accepted,
			nullFloat(o.CapacityMin), nullFloat(o.CapacityMax),
			urgency,
			needs,
		); err != nil {
			return fmt.Errorf("seed organizations: insert id=%s: %w", o.ID, err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM donation_receipts WHERE organization_id = ?;`, o.ID); err != nil {
			return fmt.Errorf("seed organizations: clear receipts id=%s: %w", o.ID, err)
		}
	}

	receiptStmt, err := tx.PrepareContext(ctx, `
	INSERT INTO donation_receipts (organization_id, received_at)
	VALUES (?, ?);
	`)
	if err != nil {
		return fmt.Errorf("seed receipts: prepare insert: %w", err)
	}
	defer receiptStmt.Close()

	for _, r := range seed.Receipts {
		if _, err := receiptStmt.ExecContext(ctx, r.OrganizationID, r.ReceivedAt.UTC().Format(sqliteTimeLayout)); err != nil {
			return fmt.Errorf("seed receipts: insert organization_id=%s: %w", r.OrganizationID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed organizations: commit tx: %w", err)
	}

	return nil
}

// jsonList encodes a list column; nil stays NULL so defaults apply on read.
func jsonList(v []string) (any, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode list: %w", err)
	}
	return string(b), nil
}

func nullFloat(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

func parseSQLiteTime(s string) (time.Time, error) {
	return time.Parse(sqliteTimeLayout, s)
}
