package repositories

import (
	"context"
	"database/sql"
	"donation-matching-service/internal/domain"
	"encoding/json"
	"errors"
	"fmt"
)

// SQLite-backed implementation of the OrganizationSource port.
type SqliteOrganizationRepository struct{ DB *sql.DB }

func NewSqliteOrganizationRepository(db *sql.DB) *SqliteOrganizationRepository {
	return &SqliteOrganizationRepository{DB: db}
}

// Return every organization with its latest receipt time.
func (s *SqliteOrganizationRepository) ListOrganizations(ctx context.Context) ([]*domain.Organization, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite organization repository: DB is nil")
	}

	query := `
	SELECT
		o.id,
		o.name,
		o.address,
		o.lat,
		o.lng,
		o.accepted_food_types,
		o.capacity_min,
		o.capacity_max,
		o.urgency_preference,
		o.current_needs,
		MAX(r.received_at)
	FROM organizations o
	LEFT JOIN donation_receipts r ON r.organization_id = o.id
	GROUP BY o.id
	ORDER BY o.id;
	`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list organizations: query organizations table: %w", err)
	}
	defer rows.Close()

	orgs := make([]*domain.Organization, 0, 64)
	for rows.Next() {
		var (
			rec                      organizationRecord
			address                  sql.NullString
			lat, lng                 sql.NullFloat64
			accepted, needs          sql.NullString
			capacityMin, capacityMax sql.NullFloat64
			urgency                  sql.NullBool
			lastReceipt              sql.NullString
		)

		err := rows.Scan(
			&rec.ID, &rec.Name, &address,
			&lat, &lng,
			&accepted,
			&capacityMin, &capacityMax,
			&urgency,
			&needs,
			&lastReceipt,
		)
		if err != nil {
			return nil, fmt.Errorf("list organizations: scan row: %w", err)
		}

		rec.Address = address.String
		rec.Lat = floatPtr(lat)
		rec.Lng = floatPtr(lng)
		rec.CapacityMin = floatPtr(capacityMin)
		rec.CapacityMax = floatPtr(capacityMax)
		if urgency.Valid {
			rec.UrgencyPreference = &urgency.Bool
		}

		if rec.AcceptedFoodTypes, err = decodeList(accepted); err != nil {
			return nil, fmt.Errorf("list organizations: id=%s accepted_food_types: %w", rec.ID, err)
		}
		if rec.CurrentNeeds, err = decodeList(needs); err != nil {
			return nil, fmt.Errorf("list organizations: id=%s current_needs: %w", rec.ID, err)
		}

		if lastReceipt.Valid {
			t, err := parseSQLiteTime(lastReceipt.String)
			if err != nil {
				return nil, fmt.Errorf("list organizations: id=%s received_at: %w", rec.ID, err)
			}
			rec.LastDonationAt = &t
		}

		orgs = append(orgs, rec.toDomain())
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list organizations: row iteration: %w", err)
	}

	return orgs, nil
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func decodeList(v sql.NullString) ([]string, error) {
	if !v.Valid {
		return nil, nil
	}
	var out []string
	if err := json.Unmarshal([]byte(v.String), &out); err != nil {
		return nil, err
	}
	return out, nil
}
