package ports

import (
	"context"
	"donation-matching-service/internal/domain"
)

// Port: a bulk read of every organization known to a data source.
// Implementations derive LastDonationAt from recorded receipts and apply
// domain defaults to missing fields. Records without coordinates are
// returned with a nil Location.
type OrganizationSource interface {
	ListOrganizations(ctx context.Context) ([]*domain.Organization, error)
}
