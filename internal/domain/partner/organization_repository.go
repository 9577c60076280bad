package partner

import (
	"context"

	"github.com/google/uuid"
	"github.com/kontor/backend/internal/domain/shared"
)

// OrganizationRepository defines persistence operations for organizations
type OrganizationRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Organization, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Organization, int64, error)
	Save(ctx context.Context, org *Organization) error
	Delete(ctx context.Context, id uuid.UUID) error
}
