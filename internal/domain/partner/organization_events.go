package partner

import (
	"github.com/kontor/backend/internal/domain/shared"
)

// Event types for the partner context
const (
	EventTypeOrganizationCreated = "partner.organization.created"
)

// OrganizationCreatedEvent is published when an organization is created
type OrganizationCreatedEvent struct {
	shared.BaseDomainEvent
	Name string           `json:"name"`
	Type OrganizationType `json:"type"`
}

// NewOrganizationCreatedEvent creates a new OrganizationCreatedEvent
func NewOrganizationCreatedEvent(org *Organization) *OrganizationCreatedEvent {
	return &OrganizationCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrganizationCreated, "Organization", org.ID),
		Name:            org.Name,
		Type:            org.Type,
	}
}
