package partner

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/kontor/backend/internal/domain/shared"
)

// OrganizationType represents the business relationship with an organization
type OrganizationType string

const (
	OrganizationTypeCustomer OrganizationType = "customer"
	OrganizationTypePartner  OrganizationType = "partner"
	OrganizationTypeSupplier OrganizationType = "supplier"
)

// IsValid checks if the organization type is valid
func (t OrganizationType) IsValid() bool {
	switch t {
	case OrganizationTypeCustomer, OrganizationTypePartner, OrganizationTypeSupplier:
		return true
	}
	return false
}

// Address is a postal address attached to an organization
type Address struct {
	Label      string `json:"label,omitempty"` // e.g. "billing", "office"
	Street     string `json:"street"`
	PostalCode string `json:"postal_code"`
	City       string `json:"city"`
	Country    string `json:"country"`
}

// Addresses is a slice of Address that implements GORM Scanner/Valuer for JSONB storage
type Addresses []Address

// Value implements driver.Valuer interface for GORM to store as JSONB
func (a Addresses) Value() (driver.Value, error) {
	if a == nil {
		return "[]", nil
	}
	return json.Marshal(a)
}

// Scan implements sql.Scanner interface for GORM to read from JSONB
func (a *Addresses) Scan(value interface{}) error {
	if value == nil {
		*a = Addresses{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan Addresses: unsupported type")
	}

	if len(bytes) == 0 {
		*a = Addresses{}
		return nil
	}

	return json.Unmarshal(bytes, a)
}

// Organization represents a customer, partner or supplier organization.
// It is the aggregate root owning orders in the billing context.
type Organization struct {
	shared.BaseAggregateRoot
	Name      string           `gorm:"type:varchar(200);not null;index"`
	Type      OrganizationType `gorm:"type:varchar(20);not null;default:'customer';index"`
	Addresses Addresses        `gorm:"type:jsonb;default:'[]'"`
	Email     string           `gorm:"type:varchar(200)"`
	Phone     string           `gorm:"type:varchar(50)"`
	Notes     string           `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Organization) TableName() string {
	return "organizations"
}

// NewOrganization creates a new organization
func NewOrganization(name string, orgType OrganizationType) (*Organization, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Organization name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewDomainError("INVALID_NAME", "Organization name cannot exceed 200 characters")
	}
	if !orgType.IsValid() {
		return nil, shared.NewDomainError("INVALID_TYPE", "Organization type is not valid")
	}

	org := &Organization{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Type:              orgType,
		Addresses:         Addresses{},
	}

	org.AddDomainEvent(NewOrganizationCreatedEvent(org))

	return org, nil
}

// Rename changes the organization display name.
// Customer codes of already numbered orders are not recomputed.
func (o *Organization) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Organization name cannot be empty")
	}
	o.Name = name
	o.UpdatedAt = time.Now()
	o.IncrementVersion()
	return nil
}

// AddAddress appends a postal address
func (o *Organization) AddAddress(addr Address) {
	o.Addresses = append(o.Addresses, addr)
	o.UpdatedAt = time.Now()
	o.IncrementVersion()
}

// IsCustomer returns true for customer organizations
func (o *Organization) IsCustomer() bool {
	return o.Type == OrganizationTypeCustomer
}
