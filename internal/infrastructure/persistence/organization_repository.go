package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/kontor/backend/internal/domain/partner"
	"github.com/kontor/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormOrganizationRepository implements OrganizationRepository using GORM.
// Organization carries its GORM tags directly, so no mapping model is needed.
type GormOrganizationRepository struct {
	db *gorm.DB
}

// NewGormOrganizationRepository creates a new GormOrganizationRepository
func NewGormOrganizationRepository(db *gorm.DB) *GormOrganizationRepository {
	return &GormOrganizationRepository{db: db}
}

// FindByID finds an organization by its ID
func (r *GormOrganizationRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Organization, error) {
	var org partner.Organization
	if err := r.db.WithContext(ctx).First(&org, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &org, nil
}

// FindAll finds organizations matching the filter, with the total count
func (r *GormOrganizationRepository) FindAll(ctx context.Context, filter shared.Filter) ([]partner.Organization, int64, error) {
	query := r.db.WithContext(ctx).Model(&partner.Organization{})

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR email ILIKE ?", pattern, pattern)
	}
	if orgType, ok := filter.Filters["type"]; ok {
		query = query.Where("type = ?", orgType)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	orderBy := ValidateSortField(filter.OrderBy, OrganizationSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	query = query.Order(fmt.Sprintf("%s %s", orderBy, orderDir))

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var orgs []partner.Organization
	if err := query.Find(&orgs).Error; err != nil {
		return nil, 0, err
	}
	return orgs, total, nil
}

// Save creates or updates an organization
func (r *GormOrganizationRepository) Save(ctx context.Context, org *partner.Organization) error {
	return r.db.WithContext(ctx).Save(org).Error
}

// Delete deletes an organization
func (r *GormOrganizationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&partner.Organization{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormOrganizationRepository implements OrganizationRepository
var _ partner.OrganizationRepository = (*GormOrganizationRepository)(nil)
