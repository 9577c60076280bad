package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/kontor/backend/internal/domain/billing"
	"github.com/kontor/backend/internal/domain/numbering"
	"github.com/kontor/backend/internal/domain/shared"
	"github.com/kontor/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormOrderRepository implements OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// FindByID finds an order by its ID
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Order, error) {
	var model models.OrderModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByNumber finds an order by its assigned number
func (r *GormOrderRepository) FindByNumber(ctx context.Context, number string) (*billing.Order, error) {
	var model models.OrderModel
	if err := r.db.WithContext(ctx).
		Where("order_number = ?", number).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds orders matching the filter, with the total count
func (r *GormOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]billing.Order, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.OrderModel{})

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("order_number ILIKE ? OR organization_name ILIKE ?", pattern, pattern)
	}
	if status, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", status)
	}
	if orgID, ok := filter.Filters["organization_id"]; ok {
		query = query.Where("organization_id = ?", orgID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	orderBy := ValidateSortField(filter.OrderBy, OrderSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	query = query.Order(fmt.Sprintf("%s %s", orderBy, orderDir))

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var orderModels []models.OrderModel
	if err := query.Find(&orderModels).Error; err != nil {
		return nil, 0, err
	}
	orders := make([]billing.Order, len(orderModels))
	for i, model := range orderModels {
		orders[i] = *model.ToDomain()
	}
	return orders, total, nil
}

// FindByOrganization finds orders belonging to an organization
func (r *GormOrderRepository) FindByOrganization(ctx context.Context, organizationID uuid.UUID, filter shared.Filter) ([]billing.Order, error) {
	query := r.db.WithContext(ctx).Model(&models.OrderModel{}).
		Where("organization_id = ?", organizationID)

	orderBy := ValidateSortField(filter.OrderBy, OrderSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	query = query.Order(fmt.Sprintf("%s %s", orderBy, orderDir))

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var orderModels []models.OrderModel
	if err := query.Find(&orderModels).Error; err != nil {
		return nil, err
	}
	orders := make([]billing.Order, len(orderModels))
	for i, model := range orderModels {
		orders[i] = *model.ToDomain()
	}
	return orders, nil
}

// CreateWithNumber allocates the next sequence for the order's year and
// customer code scope, assigns the formatted number, and inserts the order,
// all in one transaction. The counter increment rolls back with a failed
// insert, so no sequence value is ever burned.
func (r *GormOrderRepository) CreateWithNumber(ctx context.Context, order *billing.Order, customerCode string) error {
	year := order.NumberYear()
	scope := numbering.OrderScopeKey(year, customerCode)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seq, err := NextSequenceInTx(tx, scope)
		if err != nil {
			return err
		}
		number, err := numbering.FormatOrderNumber(year, customerCode, seq)
		if err != nil {
			return err
		}
		if err := order.AssignNumber(number); err != nil {
			return err
		}

		model := models.OrderModelFromDomain(order)
		if err := tx.Create(model).Error; err != nil {
			if IsUniqueViolation(err) {
				return shared.ErrAllocationConflict
			}
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}
	order.MarkLoaded()
	return nil
}

// Save updates an existing order, guarded by the version the aggregate was
// loaded with. A concurrent writer that committed first makes the guard miss
// and the caller gets ErrConcurrencyConflict instead of a lost update.
func (r *GormOrderRepository) Save(ctx context.Context, order *billing.Order) error {
	model := models.OrderModelFromDomain(order)
	res := r.db.WithContext(ctx).
		Model(&models.OrderModel{}).
		Where("id = ? AND version = ?", model.ID, order.LoadedVersion()).
		Select("organization_id", "organization_name", "order_number", "start_date",
			"end_date", "status", "total_value", "currency", "payment_terms_days",
			"version", "updated_at").
		Updates(model)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	order.MarkLoaded()
	return nil
}

// Ensure GormOrderRepository implements OrderRepository
var _ billing.OrderRepository = (*GormOrderRepository)(nil)
