package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/kontor/backend/internal/domain/budget"
	"github.com/kontor/backend/internal/domain/shared"
	"github.com/kontor/backend/internal/domain/shared/valueobject"
	"github.com/kontor/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormActualCostRepository implements ActualCostRepository using GORM
type GormActualCostRepository struct {
	db *gorm.DB
}

// NewGormActualCostRepository creates a new GormActualCostRepository
func NewGormActualCostRepository(db *gorm.DB) *GormActualCostRepository {
	return &GormActualCostRepository{db: db}
}

// FindByID finds an actual cost entry by its ID
func (r *GormActualCostRepository) FindByID(ctx context.Context, id uuid.UUID) (*budget.ActualCost, error) {
	var model models.ActualCostModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByOrder finds all cost entries recorded against an order
func (r *GormActualCostRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]budget.ActualCost, error) {
	var costModels []models.ActualCostModel
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("date ASC").
		Find(&costModels).Error; err != nil {
		return nil, err
	}
	return toDomainCosts(costModels), nil
}

// FindByOrderAndMonth finds cost entries assigned to a specific month
func (r *GormActualCostRepository) FindByOrderAndMonth(ctx context.Context, orderID uuid.UUID, month valueobject.YearMonth) ([]budget.ActualCost, error) {
	var costModels []models.ActualCostModel
	if err := r.db.WithContext(ctx).
		Where("order_id = ? AND month_year = ? AND month_month = ?", orderID, month.Year, month.Month).
		Order("date ASC").
		Find(&costModels).Error; err != nil {
		return nil, err
	}
	return toDomainCosts(costModels), nil
}

// Create inserts a new cost entry
func (r *GormActualCostRepository) Create(ctx context.Context, cost *budget.ActualCost) error {
	model := models.ActualCostModelFromDomain(cost)
	return r.db.WithContext(ctx).Create(model).Error
}

// Save updates an existing cost entry
func (r *GormActualCostRepository) Save(ctx context.Context, cost *budget.ActualCost) error {
	model := models.ActualCostModelFromDomain(cost)
	return r.db.WithContext(ctx).Save(model).Error
}

func toDomainCosts(costModels []models.ActualCostModel) []budget.ActualCost {
	costs := make([]budget.ActualCost, len(costModels))
	for i, model := range costModels {
		costs[i] = *model.ToDomain()
	}
	return costs
}

// Ensure GormActualCostRepository implements ActualCostRepository
var _ budget.ActualCostRepository = (*GormActualCostRepository)(nil)
