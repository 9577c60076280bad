package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/kontor/backend/internal/domain/budget"
	"github.com/kontor/backend/internal/domain/shared"
	"github.com/kontor/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormBudgetPlanRepository implements BudgetPlanRepository using GORM.
// Plan versions are append-only; there is no update or delete.
type GormBudgetPlanRepository struct {
	db *gorm.DB
}

// NewGormBudgetPlanRepository creates a new GormBudgetPlanRepository
func NewGormBudgetPlanRepository(db *gorm.DB) *GormBudgetPlanRepository {
	return &GormBudgetPlanRepository{db: db}
}

// FindByID finds a budget plan by its ID, with months
func (r *GormBudgetPlanRepository) FindByID(ctx context.Context, id uuid.UUID) (*budget.BudgetPlan, error) {
	var model models.BudgetPlanModel
	if err := r.db.WithContext(ctx).
		Preload("Months", func(db *gorm.DB) *gorm.DB {
			return db.Order("year ASC, month ASC")
		}).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindLatestByOrder returns the highest submitted plan version for the order
func (r *GormBudgetPlanRepository) FindLatestByOrder(ctx context.Context, orderID uuid.UUID) (*budget.BudgetPlan, error) {
	var model models.BudgetPlanModel
	if err := r.db.WithContext(ctx).
		Preload("Months", func(db *gorm.DB) *gorm.DB {
			return db.Order("year ASC, month ASC")
		}).
		Where("order_id = ?", orderID).
		Order("plan_version DESC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllByOrder returns all plan versions for the order, oldest first
func (r *GormBudgetPlanRepository) FindAllByOrder(ctx context.Context, orderID uuid.UUID) ([]budget.BudgetPlan, error) {
	var planModels []models.BudgetPlanModel
	if err := r.db.WithContext(ctx).
		Preload("Months", func(db *gorm.DB) *gorm.DB {
			return db.Order("year ASC, month ASC")
		}).
		Where("order_id = ?", orderID).
		Order("plan_version ASC").
		Find(&planModels).Error; err != nil {
		return nil, err
	}
	plans := make([]budget.BudgetPlan, len(planModels))
	for i, model := range planModels {
		plans[i] = *model.ToDomain()
	}
	return plans, nil
}

// Create inserts a new plan version with its months. A concurrent
// submission of the same version is rejected by the unique index on
// (order_id, plan_version).
func (r *GormBudgetPlanRepository) Create(ctx context.Context, plan *budget.BudgetPlan) error {
	model := models.BudgetPlanModelFromDomain(plan)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// NextVersion returns the version number the next submission should use
func (r *GormBudgetPlanRepository) NextVersion(ctx context.Context, orderID uuid.UUID) (int, error) {
	var maxVersion int
	if err := r.db.WithContext(ctx).
		Model(&models.BudgetPlanModel{}).
		Select("COALESCE(MAX(plan_version), 0)").
		Where("order_id = ?", orderID).
		Scan(&maxVersion).Error; err != nil {
		return 0, err
	}
	return maxVersion + 1, nil
}

// Ensure GormBudgetPlanRepository implements BudgetPlanRepository
var _ budget.BudgetPlanRepository = (*GormBudgetPlanRepository)(nil)
