package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/kontor/backend/internal/domain/billing"
	"github.com/kontor/backend/internal/domain/shared"
	"github.com/kontor/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormBillingPlanRepository implements BillingPlanRepository using GORM
type GormBillingPlanRepository struct {
	db *gorm.DB
}

// NewGormBillingPlanRepository creates a new GormBillingPlanRepository
func NewGormBillingPlanRepository(db *gorm.DB) *GormBillingPlanRepository {
	return &GormBillingPlanRepository{db: db}
}

// FindByID finds a billing plan by its ID, with items
func (r *GormBillingPlanRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.BillingPlan, error) {
	var model models.BillingPlanModel
	if err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("due_date ASC")
		}).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByOrder finds the billing plan of an order. Each order has at most one.
func (r *GormBillingPlanRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) (*billing.BillingPlan, error) {
	var model models.BillingPlanModel
	if err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("due_date ASC")
		}).
		Where("order_id = ?", orderID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save creates or updates a billing plan together with its items.
// A concurrent second plan for the same order is rejected by the unique
// index on order_id and surfaces as ErrAlreadyExists.
func (r *GormBillingPlanRepository) Save(ctx context.Context, plan *billing.BillingPlan) error {
	model := models.BillingPlanModelFromDomain(plan)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Save(model).Error; err != nil {
			if IsUniqueViolation(err) {
				return shared.ErrAlreadyExists
			}
			return err
		}

		currentItemIDs := make([]uuid.UUID, len(model.Items))
		for i := range model.Items {
			currentItemIDs[i] = model.Items[i].ID
		}
		if len(currentItemIDs) > 0 {
			if err := tx.Where("billing_plan_id = ? AND id NOT IN ?", model.ID, currentItemIDs).
				Delete(&models.BillingPlanItemModel{}).Error; err != nil {
				return err
			}
		} else {
			if err := tx.Where("billing_plan_id = ?", model.ID).
				Delete(&models.BillingPlanItemModel{}).Error; err != nil {
				return err
			}
		}
		for i := range model.Items {
			if err := tx.Save(&model.Items[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Ensure GormBillingPlanRepository implements BillingPlanRepository
var _ billing.BillingPlanRepository = (*GormBillingPlanRepository)(nil)
