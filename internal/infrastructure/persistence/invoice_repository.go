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

// GormInvoiceRepository implements InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// FindByID finds an invoice by its ID, with items and payments
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	var model models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Payments").
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByNumber finds an invoice by its assigned number
func (r *GormInvoiceRepository) FindByNumber(ctx context.Context, number string) (*billing.Invoice, error) {
	var model models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Payments").
		Where("number = ?", number).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds invoices matching the filter, with the total count
func (r *GormInvoiceRepository) FindAll(ctx context.Context, filter shared.Filter) ([]billing.Invoice, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.InvoiceModel{})

	if filter.Search != "" {
		query = query.Where("number ILIKE ?", "%"+filter.Search+"%")
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

	orderBy := ValidateSortField(filter.OrderBy, InvoiceSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	query = query.Order(fmt.Sprintf("%s %s", orderBy, orderDir))

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var invoiceModels []models.InvoiceModel
	if err := query.
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Payments").
		Find(&invoiceModels).Error; err != nil {
		return nil, 0, err
	}
	invoices := make([]billing.Invoice, len(invoiceModels))
	for i, model := range invoiceModels {
		invoices[i] = *model.ToDomain()
	}
	return invoices, total, nil
}

// FindByOrder finds all invoices linked to an order
func (r *GormInvoiceRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]billing.Invoice, error) {
	var invoiceModels []models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Payments").
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&invoiceModels).Error; err != nil {
		return nil, err
	}
	invoices := make([]billing.Invoice, len(invoiceModels))
	for i, model := range invoiceModels {
		invoices[i] = *model.ToDomain()
	}
	return invoices, nil
}

// CreateWithNumber allocates the next sequence for the invoice year scope,
// assigns the formatted number, and inserts the invoice with its items in
// one transaction.
func (r *GormInvoiceRepository) CreateWithNumber(ctx context.Context, invoice *billing.Invoice, year int) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return r.createWithNumberInTx(tx, invoice, year)
	})
	if err != nil {
		return err
	}
	invoice.MarkLoaded()
	return nil
}

// CreateFromPlan persists a new invoice and the consumed state of the
// billing plan items in one transaction. Either the invoice exists and the
// items are marked invoiced, or neither happened.
func (r *GormInvoiceRepository) CreateFromPlan(ctx context.Context, invoice *billing.Invoice, year int, plan *billing.BillingPlan) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.createWithNumberInTx(tx, invoice, year); err != nil {
			return err
		}

		planModel := models.BillingPlanModelFromDomain(plan)
		if err := tx.Omit("Items").Save(planModel).Error; err != nil {
			return err
		}
		for i := range planModel.Items {
			if err := tx.Save(&planModel.Items[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	invoice.MarkLoaded()
	return nil
}

func (r *GormInvoiceRepository) createWithNumberInTx(tx *gorm.DB, invoice *billing.Invoice, year int) error {
	scope := numbering.InvoiceScopeKey(year)

	seq, err := NextSequenceInTx(tx, scope)
	if err != nil {
		return err
	}
	number, err := numbering.FormatInvoiceNumber(year, seq)
	if err != nil {
		return err
	}
	if err := invoice.AssignNumber(number); err != nil {
		return err
	}

	model := models.InvoiceModelFromDomain(invoice)
	if err := tx.Create(model).Error; err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrAllocationConflict
		}
		return err
	}
	return nil
}

// Save updates an existing invoice together with its items and payments
func (r *GormInvoiceRepository) Save(ctx context.Context, invoice *billing.Invoice) error {
	model := models.InvoiceModelFromDomain(invoice)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// The version guard runs first; items and payments are only
		// written when this writer still owns the loaded version.
		res := tx.Model(&models.InvoiceModel{}).
			Where("id = ? AND version = ?", model.ID, invoice.LoadedVersion()).
			Select("number", "status", "due_date", "order_id", "organization_id",
				"currency", "version", "updated_at").
			Updates(model)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}

		currentItemIDs := make([]uuid.UUID, len(model.Items))
		for i := range model.Items {
			currentItemIDs[i] = model.Items[i].ID
		}
		if len(currentItemIDs) > 0 {
			if err := tx.Where("invoice_id = ? AND id NOT IN ?", model.ID, currentItemIDs).
				Delete(&models.InvoiceItemModel{}).Error; err != nil {
				return err
			}
		} else {
			if err := tx.Where("invoice_id = ?", model.ID).
				Delete(&models.InvoiceItemModel{}).Error; err != nil {
				return err
			}
		}
		for i := range model.Items {
			if err := tx.Save(&model.Items[i]).Error; err != nil {
				return err
			}
		}

		// Payments are append-only, never deleted
		for i := range model.Payments {
			if err := tx.Save(&model.Payments[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	invoice.MarkLoaded()
	return nil
}

// Ensure GormInvoiceRepository implements InvoiceRepository
var _ billing.InvoiceRepository = (*GormInvoiceRepository)(nil)
