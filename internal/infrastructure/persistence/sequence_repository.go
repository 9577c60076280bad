package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/kontor/backend/internal/domain/numbering"
	"github.com/kontor/backend/internal/domain/shared"
	"github.com/kontor/backend/internal/infrastructure/persistence/models"
	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSequenceAllocator implements numbering.SequenceAllocator on a
// scope-keyed counter table. The counter row is locked for the duration of
// the allocating transaction, so two concurrent allocations within one
// scope serialize on the row and never hand out the same value.
type GormSequenceAllocator struct {
	db *gorm.DB
}

// NewGormSequenceAllocator creates a new GormSequenceAllocator
func NewGormSequenceAllocator(db *gorm.DB) *GormSequenceAllocator {
	return &GormSequenceAllocator{db: db}
}

// Next allocates the next sequence value for the scope in its own transaction.
func (r *GormSequenceAllocator) Next(ctx context.Context, scope string) (int64, error) {
	var value int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var txErr error
		value, txErr = NextSequenceInTx(tx, scope)
		return txErr
	})
	if err != nil {
		return 0, err
	}
	return value, nil
}

// NextSequenceInTx allocates the next sequence value for the scope inside an
// already running transaction. Repositories that must allocate and insert
// atomically call this so the counter increment rolls back with the insert.
func NextSequenceInTx(tx *gorm.DB, scope string) (int64, error) {
	if scope == "" {
		return 0, shared.NewDomainError("INVALID_SCOPE", "Sequence scope cannot be empty")
	}

	var counter models.NumberSequenceModel
	err := lockForUpdate(tx).First(&counter, "scope = ?", scope).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		counter = models.NumberSequenceModel{Scope: scope, Value: 1}
		if createErr := tx.Create(&counter).Error; createErr != nil {
			// A concurrent first allocation for this scope created the row
			// between our read and insert. The caller retries with a fresh
			// transaction and will find the row locked instead.
			if IsUniqueViolation(createErr) {
				return 0, shared.ErrAllocationConflict
			}
			return 0, createErr
		}
		return 1, nil
	}
	if err != nil {
		return 0, err
	}

	counter.Value++
	if err := tx.Model(&models.NumberSequenceModel{}).
		Where("scope = ?", scope).
		Update("value", counter.Value).Error; err != nil {
		return 0, err
	}
	return counter.Value, nil
}

// lockForUpdate adds a row lock on dialects that support it. SQLite has no
// row locks; its single-writer transaction serializes allocations instead.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// IsUniqueViolation reports whether the error is a unique constraint
// violation, across the postgres driver and the sqlite driver used in tests.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}

// Ensure GormSequenceAllocator implements SequenceAllocator
var _ numbering.SequenceAllocator = (*GormSequenceAllocator)(nil)
