// Package audit provides the database-backed sink for the audit trail.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	appaudit "github.com/kontor/backend/internal/application/audit"
	"gorm.io/gorm"
)

// AuditLogModel is the persistence model for one audit trail record.
// The trail is append-only; rows are never updated or deleted.
type AuditLogModel struct {
	ID            uuid.UUID  `gorm:"type:uuid;primary_key"`
	EventID       uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex"`
	EventType     string     `gorm:"type:varchar(100);not null;index"`
	AggregateType string     `gorm:"type:varchar(100);not null"`
	AggregateID   uuid.UUID  `gorm:"type:uuid;not null;index"`
	ActorID       *uuid.UUID `gorm:"type:uuid;index"`
	OccurredAt    time.Time  `gorm:"not null;index"`
	Payload       []byte     `gorm:"type:jsonb"`
	CreatedAt     time.Time  `gorm:"not null"`
}

// TableName returns the table name for GORM
func (AuditLogModel) TableName() string {
	return "audit_log"
}

// GormSink implements audit.Sink by appending entries to the audit_log table
type GormSink struct {
	db *gorm.DB
}

// NewGormSink creates a new GormSink
func NewGormSink(db *gorm.DB) *GormSink {
	return &GormSink{db: db}
}

// Record appends one audit entry. The unique index on event_id makes a
// replayed event a no-op instead of a duplicate trail row.
func (s *GormSink) Record(ctx context.Context, entry appaudit.Entry) error {
	model := AuditLogModel{
		ID:            uuid.New(),
		EventID:       entry.EventID,
		EventType:     entry.EventType,
		AggregateType: entry.AggregateType,
		AggregateID:   entry.AggregateID,
		ActorID:       entry.ActorID,
		OccurredAt:    entry.OccurredAt,
		Payload:       entry.Payload,
	}
	err := s.db.WithContext(ctx).
		Where("event_id = ?", entry.EventID).
		FirstOrCreate(&model).Error
	return err
}

// Ensure GormSink implements Sink
var _ appaudit.Sink = (*GormSink)(nil)
