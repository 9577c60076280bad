package models

// NumberSequenceModel is a scope-keyed counter backing number allocation.
// One row per scope, e.g. "2026NEU" for orders or "INV-2026-" for invoices.
// Value holds the last allocated sequence; rows are created on first use.
type NumberSequenceModel struct {
	Scope string `gorm:"type:varchar(50);primary_key"`
	Value int64  `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (NumberSequenceModel) TableName() string {
	return "number_sequences"
}
