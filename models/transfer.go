package models

import "time"

// Transfer is the audit trail of one committed re-assignment: the
// student moved between batches, branches or programme levels.
type Transfer struct {
	ID uint `gorm:"primaryKey" json:"id"`

	StudentID   uint `gorm:"not null;index" json:"student_id"`
	FromBatchID uint `gorm:"not null"       json:"from_batch_id"`
	ToBatchID   uint `gorm:"not null"       json:"to_batch_id"`

	TransferType string    `gorm:"size:20;not null" json:"transfer_type"` // batch_change|branch_change|programme_change
	Reason       string    `gorm:"size:255"         json:"reason"`
	TransferDate time.Time `json:"transfer_date"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
