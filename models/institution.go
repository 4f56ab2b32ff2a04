package models

import "time"

// Institution holds the single row of deployment-wide settings the
// intake flow reads: the default academic year and the roll-number
// length limit (0 = not enforced).
type Institution struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	Code    string `gorm:"uniqueIndex;size:20;not null" json:"code"`
	Name    string `gorm:"size:120;not null" json:"name"`
	Address string `gorm:"size:255" json:"address"`
	Phone   string `gorm:"size:20" json:"phone"`

	CurrentAcademicYear int `gorm:"default:0;not null" json:"current_academic_year"`
	RollNoDigits        int `gorm:"default:0;not null" json:"roll_no_digits"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
