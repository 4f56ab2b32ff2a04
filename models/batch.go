package models

import "time"

// Batch is a capacity-bounded cohort: programme type + discipline +
// academic year. Seat counters live here; available seats are always
// derived, never stored.
type Batch struct {
	ID            uint   `gorm:"primaryKey"                   json:"id"`
	Code          string `gorm:"size:20;uniqueIndex;not null" json:"code"` // e.g. "CSE-2025"
	Name          string `gorm:"size:120;not null"            json:"name"` // display name
	ProgrammeType string `gorm:"size:8;not null"              json:"programme_type"` // ug|pg|phd
	Discipline    string `gorm:"size:120;not null"            json:"discipline"`
	AcademicYear  int    `gorm:"not null"                     json:"academic_year"`
	TotalSeats    int    `gorm:"not null"                     json:"total_seats"`
	FilledSeats   int    `gorm:"default:0;not null"           json:"filled_seats"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (b Batch) AvailableSeats() int { return b.TotalSeats - b.FilledSeats }
