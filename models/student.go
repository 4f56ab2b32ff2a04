package models

import "time"

// Student is one admission record, stored with canonical field values
// after intake resolution and validation.
type Student struct {
	ID     uint   `gorm:"primaryKey"    json:"id"`
	RollNo string `gorm:"size:30;index" json:"roll_no"`

	Name        string     `gorm:"size:120;not null" json:"name"`
	Email       string     `gorm:"size:120;not null" json:"email"`
	Phone       string     `gorm:"size:15;not null"  json:"phone"`
	Gender      string     `gorm:"size:10;not null"  json:"gender"`
	DOB         *time.Time `json:"dob,omitempty"`
	Nationality string     `gorm:"size:60"           json:"nationality"`

	Category        string `gorm:"size:30;not null" json:"category"`
	CategoryRemarks string `gorm:"size:255"         json:"category_remarks"`
	Pwd             string `gorm:"size:5;not null"  json:"pwd"`
	PwdCategory     string `gorm:"size:60"          json:"pwd_category"`
	PwdRemarks      string `gorm:"size:255"         json:"pwd_remarks"`

	Income        float64 `json:"income"`
	IncomeBracket string  `gorm:"size:30" json:"income_bracket"`

	FatherName   string `gorm:"size:120"  json:"father_name"`
	FatherMobile string `gorm:"size:15"   json:"father_mobile"`
	MotherName   string `gorm:"size:120"  json:"mother_name"`
	MotherMobile string `gorm:"size:15"   json:"mother_mobile"`
	Address      string `gorm:"type:text" json:"address"`

	Branch        string `gorm:"size:120;not null" json:"branch"`
	ProgrammeType string `gorm:"size:8;not null"   json:"programme_type"` // ug|pg|phd
	AcademicYear  int    `gorm:"not null"          json:"academic_year"`

	// Programme-scoped academics; zero when the field does not apply.
	TenthPercent   float64 `json:"tenth_percent"`
	TwelfthPercent float64 `json:"twelfth_percent"`
	GateScore      float64 `json:"gate_score"`
	ResearchArea   string  `gorm:"size:255" json:"research_area"`

	BatchID *uint  `gorm:"index"                              json:"batch_id,omitempty"`
	Status  string `gorm:"size:20;default:'applied';not null" json:"status"` // applied|admitted|withdrawn|suspended

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
