package model

import (
	"time"

	"gorm.io/gorm"
)

type Course struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"type:varchar(100);not null" json:"name"`
	Location  string         `gorm:"type:varchar(100)" json:"location"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"-"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Holes []Hole `gorm:"foreignKey:CourseID" json:"holes,omitempty"`
}

// Hole numbers are unique per course and, when fully seeded,
// contiguous 1..N.
type Hole struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	CourseID     uint      `gorm:"not null;index;uniqueIndex:idx_course_hole_number" json:"course_id"`
	Number       int       `gorm:"not null;uniqueIndex:idx_course_hole_number" json:"number"`
	Par          int       `gorm:"not null" json:"par"`
	Yardage      int       `json:"yardage"`
	HandicapRank int       `json:"handicap_rank"`
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`
}
