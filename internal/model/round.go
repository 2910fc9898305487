package model

import (
	"time"

	"gorm.io/gorm"
)

type RoundStatus string

const (
	RoundInProgress RoundStatus = "IN_PROGRESS"
	RoundCompleted  RoundStatus = "COMPLETED"
	RoundAbandoned  RoundStatus = "ABANDONED"
)

// Terminal reports whether no further transition is permitted.
func (s RoundStatus) Terminal() bool {
	return s == RoundCompleted || s == RoundAbandoned
}

// Round is one user's play-through of a course. The four aggregate
// fields are derived from the round's scores and recomputed from
// scratch on every write; they are never authoritative on their own.
type Round struct {
	ID       uint  `gorm:"primaryKey" json:"id"`
	UserID   uint  `gorm:"not null;index" json:"user_id"`
	CourseID uint  `gorm:"not null;index" json:"course_id"`
	// SessionID is a weak back-reference: a round outlives its group
	// session and is never cascaded away with it.
	SessionID *uint       `gorm:"index" json:"session_id,omitempty"`
	Status    RoundStatus `gorm:"type:varchar(20);not null;default:'IN_PROGRESS'" json:"status"`

	TotalScore  int `gorm:"not null;default:0" json:"total_score"`
	TotalPutts  int `gorm:"not null;default:0" json:"total_putts"`
	FairwaysHit int `gorm:"not null;default:0" json:"fairways_hit"`
	GreensInReg int `gorm:"not null;default:0" json:"greens_in_reg"`

	StartedAt   time.Time      `gorm:"not null" json:"started_at"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
	CreatedAt   time.Time      `json:"-"`
	UpdatedAt   time.Time      `json:"-"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	User   User    `gorm:"foreignKey:UserID" json:"-"`
	Course Course  `gorm:"foreignKey:CourseID" json:"-"`
	Scores []Score `gorm:"foreignKey:RoundID" json:"scores,omitempty"`
}
