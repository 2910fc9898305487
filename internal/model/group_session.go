package model

import (
	"time"

	"gorm.io/gorm"
)

type SessionStatus string

const (
	SessionWaiting    SessionStatus = "WAITING"
	SessionInProgress SessionStatus = "IN_PROGRESS"
	SessionCompleted  SessionStatus = "COMPLETED"
	SessionCancelled  SessionStatus = "CANCELLED"
)

func (s SessionStatus) Terminal() bool {
	return s == SessionCompleted || s == SessionCancelled
}

// GroupSession is the multiplayer lobby + shared-round container.
// Invite codes stay taken for the lifetime of the row, terminal
// states included.
type GroupSession struct {
	ID         uint          `gorm:"primaryKey" json:"id"`
	Name       string        `gorm:"type:varchar(100)" json:"name"`
	HostID     uint          `gorm:"not null;index" json:"host_id"`
	CourseID   uint          `gorm:"not null;index" json:"course_id"`
	InviteCode string        `gorm:"type:varchar(6);not null;uniqueIndex" json:"invite_code"`
	MaxPlayers int           `gorm:"not null;default:4" json:"max_players"`
	Status     SessionStatus `gorm:"type:varchar(20);not null;default:'WAITING'" json:"status"`

	StartedAt *time.Time     `json:"started_at,omitempty"`
	EndedAt   *time.Time     `json:"ended_at,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"-"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Host    User            `gorm:"foreignKey:HostID" json:"host,omitempty"`
	Course  Course          `gorm:"foreignKey:CourseID" json:"course,omitempty"`
	Members []SessionMember `gorm:"foreignKey:SessionID" json:"members,omitempty"`
}
