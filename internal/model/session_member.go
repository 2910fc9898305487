package model

import "time"

// SessionMember joins a user to a group session. Rows are hard
// deleted on leave so a user can rejoin the same lobby.
type SessionMember struct {
	SessionID uint `gorm:"primaryKey;autoIncrement:false" json:"session_id"`
	UserID    uint `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	// IsReady is the start gate: the host can only start once every
	// member's flag is true.
	IsReady   bool      `gorm:"not null;default:false" json:"is_ready"`
	CreatedAt time.Time `json:"joined_at"`
	UpdatedAt time.Time `json:"-"`

	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
