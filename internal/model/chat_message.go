package model

import (
	"time"

	"gorm.io/gorm"
)

// ChatMessage is one line of a session's chat. Persistence is the
// source of truth; the realtime broadcast of the same message is
// best-effort only.
type ChatMessage struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	SessionID uint           `gorm:"not null;index" json:"session_id"`
	SenderID  uint           `gorm:"not null;index" json:"sender_id"`
	Content   string         `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Sender User `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
}
