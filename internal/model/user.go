package model

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Username    string `gorm:"type:varchar(30);not null;uniqueIndex" json:"username"`
	Email       string `gorm:"type:varchar(100);not null;uniqueIndex" json:"email"`
	Password    string `gorm:"type:varchar(100);not null" json:"-"`
	DisplayName string `gorm:"type:varchar(50)" json:"display_name"`
	// HandicapIndex is optional; nil until the user records one.
	HandicapIndex *float64 `json:"handicap_index,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"-"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}
