package model

import "time"

type FriendRequestStatus string

const (
	FriendRequestPending  FriendRequestStatus = "PENDING"
	FriendRequestAccepted FriendRequestStatus = "ACCEPTED"
	FriendRequestDeclined FriendRequestStatus = "DECLINED"
)

// FriendRequest is the directed half of the friend state machine.
// Duplicate-pending checks happen in the service, not the schema, so
// a declined pair can request again later.
type FriendRequest struct {
	ID         uint                `gorm:"primaryKey" json:"id"`
	FromUserID uint                `gorm:"not null;index" json:"from_user_id"`
	ToUserID   uint                `gorm:"not null;index" json:"to_user_id"`
	Status     FriendRequestStatus `gorm:"type:varchar(20);not null;default:'PENDING'" json:"status"`
	CreatedAt  time.Time           `json:"created_at"`
	UpdatedAt  time.Time           `json:"-"`

	FromUser User `gorm:"foreignKey:FromUserID" json:"from_user,omitempty"`
	ToUser   User `gorm:"foreignKey:ToUserID" json:"to_user,omitempty"`
}

// Friendship is the symmetric edge created on accept; one row per
// direction so lookups stay a single indexed query.
type Friendship struct {
	UserID    uint      `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	FriendID  uint      `gorm:"primaryKey;autoIncrement:false" json:"friend_id"`
	CreatedAt time.Time `json:"created_at"`

	Friend User `gorm:"foreignKey:FriendID" json:"friend,omitempty"`
}
