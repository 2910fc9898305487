package model

import "time"

// Score is one user's result for one hole of one round. The natural
// key is (round, hole, user); resubmitting the triple overwrites the
// existing row via an upsert, it never duplicates it.
type Score struct {
	ID      uint `gorm:"primaryKey" json:"id"`
	RoundID uint `gorm:"not null;index;uniqueIndex:idx_scores_round_hole_user" json:"round_id"`
	HoleID  uint `gorm:"not null;uniqueIndex:idx_scores_round_hole_user" json:"hole_id"`
	UserID  uint `gorm:"not null;uniqueIndex:idx_scores_round_hole_user" json:"user_id"`

	Strokes int  `gorm:"not null" json:"strokes"`
	Putts   *int `json:"putts,omitempty"`
	// FairwayHit is only meaningful on par 4+ holes; aggregation
	// ignores it elsewhere.
	FairwayHit *bool `json:"fairway_hit,omitempty"`
	GreenInReg *bool `json:"green_in_reg,omitempty"`
	Penalties  int   `gorm:"not null;default:0" json:"penalties"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"updated_at"`

	Hole Hole `gorm:"foreignKey:HoleID" json:"hole,omitempty"`
}
