package repository

import (
	"go-fairway/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ScoreRepository struct {
	db *gorm.DB
}

func NewScoreRepository(db *gorm.DB) *ScoreRepository {
	return &ScoreRepository{db: db}
}

// Upsert writes the score keyed on (round, hole, user): a second
// submission for the same triple overwrites the first row instead of
// inserting a duplicate.
func (r *ScoreRepository) Upsert(score *model.Score) error {
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "round_id"},
			{Name: "hole_id"},
			{Name: "user_id"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"strokes", "putts", "fairway_hit", "green_in_reg", "penalties", "updated_at",
		}),
	}).Create(score).Error
}

// FindByRound returns the round's scores with holes preloaded,
// ordered by hole number. This is the scan behind every aggregate
// recompute.
func (r *ScoreRepository) FindByRound(roundID uint) ([]model.Score, error) {
	var scores []model.Score
	err := r.db.Where("round_id = ?", roundID).
		Preload("Hole").
		Joins("JOIN holes ON holes.id = scores.hole_id").
		Order("holes.number ASC").
		Find(&scores).Error
	return scores, err
}

func (r *ScoreRepository) CountByRound(roundID uint) (int64, error) {
	var count int64
	err := r.db.Model(&model.Score{}).Where("round_id = ?", roundID).Count(&count).Error
	return count, err
}
