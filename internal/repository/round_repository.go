package repository

import (
	"errors"

	"go-fairway/internal/model"

	"gorm.io/gorm"
)

type RoundRepository struct {
	db *gorm.DB
}

func NewRoundRepository(db *gorm.DB) *RoundRepository {
	return &RoundRepository{db: db}
}

func (r *RoundRepository) Create(round *model.Round) error {
	return r.db.Create(round).Error
}

// FindByID returns (nil, nil) when the round does not exist.
func (r *RoundRepository) FindByID(roundID uint) (*model.Round, error) {
	var round model.Round
	if err := r.db.First(&round, roundID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &round, nil
}

// FindByIDWithScores preloads scores with their holes, ordered by
// hole number.
func (r *RoundRepository) FindByIDWithScores(roundID uint) (*model.Round, error) {
	var round model.Round
	err := r.db.Preload("Scores.Hole").Preload("Course").First(&round, roundID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &round, nil
}

func (r *RoundRepository) FindByUser(userID uint, limit, offset int) ([]model.Round, error) {
	var rounds []model.Round
	err := r.db.Where("user_id = ?", userID).
		Order("started_at DESC").
		Limit(limit).
		Offset(offset).
		Preload("Course").
		Find(&rounds).Error
	return rounds, err
}

func (r *RoundRepository) FindBySession(sessionID uint) ([]model.Round, error) {
	var rounds []model.Round
	err := r.db.Where("session_id = ?", sessionID).Preload("User").Find(&rounds).Error
	return rounds, err
}

// UpdateAggregates persists the recomputed derived fields onto the
// round row.
func (r *RoundRepository) UpdateAggregates(roundID uint, totalScore, totalPutts, fairwaysHit, greensInReg int) error {
	return r.db.Model(&model.Round{}).Where("id = ?", roundID).
		Updates(map[string]interface{}{
			"total_score":   totalScore,
			"total_putts":   totalPutts,
			"fairways_hit":  fairwaysHit,
			"greens_in_reg": greensInReg,
		}).Error
}

func (r *RoundRepository) UpdateStatus(roundID uint, status model.RoundStatus, fields map[string]interface{}) error {
	updates := map[string]interface{}{"status": status}
	for k, v := range fields {
		updates[k] = v
	}
	return r.db.Model(&model.Round{}).Where("id = ?", roundID).Updates(updates).Error
}
