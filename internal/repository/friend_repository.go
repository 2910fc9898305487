package repository

import (
	"errors"

	"go-fairway/internal/model"

	"gorm.io/gorm"
)

type FriendRepository struct {
	db *gorm.DB
}

func NewFriendRepository(db *gorm.DB) *FriendRepository {
	return &FriendRepository{db: db}
}

func (r *FriendRepository) CreateRequest(req *model.FriendRequest) error {
	return r.db.Create(req).Error
}

func (r *FriendRepository) FindRequestByID(requestID uint) (*model.FriendRequest, error) {
	var req model.FriendRequest
	if err := r.db.First(&req, requestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &req, nil
}

// FindPendingBetween looks for a PENDING request in either direction
// between the two users.
func (r *FriendRepository) FindPendingBetween(userA, userB uint) (*model.FriendRequest, error) {
	var req model.FriendRequest
	err := r.db.Where(
		"status = ? AND ((from_user_id = ? AND to_user_id = ?) OR (from_user_id = ? AND to_user_id = ?))",
		model.FriendRequestPending, userA, userB, userB, userA,
	).First(&req).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &req, nil
}

func (r *FriendRepository) UpdateRequestStatus(requestID uint, status model.FriendRequestStatus) error {
	return r.db.Model(&model.FriendRequest{}).Where("id = ?", requestID).
		Update("status", status).Error
}

// Accept marks the request accepted and creates both directions of
// the friendship edge in one transaction.
func (r *FriendRepository) Accept(req *model.FriendRequest) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.FriendRequest{}).Where("id = ?", req.ID).
			Update("status", model.FriendRequestAccepted).Error; err != nil {
			return err
		}
		edges := []model.Friendship{
			{UserID: req.FromUserID, FriendID: req.ToUserID},
			{UserID: req.ToUserID, FriendID: req.FromUserID},
		}
		return tx.Create(&edges).Error
	})
}

func (r *FriendRepository) AreFriends(userA, userB uint) (bool, error) {
	var count int64
	err := r.db.Model(&model.Friendship{}).
		Where("user_id = ? AND friend_id = ?", userA, userB).
		Count(&count).Error
	return count > 0, err
}

func (r *FriendRepository) FindFriends(userID uint) ([]model.Friendship, error) {
	var edges []model.Friendship
	err := r.db.Where("user_id = ?", userID).
		Preload("Friend").
		Order("created_at DESC").
		Find(&edges).Error
	return edges, err
}

// FindPendingForUser returns requests awaiting the user's answer.
func (r *FriendRepository) FindPendingForUser(userID uint) ([]model.FriendRequest, error) {
	var reqs []model.FriendRequest
	err := r.db.Where("to_user_id = ? AND status = ?", userID, model.FriendRequestPending).
		Preload("FromUser").
		Order("created_at DESC").
		Find(&reqs).Error
	return reqs, err
}
