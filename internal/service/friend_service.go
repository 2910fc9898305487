package service

import (
	"go-fairway/internal/apperr"
	"go-fairway/internal/model"
	"go-fairway/internal/repository"
)

// FriendService runs the request -> accept/decline state machine and
// maintains the symmetric friendship edge.
type FriendService struct {
	friendRepo *repository.FriendRepository
	userRepo   *repository.UserRepository
}

func NewFriendService(friendRepo *repository.FriendRepository, userRepo *repository.UserRepository) *FriendService {
	return &FriendService{friendRepo: friendRepo, userRepo: userRepo}
}

type SendFriendRequestRequest struct {
	Username string `json:"username" binding:"required"`
}

func (s *FriendService) SendRequest(fromUserID uint, req SendFriendRequestRequest) (*model.FriendRequest, error) {
	target, err := s.userRepo.FindByUsername(req.Username)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, apperr.New(apperr.NotFound, "user not found")
	}
	if target.ID == fromUserID {
		return nil, apperr.New(apperr.InvalidInput, "cannot send a friend request to yourself")
	}

	friends, err := s.friendRepo.AreFriends(fromUserID, target.ID)
	if err != nil {
		return nil, err
	}
	if friends {
		return nil, apperr.New(apperr.Conflict, "you are already friends")
	}

	pending, err := s.friendRepo.FindPendingBetween(fromUserID, target.ID)
	if err != nil {
		return nil, err
	}
	if pending != nil {
		return nil, apperr.New(apperr.Conflict, "a friend request is already pending")
	}

	request := &model.FriendRequest{
		FromUserID: fromUserID,
		ToUserID:   target.ID,
		Status:     model.FriendRequestPending,
	}
	if err := s.friendRepo.CreateRequest(request); err != nil {
		return nil, err
	}
	return request, nil
}

// Accept may only be called by the request's recipient, and only
// while the request is still pending.
func (s *FriendService) Accept(requestID, userID uint) error {
	request, err := s.pendingRequestFor(requestID, userID)
	if err != nil {
		return err
	}
	return s.friendRepo.Accept(request)
}

func (s *FriendService) Decline(requestID, userID uint) error {
	request, err := s.pendingRequestFor(requestID, userID)
	if err != nil {
		return err
	}
	return s.friendRepo.UpdateRequestStatus(request.ID, model.FriendRequestDeclined)
}

func (s *FriendService) pendingRequestFor(requestID, userID uint) (*model.FriendRequest, error) {
	request, err := s.friendRepo.FindRequestByID(requestID)
	if err != nil {
		return nil, err
	}
	if request == nil {
		return nil, apperr.New(apperr.NotFound, "friend request not found")
	}
	if request.ToUserID != userID {
		return nil, apperr.New(apperr.Forbidden, "this request is not addressed to you")
	}
	if request.Status != model.FriendRequestPending {
		return nil, apperr.New(apperr.InvalidState, "friend request has already been answered")
	}
	return request, nil
}

func (s *FriendService) ListFriends(userID uint) ([]model.Friendship, error) {
	return s.friendRepo.FindFriends(userID)
}

func (s *FriendService) ListPending(userID uint) ([]model.FriendRequest, error) {
	return s.friendRepo.FindPendingForUser(userID)
}
