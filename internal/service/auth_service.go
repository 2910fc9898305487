package service

import (
	"go-fairway/internal/apperr"
	"go-fairway/internal/model"
	"go-fairway/internal/repository"
	"go-fairway/pkg/utils"

	"golang.org/x/crypto/bcrypt"
)

// AuthService handles registration, login and profile edits.
type AuthService struct {
	userRepo *repository.UserRepository
}

func NewAuthService(userRepo *repository.UserRepository) *AuthService {
	return &AuthService{
		userRepo: userRepo,
	}
}

type RegisterRequest struct {
	Username    string `json:"username" binding:"required,min=3,max=30"`
	Password    string `json:"password" binding:"required,min=6"`
	Email       string `json:"email" binding:"required,email"`
	DisplayName string `json:"display_name"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type UpdateProfileRequest struct {
	DisplayName   *string  `json:"display_name"`
	HandicapIndex *float64 `json:"handicap_index"`
}

func (s *AuthService) Register(req RegisterRequest) (*model.User, error) {
	existingUser, err := s.userRepo.FindByUsername(req.Username)
	if err != nil {
		return nil, err
	}
	if existingUser != nil {
		return nil, apperr.New(apperr.Conflict, "username already exists")
	}

	existingEmail, err := s.userRepo.FindByEmail(req.Email)
	if err != nil {
		return nil, err
	}
	if existingEmail != nil {
		return nil, apperr.New(apperr.Conflict, "email already exists")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	displayName := req.DisplayName
	if displayName == "" {
		displayName = req.Username
	}

	user := &model.User{
		Username:    req.Username,
		Password:    string(hashedPassword),
		Email:       req.Email,
		DisplayName: displayName,
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *AuthService) Login(req LoginRequest) (string, *model.User, error) {
	user, err := s.userRepo.FindByUsername(req.Username)
	if err != nil {
		return "", nil, err
	}
	if user == nil {
		return "", nil, apperr.New(apperr.InvalidInput, "invalid username or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return "", nil, apperr.New(apperr.InvalidInput, "invalid username or password")
	}

	token, err := utils.GenerateToken(user.ID)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *AuthService) GetProfile(userID uint) (*model.User, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.New(apperr.NotFound, "user not found")
	}
	return user, nil
}

func (s *AuthService) UpdateProfile(userID uint, req UpdateProfileRequest) (*model.User, error) {
	user, err := s.GetProfile(userID)
	if err != nil {
		return nil, err
	}
	if req.DisplayName != nil {
		user.DisplayName = *req.DisplayName
	}
	if req.HandicapIndex != nil {
		user.HandicapIndex = req.HandicapIndex
	}
	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}
