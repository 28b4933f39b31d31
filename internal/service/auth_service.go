package service

import (
	"errors"
	"time"

	"techtrain_backend/internal/config"
	"techtrain_backend/internal/model"
	"techtrain_backend/internal/repository"
	"techtrain_backend/internal/util"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService struct {
	UserRepo *repository.UserRepository
	Config   *config.Config
}

func NewAuthService(userRepo *repository.UserRepository, cfg *config.Config) *AuthService {
	return &AuthService{UserRepo: userRepo, Config: cfg}
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	FullName string `json:"fullName"`
	RoleID   string `json:"roleId"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

func (s *AuthService) Register(req RegisterRequest) (*model.User, error) {
	if _, err := s.UserRepo.FindByUsername(req.Username); err == nil {
		return nil, util.ErrUsernameRegistered
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if _, err := s.UserRepo.FindByEmail(req.Email); err == nil {
		return nil, util.ErrEmailRegistered
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	roleID := req.RoleID
	if roleID == "" {
		roleID = model.RoleTrainee
	}

	user := &model.User{
		Username: req.Username,
		Email:    req.Email,
		Password: string(hash),
		FullName: req.FullName,
		RoleID:   roleID,
	}
	if err := s.UserRepo.Create(user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AuthService) Login(req LoginRequest) (*LoginResponse, error) {
	user, err := s.UserRepo.FindByUsername(req.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrInvalidCredentials
		}
		return nil, err
	}
	if user.Disabled {
		return nil, util.ErrAccountDisabled
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, util.ErrInvalidCredentials
	}

	token, err := util.GenerateJWT(user, s.Config.JWT.Secret, s.Config.JWT.ExpireTime)
	if err != nil {
		return nil, err
	}

	user.LastLogin = time.Now()
	if err := s.UserRepo.Update(user); err != nil {
		return nil, err
	}

	return &LoginResponse{Token: token, User: user}, nil
}
