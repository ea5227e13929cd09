package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"repair-system/internal/dto"
	"repair-system/internal/entities"
	"repair-system/internal/repositories"
	"repair-system/pkg/utils"
)

type UserServiceInterface interface {
	CreateUser(ctx context.Context, d dto.CreateUserDTO) (*dto.UserDTO, error)
	GetUser(ctx context.Context, id int) (*dto.UserDTO, error)
}

type UserService struct {
	userRepo repositories.UserRepositoryInterface
	logger   *zap.Logger
}

func NewUserService(userRepo repositories.UserRepositoryInterface, logger *zap.Logger) UserServiceInterface {
	return &UserService{userRepo: userRepo, logger: logger}
}

func (s *UserService) CreateUser(ctx context.Context, d dto.CreateUserDTO) (*dto.UserDTO, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(d.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("не удалось захешировать пароль: %w", err)
	}

	id, err := s.userRepo.Create(ctx, d, string(hash))
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.logger.Info("создан сотрудник",
		zap.String("username", user.Username),
		zap.String("role", string(user.Role)),
	)
	u := userToDTO(user)
	return &u, nil
}

func (s *UserService) GetUser(ctx context.Context, id int) (*dto.UserDTO, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	u := userToDTO(user)
	return &u, nil
}

func userToDTO(user *entities.User) dto.UserDTO {
	return dto.UserDTO{
		ID:             user.ID,
		Username:       user.Username,
		Email:          user.Email,
		FullName:       user.FullName,
		Role:           string(user.Role),
		Phone:          user.Phone.String,
		Specialization: user.Specialization.String,
		IsActive:       user.IsActive,
		CreatedAt:      utils.FormatTime(user.CreatedAt),
	}
}
