package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"repair-system/internal/dto"
	"repair-system/internal/repositories"
	"repair-system/pkg/config"
	apperrors "repair-system/pkg/errors"
	"repair-system/pkg/service"
	"repair-system/pkg/utils"
)

type AuthServiceInterface interface {
	Login(ctx context.Context, d dto.LoginDTO) (*dto.TokenPairDTO, error)
	Refresh(ctx context.Context, d dto.RefreshDTO) (*dto.TokenPairDTO, error)
	Logout(ctx context.Context, refreshToken string) error
	Me(ctx context.Context) (*dto.UserDTO, error)
}

type AuthService struct {
	userRepo   repositories.UserRepositoryInterface
	cacheRepo  repositories.CacheRepositoryInterface
	jwtService service.JWTService
	cfg        *config.AuthConfig
	logger     *zap.Logger
}

func NewAuthService(
	userRepo repositories.UserRepositoryInterface,
	cacheRepo repositories.CacheRepositoryInterface,
	jwtService service.JWTService,
	cfg *config.AuthConfig,
	logger *zap.Logger,
) AuthServiceInterface {
	return &AuthService{
		userRepo:   userRepo,
		cacheRepo:  cacheRepo,
		jwtService: jwtService,
		cfg:        cfg,
		logger:     logger,
	}
}

// Login проверяет пароль и выдаёт пару токенов. После серии неудачных
// попыток вход блокируется на время из конфигурации.
func (s *AuthService) Login(ctx context.Context, d dto.LoginDTO) (*dto.TokenPairDTO, error) {
	user, err := s.userRepo.FindByUsername(ctx, d.Username)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if s.isLockedOut(ctx, user.ID) {
		return nil, apperrors.ErrLoginLocked
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(d.Password)); err != nil {
		s.registerFailedAttempt(ctx, user.ID)
		return nil, apperrors.ErrInvalidCredentials
	}

	s.clearAttempts(ctx, user.ID)

	access, refresh, refreshID, err := s.jwtService.GenerateTokens(user.ID, user.Username, user.Role)
	if err != nil {
		return nil, fmt.Errorf("не удалось выдать токены: %w", err)
	}

	sessionKey := refreshSessionKey(user.ID, refreshID)
	if err := s.cacheRepo.Set(ctx, sessionKey, "active", s.jwtService.GetRefreshTokenTTL()); err != nil {
		return nil, fmt.Errorf("не удалось сохранить сессию: %w", err)
	}

	if err := s.userRepo.UpdateLastLogin(ctx, user.ID); err != nil {
		s.logger.Warn("не удалось обновить время входа", zap.Int("user_id", user.ID), zap.Error(err))
	}

	s.logger.Info("успешный вход", zap.String("username", user.Username))
	return &dto.TokenPairDTO{
		AccessToken:  access,
		RefreshToken: refresh,
		User:         userToDTO(user),
	}, nil
}

// Refresh ротирует refresh-токен: старая сессия отзывается, выдаётся
// новая пара. Повторное использование отозванного токена отклоняется.
func (s *AuthService) Refresh(ctx context.Context, d dto.RefreshDTO) (*dto.TokenPairDTO, error) {
	claims, err := s.jwtService.ValidateToken(d.RefreshToken)
	if err != nil {
		return nil, err
	}
	if !claims.IsRefreshToken {
		return nil, apperrors.ErrTokenIsNotRefresh
	}

	oldKey := refreshSessionKey(claims.UserID, claims.ID)
	if _, err := s.cacheRepo.Get(ctx, oldKey); err != nil {
		return nil, apperrors.ErrSessionNotFound
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}

	access, refresh, refreshID, err := s.jwtService.GenerateTokens(user.ID, user.Username, user.Role)
	if err != nil {
		return nil, fmt.Errorf("не удалось выдать токены: %w", err)
	}

	if err := s.cacheRepo.Del(ctx, oldKey); err != nil {
		s.logger.Warn("не удалось отозвать старую сессию", zap.Error(err))
	}
	newKey := refreshSessionKey(user.ID, refreshID)
	if err := s.cacheRepo.Set(ctx, newKey, "active", s.jwtService.GetRefreshTokenTTL()); err != nil {
		return nil, fmt.Errorf("не удалось сохранить сессию: %w", err)
	}

	return &dto.TokenPairDTO{
		AccessToken:  access,
		RefreshToken: refresh,
		User:         userToDTO(user),
	}, nil
}

func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	claims, err := s.jwtService.ValidateToken(refreshToken)
	if err != nil {
		return err
	}
	if !claims.IsRefreshToken {
		return apperrors.ErrTokenIsNotRefresh
	}
	return s.cacheRepo.Del(ctx, refreshSessionKey(claims.UserID, claims.ID))
}

func (s *AuthService) Me(ctx context.Context) (*dto.UserDTO, error) {
	userID, err := utils.GetUserIDFromCtx(ctx)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	u := userToDTO(user)
	return &u, nil
}

func (s *AuthService) isLockedOut(ctx context.Context, userID int) bool {
	_, err := s.cacheRepo.Get(ctx, fmt.Sprintf("lockout:%d", userID))
	return err == nil
}

func (s *AuthService) registerFailedAttempt(ctx context.Context, userID int) {
	attemptsKey := fmt.Sprintf("login_attempts:%d", userID)
	attempts, err := s.cacheRepo.Incr(ctx, attemptsKey)
	if err != nil {
		s.logger.Warn("не удалось учесть неудачную попытку входа", zap.Error(err))
		return
	}
	if attempts == 1 {
		s.cacheRepo.Expire(ctx, attemptsKey, s.cfg.LockoutDuration)
	}
	if int(attempts) >= s.cfg.MaxLoginAttempts {
		s.cacheRepo.Set(ctx, fmt.Sprintf("lockout:%d", userID), "locked", s.cfg.LockoutDuration)
		s.logger.Warn("вход заблокирован после серии неудачных попыток", zap.Int("user_id", userID))
	}
}

func (s *AuthService) clearAttempts(ctx context.Context, userID int) {
	s.cacheRepo.Del(ctx,
		fmt.Sprintf("login_attempts:%d", userID),
		fmt.Sprintf("lockout:%d", userID),
	)
}

func refreshSessionKey(userID int, refreshID string) string {
	return fmt.Sprintf("refresh_session:%d:%s", userID, refreshID)
}
