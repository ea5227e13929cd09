package services

import (
	"context"

	"go.uber.org/zap"

	"repair-system/internal/dto"
	"repair-system/internal/repositories"
	apperrors "repair-system/pkg/errors"
	"repair-system/pkg/utils"
)

type ClientServiceInterface interface {
	GetClient(ctx context.Context, id int) (*dto.ClientDTO, error)
	SearchClients(ctx context.Context, phoneFragment string) ([]dto.ClientSearchItemDTO, error)
	UpdateClient(ctx context.Context, id int, d dto.UpdateClientDTO) (*dto.ClientDTO, error)
	DeleteClient(ctx context.Context, id int) error
}

type ClientService struct {
	clientRepo repositories.ClientRepositoryInterface
	logger     *zap.Logger
}

func NewClientService(clientRepo repositories.ClientRepositoryInterface, logger *zap.Logger) ClientServiceInterface {
	return &ClientService{clientRepo: clientRepo, logger: logger}
}

func (s *ClientService) GetClient(ctx context.Context, id int) (*dto.ClientDTO, error) {
	return s.clientRepo.FindByID(ctx, id)
}

// SearchClients ищет по подстроке телефона. Принимает и "сырой" ввод:
// перед поиском из него выбрасывается всё, кроме цифр.
func (s *ClientService) SearchClients(ctx context.Context, phoneFragment string) ([]dto.ClientSearchItemDTO, error) {
	digits := utils.DigitsOnly(phoneFragment)
	if digits == "" {
		return nil, apperrors.NewInvalidInputError("поисковый запрос должен содержать цифры")
	}
	return s.clientRepo.SearchByPhone(ctx, digits)
}

func (s *ClientService) UpdateClient(ctx context.Context, id int, d dto.UpdateClientDTO) (*dto.ClientDTO, error) {
	if err := s.clientRepo.Update(ctx, id, d); err != nil {
		return nil, err
	}
	return s.clientRepo.FindByID(ctx, id)
}

// DeleteClient удаляет клиента без активных заявок; его завершённые
// заявки уходят в архив.
func (s *ClientService) DeleteClient(ctx context.Context, id int) error {
	if err := s.clientRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("клиент удалён", zap.Int("client_id", id))
	return nil
}
