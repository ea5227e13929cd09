package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"repair-system/internal/dto"
	"repair-system/internal/repositories"
	"repair-system/pkg/constants"
	apperrors "repair-system/pkg/errors"
	"repair-system/pkg/utils"
)

const maxCreateAttempts = 3

type TicketServiceInterface interface {
	CreateTicket(ctx context.Context, d dto.CreateTicketDTO) (*dto.TicketDTO, error)
	GetTicket(ctx context.Context, ticketID string) (*dto.TicketDTO, error)
	GetPublicStatus(ctx context.Context, ticketID string) (*dto.PublicStatusDTO, error)
	ListTickets(ctx context.Context) ([]dto.TicketDTO, error)
	UpdateTicket(ctx context.Context, ticketID string, d dto.UpdateTicketDTO) (*dto.TicketDTO, error)
	ArchiveTicket(ctx context.Context, ticketID string) error
	GetTicketHistory(ctx context.Context, ticketID string) (*dto.TicketHistoryDTO, error)
}

type TicketService struct {
	txManager      repositories.TxManagerInterface
	ticketRepo     repositories.TicketRepositoryInterface
	clientRepo     repositories.ClientRepositoryInterface
	historyRepo    repositories.StatusHistoryRepositoryInterface
	assignmentRepo repositories.AssignmentRepositoryInterface
	logger         *zap.Logger
}

func NewTicketService(
	txManager repositories.TxManagerInterface,
	ticketRepo repositories.TicketRepositoryInterface,
	clientRepo repositories.ClientRepositoryInterface,
	historyRepo repositories.StatusHistoryRepositoryInterface,
	assignmentRepo repositories.AssignmentRepositoryInterface,
	logger *zap.Logger,
) TicketServiceInterface {
	return &TicketService{
		txManager:      txManager,
		ticketRepo:     ticketRepo,
		clientRepo:     clientRepo,
		historyRepo:    historyRepo,
		assignmentRepo: assignmentRepo,
		logger:         logger,
	}
}

// CreateTicket заводит заявку и клиента одной транзакцией: телефон
// нормализуется, клиент ищется по нему и создаётся при отсутствии.
// Авторизация не требуется, автор фиксируется только если он известен.
func (s *TicketService) CreateTicket(ctx context.Context, d dto.CreateTicketDTO) (*dto.TicketDTO, error) {
	phone := utils.NormalizePhone(d.Phone)
	if phone == "" {
		return nil, apperrors.NewInvalidInputError("не удалось распознать номер телефона: %q", d.Phone)
	}

	createdBy := utils.GetOptionalUserIDFromCtx(ctx)

	var (
		ticketID string
		isVIP    bool
		err      error
	)
	// Уникальность номера проверяется до вставки, но параллельное создание
	// может успеть занять тот же кандидат. Такая коллизия откатывает всю
	// транзакцию, поэтому повторяется транзакция целиком.
	for attempt := 0; attempt < maxCreateAttempts; attempt++ {
		err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
			client, err := s.clientRepo.UpsertByPhoneInTx(ctx, tx, strings.TrimSpace(d.ClientName), phone, d.Email)
			if err != nil {
				return err
			}
			isVIP = client.IsVIP

			ticketID, err = s.ticketRepo.GenerateTicketIDInTx(ctx, tx)
			if err != nil {
				return err
			}

			_, err = s.ticketRepo.CreateInTx(ctx, tx, ticketID, client.ID, d, createdBy)
			return err
		})
		if !repositories.IsTicketIDCollision(err) {
			break
		}
		s.logger.Warn("коллизия номера заявки, повтор создания", zap.String("ticket_id", ticketID))
	}
	if err != nil {
		return nil, fmt.Errorf("создание заявки не удалось: %w", err)
	}

	s.logger.Info("создана заявка",
		zap.String("ticket_id", ticketID),
		zap.String("phone", phone),
		zap.Bool("vip", isVIP),
	)
	return s.ticketRepo.FindByTicketID(ctx, ticketID)
}

func (s *TicketService) GetTicket(ctx context.Context, ticketID string) (*dto.TicketDTO, error) {
	return s.ticketRepo.FindByTicketID(ctx, ticketID)
}

func (s *TicketService) GetPublicStatus(ctx context.Context, ticketID string) (*dto.PublicStatusDTO, error) {
	return s.ticketRepo.FindPublicStatus(ctx, ticketID)
}

func (s *TicketService) ListTickets(ctx context.Context) ([]dto.TicketDTO, error) {
	return s.ticketRepo.ListActive(ctx)
}

// UpdateTicket применяет разреженное обновление. Смена статуса через это
// же тело проходит полный путь перехода вместе с журналом.
func (s *TicketService) UpdateTicket(ctx context.Context, ticketID string, d dto.UpdateTicketDTO) (*dto.TicketDTO, error) {
	changedBy := utils.GetOptionalUserIDFromCtx(ctx)

	sets := map[string]interface{}{}
	if d.DeviceType != nil {
		sets["device_type"] = *d.DeviceType
	}
	if d.Brand != nil {
		sets["brand"] = utils.StringToNullString(*d.Brand)
	}
	if d.Model != nil {
		sets["model"] = utils.StringToNullString(*d.Model)
	}
	if d.SerialNumber != nil {
		sets["serial_number"] = utils.StringToNullString(*d.SerialNumber)
	}
	if d.ProblemDescription != nil {
		sets["problem_description"] = *d.ProblemDescription
	}
	if d.Priority != nil {
		sets["priority"] = *d.Priority
	}
	if d.EstimatedCost != nil {
		sets["estimated_cost"] = *d.EstimatedCost
	}
	if d.FinalCost != nil {
		sets["final_cost"] = *d.FinalCost
	}
	if d.EstimatedCompletion != nil {
		sets["estimated_completion"] = *d.EstimatedCompletion
	}
	if d.Notes != nil {
		sets["notes"] = utils.StringToNullString(*d.Notes)
	}

	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		row, err := s.ticketRepo.FindForUpdateInTx(ctx, tx, ticketID)
		if err != nil {
			return err
		}
		if row.IsArchived {
			return apperrors.ErrTicketArchived
		}

		if err := s.ticketRepo.UpdateFieldsInTx(ctx, tx, row.ID, sets); err != nil {
			return err
		}

		if d.Status != nil {
			comment := ""
			if d.Comment != nil {
				comment = *d.Comment
			}
			return applyStatusTransitionInTx(ctx, tx, s.ticketRepo, s.historyRepo, s.assignmentRepo,
				row, constants.Status(*d.Status), comment, changedBy)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.ticketRepo.FindByTicketID(ctx, ticketID)
}

func (s *TicketService) ArchiveTicket(ctx context.Context, ticketID string) error {
	if err := s.ticketRepo.Archive(ctx, ticketID); err != nil {
		return err
	}
	s.logger.Info("заявка заархивирована", zap.String("ticket_id", ticketID))
	return nil
}

func (s *TicketService) GetTicketHistory(ctx context.Context, ticketID string) (*dto.TicketHistoryDTO, error) {
	rowID, err := s.ticketRepo.FindRowID(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	statusChanges, err := s.historyRepo.ListByTicket(ctx, rowID)
	if err != nil {
		return nil, err
	}
	assignments, err := s.assignmentRepo.ListByTicket(ctx, rowID)
	if err != nil {
		return nil, err
	}
	return &dto.TicketHistoryDTO{StatusChanges: statusChanges, Assignments: assignments}, nil
}
