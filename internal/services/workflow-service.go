package services

import (
	"context"
	"fmt"

	"github.com/aarondl/null/v8"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"repair-system/internal/dto"
	"repair-system/internal/entities"
	"repair-system/internal/repositories"
	"repair-system/pkg/constants"
	apperrors "repair-system/pkg/errors"
	"repair-system/pkg/utils"
)

type WorkflowServiceInterface interface {
	TransitionStatus(ctx context.Context, ticketID string, d dto.TransitionStatusDTO) (*dto.TicketDTO, error)
}

type WorkflowService struct {
	txManager      repositories.TxManagerInterface
	ticketRepo     repositories.TicketRepositoryInterface
	historyRepo    repositories.StatusHistoryRepositoryInterface
	assignmentRepo repositories.AssignmentRepositoryInterface
	logger         *zap.Logger
}

func NewWorkflowService(
	txManager repositories.TxManagerInterface,
	ticketRepo repositories.TicketRepositoryInterface,
	historyRepo repositories.StatusHistoryRepositoryInterface,
	assignmentRepo repositories.AssignmentRepositoryInterface,
	logger *zap.Logger,
) WorkflowServiceInterface {
	return &WorkflowService{
		txManager:      txManager,
		ticketRepo:     ticketRepo,
		historyRepo:    historyRepo,
		assignmentRepo: assignmentRepo,
		logger:         logger,
	}
}

// TransitionStatus переводит заявку в новый статус и дописывает журнал.
// Переход в тот же статус отрабатывает как no-op без записи в журнал.
func (s *WorkflowService) TransitionStatus(ctx context.Context, ticketID string, d dto.TransitionStatusDTO) (*dto.TicketDTO, error) {
	changedBy := utils.GetOptionalUserIDFromCtx(ctx)
	newStatus := constants.Status(d.Status)

	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		row, err := s.ticketRepo.FindForUpdateInTx(ctx, tx, ticketID)
		if err != nil {
			return err
		}
		if row.IsArchived {
			return apperrors.ErrTicketArchived
		}
		return applyStatusTransitionInTx(ctx, tx, s.ticketRepo, s.historyRepo, s.assignmentRepo,
			row, newStatus, d.Comment, changedBy)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("статус заявки изменён",
		zap.String("ticket_id", ticketID),
		zap.String("status", d.Status),
	)
	return s.ticketRepo.FindByTicketID(ctx, ticketID)
}

// applyStatusTransitionInTx — общая механика перехода, вызывается под
// блокировкой строки заявки.
func applyStatusTransitionInTx(
	ctx context.Context,
	tx pgx.Tx,
	ticketRepo repositories.TicketRepositoryInterface,
	historyRepo repositories.StatusHistoryRepositoryInterface,
	assignmentRepo repositories.AssignmentRepositoryInterface,
	row *entities.Ticket,
	newStatus constants.Status,
	comment string,
	changedBy *int,
) error {
	if !constants.IsValidStatus(string(newStatus)) {
		return apperrors.NewInvalidInputError(
			"недопустимый статус %q, допустимые значения: %s",
			string(newStatus), constants.AllowedStatusList(),
		)
	}

	oldStatus := row.Status
	if oldStatus == newStatus {
		return nil
	}

	if err := ticketRepo.UpdateStatusInTx(ctx, tx, row.ID, newStatus); err != nil {
		return err
	}

	// Момент завершения фиксируется один раз, при первой выдаче.
	if newStatus == constants.StatusIssued {
		if err := ticketRepo.StampActualCompletionInTx(ctx, tx, row.ID); err != nil {
			return err
		}
	}

	if comment == "" {
		comment = fmt.Sprintf("status changed from %s to %s", oldStatus, newStatus)
	}
	entry := entities.StatusHistory{
		TicketID:  row.ID,
		OldStatus: null.StringFrom(string(oldStatus)),
		NewStatus: string(newStatus),
		Comment:   null.StringFrom(comment),
	}
	if changedBy != nil {
		entry.ChangedBy = null.IntFrom(*changedBy)
	}
	if err := historyRepo.AppendInTx(ctx, tx, entry); err != nil {
		return err
	}

	// Вход в завершающий статус и выход из него меняют активную загрузку
	// назначенного мастера.
	if row.AssignedMasterID.Valid &&
		constants.IsTerminalStatus(oldStatus) != constants.IsTerminalStatus(newStatus) {
		if err := assignmentRepo.RecountMasterLoadInTx(ctx, tx, row.AssignedMasterID.Int); err != nil {
			return err
		}
	}
	return nil
}
