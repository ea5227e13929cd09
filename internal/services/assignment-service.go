package services

import (
	"context"

	"github.com/aarondl/null/v8"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"repair-system/internal/dto"
	"repair-system/internal/entities"
	"repair-system/internal/repositories"
	apperrors "repair-system/pkg/errors"
	"repair-system/pkg/utils"
)

const (
	reassignReason        = "reassigned"
	defaultUnassignReason = "removed from ticket"
)

type AssignmentServiceInterface interface {
	AssignMaster(ctx context.Context, ticketID string, d dto.AssignMasterDTO) (*dto.TicketDTO, error)
	UnassignMaster(ctx context.Context, ticketID string, d dto.UnassignMasterDTO) (*dto.TicketDTO, error)
	ListAvailableMasters(ctx context.Context) ([]dto.MasterDTO, error)
	GetMastersDashboard(ctx context.Context) ([]dto.MasterDashboardDTO, error)
	GetMasterWorkload(ctx context.Context, masterID int) (*dto.MasterWorkloadDTO, error)
	SetAvailability(ctx context.Context, masterID int, isAvailable bool) error
}

type AssignmentService struct {
	txManager      repositories.TxManagerInterface
	ticketRepo     repositories.TicketRepositoryInterface
	userRepo       repositories.UserRepositoryInterface
	assignmentRepo repositories.AssignmentRepositoryInterface
	logger         *zap.Logger
}

func NewAssignmentService(
	txManager repositories.TxManagerInterface,
	ticketRepo repositories.TicketRepositoryInterface,
	userRepo repositories.UserRepositoryInterface,
	assignmentRepo repositories.AssignmentRepositoryInterface,
	logger *zap.Logger,
) AssignmentServiceInterface {
	return &AssignmentService{
		txManager:      txManager,
		ticketRepo:     ticketRepo,
		userRepo:       userRepo,
		assignmentRepo: assignmentRepo,
		logger:         logger,
	}
}

// AssignMaster назначает мастера под блокировкой строки заявки. Повторное
// назначение того же мастера отрабатывает как no-op без записи в историю.
// При переназначении старая запись истории закрывается, счётчики обоих
// мастеров пересчитываются от фактического числа активных заявок.
func (s *AssignmentService) AssignMaster(ctx context.Context, ticketID string, d dto.AssignMasterDTO) (*dto.TicketDTO, error) {
	assignedBy, err := utils.GetUserIDFromCtx(ctx)
	if err != nil {
		return nil, err
	}

	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		row, err := s.ticketRepo.FindForUpdateInTx(ctx, tx, ticketID)
		if err != nil {
			return err
		}
		if row.IsArchived {
			return apperrors.ErrTicketArchived
		}

		master, err := s.userRepo.FindMasterInTx(ctx, tx, d.MasterID)
		if err != nil {
			return err
		}

		if row.AssignedMasterID.Valid && row.AssignedMasterID.Int == master.ID {
			return nil
		}

		var previousMasterID *int
		if row.AssignedMasterID.Valid {
			prev := row.AssignedMasterID.Int
			previousMasterID = &prev
			if err := s.assignmentRepo.CloseOpenInTx(ctx, tx, row.ID, reassignReason); err != nil {
				return err
			}
		}

		if err := s.ticketRepo.AssignInTx(ctx, tx, row.ID, master.ID, assignedBy); err != nil {
			return err
		}
		entry := entities.AssignmentHistory{
			TicketID:   row.ID,
			MasterID:   master.ID,
			AssignedBy: null.IntFrom(assignedBy),
		}
		if err := s.assignmentRepo.OpenInTx(ctx, tx, entry); err != nil {
			return err
		}

		if previousMasterID != nil {
			if err := s.assignmentRepo.RecountMasterLoadInTx(ctx, tx, *previousMasterID); err != nil {
				return err
			}
		}
		return s.assignmentRepo.RecountMasterLoadInTx(ctx, tx, master.ID)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("мастер назначен на заявку",
		zap.String("ticket_id", ticketID),
		zap.Int("master_id", d.MasterID),
		zap.Int("assigned_by", assignedBy),
	)
	return s.ticketRepo.FindByTicketID(ctx, ticketID)
}

// UnassignMaster снимает мастера с заявки. Без назначенного мастера
// операция завершается ошибкой и ничего не пишет в историю.
func (s *AssignmentService) UnassignMaster(ctx context.Context, ticketID string, d dto.UnassignMasterDTO) (*dto.TicketDTO, error) {
	reason := d.Reason
	if reason == "" {
		reason = defaultUnassignReason
	}

	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		row, err := s.ticketRepo.FindForUpdateInTx(ctx, tx, ticketID)
		if err != nil {
			return err
		}
		if row.IsArchived {
			return apperrors.ErrTicketArchived
		}
		if !row.AssignedMasterID.Valid {
			return apperrors.ErrNoAssignedMaster
		}
		masterID := row.AssignedMasterID.Int

		if err := s.assignmentRepo.CloseOpenInTx(ctx, tx, row.ID, reason); err != nil {
			return err
		}
		if err := s.ticketRepo.ClearAssignmentInTx(ctx, tx, row.ID); err != nil {
			return err
		}
		return s.assignmentRepo.RecountMasterLoadInTx(ctx, tx, masterID)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("мастер снят с заявки",
		zap.String("ticket_id", ticketID),
		zap.String("reason", reason),
	)
	return s.ticketRepo.FindByTicketID(ctx, ticketID)
}

func (s *AssignmentService) ListAvailableMasters(ctx context.Context) ([]dto.MasterDTO, error) {
	return s.userRepo.ListAvailableMasters(ctx)
}

func (s *AssignmentService) GetMastersDashboard(ctx context.Context) ([]dto.MasterDashboardDTO, error) {
	return s.userRepo.MastersDashboard(ctx)
}

func (s *AssignmentService) GetMasterWorkload(ctx context.Context, masterID int) (*dto.MasterWorkloadDTO, error) {
	if _, err := s.userRepo.FindByID(ctx, masterID); err != nil {
		return nil, apperrors.ErrMasterNotFound
	}

	tickets, err := s.userRepo.ListMasterActiveTickets(ctx, masterID)
	if err != nil {
		return nil, err
	}
	stats, err := s.userRepo.MasterStats(ctx, masterID)
	if err != nil {
		return nil, err
	}
	return &dto.MasterWorkloadDTO{ActiveTickets: tickets, Stats: *stats}, nil
}

func (s *AssignmentService) SetAvailability(ctx context.Context, masterID int, isAvailable bool) error {
	return s.userRepo.SetAvailability(ctx, masterID, isAvailable)
}
