package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"repair-system/internal/dto"
	"repair-system/internal/entities"
	"repair-system/pkg/utils"
)

type AssignmentRepositoryInterface interface {
	CloseOpenInTx(ctx context.Context, q querier, ticketRowID int, reason string) error
	OpenInTx(ctx context.Context, q querier, entry entities.AssignmentHistory) error
	RecountMasterLoadInTx(ctx context.Context, q querier, masterID int) error
	ListByTicket(ctx context.Context, ticketRowID int) ([]dto.AssignmentHistoryDTO, error)
}

type AssignmentRepository struct {
	storage *pgxpool.Pool
}

func NewAssignmentRepository(storage *pgxpool.Pool) AssignmentRepositoryInterface {
	return &AssignmentRepository{storage: storage}
}

// CloseOpenInTx закрывает открытую запись истории (unassigned_at IS NULL).
// На заявку открыта не более одной записи, поэтому UPDATE без LIMIT.
func (r *AssignmentRepository) CloseOpenInTx(ctx context.Context, q querier, ticketRowID int, reason string) error {
	_, err := q.Exec(ctx, `
		UPDATE assignment_history
		SET unassigned_at = NOW(), reason = $1
		WHERE ticket_id = $2 AND unassigned_at IS NULL`,
		reason, ticketRowID,
	)
	if err != nil {
		return fmt.Errorf("ошибка закрытия записи назначения: %w", err)
	}
	return nil
}

func (r *AssignmentRepository) OpenInTx(ctx context.Context, q querier, entry entities.AssignmentHistory) error {
	_, err := q.Exec(ctx, `
		INSERT INTO assignment_history (ticket_id, master_id, assigned_by_id, assigned_at)
		VALUES ($1, $2, $3, NOW())`,
		entry.TicketID, entry.MasterID, entry.AssignedBy,
	)
	if err != nil {
		return fmt.Errorf("ошибка записи назначения в историю: %w", err)
	}
	return nil
}

// RecountMasterLoadInTx пересчитывает кеш загрузки мастера от
// авторитетного источника, а не инкрементами. Завершённые и архивные
// заявки в загрузку не входят.
func (r *AssignmentRepository) RecountMasterLoadInTx(ctx context.Context, q querier, masterID int) error {
	_, err := q.Exec(ctx, `
		UPDATE users
		SET current_repairs_count = (
			SELECT COUNT(*) FROM tickets
			WHERE assigned_master_id = $1
			  AND is_archived = FALSE
			  AND status NOT IN ('ReadyForPickup', 'Issued')
		)
		WHERE id = $1`,
		masterID,
	)
	if err != nil {
		return fmt.Errorf("ошибка пересчёта загрузки мастера: %w", err)
	}
	return nil
}

func (r *AssignmentRepository) ListByTicket(ctx context.Context, ticketRowID int) ([]dto.AssignmentHistoryDTO, error) {
	query := `
		SELECT m.full_name, ab.full_name, ah.assigned_at, ah.unassigned_at, ah.reason
		FROM assignment_history ah
		JOIN users m ON ah.master_id = m.id
		LEFT JOIN users ab ON ah.assigned_by_id = ab.id
		WHERE ah.ticket_id = $1
		ORDER BY ah.assigned_at`

	rows, err := r.storage.Query(ctx, query, ticketRowID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения истории назначений: %w", err)
	}
	defer rows.Close()

	history := make([]dto.AssignmentHistoryDTO, 0)
	for rows.Next() {
		var (
			item           dto.AssignmentHistoryDTO
			assignedByName sql.NullString
			assignedAt     sql.NullTime
			unassignedAt   sql.NullTime
			reason         sql.NullString
		)
		if err := rows.Scan(&item.MasterName, &assignedByName, &assignedAt, &unassignedAt, &reason); err != nil {
			return nil, fmt.Errorf("ошибка сканирования записи назначения: %w", err)
		}
		if assignedByName.Valid {
			item.AssignedByName = &assignedByName.String
		}
		if assignedAt.Valid {
			item.AssignedAt = utils.FormatTime(assignedAt.Time)
		}
		item.UnassignedAt = utils.NullTimeToString(unassignedAt)
		item.Reason = utils.NullStringToString(reason)
		history = append(history, item)
	}
	return history, rows.Err()
}
