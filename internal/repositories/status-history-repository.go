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

type StatusHistoryRepositoryInterface interface {
	AppendInTx(ctx context.Context, q querier, entry entities.StatusHistory) error
	ListByTicket(ctx context.Context, ticketRowID int) ([]dto.StatusHistoryDTO, error)
}

type StatusHistoryRepository struct {
	storage *pgxpool.Pool
}

func NewStatusHistoryRepository(storage *pgxpool.Pool) StatusHistoryRepositoryInterface {
	return &StatusHistoryRepository{storage: storage}
}

// AppendInTx дописывает запись в журнал. Журнал только растёт, правок и
// удалений по нему нет.
func (r *StatusHistoryRepository) AppendInTx(ctx context.Context, q querier, entry entities.StatusHistory) error {
	_, err := q.Exec(ctx, `
		INSERT INTO status_history (ticket_id, old_status, new_status, changed_by_id, changed_at, comment)
		VALUES ($1, $2, $3, $4, NOW(), $5)`,
		entry.TicketID, entry.OldStatus, entry.NewStatus, entry.ChangedBy, entry.Comment,
	)
	if err != nil {
		return fmt.Errorf("ошибка записи в историю статусов: %w", err)
	}
	return nil
}

func (r *StatusHistoryRepository) ListByTicket(ctx context.Context, ticketRowID int) ([]dto.StatusHistoryDTO, error) {
	query := `
		SELECT sh.old_status, sh.new_status, u.full_name, sh.changed_at, sh.comment
		FROM status_history sh
		LEFT JOIN users u ON sh.changed_by_id = u.id
		WHERE sh.ticket_id = $1
		ORDER BY sh.changed_at`

	rows, err := r.storage.Query(ctx, query, ticketRowID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения истории статусов: %w", err)
	}
	defer rows.Close()

	history := make([]dto.StatusHistoryDTO, 0)
	for rows.Next() {
		var (
			item          dto.StatusHistoryDTO
			oldStatus     sql.NullString
			changedByName sql.NullString
			changedAt     sql.NullTime
			comment       sql.NullString
		)
		if err := rows.Scan(&oldStatus, &item.NewStatus, &changedByName, &changedAt, &comment); err != nil {
			return nil, fmt.Errorf("ошибка сканирования записи истории: %w", err)
		}
		if oldStatus.Valid {
			item.OldStatus = &oldStatus.String
		}
		if changedByName.Valid {
			item.ChangedByName = &changedByName.String
		}
		if changedAt.Valid {
			item.ChangedAt = utils.FormatTime(changedAt.Time)
		}
		item.Comment = utils.NullStringToString(comment)
		history = append(history, item)
	}
	return history, rows.Err()
}
