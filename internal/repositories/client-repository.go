package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"repair-system/internal/dto"
	"repair-system/internal/entities"
	apperrors "repair-system/pkg/errors"
	"repair-system/pkg/utils"
)

type ClientRepositoryInterface interface {
	UpsertByPhoneInTx(ctx context.Context, q querier, fullName, normalizedPhone, email string) (*entities.Client, error)
	FindByID(ctx context.Context, id int) (*dto.ClientDTO, error)
	SearchByPhone(ctx context.Context, phoneFragment string) ([]dto.ClientSearchItemDTO, error)
	Update(ctx context.Context, id int, d dto.UpdateClientDTO) error
	Delete(ctx context.Context, id int) error
}

type ClientRepository struct {
	storage *pgxpool.Pool
}

func NewClientRepository(storage *pgxpool.Pool) ClientRepositoryInterface {
	return &ClientRepository{storage: storage}
}

// UpsertByPhoneInTx создаёт клиента или обновляет существующего по
// каноническому телефону. Гонка двух одновременных созданий разрешается
// уникальным ограничением на phone: проигравший превращается в UPDATE.
// Счётчик total_repairs увеличивается ровно один раз на каждую заявку.
func (r *ClientRepository) UpsertByPhoneInTx(ctx context.Context, q querier, fullName, normalizedPhone, email string) (*entities.Client, error) {
	query := `
		INSERT INTO clients (full_name, phone, email, total_repairs)
		VALUES ($1, $2, $3, 1)
		ON CONFLICT (phone) DO UPDATE
		SET full_name = EXCLUDED.full_name,
		    email = COALESCE(NULLIF(EXCLUDED.email, ''), clients.email),
		    total_repairs = clients.total_repairs + 1
		RETURNING id, full_name, phone, email, address, is_vip, total_repairs, created_at, notes`

	var client entities.Client
	err := q.QueryRow(ctx, query, fullName, normalizedPhone, utils.StringToNullString(email)).Scan(
		&client.ID, &client.FullName, &client.Phone, &client.Email, &client.Address,
		&client.IsVIP, &client.TotalRepairs, &client.CreatedAt, &client.Notes,
	)
	if err != nil {
		return nil, fmt.Errorf("ошибка upsert клиента: %w", err)
	}
	return &client, nil
}

func (r *ClientRepository) FindByID(ctx context.Context, id int) (*dto.ClientDTO, error) {
	query := `
		SELECT
			c.id, c.full_name, c.phone, c.email, c.address, c.is_vip,
			c.total_repairs, c.created_at, c.notes,
			COUNT(t.id) FILTER (WHERE t.is_archived = FALSE AND t.status NOT IN ('ReadyForPickup', 'Issued')) AS active_tickets,
			COUNT(t.id) FILTER (WHERE t.is_archived = FALSE AND t.status = 'Issued') AS completed_tickets,
			COALESCE(SUM(t.final_cost), 0) AS total_spent,
			AVG(t.final_cost) AS avg_cost
		FROM clients c
		LEFT JOIN tickets t ON c.id = t.client_id
		WHERE c.id = $1
		GROUP BY c.id`

	var (
		client            dto.ClientDTO
		email, address    sql.NullString
		notes             sql.NullString
		createdAt         time.Time
		totalSpent        float64
		avgCost           sql.NullFloat64
	)
	err := r.storage.QueryRow(ctx, query, id).Scan(
		&client.ID, &client.FullName, &client.Phone, &email, &address, &client.IsVIP,
		&client.TotalRepairs, &createdAt, &notes,
		&client.ActiveTickets, &client.CompletedTickets, &totalSpent, &avgCost,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("ошибка сканирования клиента: %w", err)
	}

	client.Email = utils.NullStringToString(email)
	client.Address = utils.NullStringToString(address)
	client.Notes = utils.NullStringToString(notes)
	client.CreatedAt = utils.FormatTime(createdAt)
	client.TotalSpent = totalSpent
	if avgCost.Valid {
		client.AvgCost = &avgCost.Float64
	}
	return &client, nil
}

func (r *ClientRepository) SearchByPhone(ctx context.Context, phoneFragment string) ([]dto.ClientSearchItemDTO, error) {
	query := `
		SELECT id, full_name, phone, email
		FROM clients
		WHERE phone LIKE '%' || $1 || '%'
		ORDER BY id DESC
		LIMIT 10`

	rows, err := r.storage.Query(ctx, query, phoneFragment)
	if err != nil {
		return nil, fmt.Errorf("ошибка поиска клиентов: %w", err)
	}
	defer rows.Close()

	items := make([]dto.ClientSearchItemDTO, 0)
	for rows.Next() {
		var item dto.ClientSearchItemDTO
		var email sql.NullString
		if err := rows.Scan(&item.ID, &item.FullName, &item.Phone, &email); err != nil {
			return nil, fmt.Errorf("ошибка сканирования клиента в поиске: %w", err)
		}
		item.Email = utils.NullStringToString(email)
		items = append(items, item)
	}
	return items, nil
}

func (r *ClientRepository) Update(ctx context.Context, id int, d dto.UpdateClientDTO) error {
	updateQuery := "UPDATE clients SET id = id"
	args := []interface{}{}
	argCounter := 1

	appendSet := func(column string, value interface{}) {
		updateQuery += fmt.Sprintf(", %s = $%d", column, argCounter)
		args = append(args, value)
		argCounter++
	}

	if d.FullName != nil {
		appendSet("full_name", *d.FullName)
	}
	if d.Email != nil {
		appendSet("email", *d.Email)
	}
	if d.Address != nil {
		appendSet("address", *d.Address)
	}
	if d.IsVIP != nil {
		appendSet("is_vip", *d.IsVIP)
	}
	if d.Notes != nil {
		appendSet("notes", *d.Notes)
	}

	if len(args) == 0 {
		return nil
	}

	updateQuery += fmt.Sprintf(" WHERE id = $%d", argCounter)
	args = append(args, id)

	tag, err := r.storage.Exec(ctx, updateQuery, args...)
	if err != nil {
		return fmt.Errorf("ошибка обновления клиента: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// Delete удаляет клиента только при отсутствии активных заявок; его
// завершённые заявки архивируются, история остаётся адресуемой.
func (r *ClientRepository) Delete(ctx context.Context, id int) error {
	return NewTxManager(r.storage).RunInTransaction(ctx, func(tx pgx.Tx) error {
		var activeCount int
		err := tx.QueryRow(ctx, `
			SELECT COUNT(*) FROM tickets
			WHERE client_id = $1 AND status NOT IN ('ReadyForPickup', 'Issued') AND is_archived = FALSE`, id).Scan(&activeCount)
		if err != nil {
			return fmt.Errorf("ошибка подсчёта активных заявок клиента: %w", err)
		}
		if activeCount > 0 {
			return apperrors.ErrClientHasActive
		}

		// Заявки остаются в архиве, но отвязываются от удаляемой строки.
		if _, err := tx.Exec(ctx, `UPDATE tickets SET is_archived = TRUE, client_id = NULL WHERE client_id = $1`, id); err != nil {
			return fmt.Errorf("ошибка архивации заявок клиента: %w", err)
		}

		tag, err := tx.Exec(ctx, `DELETE FROM clients WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("ошибка удаления клиента: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return apperrors.ErrNotFound
		}
		return nil
	})
}
