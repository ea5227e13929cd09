package repositories

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"repair-system/internal/dto"
	"repair-system/internal/entities"
	"repair-system/pkg/constants"
	apperrors "repair-system/pkg/errors"
	"repair-system/pkg/utils"
)

// ticketIDPrefix + 6 hex-символов — публичный короткий номер заявки.
// Внутренние числовые id наружу не отдаются.
const ticketIDPrefix = "RQ"

const maxTicketIDAttempts = 10

type TicketRepositoryInterface interface {
	GenerateTicketIDInTx(ctx context.Context, q querier) (string, error)
	CreateInTx(ctx context.Context, q querier, ticketID string, clientID int, d dto.CreateTicketDTO, createdBy *int) (int, error)
	FindRowID(ctx context.Context, ticketID string) (int, error)
	FindByTicketID(ctx context.Context, ticketID string) (*dto.TicketDTO, error)
	FindPublicStatus(ctx context.Context, ticketID string) (*dto.PublicStatusDTO, error)
	FindForUpdateInTx(ctx context.Context, tx pgx.Tx, ticketID string) (*entities.Ticket, error)
	UpdateFieldsInTx(ctx context.Context, q querier, rowID int, sets map[string]interface{}) error
	UpdateStatusInTx(ctx context.Context, q querier, rowID int, newStatus constants.Status) error
	StampActualCompletionInTx(ctx context.Context, q querier, rowID int) error
	AssignInTx(ctx context.Context, q querier, rowID int, masterID int, assignedBy int) error
	ClearAssignmentInTx(ctx context.Context, q querier, rowID int) error
	Archive(ctx context.Context, ticketID string) error
	ListActive(ctx context.Context) ([]dto.TicketDTO, error)
}

type TicketRepository struct {
	storage *pgxpool.Pool
}

func NewTicketRepository(storage *pgxpool.Pool) TicketRepositoryInterface {
	return &TicketRepository{storage: storage}
}

// GenerateTicketIDInTx подбирает свободный короткий номер с повторами на
// случай коллизии. Формат регистронезависимый: всегда верхний регистр.
func (r *TicketRepository) GenerateTicketIDInTx(ctx context.Context, q querier) (string, error) {
	for attempt := 0; attempt < maxTicketIDAttempts; attempt++ {
		buf := make([]byte, 3)
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("ошибка генерации номера заявки: %w", err)
		}
		candidate := ticketIDPrefix + strings.ToUpper(hex.EncodeToString(buf))

		var exists int
		err := q.QueryRow(ctx, `SELECT 1 FROM tickets WHERE ticket_id = $1`, candidate).Scan(&exists)
		if errors.Is(err, pgx.ErrNoRows) {
			return candidate, nil
		}
		if err != nil {
			return "", fmt.Errorf("ошибка проверки номера заявки: %w", err)
		}
	}
	return "", fmt.Errorf("не удалось подобрать свободный номер заявки за %d попыток", maxTicketIDAttempts)
}

// IsTicketIDCollision распознаёт гонку по номеру заявки: конкурентная
// вставка того же кандидата между проверкой и INSERT. Транзакция после
// такой ошибки откатывается, повтор возможен только целиком.
func IsTicketIDCollision(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) &&
		pgErr.Code == "23505" &&
		pgErr.ConstraintName == "tickets_ticket_id_key"
}

func (r *TicketRepository) CreateInTx(ctx context.Context, q querier, ticketID string, clientID int, d dto.CreateTicketDTO, createdBy *int) (int, error) {
	priority := d.Priority
	if priority == "" {
		priority = string(constants.PriorityNormal)
	}

	var estimatedCost sql.NullFloat64
	if d.EstimatedCost != nil {
		estimatedCost = sql.NullFloat64{Float64: *d.EstimatedCost, Valid: true}
	}

	query := `
		INSERT INTO tickets (
			ticket_id, client_id, device_type, brand, model, serial_number,
			problem_description, status, priority, estimated_cost, created_by_id,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
		RETURNING id`

	var rowID int
	err := q.QueryRow(ctx, query,
		ticketID, clientID, d.DeviceType,
		utils.StringToNullString(d.Brand),
		utils.StringToNullString(d.Model),
		utils.StringToNullString(d.SerialNumber),
		d.ProblemDescription,
		string(constants.StatusAccepted),
		priority,
		estimatedCost,
		utils.IntPtrToNullInt64(createdBy),
	).Scan(&rowID)
	if err != nil {
		return 0, fmt.Errorf("ошибка создания заявки: %w", err)
	}
	return rowID, nil
}

const ticketSelect = `
	SELECT
		t.ticket_id, c.full_name, c.phone, c.is_vip,
		t.device_type, t.brand, t.model, t.serial_number,
		t.problem_description, t.status, t.priority,
		t.estimated_cost, t.final_cost, t.estimated_completion, t.actual_completion,
		master.full_name, master.specialization,
		assigned_by.full_name, created_by.full_name,
		t.created_at, t.updated_at, t.notes
	FROM tickets t
	LEFT JOIN clients c ON t.client_id = c.id
	LEFT JOIN users master ON t.assigned_master_id = master.id
	LEFT JOIN users assigned_by ON t.assigned_by_id = assigned_by.id
	LEFT JOIN users created_by ON t.created_by_id = created_by.id`

func scanTicketDTO(row pgx.Row) (*dto.TicketDTO, error) {
	var (
		t                                 dto.TicketDTO
		clientName, clientPhone           sql.NullString
		clientIsVIP                       sql.NullBool
		brand, model, serialNumber, notes sql.NullString
		estimatedCost, finalCost          sql.NullFloat64
		estimatedCompletion, actualDone   sql.NullTime
		masterName, masterSpec            sql.NullString
		assignedByName, createdByName     sql.NullString
		createdAt, updatedAt              time.Time
	)

	err := row.Scan(
		&t.TicketID, &clientName, &clientPhone, &clientIsVIP,
		&t.DeviceType, &brand, &model, &serialNumber,
		&t.ProblemDescription, &t.Status, &t.Priority,
		&estimatedCost, &finalCost, &estimatedCompletion, &actualDone,
		&masterName, &masterSpec,
		&assignedByName, &createdByName,
		&createdAt, &updatedAt, &notes,
	)
	if err != nil {
		return nil, err
	}

	t.ClientName = utils.NullStringToString(clientName)
	t.ClientPhone = utils.NullStringToString(clientPhone)
	t.ClientIsVIP = clientIsVIP.Valid && clientIsVIP.Bool
	t.Brand = utils.NullStringToString(brand)
	t.Model = utils.NullStringToString(model)
	t.SerialNumber = utils.NullStringToString(serialNumber)
	t.Notes = utils.NullStringToString(notes)
	if estimatedCost.Valid {
		t.EstimatedCost = &estimatedCost.Float64
	}
	if finalCost.Valid {
		t.FinalCost = &finalCost.Float64
	}
	t.EstimatedCompletion = utils.NullTimeToString(estimatedCompletion)
	t.ActualCompletion = utils.NullTimeToString(actualDone)
	if masterName.Valid {
		t.MasterName = &masterName.String
	}
	if masterSpec.Valid {
		t.MasterSpecialization = &masterSpec.String
	}
	if assignedByName.Valid {
		t.AssignedByName = &assignedByName.String
	}
	if createdByName.Valid {
		t.CreatedByName = &createdByName.String
	}
	t.CreatedAt = utils.FormatTime(createdAt)
	t.UpdatedAt = utils.FormatTime(updatedAt)
	return &t, nil
}

// FindRowID разрешает публичный номер во внутренний id без блокировки.
func (r *TicketRepository) FindRowID(ctx context.Context, ticketID string) (int, error) {
	var rowID int
	err := r.storage.QueryRow(ctx,
		`SELECT id FROM tickets WHERE UPPER(ticket_id) = UPPER($1)`, ticketID,
	).Scan(&rowID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, apperrors.ErrNotFound
		}
		return 0, fmt.Errorf("ошибка поиска заявки: %w", err)
	}
	return rowID, nil
}

// FindByTicketID ищет по публичному номеру, архивные заявки не видны.
func (r *TicketRepository) FindByTicketID(ctx context.Context, ticketID string) (*dto.TicketDTO, error) {
	query := ticketSelect + ` WHERE UPPER(t.ticket_id) = UPPER($1) AND t.is_archived = FALSE`

	t, err := scanTicketDTO(r.storage.QueryRow(ctx, query, ticketID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("ошибка сканирования заявки: %w", err)
	}
	return t, nil
}

func (r *TicketRepository) FindPublicStatus(ctx context.Context, ticketID string) (*dto.PublicStatusDTO, error) {
	query := `
		SELECT ticket_id, device_type, status, created_at
		FROM tickets
		WHERE UPPER(ticket_id) = UPPER($1) AND is_archived = FALSE`

	var res dto.PublicStatusDTO
	var createdAt time.Time
	err := r.storage.QueryRow(ctx, query, ticketID).Scan(&res.TicketID, &res.DeviceType, &res.Status, &createdAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения статуса заявки: %w", err)
	}
	res.CreatedAt = utils.FormatTime(createdAt)
	return &res, nil
}

// FindForUpdateInTx блокирует строку заявки до конца транзакции, чтобы
// конкурентные назначения/переходы видели согласованный снимок.
// Архивные строки возвращаются с выставленным IsArchived — решение за
// вызывающим.
func (r *TicketRepository) FindForUpdateInTx(ctx context.Context, tx pgx.Tx, ticketID string) (*entities.Ticket, error) {
	query := `
		SELECT id, ticket_id, client_id, device_type, brand, model, serial_number,
		       problem_description, status, priority, estimated_cost, final_cost,
		       estimated_completion, actual_completion, assigned_master_id,
		       assigned_by_id, assigned_at, created_by_id, created_at, updated_at,
		       is_archived, notes
		FROM tickets
		WHERE UPPER(ticket_id) = UPPER($1)
		FOR UPDATE`

	var row entities.Ticket
	err := tx.QueryRow(ctx, query, ticketID).Scan(
		&row.ID, &row.TicketID, &row.ClientID, &row.DeviceType, &row.Brand, &row.Model, &row.SerialNumber,
		&row.ProblemDescription, &row.Status, &row.Priority, &row.EstimatedCost, &row.FinalCost,
		&row.EstimatedCompletion, &row.ActualCompletion, &row.AssignedMasterID,
		&row.AssignedByID, &row.AssignedAt, &row.CreatedByID, &row.CreatedAt, &row.UpdatedAt,
		&row.IsArchived, &row.Notes,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("не удалось найти заявку для обновления: %w", err)
	}
	return &row, nil
}

// UpdateFieldsInTx применяет разреженный набор колонок. Набор собирает
// сервис из белого списка; здесь он превращается в один UPDATE.
func (r *TicketRepository) UpdateFieldsInTx(ctx context.Context, q querier, rowID int, sets map[string]interface{}) error {
	if len(sets) == 0 {
		return nil
	}

	builder := sq.Update("tickets").Set("updated_at", sq.Expr("NOW()"))
	for column, value := range sets {
		builder = builder.Set(column, value)
	}
	query, args, err := builder.Where(sq.Eq{"id": rowID}).PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return fmt.Errorf("ошибка сборки запроса обновления: %w", err)
	}

	if _, err := q.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("ошибка обновления заявки: %w", err)
	}
	return nil
}

func (r *TicketRepository) UpdateStatusInTx(ctx context.Context, q querier, rowID int, newStatus constants.Status) error {
	_, err := q.Exec(ctx,
		`UPDATE tickets SET status = $1, updated_at = NOW() WHERE id = $2`,
		string(newStatus), rowID,
	)
	if err != nil {
		return fmt.Errorf("ошибка смены статуса: %w", err)
	}
	return nil
}

// StampActualCompletionInTx проставляет момент завершения ровно один раз:
// повторный вызов проходит мимо уже заполненной колонки.
func (r *TicketRepository) StampActualCompletionInTx(ctx context.Context, q querier, rowID int) error {
	_, err := q.Exec(ctx,
		`UPDATE tickets SET actual_completion = NOW() WHERE id = $1 AND actual_completion IS NULL`,
		rowID,
	)
	if err != nil {
		return fmt.Errorf("ошибка проставления времени завершения: %w", err)
	}
	return nil
}

func (r *TicketRepository) AssignInTx(ctx context.Context, q querier, rowID int, masterID int, assignedBy int) error {
	_, err := q.Exec(ctx, `
		UPDATE tickets
		SET assigned_master_id = $1, assigned_by_id = $2, assigned_at = NOW(), updated_at = NOW()
		WHERE id = $3`,
		masterID, assignedBy, rowID,
	)
	if err != nil {
		return fmt.Errorf("ошибка назначения мастера на заявку: %w", err)
	}
	return nil
}

func (r *TicketRepository) ClearAssignmentInTx(ctx context.Context, q querier, rowID int) error {
	_, err := q.Exec(ctx, `
		UPDATE tickets
		SET assigned_master_id = NULL, assigned_by_id = NULL, assigned_at = NULL, updated_at = NOW()
		WHERE id = $1`,
		rowID,
	)
	if err != nil {
		return fmt.Errorf("ошибка снятия мастера с заявки: %w", err)
	}
	return nil
}

// Archive прячет заявку из всех активных выборок; история остаётся.
func (r *TicketRepository) Archive(ctx context.Context, ticketID string) error {
	tag, err := r.storage.Exec(ctx, `
		UPDATE tickets SET is_archived = TRUE, updated_at = NOW()
		WHERE UPPER(ticket_id) = UPPER($1) AND is_archived = FALSE`,
		ticketID,
	)
	if err != nil {
		return fmt.Errorf("ошибка архивации заявки: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *TicketRepository) ListActive(ctx context.Context) ([]dto.TicketDTO, error) {
	query := ticketSelect + `
	WHERE t.is_archived = FALSE
	ORDER BY
		CASE t.priority
			WHEN 'Critical' THEN 1
			WHEN 'High' THEN 2
			WHEN 'Normal' THEN 3
			WHEN 'Low' THEN 4
		END,
		t.created_at DESC`

	rows, err := r.storage.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка заявок: %w", err)
	}
	defer rows.Close()

	tickets := make([]dto.TicketDTO, 0)
	for rows.Next() {
		t, err := scanTicketDTO(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования заявки в списке: %w", err)
		}
		tickets = append(tickets, *t)
	}
	return tickets, rows.Err()
}
